/**
 * @description
 * Static category reference table with keyword-based auto-categorization.
 * The table is process-wide immutable configuration; iteration order is
 * fixed so classification stays deterministic.
 */
package domain

import "strings"

// CategoryOther is the catch-all category for unmatched subscriptions.
const CategoryOther = "Other"

// Category describes display metadata and matching keywords for one category.
type Category struct {
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Keywords []string `json:"keywords"`
}

var categories = []Category{
	{
		Name:  "Streaming",
		Icon:  "🎬",
		Color: "#ef4444",
		Keywords: []string{
			"netflix", "spotify", "hulu", "disney", "prime video",
			"youtube", "apple music", "hbo", "paramount", "peacock",
			"crunchyroll", "funimation", "tidal", "deezer",
		},
	},
	{
		Name:  "Software",
		Icon:  "💻",
		Color: "#3b82f6",
		Keywords: []string{
			"adobe", "microsoft", "office", "github", "dropbox",
			"google", "icloud", "notion", "evernote", "slack",
			"zoom", "canva", "figma", "grammarly",
		},
	},
	{
		Name:  "Fitness",
		Icon:  "💪",
		Color: "#10b981",
		Keywords: []string{
			"gym", "fitness", "peloton", "strava", "myfitnesspal",
			"headspace", "calm", "yoga", "crossfit", "planet fitness",
		},
	},
	{
		Name:  "Gaming",
		Icon:  "🎮",
		Color: "#8b5cf6",
		Keywords: []string{
			"playstation", "xbox", "nintendo", "steam", "epic games",
			"twitch", "discord", "ea play", "ubisoft",
		},
	},
	{
		Name:  "News & Media",
		Icon:  "📰",
		Color: "#f59e0b",
		Keywords: []string{
			"news", "times", "post", "journal", "medium", "substack",
			"patreon", "magazine", "newspaper",
		},
	},
	{
		Name:  "Cloud Storage",
		Icon:  "☁️",
		Color: "#06b6d4",
		Keywords: []string{
			"cloud", "storage", "backup", "drive", "onedrive",
			"box", "mega", "sync",
		},
	},
	{
		Name:  "Education",
		Icon:  "📚",
		Color: "#ec4899",
		Keywords: []string{
			"udemy", "coursera", "skillshare", "masterclass",
			"linkedin learning", "pluralsight", "datacamp", "duolingo",
		},
	},
	{
		Name:  "Food & Delivery",
		Icon:  "🍔",
		Color: "#f97316",
		Keywords: []string{
			"uber eats", "doordash", "grubhub", "postmates",
			"instacart", "hello fresh", "blue apron",
		},
	},
	{
		Name:  "Transportation",
		Icon:  "🚗",
		Color: "#14b8a6",
		Keywords: []string{
			"uber", "lyft", "car", "insurance", "parking",
			"toll", "transit", "metro",
		},
	},
	{
		Name:     CategoryOther,
		Icon:     "📦",
		Color:    "#6b7280",
		Keywords: nil,
	},
}

// AutoCategorize maps a subscription name to the first category whose
// keyword list matches it, or "Other" when nothing matches.
func AutoCategorize(name string) string {
	lower := strings.ToLower(name)
	for _, category := range categories {
		for _, keyword := range category.Keywords {
			if strings.Contains(lower, keyword) {
				return category.Name
			}
		}
	}
	return CategoryOther
}

// CategoryInfo returns the display metadata for a category, falling back
// to the "Other" entry for unknown names.
func CategoryInfo(name string) Category {
	for _, category := range categories {
		if category.Name == name {
			return category
		}
	}
	return categories[len(categories)-1]
}

// AllCategories returns the category table in its fixed order.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
