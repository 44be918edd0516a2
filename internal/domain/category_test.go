package domain

import "testing"

func TestAutoCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Netflix Premium", "Streaming"},
		{"Adobe Creative Cloud", "Software"},
		{"Planet Fitness", "Fitness"},
		{"Xbox Game Pass", "Gaming"},
		{"The New York Times", "News & Media"},
		{"Uber Eats Pass", "Food & Delivery"},
		{"Uber One", "Transportation"},
		{"Duolingo Plus", "Education"},
		{"Mystery Box Club", "Cloud Storage"}, // "box" keyword wins before Other
		{"Totally Unknown Service", "Other"},
	}

	for _, tc := range tests {
		if got := AutoCategorize(tc.name); got != tc.want {
			t.Errorf("AutoCategorize(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestAutoCategorizeOrderIsStable(t *testing.T) {
	// "icloud" matches Software before the Cloud Storage "cloud" keyword.
	if got := AutoCategorize("iCloud+"); got != "Software" {
		t.Errorf("AutoCategorize(iCloud+) = %q, want Software", got)
	}
}

func TestCategoryInfo(t *testing.T) {
	streaming := CategoryInfo("Streaming")
	if streaming.Icon == "" || streaming.Color == "" {
		t.Errorf("expected display metadata for Streaming, got %+v", streaming)
	}

	unknown := CategoryInfo("No Such Category")
	if unknown.Name != CategoryOther {
		t.Errorf("unknown category resolved to %q, want %q", unknown.Name, CategoryOther)
	}
}

func TestAllCategoriesEndsWithOther(t *testing.T) {
	all := AllCategories()
	if len(all) == 0 {
		t.Fatal("expected a non-empty category table")
	}
	if all[len(all)-1].Name != CategoryOther {
		t.Errorf("last category = %q, want %q", all[len(all)-1].Name, CategoryOther)
	}
}
