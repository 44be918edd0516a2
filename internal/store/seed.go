/**
 * @description
 * Demo data seeding for the in-memory store, used to showcase the
 * service without a database.
 */
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
)

// DemoUserID owns the seeded subscription set.
const DemoUserID = "demo_user"

type demoSubscription struct {
	name      string
	cost      float64
	category  string
	monthsAgo int
	notes     string
}

var demoSubscriptions = []demoSubscription{
	{name: "Netflix", cost: 15.99, category: "Streaming", monthsAgo: 8, notes: "Premium 4K plan"},
	{name: "Spotify", cost: 9.99, category: "Streaming", monthsAgo: 14, notes: "Individual plan"},
	{name: "Adobe Creative Cloud", cost: 54.99, category: "Software", monthsAgo: 6, notes: "All Apps plan"},
	{name: "GitHub Pro", cost: 4.00, category: "Software", monthsAgo: 18, notes: "Developer essentials"},
	{name: "Disney+", cost: 7.99, category: "Streaming", monthsAgo: 4, notes: "Ad-supported plan"},
	{name: "Notion", cost: 8.00, category: "Software", monthsAgo: 12, notes: "Personal Pro"},
	{name: "iCloud+", cost: 2.99, category: "Cloud Storage", monthsAgo: 24, notes: "200GB storage"},
}

// SeedDemoData loads a realistic sample subscription set for the demo
// user into the memory store.
func SeedDemoData(ctx context.Context, m *Memory) error {
	now := time.Now()

	if err := m.PutUser(ctx, map[string]any{
		"user_id":    DemoUserID,
		"email":      "demo@subtrack.dev",
		"name":       "Demo User",
		"created_at": now.AddDate(-2, 0, 0).Format(time.RFC3339),
	}); err != nil {
		return err
	}

	for _, d := range demoSubscriptions {
		sub, err := domain.NewSubscription(domain.NewSubscriptionParams{
			UserID:    DemoUserID,
			Name:      d.name,
			Cost:      d.cost,
			Cycle:     domain.CycleMonthly,
			StartDate: now.AddDate(0, -d.monthsAgo, 0),
			Category:  d.category,
			Notes:     d.notes,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.name, err)
		}
		if err := m.CreateSubscription(ctx, sub.Record()); err != nil {
			return fmt.Errorf("seed %s: %w", d.name, err)
		}
	}
	return nil
}
