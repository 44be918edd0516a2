package app

import (
	"strings"
	"testing"
	"time"

	"github.com/subtrack/subscription-service/internal/analytics"
	"github.com/subtrack/subscription-service/internal/domain"
)

var alertNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func buildSub(t *testing.T, name string, cost float64, cycle domain.BillingCycle, customDays int, start time.Time) *domain.Subscription {
	t.Helper()
	sub, err := domain.NewSubscription(domain.NewSubscriptionParams{
		UserID:     "user_1",
		Name:       name,
		Cost:       cost,
		Cycle:      cycle,
		CustomDays: customDays,
		StartDate:  start,
	})
	if err != nil {
		t.Fatalf("building %s: %v", name, err)
	}
	return sub
}

func TestBuildAlertsPriorityOrder(t *testing.T) {
	subs := []*domain.Subscription{
		// Custom 3-day cycle started yesterday: due in 2 days.
		buildSub(t, "DueSoon", 5, domain.CycleCustom, 3, alertNow.AddDate(0, 0, -1)),
		// Over the high cost threshold, recent start, far next billing.
		buildSub(t, "Expensive", 45, domain.CycleMonthly, 0, alertNow.AddDate(0, 0, -10)),
		// Old and costly enough to look unused.
		buildSub(t, "Forgotten", 20, domain.CycleMonthly, 0, alertNow.AddDate(0, 0, -100)),
	}
	savings := analytics.SavingsReport{
		Opportunities: []analytics.SavingsOpportunity{
			{Type: "switch_to_annual", PotentialMonthlySavings: 3.4, Suggestion: "Switch Expensive to annual billing to save ~$7.65/mo."},
		},
	}

	alerts := BuildAlerts("user_1", subs, savings, alertNow, analytics.DefaultConfig())

	var types []domain.AlertType
	for _, alert := range alerts {
		types = append(types, alert.Type)
	}
	want := []domain.AlertType{
		domain.AlertCostSpike,
		domain.AlertUnusedSubscription,
		domain.AlertUpcomingPayment,
		domain.AlertSavingsOpportunity,
	}
	if len(types) != len(want) {
		t.Fatalf("got %d alerts (%v), want %d", len(types), types, len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("alert %d type = %q, want %q", i, types[i], want[i])
		}
	}

	for i := 1; i < len(alerts); i++ {
		if alerts[i-1].PriorityRank() > alerts[i].PriorityRank() {
			t.Errorf("alerts out of priority order at %d: %v before %v", i, alerts[i-1].Priority(), alerts[i].Priority())
		}
	}
}

func TestUpcomingPaymentAlertMessages(t *testing.T) {
	tomorrow := buildSub(t, "Tomorrow", 9.99, domain.CycleCustom, 2, alertNow.AddDate(0, 0, -1))
	later := buildSub(t, "Later", 9.99, domain.CycleCustom, 3, alertNow.AddDate(0, 0, -1))

	alerts := upcomingPaymentAlerts("user_1", []*domain.Subscription{tomorrow, later}, alertNow)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if !strings.Contains(alerts[0].Message, "due tomorrow") {
		t.Errorf("message %q should say due tomorrow", alerts[0].Message)
	}
	if !strings.Contains(alerts[1].Message, "due in 2 days") {
		t.Errorf("message %q should say due in 2 days", alerts[1].Message)
	}
}

func TestUpcomingPaymentAlertsSkipInactive(t *testing.T) {
	sub := buildSub(t, "Cancelled", 9.99, domain.CycleCustom, 2, alertNow.AddDate(0, 0, -1))
	sub.SetActive(false)

	alerts := upcomingPaymentAlerts("user_1", []*domain.Subscription{sub}, alertNow)
	if len(alerts) != 0 {
		t.Errorf("expected no alerts for inactive subscription, got %d", len(alerts))
	}
}

func TestUnusedSubscriptionAlertThresholds(t *testing.T) {
	cfg := analytics.DefaultConfig()

	// Old but too cheap to flag.
	cheap := buildSub(t, "Cheap", 5, domain.CycleMonthly, 0, alertNow.AddDate(0, 0, -120))
	// Costly but too recent.
	recent := buildSub(t, "Recent", 20, domain.CycleMonthly, 0, alertNow.AddDate(0, 0, -30))
	// Exactly at the cost threshold counts.
	border := buildSub(t, "Border", cfg.UnusedSubscriptionCost, domain.CycleMonthly, 0, alertNow.AddDate(0, 0, -120))

	alerts := unusedSubscriptionAlerts("user_1", []*domain.Subscription{cheap, recent, border}, alertNow, cfg)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Metadata["subscription_name"] != "Border" {
		t.Errorf("flagged %v, want Border", alerts[0].Metadata["subscription_name"])
	}
}

func TestSavingsAlertsLimitAndMinimum(t *testing.T) {
	cfg := analytics.DefaultConfig()
	savings := analytics.SavingsReport{
		Opportunities: []analytics.SavingsOpportunity{
			{Type: "switch_to_annual", PotentialMonthlySavings: 5, Suggestion: "first"},
			{Type: "duplicate_category", PotentialMonthlySavings: 0.5, Suggestion: "below minimum"},
			{Type: "high_cost", PotentialMonthlySavings: 4, Suggestion: "third"},
			{Type: "high_cost", PotentialMonthlySavings: 99, Suggestion: "beyond top three"},
		},
	}

	alerts := savingsAlerts("user_1", savings, cfg)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if !strings.Contains(alerts[0].Message, "first") || !strings.Contains(alerts[1].Message, "third") {
		t.Errorf("unexpected messages: %q, %q", alerts[0].Message, alerts[1].Message)
	}
}
