package analytics

import (
	"reflect"
	"testing"

	"github.com/subtrack/subscription-service/internal/domain"
)

func TestPredictFutureCostsDeterministic(t *testing.T) {
	subs := buildSubs(t, []subSpec{
		{name: "Netflix", cost: 15.99, cycle: domain.CycleMonthly, category: "Streaming"},
		{name: "Backup", cost: 60, cycle: domain.CycleAnnual, category: "Cloud Storage"},
	})
	cfg := DefaultConfig()

	first := NewPredictor(subs, testNow, cfg).PredictFutureCosts(6)
	second := NewPredictor(subs, testNow, cfg).PredictFutureCosts(6)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical forecasts for identical inputs and seed")
	}
}

func TestPredictFutureCostsShape(t *testing.T) {
	subs := buildSubs(t, []subSpec{
		{name: "Flat", cost: 20, cycle: domain.CycleMonthly},
	})
	cfg := DefaultConfig()
	forecast := NewPredictor(subs, testNow, cfg).PredictFutureCosts(6)

	wantPoints := cfg.PredictionMonths + 6
	if len(forecast.Predictions) != wantPoints {
		t.Fatalf("got %d points, want %d", len(forecast.Predictions), wantPoints)
	}

	// The first future month is pinned to the real monthly spend.
	current := forecast.Predictions[cfg.PredictionMonths]
	if !current.IsPrediction {
		t.Error("expected the pinned month to be marked as a prediction")
	}
	if current.PredictedCost != 20 {
		t.Errorf("pinned month cost = %v, want 20", current.PredictedCost)
	}

	for i, point := range forecast.Predictions {
		if point.IsPrediction != (i >= cfg.PredictionMonths) {
			t.Errorf("point %d: IsPrediction = %v", i, point.IsPrediction)
		}
		if point.PredictedCost < 0 {
			t.Errorf("point %d: negative cost %v", i, point.PredictedCost)
		}
	}

	if forecast.CurrentMonthlyCost != 20 {
		t.Errorf("CurrentMonthlyCost = %v, want 20", forecast.CurrentMonthlyCost)
	}
	switch forecast.Trend {
	case "increasing", "decreasing", "stable":
	default:
		t.Errorf("unexpected trend %q", forecast.Trend)
	}
}

func TestPredictFutureCostsEmpty(t *testing.T) {
	forecast := NewPredictor(nil, testNow, DefaultConfig()).PredictFutureCosts(6)
	if len(forecast.Predictions) != 0 {
		t.Errorf("expected no predictions, got %d", len(forecast.Predictions))
	}
	if forecast.Trend != "stable" {
		t.Errorf("trend = %q, want stable", forecast.Trend)
	}
}

func TestCostTiers(t *testing.T) {
	subs := buildSubs(t, []subSpec{
		{name: "Cheap", cost: 5, cycle: domain.CycleMonthly},
		{name: "AlsoCheap", cost: 8, cycle: domain.CycleMonthly},
		{name: "Middle", cost: 15, cycle: domain.CycleMonthly},
		{name: "Fancy", cost: 35, cycle: domain.CycleMonthly},
	})
	report := NewPredictor(subs, testNow, DefaultConfig()).CostTiers()

	if report.Message != "" {
		t.Fatalf("unexpected message %q", report.Message)
	}
	if len(report.Tiers) != 3 {
		t.Fatalf("got %d tiers, want 3", len(report.Tiers))
	}
	if report.Tiers[0].Label != "Budget Subscriptions" || report.Tiers[0].Size != 2 {
		t.Errorf("first tier = %+v", report.Tiers[0])
	}
	if report.Tiers[0].AvgCost != 6.5 {
		t.Errorf("budget avg = %v, want 6.5", report.Tiers[0].AvgCost)
	}
	if report.Tiers[2].Label != "Premium Subscriptions" || report.Tiers[2].Subscriptions[0] != "Fancy" {
		t.Errorf("last tier = %+v", report.Tiers[2])
	}
}

func TestCostTiersTooFew(t *testing.T) {
	subs := buildSubs(t, []subSpec{
		{name: "Only", cost: 5, cycle: domain.CycleMonthly},
	})
	report := NewPredictor(subs, testNow, DefaultConfig()).CostTiers()

	if report.Message == "" {
		t.Error("expected a message explaining the missing grouping")
	}
	if len(report.Tiers) != 0 {
		t.Errorf("expected no tiers, got %d", len(report.Tiers))
	}
}

func TestCostEfficiency(t *testing.T) {
	subs := buildSubs(t, []subSpec{
		{name: "Netflix", cost: 10, cycle: domain.CycleMonthly, category: "Streaming"},
		{name: "Hulu", cost: 20, cycle: domain.CycleMonthly, category: "Streaming"},
		{name: "Notes", cost: 5, cycle: domain.CycleMonthly, category: "Software"},
	})
	eff := NewPredictor(subs, testNow, DefaultConfig()).CostEfficiency()

	if eff.TotalSubscriptions != 3 {
		t.Errorf("TotalSubscriptions = %d, want 3", eff.TotalSubscriptions)
	}
	if eff.TotalMonthlyCost != 35 {
		t.Errorf("TotalMonthlyCost = %v, want 35", eff.TotalMonthlyCost)
	}
	if eff.CostPerSubscription != 11.67 {
		t.Errorf("CostPerSubscription = %v, want 11.67", eff.CostPerSubscription)
	}
	if eff.CategoryEfficiency["Streaming"] != 15 || eff.CategoryEfficiency["Software"] != 5 {
		t.Errorf("CategoryEfficiency = %v", eff.CategoryEfficiency)
	}
	if eff.MostEfficientCategory != "Software" || eff.LeastEfficientCategory != "Streaming" {
		t.Errorf("most/least = %q/%q", eff.MostEfficientCategory, eff.LeastEfficientCategory)
	}
}

func TestCostEfficiencyEmpty(t *testing.T) {
	eff := NewPredictor(nil, testNow, DefaultConfig()).CostEfficiency()
	if eff.TotalSubscriptions != 0 || eff.TotalMonthlyCost != 0 {
		t.Errorf("expected zero efficiency, got %+v", eff)
	}
	if eff.CategoryEfficiency == nil {
		t.Error("expected non-nil empty CategoryEfficiency map")
	}
}
