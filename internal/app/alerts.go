/**
 * @description
 * Alert generation. Alerts are derived on demand from the current
 * subscription set and the savings analysis, then sorted by priority.
 */
package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/subtrack/subscription-service/internal/analytics"
	"github.com/subtrack/subscription-service/internal/domain"
)

// upcomingAlertDays is the lookahead window for payment reminders.
const upcomingAlertDays = 3

// BuildAlerts runs every generator over the subscription set and returns
// the combined list sorted high priority first. Generation order is
// preserved within a priority level.
func BuildAlerts(userID string, subs []*domain.Subscription, savings analytics.SavingsReport, now time.Time, cfg analytics.Config) []*domain.Alert {
	alerts := make([]*domain.Alert, 0)
	alerts = append(alerts, upcomingPaymentAlerts(userID, subs, now)...)
	alerts = append(alerts, costSpikeAlerts(userID, subs, cfg)...)
	alerts = append(alerts, unusedSubscriptionAlerts(userID, subs, now, cfg)...)
	alerts = append(alerts, savingsAlerts(userID, savings, cfg)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PriorityRank() < alerts[j].PriorityRank()
	})
	return alerts
}

func upcomingPaymentAlerts(userID string, subs []*domain.Subscription, now time.Time) []*domain.Alert {
	threshold := now.AddDate(0, 0, upcomingAlertDays)

	var alerts []*domain.Alert
	for _, sub := range subs {
		if !sub.IsActive {
			continue
		}
		billing := sub.NextBillingDate(now)
		if billing.After(threshold) {
			continue
		}

		daysUntil := int(billing.Sub(now).Hours() / 24)
		dayLabel := fmt.Sprintf("in %d days", daysUntil)
		if daysUntil <= 1 {
			dayLabel = "tomorrow"
		}

		alert, _ := domain.NewAlert(userID, domain.AlertUpcomingPayment,
			fmt.Sprintf("%s ($%.2f) is due %s", sub.Name, sub.Cost, dayLabel),
			map[string]any{
				"subscription_name": sub.Name,
				"cost":              sub.Cost,
				"due_date":          billing.Format(time.RFC3339),
				"days_until":        daysUntil,
			})
		alerts = append(alerts, alert)
	}
	return alerts
}

func costSpikeAlerts(userID string, subs []*domain.Subscription, cfg analytics.Config) []*domain.Alert {
	var alerts []*domain.Alert
	for _, sub := range subs {
		if !sub.IsActive || sub.Cost <= cfg.HighCostThreshold {
			continue
		}
		alert, _ := domain.NewAlert(userID, domain.AlertCostSpike,
			fmt.Sprintf("%s costs $%.2f/mo - consider a lower tier", sub.Name, sub.Cost),
			map[string]any{
				"subscription_name": sub.Name,
				"cost":              sub.Cost,
				"threshold":         cfg.HighCostThreshold,
			})
		alerts = append(alerts, alert)
	}
	return alerts
}

func unusedSubscriptionAlerts(userID string, subs []*domain.Subscription, now time.Time, cfg analytics.Config) []*domain.Alert {
	var alerts []*domain.Alert
	for _, sub := range subs {
		if !sub.IsActive {
			continue
		}
		daysActive := int(now.Sub(sub.StartDate).Hours() / 24)
		if daysActive <= cfg.UnusedSubscriptionDays || sub.Cost < cfg.UnusedSubscriptionCost {
			continue
		}
		alert, _ := domain.NewAlert(userID, domain.AlertUnusedSubscription,
			fmt.Sprintf("%s has been active for %d days - still using it?", sub.Name, daysActive),
			map[string]any{
				"subscription_name": sub.Name,
				"cost":              sub.Cost,
				"days_active":       daysActive,
			})
		alerts = append(alerts, alert)
	}
	return alerts
}

// savingsAlerts surfaces at most the top three opportunities worth more
// than the configured minimum.
func savingsAlerts(userID string, savings analytics.SavingsReport, cfg analytics.Config) []*domain.Alert {
	var alerts []*domain.Alert
	for i, opp := range savings.Opportunities {
		if i >= 3 {
			break
		}
		if opp.PotentialMonthlySavings < cfg.MinimumSavingsSuggestion {
			continue
		}
		suggestion := opp.Suggestion
		if suggestion == "" {
			suggestion = "optimization available"
		}
		alert, _ := domain.NewAlert(userID, domain.AlertSavingsOpportunity,
			fmt.Sprintf("Save $%.2f/mo - %s", opp.PotentialMonthlySavings, suggestion),
			map[string]any{
				"savings":    opp.PotentialMonthlySavings,
				"type":       opp.Type,
				"suggestion": suggestion,
			})
		alerts = append(alerts, alert)
	}
	return alerts
}
