/**
 * @description
 * The analytics engine. An Analyzer is built per request from one user's
 * subscription set and a reference time, and every method is a pure
 * computation over that snapshot: empty or all-inactive input yields
 * zero/empty results, never an error.
 */
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
)

// Config holds the analytics tuning knobs. Zero values are not usable;
// construct with DefaultConfig and override from app configuration.
type Config struct {
	AnomalyThreshold             float64
	AnomalyMinDataPoints         int
	AnnualDiscountRate           float64
	DuplicateCategorySavingsRate float64
	HighCostThreshold            float64
	HighCostSavingsRate          float64
	MinimumSavingsSuggestion     float64
	UnusedSubscriptionDays       int
	UnusedSubscriptionCost       float64
	DefaultUpcomingDays          int
	ExtendedUpcomingDays         int

	PredictionMonths          int
	PredictionSeed            int64
	PredictionTrendSlope      float64
	SeasonalityAmplitudeRatio float64
	NoiseRatio                float64
}

// DefaultConfig returns the stock analytics tuning.
func DefaultConfig() Config {
	return Config{
		AnomalyThreshold:             2.0,
		AnomalyMinDataPoints:         3,
		AnnualDiscountRate:           0.17,
		DuplicateCategorySavingsRate: 0.40,
		HighCostThreshold:            40.0,
		HighCostSavingsRate:          0.20,
		MinimumSavingsSuggestion:     1.0,
		UnusedSubscriptionDays:       90,
		UnusedSubscriptionCost:       15.0,
		DefaultUpcomingDays:          7,
		ExtendedUpcomingDays:         30,
		PredictionMonths:             6,
		PredictionSeed:               42,
		PredictionTrendSlope:         0.05,
		SeasonalityAmplitudeRatio:    0.03,
		NoiseRatio:                   0.02,
	}
}

// Analyzer computes aggregate insights over one user's subscriptions.
type Analyzer struct {
	subs []*domain.Subscription
	now  time.Time
	cfg  Config
}

// NewAnalyzer builds an analyzer for the given subscription snapshot.
func NewAnalyzer(subs []*domain.Subscription, now time.Time, cfg Config) *Analyzer {
	return &Analyzer{subs: subs, now: now, cfg: cfg}
}

func (a *Analyzer) active() []*domain.Subscription {
	out := make([]*domain.Subscription, 0, len(a.subs))
	for _, sub := range a.subs {
		if sub.IsActive {
			out = append(out, sub)
		}
	}
	return out
}

// TotalMonthlyCost sums the monthly-equivalent cost of active subscriptions.
func (a *Analyzer) TotalMonthlyCost() float64 {
	var totalAnnual float64
	for _, sub := range a.active() {
		totalAnnual += sub.AnnualCost()
	}
	return round2(totalAnnual / 12)
}

// TotalAnnualCost sums the annualized cost of active subscriptions.
func (a *Analyzer) TotalAnnualCost() float64 {
	var total float64
	for _, sub := range a.active() {
		total += sub.AnnualCost()
	}
	return round2(total)
}

// CostByCategory breaks monthly cost down by category. Categories with no
// active subscriptions are absent from the result.
func (a *Analyzer) CostByCategory() map[string]float64 {
	return a.groupMonthlyCost(func(s *domain.Subscription) string { return s.Category })
}

// CostByBillingCycle breaks monthly cost down by billing-cycle label.
func (a *Analyzer) CostByBillingCycle() map[string]float64 {
	return a.groupMonthlyCost(func(s *domain.Subscription) string { return s.BillingCycleLabel() })
}

func (a *Analyzer) groupMonthlyCost(key func(*domain.Subscription) string) map[string]float64 {
	annual := map[string]float64{}
	for _, sub := range a.active() {
		annual[key(sub)] += sub.AnnualCost()
	}
	out := make(map[string]float64, len(annual))
	for k, v := range annual {
		out[k] = round2(v / 12)
	}
	return out
}

// UpcomingPayment is one payment due inside the lookahead window.
type UpcomingPayment struct {
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	BillingDate string  `json:"billing_date"`
	DaysUntil   int     `json:"days_until"`
	Category    string  `json:"category"`
}

// UpcomingPayments lists active subscriptions billing within the next
// `days` days, sorted by billing date ascending.
func (a *Analyzer) UpcomingPayments(days int) []UpcomingPayment {
	cutoff := a.now.AddDate(0, 0, days)

	type due struct {
		payment UpcomingPayment
		billing time.Time
	}
	var dues []due
	for _, sub := range a.active() {
		billing := sub.NextBillingDate(a.now)
		if billing.After(a.now) && !billing.After(cutoff) {
			dues = append(dues, due{
				payment: UpcomingPayment{
					Name:        sub.Name,
					Cost:        sub.Cost,
					BillingDate: billing.Format("2006-01-02"),
					DaysUntil:   int(billing.Sub(a.now).Hours() / 24),
					Category:    sub.Category,
				},
				billing: billing,
			})
		}
	}

	sort.SliceStable(dues, func(i, j int) bool { return dues[i].billing.Before(dues[j].billing) })

	out := make([]UpcomingPayment, len(dues))
	for i, d := range dues {
		out[i] = d.payment
	}
	return out
}

// NamedCost pairs a subscription name with its raw cost.
type NamedCost struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// CategoryCost pairs a category with its monthly cost.
type CategoryCost struct {
	Name        string  `json:"name"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Statistics bundles the descriptive metrics over one subscription set.
// The per-subscription fields are nil when no subscription is active.
type Statistics struct {
	TotalSubscriptions      int           `json:"total_subscriptions"`
	ActiveSubscriptions     int           `json:"active_subscriptions"`
	InactiveSubscriptions   int           `json:"inactive_subscriptions"`
	TotalMonthlyCost        float64       `json:"total_monthly_cost"`
	TotalAnnualCost         float64       `json:"total_annual_cost"`
	AverageSubscriptionCost float64       `json:"average_subscription_cost"`
	MedianSubscriptionCost  float64       `json:"median_subscription_cost"`
	StdSubscriptionCost     float64       `json:"std_subscription_cost"`
	MostExpensiveCategory   *CategoryCost `json:"most_expensive_category,omitempty"`
	CheapestSubscription    *NamedCost    `json:"cheapest_subscription,omitempty"`
	MostExpensiveSub        *NamedCost    `json:"most_expensive_subscription,omitempty"`
}

// Statistics computes descriptive statistics over the subscription set.
func (a *Analyzer) Statistics() Statistics {
	active := a.active()

	stats := Statistics{
		TotalSubscriptions:    len(a.subs),
		ActiveSubscriptions:   len(active),
		InactiveSubscriptions: len(a.subs) - len(active),
		TotalMonthlyCost:      a.TotalMonthlyCost(),
		TotalAnnualCost:       a.TotalAnnualCost(),
	}
	if len(active) == 0 {
		return stats
	}

	costs := make([]float64, len(active))
	for i, sub := range active {
		costs[i] = sub.Cost
	}
	mean := meanOf(costs)
	stats.AverageSubscriptionCost = round2(mean)
	stats.MedianSubscriptionCost = round2(medianOf(costs))
	stats.StdSubscriptionCost = round2(populationStdDev(costs, mean))

	if top, ok := a.mostExpensiveCategory(); ok {
		stats.MostExpensiveCategory = &top
	}

	cheapest, expensive := active[0], active[0]
	for _, sub := range active[1:] {
		// Strict comparisons keep the first occurrence on ties.
		if sub.Cost < cheapest.Cost {
			cheapest = sub
		}
		if sub.Cost > expensive.Cost {
			expensive = sub
		}
	}
	stats.CheapestSubscription = &NamedCost{Name: cheapest.Name, Cost: cheapest.Cost}
	stats.MostExpensiveSub = &NamedCost{Name: expensive.Name, Cost: expensive.Cost}

	return stats
}

func (a *Analyzer) mostExpensiveCategory() (CategoryCost, bool) {
	byCategory := a.CostByCategory()
	if len(byCategory) == 0 {
		return CategoryCost{}, false
	}
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	top := names[0]
	for _, name := range names[1:] {
		if byCategory[name] > byCategory[top] {
			top = name
		}
	}
	return CategoryCost{Name: top, MonthlyCost: byCategory[top]}, true
}

// CostAnomaly is an active subscription whose cost sits unusually far
// above the mean.
type CostAnomaly struct {
	Name                string  `json:"name"`
	Cost                float64 `json:"cost"`
	Category            string  `json:"category"`
	ZScore              float64 `json:"z_score"`
	DeviationPercentage float64 `json:"deviation_percentage"`
}

// DetectCostAnomalies flags active subscriptions whose cost exceeds
// mean + threshold*stddev. Fewer than the configured minimum of active
// subscriptions, or zero variance, yields an empty result.
func (a *Analyzer) DetectCostAnomalies(threshold float64) []CostAnomaly {
	active := a.active()
	if len(active) < a.cfg.AnomalyMinDataPoints {
		return []CostAnomaly{}
	}

	costs := make([]float64, len(active))
	for i, sub := range active {
		costs[i] = sub.Cost
	}
	mean := meanOf(costs)
	std := populationStdDev(costs, mean)
	if std == 0 {
		return []CostAnomaly{}
	}

	upperBound := mean + threshold*std
	anomalies := []CostAnomaly{}
	for _, sub := range active {
		if sub.Cost > upperBound {
			deviation := sub.Cost - mean
			anomalies = append(anomalies, CostAnomaly{
				Name:                sub.Name,
				Cost:                sub.Cost,
				Category:            sub.Category,
				ZScore:              round2(deviation / std),
				DeviationPercentage: round1(deviation / mean * 100),
			})
		}
	}
	return anomalies
}

// CategoryDistribution counts active subscriptions per category.
func (a *Analyzer) CategoryDistribution() map[string]int {
	out := map[string]int{}
	for _, sub := range a.active() {
		out[sub.Category]++
	}
	return out
}

// SavingsOpportunity is one heuristic suggestion for reducing spend.
type SavingsOpportunity struct {
	Type                    string  `json:"type"`
	Subscription            string  `json:"subscription,omitempty"`
	Category                string  `json:"category,omitempty"`
	Count                   int     `json:"count,omitempty"`
	CurrentMonthly          float64 `json:"current_monthly,omitempty"`
	TotalMonthlyCost        float64 `json:"total_monthly_cost,omitempty"`
	Suggestion              string  `json:"suggestion,omitempty"`
	PotentialMonthlySavings float64 `json:"potential_monthly_savings"`
	AnnualSavings           float64 `json:"annual_savings,omitempty"`
}

// SavingsReport bundles all opportunities with their totals.
type SavingsReport struct {
	TotalPotentialMonthlySavings float64              `json:"total_potential_monthly_savings"`
	TotalPotentialAnnualSavings  float64              `json:"total_potential_annual_savings"`
	Opportunities                []SavingsOpportunity `json:"opportunities"`
}

// PotentialSavings runs the three independent savings heuristics and
// returns their union: switch-to-annual, duplicate-category
// consolidation, and high-cost tier downgrade, in that order.
func (a *Analyzer) PotentialSavings() SavingsReport {
	opportunities := []SavingsOpportunity{}
	opportunities = append(opportunities, a.annualBillingSavings()...)
	opportunities = append(opportunities, a.duplicateCategorySavings()...)
	opportunities = append(opportunities, a.highCostSavings()...)

	var totalMonthly float64
	for _, opp := range opportunities {
		totalMonthly += opp.PotentialMonthlySavings
	}

	return SavingsReport{
		TotalPotentialMonthlySavings: round2(totalMonthly),
		TotalPotentialAnnualSavings:  round2(totalMonthly * 12),
		Opportunities:                opportunities,
	}
}

func (a *Analyzer) annualBillingSavings() []SavingsOpportunity {
	var opportunities []SavingsOpportunity
	for _, sub := range a.active() {
		if sub.Cycle != domain.CycleMonthly {
			continue
		}
		currentAnnual := sub.Cost * 12
		discountedAnnual := currentAnnual * (1 - a.cfg.AnnualDiscountRate)
		monthlySavings := (currentAnnual - discountedAnnual) / 12
		if monthlySavings < a.cfg.MinimumSavingsSuggestion {
			continue
		}
		opportunities = append(opportunities, SavingsOpportunity{
			Type:                    "switch_to_annual",
			Subscription:            sub.Name,
			CurrentMonthly:          sub.Cost,
			Suggestion:              fmt.Sprintf("Switch %s to annual billing to save ~$%.2f/mo.", sub.Name, monthlySavings),
			PotentialMonthlySavings: round2(monthlySavings),
			AnnualSavings:           round2(monthlySavings * 12),
		})
	}
	return opportunities
}

func (a *Analyzer) duplicateCategorySavings() []SavingsOpportunity {
	counts := map[string]int{}
	costs := map[string]float64{}
	for _, sub := range a.active() {
		counts[sub.Category]++
		costs[sub.Category] += sub.Cost
	}

	// Deterministic order: highest count first, then name.
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	var opportunities []SavingsOpportunity
	for _, name := range names {
		if counts[name] < 2 || name == domain.CategoryOther {
			continue
		}
		estimated := costs[name] * a.cfg.DuplicateCategorySavingsRate
		opportunities = append(opportunities, SavingsOpportunity{
			Type:                    "duplicate_category",
			Category:                name,
			Count:                   counts[name],
			TotalMonthlyCost:        round2(costs[name]),
			Suggestion:              fmt.Sprintf("You have %d %s subscriptions. Consolidating could save ~$%.2f.", counts[name], name, estimated),
			PotentialMonthlySavings: round2(estimated),
		})
	}
	return opportunities
}

func (a *Analyzer) highCostSavings() []SavingsOpportunity {
	var opportunities []SavingsOpportunity
	for _, sub := range a.active() {
		if sub.Cost <= a.cfg.HighCostThreshold {
			continue
		}
		savings := sub.Cost * a.cfg.HighCostSavingsRate
		opportunities = append(opportunities, SavingsOpportunity{
			Type:                    "high_cost",
			Subscription:            sub.Name,
			CurrentMonthly:          sub.Cost,
			Suggestion:              fmt.Sprintf("%s is expensive ($%.2f). Check for lower tier plans.", sub.Name, sub.Cost),
			PotentialMonthlySavings: round2(savings),
		})
	}
	return opportunities
}

// Export bundles every analytics result into one serializable structure.
type Export struct {
	Statistics           Statistics           `json:"statistics"`
	CostByCategory       map[string]float64   `json:"cost_by_category"`
	CostByBillingCycle   map[string]float64   `json:"cost_by_billing_cycle"`
	UpcomingPayments     []UpcomingPayment    `json:"upcoming_payments"`
	CostAnomalies        []CostAnomaly        `json:"cost_anomalies"`
	CategoryDistribution map[string]int       `json:"category_distribution"`
	PotentialSavings     SavingsReport        `json:"potential_savings"`
}

// Export runs the full analysis. Non-finite floats cannot escape: every
// monetary output passes through round2/round1, which coerce NaN and
// Infinity to 0 before serialization.
func (a *Analyzer) Export() Export {
	return Export{
		Statistics:           a.Statistics(),
		CostByCategory:       a.CostByCategory(),
		CostByBillingCycle:   a.CostByBillingCycle(),
		UpcomingPayments:     a.UpcomingPayments(a.cfg.ExtendedUpcomingDays),
		CostAnomalies:        a.DetectCostAnomalies(a.cfg.AnomalyThreshold),
		CategoryDistribution: a.CategoryDistribution(),
		PotentialSavings:     a.PotentialSavings(),
	}
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func populationStdDev(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// round2 rounds to cents and scrubs non-finite values so degenerate
// divisions never reach the serialization boundary.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
