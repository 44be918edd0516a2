/**
 * @description
 * Decorative spending-trend simulation, cost-tier grouping, and
 * cost-efficiency metrics. The forecast is a seeded synthetic curve
 * around the current monthly spend, not a statistical model.
 */
package analytics

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
)

const (
	trendUpThreshold   = 1.05
	trendDownThreshold = 0.95
)

// Predictor produces forward-looking cost views over one subscription set.
type Predictor struct {
	subs []*domain.Subscription
	now  time.Time
	cfg  Config
}

// NewPredictor builds a predictor for the given subscription snapshot.
func NewPredictor(subs []*domain.Subscription, now time.Time, cfg Config) *Predictor {
	return &Predictor{subs: subs, now: now, cfg: cfg}
}

func (p *Predictor) active() []*domain.Subscription {
	out := make([]*domain.Subscription, 0, len(p.subs))
	for _, sub := range p.subs {
		if sub.IsActive {
			out = append(out, sub)
		}
	}
	return out
}

// ForecastPoint is one simulated month of spending.
type ForecastPoint struct {
	Month         string  `json:"month"`
	Date          string  `json:"date"`
	PredictedCost float64 `json:"predicted_cost"`
	IsPrediction  bool    `json:"is_prediction"`
	Confidence    string  `json:"confidence"`
}

// Forecast is the full simulated cost curve plus summary figures.
type Forecast struct {
	Predictions        []ForecastPoint `json:"predictions"`
	Trend              string          `json:"trend"`
	CurrentMonthlyCost float64         `json:"current_monthly_cost"`
	FinalPredictedCost float64         `json:"final_predicted_cost"`
	TotalPredictedCost float64         `json:"total_predicted_cost"`
}

// PredictFutureCosts simulates monthly spending for a historical window
// plus monthsAhead future months. The curve is base cost plus a gentle
// upward trend, sinusoidal seasonality, and seeded noise, shifted so the
// current month equals the real monthly spend. Deterministic for a fixed
// seed and input.
func (p *Predictor) PredictFutureCosts(monthsAhead int) Forecast {
	active := p.active()
	if len(active) == 0 {
		return Forecast{Predictions: []ForecastPoint{}, Trend: "stable"}
	}
	if monthsAhead <= 0 {
		monthsAhead = p.cfg.PredictionMonths
	}

	var base float64
	for _, sub := range active {
		base += sub.AnnualCost() / 12
	}

	historical := p.cfg.PredictionMonths
	total := historical + monthsAhead

	rng := rand.New(rand.NewSource(p.cfg.PredictionSeed))
	amplitude := base * p.cfg.SeasonalityAmplitudeRatio

	values := make([]float64, total)
	for i := range values {
		var t float64
		if total > 1 {
			t = float64(i) * float64(total) / float64(total-1)
		}
		trend := base * p.cfg.PredictionTrendSlope * float64(i) / float64(max(total-1, 1))
		seasonality := amplitude * math.Sin(t*0.8)
		noise := rng.NormFloat64() * base * p.cfg.NoiseRatio
		values[i] = base + trend + seasonality + noise
	}

	// Pin the first future month to the real current spend.
	if total > historical {
		correction := base - values[historical]
		for i := range values {
			values[i] += correction
		}
	}

	first := values[0]
	if total > historical {
		first = values[historical]
	}
	last := values[total-1]
	trendDirection := "stable"
	switch {
	case last > first*trendUpThreshold:
		trendDirection = "increasing"
	case last < first*trendDownThreshold:
		trendDirection = "decreasing"
	}

	start := p.now.AddDate(0, 0, -30*historical)
	points := make([]ForecastPoint, total)
	var futureTotal float64
	for i := range points {
		date := start.AddDate(0, 0, 30*i)
		cost := round2(math.Max(0, values[i]))
		future := i >= historical
		confidence := "medium"
		if i < historical+3 {
			confidence = "high"
		}
		points[i] = ForecastPoint{
			Month:         date.Format("2006-01"),
			Date:          date.Format("2006-01-02"),
			PredictedCost: cost,
			IsPrediction:  future,
			Confidence:    confidence,
		}
		if future {
			futureTotal += cost
		}
	}

	return Forecast{
		Predictions:        points,
		Trend:              trendDirection,
		CurrentMonthlyCost: round2(base),
		FinalPredictedCost: points[total-1].PredictedCost,
		TotalPredictedCost: round2(futureTotal),
	}
}

// CostTier groups subscriptions of similar spend.
type CostTier struct {
	Label            string   `json:"label"`
	Size             int      `json:"size"`
	AvgCost          float64  `json:"avg_cost"`
	TotalMonthlyCost float64  `json:"total_monthly_cost"`
	Subscriptions    []string `json:"subscriptions"`
}

// TierReport is the cost-tier view of the subscription set.
type TierReport struct {
	Tiers   []CostTier `json:"tiers"`
	Message string     `json:"message,omitempty"`
}

// CostTiers buckets active subscriptions into budget (<$10), standard
// (<$30) and premium tiers, lowest average cost first.
func (p *Predictor) CostTiers() TierReport {
	active := p.active()
	if len(active) < 3 {
		return TierReport{Tiers: []CostTier{}, Message: "not enough subscriptions to group"}
	}

	buckets := map[string][]*domain.Subscription{}
	for _, sub := range active {
		buckets[tierLabel(sub.Cost)] = append(buckets[tierLabel(sub.Cost)], sub)
	}

	var tiers []CostTier
	for _, label := range []string{"Budget Subscriptions", "Standard Subscriptions", "Premium Subscriptions"} {
		subs := buckets[label]
		if len(subs) == 0 {
			continue
		}
		var costSum, annualSum float64
		names := make([]string, len(subs))
		for i, sub := range subs {
			costSum += sub.Cost
			annualSum += sub.AnnualCost()
			names[i] = sub.Name
		}
		tiers = append(tiers, CostTier{
			Label:            label,
			Size:             len(subs),
			AvgCost:          round2(costSum / float64(len(subs))),
			TotalMonthlyCost: round2(annualSum / 12),
			Subscriptions:    names,
		})
	}

	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].AvgCost < tiers[j].AvgCost })
	return TierReport{Tiers: tiers}
}

func tierLabel(cost float64) string {
	switch {
	case cost < 10:
		return "Budget Subscriptions"
	case cost < 30:
		return "Standard Subscriptions"
	default:
		return "Premium Subscriptions"
	}
}

// Efficiency summarizes how spend distributes across categories.
type Efficiency struct {
	TotalMonthlyCost        float64            `json:"total_monthly_cost"`
	CostPerSubscription     float64            `json:"cost_per_subscription"`
	TotalSubscriptions      int                `json:"total_subscriptions"`
	CategoryEfficiency      map[string]float64 `json:"category_efficiency"`
	MostEfficientCategory   string             `json:"most_efficient_category,omitempty"`
	LeastEfficientCategory  string             `json:"least_efficient_category,omitempty"`
}

// CostEfficiency computes monthly cost per subscription overall and per
// category. Ties resolve alphabetically.
func (p *Predictor) CostEfficiency() Efficiency {
	active := p.active()
	if len(active) == 0 {
		return Efficiency{CategoryEfficiency: map[string]float64{}}
	}

	var totalAnnual float64
	counts := map[string]int{}
	monthlyByCat := map[string]float64{}
	for _, sub := range active {
		totalAnnual += sub.AnnualCost()
		counts[sub.Category]++
		monthlyByCat[sub.Category] += sub.AnnualCost() / 12
	}

	efficiency := make(map[string]float64, len(counts))
	names := make([]string, 0, len(counts))
	for cat := range counts {
		efficiency[cat] = round2(monthlyByCat[cat] / float64(counts[cat]))
		names = append(names, cat)
	}
	sort.Strings(names)

	most, least := names[0], names[0]
	for _, cat := range names[1:] {
		if efficiency[cat] < efficiency[most] {
			most = cat
		}
		if efficiency[cat] > efficiency[least] {
			least = cat
		}
	}

	totalMonthly := totalAnnual / 12
	return Efficiency{
		TotalMonthlyCost:       round2(totalMonthly),
		CostPerSubscription:    round2(totalMonthly / float64(len(active))),
		TotalSubscriptions:     len(active),
		CategoryEfficiency:     efficiency,
		MostEfficientCategory:  most,
		LeastEfficientCategory: least,
	}
}
