/**
 * @description
 * This file contains the core business logic for the subscription-service.
 * The Service layer reconstructs domain entities from stored records,
 * applies business rules, and drives the analytics and alert engines.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/subtrack/subscription-service/internal/analytics"
	"github.com/subtrack/subscription-service/internal/config"
	"github.com/subtrack/subscription-service/internal/domain"
	"github.com/subtrack/subscription-service/internal/store"
	"github.com/subtrack/subscription-service/pkg/advisor"
)

// ErrNotFound is surfaced when a subscription does not exist or belongs
// to another user.
var ErrNotFound = errors.New("subscription not found")

// ErrAdvisorDisabled is returned when AI insights are requested but no
// advisor is configured.
var ErrAdvisorDisabled = errors.New("ai advisor is not configured")

// Repository defines the store operations the service needs.
type Repository interface {
	CreateSubscription(ctx context.Context, rec map[string]any) error
	GetSubscription(ctx context.Context, id string) (map[string]any, error)
	ListUserSubscriptions(ctx context.Context, userID string) ([]map[string]any, error)
	UpdateSubscription(ctx context.Context, id string, rec map[string]any) error
	DeleteSubscription(ctx context.Context, id string) error
	GetUser(ctx context.Context, userID string) (map[string]any, error)
}

// SpendingAdvisor produces AI-backed savings advice for a portfolio.
type SpendingAdvisor interface {
	AnalyzeSpending(ctx context.Context, subs []*domain.Subscription, totalMonthlyCost float64) (advisor.Analysis, error)
}

// Service provides the business logic for subscription management.
type Service struct {
	repo    Repository
	advisor SpendingAdvisor
	cfg     config.Config
	logger  *slog.Logger
}

// NewService creates a new subscription service. The advisor may be nil
// when AI features are disabled.
func NewService(repo Repository, adv SpendingAdvisor, cfg config.Config, logger *slog.Logger) *Service {
	return &Service{repo: repo, advisor: adv, cfg: cfg, logger: logger}
}

// CreateSubscriptionInput is the validated request payload for creation.
type CreateSubscriptionInput struct {
	Name         string
	Cost         float64
	BillingCycle string
	CustomDays   int
	StartDate    time.Time
	Category     string
	Notes        string
}

// CreateSubscription builds and persists a new subscription. When no
// category is supplied the name is auto-categorized.
func (s *Service) CreateSubscription(ctx context.Context, userID string, in CreateSubscriptionInput) (*domain.Subscription, error) {
	cycle, labelDays, err := domain.ParseBillingCycle(in.BillingCycle)
	if err != nil {
		return nil, fmt.Errorf("%w: billing_cycle must be monthly, annual or custom", domain.ErrInvalidInput)
	}
	customDays := in.CustomDays
	if customDays == 0 {
		customDays = labelDays
	}

	category := in.Category
	if category == "" {
		category = domain.AutoCategorize(in.Name)
	}

	sub, err := domain.NewSubscription(domain.NewSubscriptionParams{
		UserID:     userID,
		Name:       in.Name,
		Cost:       in.Cost,
		Cycle:      cycle,
		CustomDays: customDays,
		StartDate:  in.StartDate,
		Category:   category,
		Notes:      in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateSubscription(ctx, sub.Record()); err != nil {
		return nil, fmt.Errorf("persist subscription: %w", err)
	}

	s.logger.Info("created subscription", "subscription_id", sub.ID, "user_id", userID, "category", sub.Category)
	return sub, nil
}

// ListSubscriptions returns all of a user's subscriptions. Records that
// fail reconstruction are skipped so one bad row cannot hide the rest.
func (s *Service) ListSubscriptions(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	recs, err := s.repo.ListUserSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch subscriptions: %w", err)
	}

	subs := make([]*domain.Subscription, 0, len(recs))
	for _, rec := range recs {
		sub, err := domain.SubscriptionFromRecord(rec)
		if err != nil {
			s.logger.Warn("skipping malformed subscription record", "user_id", userID, "error", err)
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// UpdateSubscriptionInput carries partial updates; nil fields are untouched.
type UpdateSubscriptionInput struct {
	Name     *string
	Cost     *float64
	Category *string
	IsActive *bool
	Notes    *string
}

// UpdateSubscription applies field updates to a subscription the user owns.
func (s *Service) UpdateSubscription(ctx context.Context, userID, id string, in UpdateSubscriptionInput) (*domain.Subscription, error) {
	sub, err := s.ownedSubscription(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Cost != nil {
		if err := sub.SetCost(*in.Cost); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		if err := sub.SetName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Category != nil {
		sub.SetCategory(*in.Category)
	}
	if in.IsActive != nil {
		sub.SetActive(*in.IsActive)
	}
	if in.Notes != nil {
		if err := sub.SetNotes(*in.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateSubscription(ctx, id, sub.Record()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("persist update: %w", err)
	}

	s.logger.Info("updated subscription", "subscription_id", id, "user_id", userID)
	return sub, nil
}

// DeleteSubscription removes a subscription the user owns.
func (s *Service) DeleteSubscription(ctx context.Context, userID, id string) error {
	if _, err := s.ownedSubscription(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteSubscription(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete subscription: %w", err)
	}
	s.logger.Info("deleted subscription", "subscription_id", id, "user_id", userID)
	return nil
}

func (s *Service) ownedSubscription(ctx context.Context, userID, id string) (*domain.Subscription, error) {
	rec, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch subscription: %w", err)
	}
	sub, err := domain.SubscriptionFromRecord(rec)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotFound
	}
	return sub, nil
}

// AnalyticsSummary runs the full analytics export for a user.
func (s *Service) AnalyticsSummary(ctx context.Context, userID string) (analytics.Export, error) {
	subs, err := s.ListSubscriptions(ctx, userID)
	if err != nil {
		return analytics.Export{}, err
	}
	analyzer := analytics.NewAnalyzer(subs, time.Now(), s.cfg.Analytics())
	return analyzer.Export(), nil
}

// PredictionReport bundles the predictor's outputs for transport.
type PredictionReport struct {
	Forecast   analytics.Forecast   `json:"forecast"`
	Tiers      analytics.TierReport `json:"tiers"`
	Efficiency analytics.Efficiency `json:"efficiency"`
}

// Predictions runs the trend simulation and efficiency views for a user.
func (s *Service) Predictions(ctx context.Context, userID string, monthsAhead int) (PredictionReport, error) {
	subs, err := s.ListSubscriptions(ctx, userID)
	if err != nil {
		return PredictionReport{}, err
	}
	predictor := analytics.NewPredictor(subs, time.Now(), s.cfg.Analytics())
	return PredictionReport{
		Forecast:   predictor.PredictFutureCosts(monthsAhead),
		Tiers:      predictor.CostTiers(),
		Efficiency: predictor.CostEfficiency(),
	}, nil
}

// AIInsights runs the AI advisor over the user's portfolio. When the
// user has no subscriptions the advisor is skipped entirely.
func (s *Service) AIInsights(ctx context.Context, userID string) (advisor.Analysis, error) {
	if s.advisor == nil {
		return advisor.Analysis{}, ErrAdvisorDisabled
	}

	subs, err := s.ListSubscriptions(ctx, userID)
	if err != nil {
		return advisor.Analysis{}, err
	}
	if len(subs) == 0 {
		return advisor.Analysis{
			Summary:  "Add some subscriptions to get AI insights!",
			Insights: []string{"No subscriptions found to analyze."},
		}, nil
	}

	total := analytics.NewAnalyzer(subs, time.Now(), s.cfg.Analytics()).TotalMonthlyCost()
	return s.advisor.AnalyzeSpending(ctx, subs, total)
}

// Alerts generates the prioritized alert list for a user.
func (s *Service) Alerts(ctx context.Context, userID string) ([]*domain.Alert, error) {
	subs, err := s.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cfg := s.cfg.Analytics()
	savings := analytics.NewAnalyzer(subs, now, cfg).PotentialSavings()
	return BuildAlerts(userID, subs, savings, now, cfg), nil
}
