/**
 * @description
 * Scheduled job implementations for the subscription-service.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/subtrack/subscription-service/internal/analytics"
	"github.com/subtrack/subscription-service/internal/config"
	"github.com/subtrack/subscription-service/internal/domain"
)

// DigestStore defines the store operations needed by the jobs.
type DigestStore interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	ListUserSubscriptions(ctx context.Context, userID string) ([]map[string]any, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	store  DigestStore
	logger *slog.Logger
	config config.Config
	now    func() time.Time
}

// NewJobs creates a new Jobs runner.
func NewJobs(store DigestStore, logger *slog.Logger, cfg config.Config) *Jobs {
	return &Jobs{
		store:  store,
		logger: logger,
		config: cfg,
		now:    time.Now,
	}
}

// RunPaymentReminderDigest scans every user's subscriptions and logs a
// digest of payments due within the default upcoming window.
func (j *Jobs) RunPaymentReminderDigest() {
	j.logger.Info("starting payment reminder digest job")
	ctx := context.Background()

	userIDs, err := j.store.ListUserIDs(ctx)
	if err != nil {
		j.logger.Error("failed to list users for digest", "error", err)
		return
	}

	if len(userIDs) == 0 {
		j.logger.Info("no users to process")
		return
	}

	cfg := j.config.Analytics()
	usersWithPayments := 0

	for _, userID := range userIDs {
		recs, err := j.store.ListUserSubscriptions(ctx, userID)
		if err != nil {
			j.logger.Error("failed to fetch subscriptions for digest", "user_id", userID, "error", err)
			continue
		}

		subs := make([]*domain.Subscription, 0, len(recs))
		for _, rec := range recs {
			sub, err := domain.SubscriptionFromRecord(rec)
			if err != nil {
				j.logger.Warn("skipping malformed subscription record", "user_id", userID, "error", err)
				continue
			}
			subs = append(subs, sub)
		}

		analyzer := analytics.NewAnalyzer(subs, j.now(), cfg)
		upcoming := analyzer.UpcomingPayments(cfg.DefaultUpcomingDays)
		if len(upcoming) == 0 {
			continue
		}

		usersWithPayments++
		for _, payment := range upcoming {
			j.logger.Info("payment due soon",
				"user_id", userID,
				"subscription", payment.Name,
				"cost", payment.Cost,
				"billing_date", payment.BillingDate,
				"days_until", payment.DaysUntil,
			)
		}
	}

	j.logger.Info("payment reminder digest job finished", "users_notified", usersWithPayments)
}
