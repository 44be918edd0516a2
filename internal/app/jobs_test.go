package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type digestStoreStub struct {
	userIDs     []string
	userIDsErr  error
	subsByUser  map[string][]map[string]any
	listedUsers []string
}

func (s *digestStoreStub) ListUserIDs(ctx context.Context) ([]string, error) {
	if s.userIDsErr != nil {
		return nil, s.userIDsErr
	}
	return s.userIDs, nil
}

func (s *digestStoreStub) ListUserSubscriptions(ctx context.Context, userID string) ([]map[string]any, error) {
	s.listedUsers = append(s.listedUsers, userID)
	return s.subsByUser[userID], nil
}

func newTestJobs(store DigestStore) *Jobs {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jobs := NewJobs(store, logger, testConfig())
	jobs.now = func() time.Time { return alertNow }
	return jobs
}

func TestRunPaymentReminderDigestVisitsEveryUser(t *testing.T) {
	store := &digestStoreStub{
		userIDs: []string{"user_1", "user_2"},
		subsByUser: map[string][]map[string]any{
			"user_1": {
				{
					"subscription_id": "sub_1",
					"user_id":         "user_1",
					"name":            "Netflix",
					"cost":            15.99,
					"billing_cycle":   "monthly",
					"start_date":      alertNow.AddDate(0, -3, 2).Format(time.RFC3339),
				},
			},
		},
	}
	jobs := newTestJobs(store)

	jobs.RunPaymentReminderDigest()

	if len(store.listedUsers) != 2 {
		t.Fatalf("expected subscriptions fetched for 2 users, got %v", store.listedUsers)
	}
}

func TestRunPaymentReminderDigestStopsOnUserListError(t *testing.T) {
	store := &digestStoreStub{userIDsErr: errors.New("db unavailable")}
	jobs := newTestJobs(store)

	jobs.RunPaymentReminderDigest()

	if len(store.listedUsers) != 0 {
		t.Errorf("expected no subscription fetches after user list failure, got %v", store.listedUsers)
	}
}

func TestRunPaymentReminderDigestSkipsMalformedRecords(t *testing.T) {
	store := &digestStoreStub{
		userIDs: []string{"user_1"},
		subsByUser: map[string][]map[string]any{
			"user_1": {
				{"subscription_id": "broken", "user_id": "user_1", "name": "Broken"},
			},
		},
	}
	jobs := newTestJobs(store)

	// Must not panic on the bad record.
	jobs.RunPaymentReminderDigest()

	if len(store.listedUsers) != 1 {
		t.Errorf("expected one fetch, got %v", store.listedUsers)
	}
}
