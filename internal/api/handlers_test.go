package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/subtrack/subscription-service/internal/analytics"
	"github.com/subtrack/subscription-service/internal/app"
	"github.com/subtrack/subscription-service/internal/config"
	"github.com/subtrack/subscription-service/internal/store"
)

func testConfig() config.Config {
	d := analytics.DefaultConfig()
	return config.Config{
		ServerPort:                   "8080",
		CostAnomalyThreshold:         d.AnomalyThreshold,
		AnomalyMinDataPoints:         d.AnomalyMinDataPoints,
		AnnualDiscountRate:           d.AnnualDiscountRate,
		DuplicateCategorySavingsRate: d.DuplicateCategorySavingsRate,
		HighCostThreshold:            d.HighCostThreshold,
		HighCostSavingsRate:          d.HighCostSavingsRate,
		MinimumSavingsSuggestion:     d.MinimumSavingsSuggestion,
		UnusedSubDays:                d.UnusedSubscriptionDays,
		UnusedSubCostThreshold:       d.UnusedSubscriptionCost,
		DefaultUpcomingDays:          d.DefaultUpcomingDays,
		ExtendedUpcomingDays:         d.ExtendedUpcomingDays,
		PredictionMonths:             d.PredictionMonths,
		PredictionSeed:               d.PredictionSeed,
		PredictionTrendSlope:         d.PredictionTrendSlope,
		SeasonalityAmplitudeRatio:    d.SeasonalityAmplitudeRatio,
		NoiseRatio:                   d.NoiseRatio,
	}
}

func newTestRouter() *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewService(store.NewMemory(), nil, testConfig(), logger)
	return NewRouter(NewHandler(service, logger))
}

func doJSON(t *testing.T, router http.Handler, method, path, userID string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Code < 300 && rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, decoded
}

func TestRequiresUserIdentity(t *testing.T) {
	router := newTestRouter()

	rr, _ := doJSON(t, router, http.MethodGet, "/api/subscriptions/", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestCreateAndListSubscriptions(t *testing.T) {
	router := newTestRouter()

	rr, created := doJSON(t, router, http.MethodPost, "/api/subscriptions/", "user_1", map[string]any{
		"name":          "Netflix Premium",
		"cost":          15.99,
		"billing_cycle": "monthly",
		"start_date":    "2026-01-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	sub, ok := created["subscription"].(map[string]any)
	if !ok {
		t.Fatalf("missing subscription in response: %v", created)
	}
	if sub["category"] != "Streaming" {
		t.Errorf("category = %v, want auto-assigned Streaming", sub["category"])
	}

	rr, listed := doJSON(t, router, http.MethodGet, "/api/subscriptions/", "user_1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	if listed["count"] != float64(1) {
		t.Errorf("count = %v, want 1", listed["count"])
	}

	// Another user sees an empty list.
	_, other := doJSON(t, router, http.MethodGet, "/api/subscriptions/", "user_2", nil)
	if other["count"] != float64(0) {
		t.Errorf("other user's count = %v, want 0", other["count"])
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"cost": 10, "billing_cycle": "monthly"}},
		{"zero cost", map[string]any{"name": "X", "cost": 0, "billing_cycle": "monthly"}},
		{"unknown cycle", map[string]any{"name": "X", "cost": 10, "billing_cycle": "weekly"}},
		{"bad start date", map[string]any{"name": "X", "cost": 10, "billing_cycle": "monthly", "start_date": "soon"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, _ := doJSON(t, router, http.MethodPost, "/api/subscriptions/", "user_1", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdateSubscriptionOwnership(t *testing.T) {
	router := newTestRouter()

	_, created := doJSON(t, router, http.MethodPost, "/api/subscriptions/", "owner", map[string]any{
		"name":          "Spotify",
		"cost":          9.99,
		"billing_cycle": "monthly",
	})
	sub := created["subscription"].(map[string]any)
	id := sub["subscription_id"].(string)

	rr, _ := doJSON(t, router, http.MethodPut, "/api/subscriptions/"+id, "intruder", map[string]any{"cost": 1.0})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign update status = %d, want 404", rr.Code)
	}

	rr, updated := doJSON(t, router, http.MethodPut, "/api/subscriptions/"+id, "owner", map[string]any{"cost": 12.99})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	if updated["subscription"].(map[string]any)["cost"] != 12.99 {
		t.Errorf("cost = %v, want 12.99", updated["subscription"].(map[string]any)["cost"])
	}

	rr, _ = doJSON(t, router, http.MethodDelete, "/api/subscriptions/"+id, "owner", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
}

func TestCategoriesArePublic(t *testing.T) {
	router := newTestRouter()

	rr, body := doJSON(t, router, http.MethodGet, "/api/categories", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	cats, ok := body["categories"].([]any)
	if !ok || len(cats) == 0 {
		t.Fatalf("expected category list, got %v", body)
	}
}

func TestAnalyticsSummaryEndpoint(t *testing.T) {
	router := newTestRouter()

	doJSON(t, router, http.MethodPost, "/api/subscriptions/", "user_1", map[string]any{
		"name":          "Netflix",
		"cost":          15.99,
		"billing_cycle": "monthly",
	})

	rr, body := doJSON(t, router, http.MethodGet, "/api/analytics/summary", "user_1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	analyticsBody, ok := body["analytics"].(map[string]any)
	if !ok {
		t.Fatalf("missing analytics in response: %v", body)
	}
	stats := analyticsBody["statistics"].(map[string]any)
	if stats["active_subscriptions"] != float64(1) {
		t.Errorf("active_subscriptions = %v, want 1", stats["active_subscriptions"])
	}
}

func TestPredictionsMonthsValidation(t *testing.T) {
	router := newTestRouter()

	rr, _ := doJSON(t, router, http.MethodGet, "/api/analytics/predictions?months=99", "user_1", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	rr, body := doJSON(t, router, http.MethodGet, "/api/analytics/predictions?months=3", "user_1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if _, ok := body["predictions"]; !ok {
		t.Fatalf("missing predictions in response: %v", body)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	router := newTestRouter()

	doJSON(t, router, http.MethodPost, "/api/subscriptions/", "user_1", map[string]any{
		"name":          "Enterprise Suite",
		"cost":          99,
		"billing_cycle": "monthly",
	})

	rr, body := doJSON(t, router, http.MethodGet, "/api/alerts", "user_1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	alerts, ok := body["alerts"].([]any)
	if !ok {
		t.Fatalf("missing alerts in response: %v", body)
	}
	if len(alerts) == 0 {
		t.Error("expected a cost spike alert for the expensive subscription")
	}
}

func TestAIInsightsUnavailableWithoutAdvisor(t *testing.T) {
	router := newTestRouter()

	rr, _ := doJSON(t, router, http.MethodGet, "/api/ai/insights", "user_1", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}
