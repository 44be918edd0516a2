/**
 * @description
 * This file contains the HTTP handler functions for the subscription-service.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * business logic in the service layer, and writing the HTTP response.
 */
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/subtrack/subscription-service/internal/app"
	"github.com/subtrack/subscription-service/internal/domain"
)

const defaultPredictionMonths = 6

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service  *app.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type createSubscriptionRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Cost         float64 `json:"cost" validate:"required,gt=0,lte=10000"`
	BillingCycle string  `json:"billing_cycle" validate:"required"`
	CustomDays   int     `json:"custom_days" validate:"omitempty,gt=0"`
	StartDate    string  `json:"start_date"`
	Category     string  `json:"category"`
	Notes        string  `json:"notes" validate:"max=500"`
}

// handleCreateSubscription handles the request to create a subscription.
func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	startDate, err := parseStartDate(req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start_date", http.StatusBadRequest)
		return
	}

	sub, err := h.service.CreateSubscription(r.Context(), userID, app.CreateSubscriptionInput{
		Name:         req.Name,
		Cost:         req.Cost,
		BillingCycle: req.BillingCycle,
		CustomDays:   req.CustomDays,
		StartDate:    startDate,
		Category:     req.Category,
		Notes:        req.Notes,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"subscription": sub.Record(),
	})
}

// handleListSubscriptions handles the request to list a user's subscriptions.
func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	subs, err := h.service.ListSubscriptions(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	records := make([]map[string]any, 0, len(subs))
	for _, sub := range subs {
		records = append(records, sub.Record())
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"subscriptions": records,
		"count":         len(records),
	})
}

type updateSubscriptionRequest struct {
	Name     *string  `json:"name" validate:"omitempty,max=100"`
	Cost     *float64 `json:"cost" validate:"omitempty,gt=0,lte=10000"`
	Category *string  `json:"category"`
	IsActive *bool    `json:"is_active"`
	Notes    *string  `json:"notes" validate:"omitempty,max=500"`
}

// handleUpdateSubscription handles partial updates to a subscription.
func (h *Handler) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.service.UpdateSubscription(r.Context(), userID, chi.URLParam(r, "id"), app.UpdateSubscriptionInput{
		Name:     req.Name,
		Cost:     req.Cost,
		Category: req.Category,
		IsActive: req.IsActive,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"subscription": sub.Record(),
	})
}

// handleDeleteSubscription handles the request to delete a subscription.
func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteSubscription(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleListCategories returns the fixed category catalog.
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": domain.AllCategories(),
	})
}

// handleAnalyticsSummary returns the full analytics export for the user.
func (h *Handler) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	export, err := h.service.AnalyticsSummary(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"analytics": export,
	})
}

// handlePredictions returns the cost forecast and efficiency views.
func (h *Handler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	months := defaultPredictionMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24 {
			http.Error(w, "Invalid months parameter", http.StatusBadRequest)
			return
		}
		months = parsed
	}

	report, err := h.service.Predictions(r.Context(), userID, months)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"predictions": report,
	})
}

// handleAlerts returns the derived alert list for the user.
func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	alerts, err := h.service.Alerts(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	records := make([]map[string]any, 0, len(alerts))
	for _, alert := range alerts {
		records = append(records, alert.Record())
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alerts":  records,
		"count":   len(records),
	})
}

// handleAIInsights runs the AI spending analysis over the user's analytics.
func (h *Handler) handleAIInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	analysis, err := h.service.AIInsights(r.Context(), userID)
	if err != nil {
		if errors.Is(err, app.ErrAdvisorDisabled) {
			http.Error(w, "AI advisor is not configured", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("ai analysis failed", "user_id", userID, "error", err)
		http.Error(w, "AI analysis failed", http.StatusBadGateway)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"insights": analysis,
	})
}

func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, app.ErrNotFound):
		http.Error(w, "Subscription not found", http.StatusNotFound)
	default:
		h.logger.Error("request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func parseStartDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
