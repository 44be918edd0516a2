/**
 * @description
 * Alert domain model. Alerts are ephemeral: they are derived from the
 * current subscription set on every request and never persisted.
 */
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertType enumerates the fixed set of alert kinds.
type AlertType string

const (
	AlertUpcomingPayment    AlertType = "upcoming_payment"
	AlertUnusedSubscription AlertType = "unused_subscription"
	AlertCostSpike          AlertType = "cost_spike"
	AlertSavingsOpportunity AlertType = "savings_opportunity"
)

// AlertPriority is derived from the alert type, never set directly.
type AlertPriority string

const (
	PriorityHigh   AlertPriority = "high"
	PriorityMedium AlertPriority = "medium"
	PriorityLow    AlertPriority = "low"
)

type alertDisplay struct {
	Icon     string
	Color    string
	Priority AlertPriority
}

var alertTypes = map[AlertType]alertDisplay{
	AlertUpcomingPayment:    {Icon: "💳", Color: "#3b82f6", Priority: PriorityMedium},
	AlertUnusedSubscription: {Icon: "⚠️", Color: "#f59e0b", Priority: PriorityHigh},
	AlertCostSpike:          {Icon: "📈", Color: "#ef4444", Priority: PriorityHigh},
	AlertSavingsOpportunity: {Icon: "💰", Color: "#10b981", Priority: PriorityLow},
}

// Alert is a single derived notification for a user.
type Alert struct {
	ID        string
	UserID    string
	Type      AlertType
	Message   string
	Metadata  map[string]any
	IsRead    bool
	CreatedAt time.Time
}

// NewAlert builds an alert of a known type.
func NewAlert(userID string, alertType AlertType, message string, metadata map[string]any) (*Alert, error) {
	if _, ok := alertTypes[alertType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlertType, alertType)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      alertType,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}, nil
}

// Priority returns the fixed priority for the alert's type.
func (a *Alert) Priority() AlertPriority {
	return alertTypes[a.Type].Priority
}

// PriorityRank orders priorities high (0) to low (2) for sorting.
func (a *Alert) PriorityRank() int {
	switch a.Priority() {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Record converts the alert into a plain transport record.
func (a *Alert) Record() map[string]any {
	display := alertTypes[a.Type]
	return map[string]any{
		"alert_id":   a.ID,
		"user_id":    a.UserID,
		"type":       string(a.Type),
		"message":    a.Message,
		"metadata":   a.Metadata,
		"is_read":    a.IsRead,
		"created_at": a.CreatedAt.Format(time.RFC3339),
		"icon":       display.Icon,
		"color":      display.Color,
		"priority":   string(display.Priority),
	}
}
