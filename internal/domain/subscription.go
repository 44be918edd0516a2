/**
 * @description
 * This file defines the core domain model for the subscription-service:
 * the Subscription entity, its billing-cycle variants, and the record
 * (de)serialization boundary used by the storage layer.
 */
package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxCost is the ceiling for a single subscription's cost.
const MaxCost = 10000.0

// MaxNameLength and MaxNotesLength bound free-text fields.
const (
	MaxNameLength  = 100
	MaxNotesLength = 500
)

// BillingCycle is the recurrence pattern of a subscription's charge.
type BillingCycle int

const (
	CycleMonthly BillingCycle = iota
	CycleAnnual
	CycleCustom
)

// ParseBillingCycle maps a cycle label to its variant. Custom labels may
// carry a day count ("custom 30 days", "every 30 days"); the returned int
// is 0 when the label does not encode one.
func ParseBillingCycle(label string) (BillingCycle, int, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch normalized {
	case "monthly":
		return CycleMonthly, 0, nil
	case "annual":
		return CycleAnnual, 0, nil
	case "custom":
		return CycleCustom, 0, nil
	}

	fields := strings.Fields(normalized)
	if len(fields) == 3 && (fields[0] == "custom" || fields[0] == "every") && fields[2] == "days" {
		days, err := strconv.Atoi(fields[1])
		if err == nil && days > 0 {
			return CycleCustom, days, nil
		}
	}

	return CycleMonthly, 0, fmt.Errorf("%w: %q", ErrUnknownBillingCycle, label)
}

// Subscription represents one recurring charge owned by a user.
type Subscription struct {
	ID         string
	UserID     string
	Name       string
	Cost       float64
	Cycle      BillingCycle
	CustomDays int
	StartDate  time.Time
	Category   string
	IsActive   bool
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSubscriptionParams carries validated-on-construction input for a subscription.
type NewSubscriptionParams struct {
	ID         string // optional; generated when empty
	UserID     string
	Name       string
	Cost       float64
	Cycle      BillingCycle
	CustomDays int // required for CycleCustom
	StartDate  time.Time
	Category   string // defaults to "Other"
	IsActive   *bool  // defaults to true
	Notes      string
}

// NewSubscription constructs a validated subscription entity.
func NewSubscription(p NewSubscriptionParams) (*Subscription, error) {
	userID := strings.TrimSpace(p.UserID)
	name := strings.TrimSpace(p.Name)

	if userID == "" {
		return nil, fmt.Errorf("%w: user_id cannot be empty", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidInput, MaxNameLength)
	}
	if p.Cost < 0 {
		return nil, fmt.Errorf("%w: cost cannot be negative", ErrInvalidInput)
	}
	if p.Cost > MaxCost {
		return nil, fmt.Errorf("%w: cost exceeds limit ($%.0f)", ErrInvalidInput, MaxCost)
	}
	if p.Cycle == CycleCustom && (p.CustomDays < 1 || p.CustomDays > 365) {
		return nil, fmt.Errorf("%w: custom_days must be between 1 and 365", ErrInvalidInput)
	}
	if p.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}

	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = CategoryOther
	}

	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	return &Subscription{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Cost:       roundCents(p.Cost),
		Cycle:      p.Cycle,
		CustomDays: p.CustomDays,
		StartDate:  p.StartDate,
		Category:   category,
		IsActive:   active,
		Notes:      strings.TrimSpace(p.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// BillingCycleLabel returns the cycle label used in records and groupings.
// Custom cycles keep the original "every N days" form.
func (s *Subscription) BillingCycleLabel() string {
	switch s.Cycle {
	case CycleAnnual:
		return "annual"
	case CycleCustom:
		return fmt.Sprintf("every %d days", s.CustomDays)
	default:
		return "monthly"
	}
}

// NextBillingDate advances from the start date in whole cycle steps until
// the result is strictly after now. Month steps re-derive the day clamp
// from the original start day each iteration, so a Jan-31 subscription
// bills Feb-28 (or 29) and then Mar-31, not Mar-28.
func (s *Subscription) NextBillingDate(now time.Time) time.Time {
	next := s.StartDate

	switch s.Cycle {
	case CycleAnnual:
		year := s.StartDate.Year()
		for !next.After(now) {
			year++
			next = s.onDay(year, s.StartDate.Month())
		}
	case CycleCustom:
		for !next.After(now) {
			next = next.AddDate(0, 0, s.CustomDays)
		}
	default:
		year, month := s.StartDate.Year(), int(s.StartDate.Month())
		for !next.After(now) {
			month++
			if month > 12 {
				month = 1
				year++
			}
			next = s.onDay(year, time.Month(month))
		}
	}

	return next
}

// onDay places the start date's day (clamped to the target month's last
// valid day) and clock time in the given year/month.
func (s *Subscription) onDay(year int, month time.Month) time.Time {
	day := s.StartDate.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	h, m, sec := s.StartDate.Clock()
	return time.Date(year, month, day, h, m, sec, s.StartDate.Nanosecond(), s.StartDate.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AnnualCost is the subscription's cost normalized to one year.
func (s *Subscription) AnnualCost() float64 {
	switch s.Cycle {
	case CycleAnnual:
		return s.Cost
	case CycleCustom:
		return s.Cost * (365.0 / float64(s.CustomDays))
	default:
		return s.Cost * 12
	}
}

// MonthlyEquivalentCost normalizes the cost to a monthly rate regardless
// of cycle. This is the cross-cycle comparison unit used by analytics.
func (s *Subscription) MonthlyEquivalentCost() float64 {
	return roundCents(s.AnnualCost() / 12)
}

// SetCost updates the cost with the same validation as construction.
func (s *Subscription) SetCost(cost float64) error {
	if cost < 0 {
		return fmt.Errorf("%w: cost cannot be negative", ErrInvalidInput)
	}
	if cost > MaxCost {
		return fmt.Errorf("%w: cost exceeds limit ($%.0f)", ErrInvalidInput, MaxCost)
	}
	s.Cost = roundCents(cost)
	s.touch()
	return nil
}

// SetName updates the display name.
func (s *Subscription) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidInput, MaxNameLength)
	}
	s.Name = name
	s.touch()
	return nil
}

// SetCategory updates the category, falling back to "Other" when empty.
func (s *Subscription) SetCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryOther
	}
	s.Category = category
	s.touch()
}

// SetActive toggles the active flag.
func (s *Subscription) SetActive(active bool) {
	s.IsActive = active
	s.touch()
}

// SetNotes updates the free-text notes.
func (s *Subscription) SetNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return fmt.Errorf("%w: notes too long (max %d characters)", ErrInvalidInput, MaxNotesLength)
	}
	s.Notes = notes
	s.touch()
	return nil
}

func (s *Subscription) touch() {
	s.UpdatedAt = time.Now()
}

// Record converts the subscription into a plain storage record.
func (s *Subscription) Record() map[string]any {
	rec := map[string]any{
		"subscription_id": s.ID,
		"user_id":         s.UserID,
		"name":            s.Name,
		"cost":            s.Cost,
		"billing_cycle":   s.BillingCycleLabel(),
		"start_date":      s.StartDate.Format(time.RFC3339),
		"next_billing":    s.NextBillingDate(time.Now()).Format(time.RFC3339),
		"category":        s.Category,
		"is_active":       s.IsActive,
		"notes":           s.Notes,
		"created_at":      s.CreatedAt.Format(time.RFC3339),
		"updated_at":      s.UpdatedAt.Format(time.RFC3339),
	}
	if s.Cycle == CycleCustom {
		rec["custom_days"] = s.CustomDays
	}
	return rec
}

// SubscriptionFromRecord reconstructs a subscription from a plain record.
//
// A record carrying custom_days under a non-annual cycle label is treated
// as a custom subscription even when the label says "monthly". Older
// records stored the cycle as "every N days", which only round-trips
// through this fallback, so it is kept deliberately.
func SubscriptionFromRecord(rec map[string]any) (*Subscription, error) {
	startDate, err := parseRecordTime(rec["start_date"])
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidInput, err)
	}

	cycleLabel, _ := rec["billing_cycle"].(string)
	if cycleLabel == "" {
		cycleLabel = "monthly"
	}
	cycle, labelDays, err := ParseBillingCycle(cycleLabel)
	if err != nil {
		return nil, err
	}

	customDays := recordInt(rec["custom_days"])
	if customDays == 0 {
		customDays = labelDays
	}
	if cycle != CycleAnnual && customDays > 0 {
		cycle = CycleCustom
	}
	if cycle == CycleCustom && customDays == 0 {
		customDays = 30
	}

	active := true
	if v, ok := rec["is_active"].(bool); ok {
		active = v
	}

	name, _ := rec["name"].(string)
	userID, _ := rec["user_id"].(string)
	id, _ := rec["subscription_id"].(string)
	category, _ := rec["category"].(string)
	notes, _ := rec["notes"].(string)

	sub, err := NewSubscription(NewSubscriptionParams{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Cost:       recordFloat(rec["cost"]),
		Cycle:      cycle,
		CustomDays: customDays,
		StartDate:  startDate,
		Category:   category,
		IsActive:   &active,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}

	if createdAt, err := parseRecordTime(rec["created_at"]); err == nil {
		sub.CreatedAt = createdAt
	}
	if updatedAt, err := parseRecordTime(rec["updated_at"]); err == nil {
		sub.UpdatedAt = updatedAt
	}
	return sub, nil
}

func parseRecordTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, nil
		}
		// ISO timestamps without an offset are common in older records.
		if ts, err := time.Parse("2006-01-02T15:04:05", t); err == nil {
			return ts, nil
		}
		return time.Parse("2006-01-02", t)
	default:
		return time.Time{}, fmt.Errorf("not a timestamp: %v", v)
	}
}

func recordFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func recordInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
