/**
 * @description
 * This file implements the Postgres data access layer for the
 * subscription-service. Subscriptions cross this boundary as plain
 * records; the service layer reconstructs domain entities from them.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository handles database operations for subscriptions and users.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Postgres-backed repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables the service needs when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS subscriptions (
			subscription_id TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			name            TEXT NOT NULL,
			cost            DOUBLE PRECISION NOT NULL,
			billing_cycle   TEXT NOT NULL,
			custom_days     INTEGER NOT NULL DEFAULT 0,
			start_date      TIMESTAMPTZ NOT NULL,
			category        TEXT NOT NULL DEFAULT 'Other',
			is_active       BOOLEAN NOT NULL DEFAULT TRUE,
			notes           TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions (user_id)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			email      TEXT NOT NULL DEFAULT '',
			name       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// CreateSubscription inserts a subscription record.
func (r *Repository) CreateSubscription(ctx context.Context, rec map[string]any) error {
	query := `
        INSERT INTO subscriptions
            (subscription_id, user_id, name, cost, billing_cycle, custom_days,
             start_date, category, is_active, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.db.Exec(ctx, query,
		rec["subscription_id"],
		rec["user_id"],
		rec["name"],
		rec["cost"],
		rec["billing_cycle"],
		intField(rec, "custom_days"),
		timeField(rec, "start_date"),
		rec["category"],
		rec["is_active"],
		rec["notes"],
		timeField(rec, "created_at"),
		timeField(rec, "updated_at"),
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// GetSubscription retrieves a single subscription record by id.
func (r *Repository) GetSubscription(ctx context.Context, id string) (map[string]any, error) {
	query := selectColumns + ` WHERE subscription_id = $1`
	rec, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return rec, nil
}

// ListUserSubscriptions retrieves all subscription records for a user.
func (r *Repository) ListUserSubscriptions(ctx context.Context, userID string) ([]map[string]any, error) {
	query := selectColumns + ` WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var recs []map[string]any
	for rows.Next() {
		rec, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("list subscriptions: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// UpdateSubscription overwrites the mutable fields of a subscription.
func (r *Repository) UpdateSubscription(ctx context.Context, id string, rec map[string]any) error {
	query := `
        UPDATE subscriptions
        SET name = $2, cost = $3, billing_cycle = $4, custom_days = $5,
            category = $6, is_active = $7, notes = $8, updated_at = $9
        WHERE subscription_id = $1
    `
	tag, err := r.db.Exec(ctx, query,
		id,
		rec["name"],
		rec["cost"],
		rec["billing_cycle"],
		intField(rec, "custom_days"),
		rec["category"],
		rec["is_active"],
		rec["notes"],
		timeField(rec, "updated_at"),
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubscription removes a subscription row.
func (r *Repository) DeleteSubscription(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE subscription_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserIDs returns the distinct owners of stored subscriptions.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM subscriptions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list user ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetUser retrieves a user record, or nil when the user is unknown.
func (r *Repository) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	var (
		id, email, name string
		createdAt       time.Time
	)
	query := `SELECT user_id, email, name, created_at FROM users WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&id, &email, &name, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return map[string]any{
		"user_id":    id,
		"email":      email,
		"name":       name,
		"created_at": createdAt.Format(time.RFC3339),
	}, nil
}

const selectColumns = `
    SELECT subscription_id, user_id, name, cost, billing_cycle, custom_days,
           start_date, category, is_active, notes, created_at, updated_at
    FROM subscriptions`

func scanSubscription(row pgx.Row) (map[string]any, error) {
	var (
		id, userID, name, cycle, category, notes string
		cost                                     float64
		customDays                               int
		startDate, createdAt, updatedAt          time.Time
		isActive                                 bool
	)
	err := row.Scan(&id, &userID, &name, &cost, &cycle, &customDays,
		&startDate, &category, &isActive, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec := map[string]any{
		"subscription_id": id,
		"user_id":         userID,
		"name":            name,
		"cost":            cost,
		"billing_cycle":   cycle,
		"start_date":      startDate.Format(time.RFC3339),
		"category":        category,
		"is_active":       isActive,
		"notes":           notes,
		"created_at":      createdAt.Format(time.RFC3339),
		"updated_at":      updatedAt.Format(time.RFC3339),
	}
	if customDays > 0 {
		rec["custom_days"] = customDays
	}
	return rec, nil
}

func intField(rec map[string]any, key string) int {
	switch n := rec[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func timeField(rec map[string]any, key string) time.Time {
	switch t := rec[key].(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Now()
}
