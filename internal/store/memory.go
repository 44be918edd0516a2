/**
 * @description
 * In-memory fallback store used when no database is configured. Records
 * are copied on the way in and out so callers never share map state.
 */
package store

import (
	"context"
	"maps"
	"sort"
	"sync"
)

// Memory is a thread-safe in-memory implementation of the store contract.
type Memory struct {
	mu            sync.RWMutex
	subscriptions map[string]map[string]any
	users         map[string]map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		subscriptions: map[string]map[string]any{},
		users:         map[string]map[string]any{},
	}
}

// CreateSubscription stores a subscription record keyed by its id.
func (m *Memory) CreateSubscription(_ context.Context, rec map[string]any) error {
	id, _ := rec["subscription_id"].(string)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[id] = maps.Clone(rec)
	return nil
}

// GetSubscription returns a copy of one subscription record.
func (m *Memory) GetSubscription(_ context.Context, id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.subscriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(rec), nil
}

// ListUserSubscriptions returns copies of all records owned by a user,
// oldest first.
func (m *Memory) ListUserSubscriptions(_ context.Context, userID string) ([]map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recs []map[string]any
	for _, rec := range m.subscriptions {
		if rec["user_id"] == userID {
			recs = append(recs, maps.Clone(rec))
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, _ := recs[i]["created_at"].(string)
		b, _ := recs[j]["created_at"].(string)
		if a != b {
			return a < b
		}
		ai, _ := recs[i]["subscription_id"].(string)
		bi, _ := recs[j]["subscription_id"].(string)
		return ai < bi
	})
	return recs, nil
}

// UpdateSubscription replaces a stored record.
func (m *Memory) UpdateSubscription(_ context.Context, id string, rec map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[id]; !ok {
		return ErrNotFound
	}
	m.subscriptions[id] = maps.Clone(rec)
	return nil
}

// DeleteSubscription removes a stored record.
func (m *Memory) DeleteSubscription(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[id]; !ok {
		return ErrNotFound
	}
	delete(m.subscriptions, id)
	return nil
}

// ListUserIDs returns the distinct owners of stored subscriptions.
func (m *Memory) ListUserIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]bool{}
	var ids []string
	for _, rec := range m.subscriptions {
		if id, _ := rec["user_id"].(string); id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// PutUser stores a user record.
func (m *Memory) PutUser(_ context.Context, rec map[string]any) error {
	id, _ := rec["user_id"].(string)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = maps.Clone(rec)
	return nil
}

// GetUser returns a copy of a user record, or nil when unknown.
func (m *Memory) GetUser(_ context.Context, userID string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return maps.Clone(rec), nil
}
