// Package cache provides an expiring JSON cache over the persistent store,
// keyed by logical request signature.
//
// Cache failures are never surfaced: a read or write problem is logged and
// the caller proceeds as on a miss, so a broken store can degrade data
// freshness but never block an operation.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"farefinder/internal/store"
)

// Prefix namespaces every cache key in the persistent store, so a full wipe
// of cache state is a single prefix enumeration.
const Prefix = "farefinder:cache:"

// entry is the stored envelope. Validity: now - StoredAtMs <= TTLMs.
type entry struct {
	Payload    json.RawMessage `json:"payload"`
	StoredAtMs int64           `json:"stored_at_ms"`
	TTLMs      int64           `json:"ttl_ms"`
}

// Manager is an expiring cache over a Store. Expiry is lazy: a stale entry
// is purged on the read that detects it.
type Manager struct {
	store  store.Store
	logger *slog.Logger

	now func() time.Time
}

// New creates a cache manager over s.
func New(s store.Store) *Manager {
	return &Manager{
		store:  s,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// SetClock overrides the time source. Test use only.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Set stores value under key with the given ttl. Failures are logged and
// swallowed; a cache write must never block the caller.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn("cache write skipped", "key", key, "error", err)
		return
	}
	e := entry{
		Payload:    payload,
		StoredAtMs: m.now().UnixMilli(),
		TTLMs:      ttl.Milliseconds(),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		m.logger.Warn("cache write skipped", "key", key, "error", err)
		return
	}
	if err := m.store.Set(ctx, Prefix+key, string(raw)); err != nil {
		m.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Get loads the entry for key into dst and reports whether a valid entry was
// found. Expired or corrupt entries are removed and treated as absent.
func (m *Manager) Get(ctx context.Context, key string, dst any) bool {
	raw, ok, err := m.store.Get(ctx, Prefix+key)
	if err != nil {
		m.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		m.logger.Warn("cache entry corrupt, purging", "key", key, "error", err)
		m.Clear(ctx, key)
		return false
	}

	if m.now().UnixMilli()-e.StoredAtMs > e.TTLMs {
		m.Clear(ctx, key)
		return false
	}

	if err := json.Unmarshal(e.Payload, dst); err != nil {
		m.logger.Warn("cache payload corrupt, purging", "key", key, "error", err)
		m.Clear(ctx, key)
		return false
	}
	return true
}

// Clear removes the entry for key.
func (m *Manager) Clear(ctx context.Context, key string) {
	if err := m.store.Remove(ctx, Prefix+key); err != nil {
		m.logger.Warn("cache clear failed", "key", key, "error", err)
	}
}

// ClearAll removes every cache entry by prefix enumeration.
func (m *Manager) ClearAll(ctx context.Context) error {
	keys, err := m.store.Keys(ctx, Prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := m.store.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
