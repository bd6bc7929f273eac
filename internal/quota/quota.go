// Package quota enforces the free-tier call budget of the upstream API:
// a rolling per-minute window and a per-day ceiling, persisted across
// process restarts.
package quota

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"farefinder/internal/store"
)

// StateKey is the persistent-store key for the quota state. Distinct from
// the cache prefix so a cache wipe leaves call accounting intact.
const StateKey = "farefinder:quota"

// Window is the rolling window for the per-minute ceiling.
const Window = time.Minute

// State is the persisted quota snapshot.
type State struct {
	CallsToday      int    `json:"calls_today"`
	CallsThisWindow int    `json:"calls_this_window"`
	WindowStartMs   int64  `json:"window_start_ms"`
	DayStamp        string `json:"day_stamp"` // UTC, YYYY-MM-DD
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed bool
	// CallsLeft is the remaining daily budget when Allowed.
	CallsLeft int
	// RetryAfter is how long until the rolling window resets, set on
	// window denials.
	RetryAfter time.Duration
	// Reason describes a denial for logging ("window", "daily").
	Reason string
}

// Tracker tracks admitted live calls against fixed ceilings. All state
// transitions happen under one mutex, so check-and-record is a single
// critical section and interleaved operations cannot over-admit.
type Tracker struct {
	mu        sync.Mutex
	store     store.Store
	perWindow int
	perDay    int
	state     State
	logger    *slog.Logger

	now func() time.Time
}

// New creates a tracker with the given ceilings, loading any persisted state.
// A persisted day stamp that no longer matches today resets the daily count.
func New(ctx context.Context, s store.Store, perWindow, perDay int) *Tracker {
	return NewWithClock(ctx, s, perWindow, perDay, time.Now)
}

// NewWithClock is New with an injected time source. The clock must be set
// before loading because the load-time day comparison uses it. Test use only.
func NewWithClock(ctx context.Context, s store.Store, perWindow, perDay int, now func() time.Time) *Tracker {
	t := &Tracker{
		store:     s,
		perWindow: perWindow,
		perDay:    perDay,
		logger:    slog.Default(),
		now:       now,
	}
	t.loadState(ctx)
	return t
}

func (t *Tracker) loadState(ctx context.Context) {
	raw, ok, err := t.store.Get(ctx, StateKey)
	if err != nil {
		t.logger.Warn("quota state load failed, starting fresh", "error", err)
		return
	}
	if !ok {
		return
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		t.logger.Warn("quota state corrupt, starting fresh", "error", err)
		return
	}
	if st.DayStamp != t.dayStamp() {
		st.CallsToday = 0
		st.DayStamp = t.dayStamp()
	}
	t.state = st
}

// dayStamp is UTC so persisted state is portable between machines.
func (t *Tracker) dayStamp() string {
	return t.now().UTC().Format("2006-01-02")
}

// rollLocked applies window and day resets. Caller holds the mutex.
func (t *Tracker) rollLocked() {
	nowMs := t.now().UnixMilli()
	if nowMs-t.state.WindowStartMs > Window.Milliseconds() {
		t.state.CallsThisWindow = 0
		t.state.WindowStartMs = nowMs
	}
	if stamp := t.dayStamp(); t.state.DayStamp != stamp {
		t.state.CallsToday = 0
		t.state.DayStamp = stamp
	}
}

func (t *Tracker) checkLocked() Decision {
	t.rollLocked()

	if t.state.CallsThisWindow >= t.perWindow {
		elapsed := t.now().UnixMilli() - t.state.WindowStartMs
		wait := time.Duration(Window.Milliseconds()-elapsed) * time.Millisecond
		if wait < 0 {
			wait = 0
		}
		return Decision{Allowed: false, RetryAfter: wait, Reason: "window"}
	}
	if t.state.CallsToday >= t.perDay {
		return Decision{Allowed: false, Reason: "daily"}
	}
	return Decision{Allowed: true, CallsLeft: t.perDay - t.state.CallsToday}
}

func (t *Tracker) recordLocked(ctx context.Context) {
	t.state.CallsThisWindow++
	t.state.CallsToday++
	t.state.DayStamp = t.dayStamp()
	t.persistLocked(ctx)
}

func (t *Tracker) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(t.state)
	if err != nil {
		t.logger.Warn("quota state marshal failed", "error", err)
		return
	}
	if err := t.store.Set(ctx, StateKey, string(raw)); err != nil {
		t.logger.Warn("quota state persist failed", "error", err)
	}
}

// CanMakeCall reports whether a live call would currently be admitted,
// without consuming budget.
func (t *Tracker) CanMakeCall() Decision {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkLocked()
}

// RecordCall consumes budget for one admitted live call and persists the
// state. Must be called exactly once per admission, never on denial.
func (t *Tracker) RecordCall(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordLocked(ctx)
}

// Admit performs the check and, when allowed, the record as one critical
// section. This is the path the mediator uses, so interleaved operations
// cannot both pass a check before either records.
func (t *Tracker) Admit(ctx context.Context) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := t.checkLocked()
	if d.Allowed {
		t.recordLocked(ctx)
	}
	return d
}

// ResetDailyCount zeroes all counters and clears persisted state. Exposed
// for operator and test use; day rollover happens automatically.
func (t *Tracker) ResetDailyCount(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = State{DayStamp: t.dayStamp()}
	return t.store.Remove(ctx, StateKey)
}

// Snapshot returns a copy of the current state for status reporting.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	return t.state
}
