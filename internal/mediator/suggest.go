package mediator

import (
	"context"
	"strings"

	"farefinder/internal/cache"
	"farefinder/internal/core"
	"farefinder/internal/synth"
)

const maxSuggestions = 8

// AirportSuggestions returns at most eight suggestions for query, deduplicated
// by code. The decision chain matches the other operations; the roster filter
// is the synthesis path.
func (m *Mediator) AirportSuggestions(ctx context.Context, query string) []core.AirportSuggestion {
	const op = "airport_suggestions"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if m.cfg.Offline {
		m.fallback(op, "offline", nil)
		return synth.AirportSuggestions(query)
	}

	key := cache.Key(op, strings.ToLower(query))

	var suggestions []core.AirportSuggestion
	if m.cache.Get(ctx, key, &suggestions) {
		m.metrics.CacheHit(op)
		return suggestions
	}

	if !m.admitLiveCall(ctx, op) {
		return synth.AirportSuggestions(query)
	}

	suggestions, err := m.upstream.Locations(ctx, query, maxSuggestions)
	if err != nil {
		m.fallback(op, string(core.KindOf(err)), err)
		return synth.AirportSuggestions(query)
	}

	m.cache.Set(ctx, key, suggestions, m.cfg.AirportsTTL)
	m.metrics.LiveCall(op)
	return suggestions
}

// SuggestLatest runs AirportSuggestions and delivers the result through
// apply only if no newer suggestion request was issued meanwhile. This is
// the supersession contract for debounced search-as-you-type: each call
// takes a monotonically increasing sequence number, and a stale result is
// computed but discarded, so only the most recent query ever reaches
// visible state.
//
// This entry point is for stateful consumers that embed the mediator
// directly and share one visible suggestion list, such as a desktop or TUI
// frontend. The HTTP handlers call AirportSuggestions instead: each HTTP
// response is addressed to exactly one requester, the sequence counter is
// global to the mediator, and routing independent clients through it would
// let one client's keystroke discard another's result.
func (m *Mediator) SuggestLatest(ctx context.Context, query string, apply func([]core.AirportSuggestion)) {
	seq := m.suggestSeq.Add(1)

	result := m.AirportSuggestions(ctx, query)

	if m.suggestSeq.Load() != seq {
		m.logger.Debug("suggestion result superseded, discarding",
			"query", query, "seq", seq)
		return
	}
	apply(result)
}
