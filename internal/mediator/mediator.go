// Package mediator is the single entry point consumed by the UI layer. For
// each operation it decides cache vs. live call vs. synthesis, in that
// order, and always returns a populated result: failures of any kind are
// converted to synthesized data and recorded only through logs and metrics.
package mediator

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"farefinder/internal/cache"
	"farefinder/internal/core"
	"farefinder/internal/observability"
	"farefinder/internal/quota"
	"farefinder/internal/synth"
)

// Upstream is the live-API surface the mediator consumes. Satisfied by
// *amadeus.Client; faked in tests.
type Upstream interface {
	SearchFlightOffers(ctx context.Context, criteria core.SearchCriteria) ([]core.FlightOffer, error)
	FlightDestinations(ctx context.Context, origin string, maxPrice float64, oneWay bool) ([]core.DestinationOffer, error)
	FlightDates(ctx context.Context, origin, destination string, oneWay bool) ([]core.PricePoint, error)
	Locations(ctx context.Context, keyword string, limit int) ([]core.AirportSuggestion, error)
}

// TokenSource supplies bearer tokens and supports explicit teardown.
// Satisfied by *amadeus.TokenManager.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Config holds the mediation policy knobs.
type Config struct {
	// Offline forces synthesis for every operation. Missing credentials
	// must be folded into this flag by the caller.
	Offline bool

	// TTLs tuned to data volatility.
	FlightsTTL      time.Duration
	DestinationsTTL time.Duration
	TrendTTL        time.Duration
	AirportsTTL     time.Duration
}

// DefaultConfig returns the standard TTL tuning: flight offers are the most
// volatile, destination inspiration daily, trends and airport metadata weekly.
func DefaultConfig() Config {
	return Config{
		FlightsTTL:      6 * time.Hour,
		DestinationsTTL: 24 * time.Hour,
		TrendTTL:        168 * time.Hour,
		AirportsTTL:     168 * time.Hour,
	}
}

// Mediator coordinates cache, quota, token, live calls, and synthesis.
type Mediator struct {
	cfg      Config
	cache    *cache.Manager
	quota    *quota.Tracker
	tokens   TokenSource
	upstream Upstream
	synth    *synth.Synthesizer
	metrics  *observability.Metrics
	logger   *slog.Logger

	// suggestSeq orders airport-suggestion requests so a superseded
	// in-flight request can never overwrite a newer one's result.
	suggestSeq atomic.Uint64
}

// New creates a mediator. metrics may be nil.
func New(cfg Config, c *cache.Manager, q *quota.Tracker, tokens TokenSource, up Upstream, s *synth.Synthesizer, m *observability.Metrics) *Mediator {
	return &Mediator{
		cfg:      cfg,
		cache:    c,
		quota:    q,
		tokens:   tokens,
		upstream: up,
		synth:    s,
		metrics:  m,
		logger:   slog.Default(),
	}
}

// fallback logs and counts a synthesis decision. Provenance is an
// observability concern only; the caller still receives a normal result.
func (m *Mediator) fallback(operation, reason string, err error) {
	if err != nil {
		m.logger.Warn("serving synthesized data",
			"operation", operation, "reason", reason, "error", err)
	} else {
		m.logger.Info("serving synthesized data",
			"operation", operation, "reason", reason)
	}
	m.metrics.Fallback(operation, reason)
}

// admitLiveCall runs the quota and token steps shared by every live path.
// It returns false when the operation must fall back to synthesis. Budget is
// consumed only after a token is in hand, so an authentication failure never
// burns a call.
func (m *Mediator) admitLiveCall(ctx context.Context, operation string) bool {
	d := m.quota.CanMakeCall()
	if !d.Allowed {
		m.metrics.QuotaDenied()
		m.fallback(operation, "quota_"+d.Reason, nil)
		return false
	}

	if _, err := m.tokens.Token(ctx); err != nil {
		m.fallback(operation, string(core.KindAuthentication), err)
		return false
	}

	// Re-check and record as one critical section; an interleaved
	// operation may have taken the last slot since the pre-check.
	d = m.quota.Admit(ctx)
	if !d.Allowed {
		m.metrics.QuotaDenied()
		m.fallback(operation, "quota_"+d.Reason, nil)
		return false
	}

	m.logger.Debug("live call admitted", "operation", operation, "calls_left", d.CallsLeft)
	return true
}

// SearchFlights returns flight offers for the criteria, sorted ascending by
// price regardless of data source.
func (m *Mediator) SearchFlights(ctx context.Context, criteria core.SearchCriteria) []core.FlightOffer {
	const op = "search_flights"

	synthesize := func() []core.FlightOffer {
		avg := m.cachedTrendAverage(ctx, criteria.OriginCode, criteria.DestinationCode)
		return m.synth.Flights(criteria.OriginCode, criteria.DestinationCode, criteria.DepartureDate, avg)
	}

	if criteria.Degenerate() {
		m.fallback(op, "degenerate_route", nil)
		return synthesize()
	}
	if m.cfg.Offline {
		m.fallback(op, "offline", nil)
		return synthesize()
	}

	key := cache.Key(op,
		criteria.OriginCode, criteria.DestinationCode,
		criteria.DepartureDate, criteria.ReturnDate,
		strconv.Itoa(criteria.Passengers.Adults),
		strconv.FormatFloat(criteria.MaxPrice, 'f', -1, 64),
		strconv.FormatBool(criteria.NonStop))

	var offers []core.FlightOffer
	if m.cache.Get(ctx, key, &offers) {
		m.metrics.CacheHit(op)
		return offers
	}

	if !m.admitLiveCall(ctx, op) {
		return synthesize()
	}

	offers, err := m.upstream.SearchFlightOffers(ctx, criteria)
	if err != nil {
		m.fallback(op, string(core.KindOf(err)), err)
		return synthesize()
	}

	m.cache.Set(ctx, key, offers, m.cfg.FlightsTTL)
	m.metrics.LiveCall(op)
	return offers
}

// Destinations returns destination-discovery offers from origin.
func (m *Mediator) Destinations(ctx context.Context, origin string, maxPrice float64, oneWay bool) []core.DestinationOffer {
	const op = "destinations"

	if m.cfg.Offline {
		m.fallback(op, "offline", nil)
		return m.synth.Destinations(origin, maxPrice)
	}

	key := cache.Key(op, origin,
		strconv.FormatFloat(maxPrice, 'f', -1, 64),
		strconv.FormatBool(oneWay))

	var offers []core.DestinationOffer
	if m.cache.Get(ctx, key, &offers) {
		m.metrics.CacheHit(op)
		return offers
	}

	if !m.admitLiveCall(ctx, op) {
		return m.synth.Destinations(origin, maxPrice)
	}

	offers, err := m.upstream.FlightDestinations(ctx, origin, maxPrice, oneWay)
	if err != nil {
		m.fallback(op, string(core.KindOf(err)), err)
		return m.synth.Destinations(origin, maxPrice)
	}

	m.cache.Set(ctx, key, offers, m.cfg.DestinationsTTL)
	m.metrics.LiveCall(op)
	return offers
}

// PriceTrend returns a date-ordered price sequence for the route.
func (m *Mediator) PriceTrend(ctx context.Context, origin, destination string) []core.PricePoint {
	const op = "price_trend"

	criteria := core.SearchCriteria{OriginCode: origin, DestinationCode: destination}
	if criteria.Degenerate() {
		m.fallback(op, "degenerate_route", nil)
		return m.synth.PriceTrend(origin, destination, 0)
	}
	if m.cfg.Offline {
		m.fallback(op, "offline", nil)
		return m.synth.PriceTrend(origin, destination, 0)
	}

	key := trendKey(origin, destination)

	var points []core.PricePoint
	if m.cache.Get(ctx, key, &points) {
		m.metrics.CacheHit(op)
		return points
	}

	if !m.admitLiveCall(ctx, op) {
		return m.synth.PriceTrend(origin, destination, 0)
	}

	points, err := m.upstream.FlightDates(ctx, origin, destination, true)
	if err != nil {
		m.fallback(op, string(core.KindOf(err)), err)
		return m.synth.PriceTrend(origin, destination, 0)
	}

	m.cache.Set(ctx, key, points, m.cfg.TrendTTL)
	m.metrics.LiveCall(op)
	return points
}

// Status reports availability without consuming search quota. The token
// exchange doubles as the reachability probe.
func (m *Mediator) Status(ctx context.Context) core.ServiceStatus {
	if m.cfg.Offline {
		return core.ServiceStatus{
			Available:     false,
			UsingFallback: true,
			Message:       "offline mode: serving synthesized data",
		}
	}

	if d := m.quota.CanMakeCall(); !d.Allowed {
		msg := "daily call budget exhausted, serving cache and synthesized data"
		if d.Reason == "window" {
			msg = "per-minute call budget exhausted, retry in " +
				strconv.Itoa(int(d.RetryAfter.Seconds())+1) + "s"
		}
		return core.ServiceStatus{Available: false, UsingFallback: true, Message: msg}
	}

	if _, err := m.tokens.Token(ctx); err != nil {
		m.logger.Warn("availability probe failed", "error", err)
		return core.ServiceStatus{
			Available:     false,
			UsingFallback: true,
			Message:       "authentication with live API failed",
		}
	}

	return core.ServiceStatus{Available: true, Message: "live API available"}
}

// ClearAll wipes every cache entry and invalidates the token. Quota state is
// real usage, not derived data, and survives deliberately.
func (m *Mediator) ClearAll(ctx context.Context) error {
	m.tokens.Invalidate()
	return m.cache.ClearAll(ctx)
}

// cachedTrendAverage biases flight synthesis with real data when a trend for
// the route is still cached.
func (m *Mediator) cachedTrendAverage(ctx context.Context, origin, destination string) float64 {
	var points []core.PricePoint
	if !m.cache.Get(ctx, trendKey(origin, destination), &points) || len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Price
	}
	return sum / float64(len(points))
}

func trendKey(origin, destination string) string {
	return cache.Key("price_trend", origin, destination)
}
