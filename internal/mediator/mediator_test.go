package mediator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farefinder/internal/cache"
	"farefinder/internal/core"
	"farefinder/internal/quota"
	"farefinder/internal/store"
	"farefinder/internal/synth"
)

// fakeUpstream counts live calls and serves canned results or an error.
type fakeUpstream struct {
	mu    sync.Mutex
	calls int
	err   error

	offers       []core.FlightOffer
	destinations []core.DestinationOffer
	points       []core.PricePoint
	suggestions  []core.AirportSuggestion

	// blockFirst, when non-nil, stalls the first live call until the test
	// closes it; used to interleave suggestion requests.
	blockFirst chan struct{}
}

// begin records the call and stalls the first one when configured.
func (f *fakeUpstream) begin() {
	f.mu.Lock()
	f.calls++
	n := f.calls
	block := f.blockFirst
	f.mu.Unlock()
	if n == 1 && block != nil {
		<-block
	}
}

func (f *fakeUpstream) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUpstream) SearchFlightOffers(ctx context.Context, criteria core.SearchCriteria) ([]core.FlightOffer, error) {
	f.begin()
	return f.offers, f.err
}

func (f *fakeUpstream) FlightDestinations(ctx context.Context, origin string, maxPrice float64, oneWay bool) ([]core.DestinationOffer, error) {
	f.begin()
	return f.destinations, f.err
}

func (f *fakeUpstream) FlightDates(ctx context.Context, origin, destination string, oneWay bool) ([]core.PricePoint, error) {
	f.begin()
	return f.points, f.err
}

func (f *fakeUpstream) Locations(ctx context.Context, keyword string, limit int) ([]core.AirportSuggestion, error) {
	f.begin()
	return f.suggestions, f.err
}

type fakeTokens struct {
	err         error
	calls       int
	invalidated int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "tok", nil
}

func (f *fakeTokens) Invalidate() { f.invalidated++ }

type fixture struct {
	m        *Mediator
	upstream *fakeUpstream
	tokens   *fakeTokens
	quota    *quota.Tracker
	cache    *cache.Manager
	store    *store.MemoryStore
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	c := cache.New(s)
	q := quota.New(context.Background(), s, 10, 39)
	up := &fakeUpstream{}
	tok := &fakeTokens{}

	if cfg.FlightsTTL == 0 {
		base := DefaultConfig()
		base.Offline = cfg.Offline
		cfg = base
	}

	return &fixture{
		m:        New(cfg, c, q, tok, up, synth.NewWithSeed(11), nil),
		upstream: up,
		tokens:   tok,
		quota:    q,
		cache:    c,
		store:    s,
	}
}

var testCriteria = core.SearchCriteria{
	OriginCode:      "JFK",
	DestinationCode: "LHR",
	DepartureDate:   "2026-09-01",
	Passengers:      core.PassengerCounts{Adults: 1},
}

func TestDegenerateRouteShortCircuits(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	criteria := testCriteria
	criteria.DestinationCode = "jfk" // equality is case-insensitive

	offers := f.m.SearchFlights(ctx, criteria)
	require.NotEmpty(t, offers)
	assert.Equal(t, 0, f.upstream.Calls(), "no live call")
	assert.Equal(t, 0, f.tokens.calls, "no token acquisition")
	assert.Equal(t, 39, f.quota.CanMakeCall().CallsLeft, "no quota consumed")

	// Cache untouched: the store holds no cache entries.
	keys, err := f.store.Keys(ctx, cache.Prefix)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Same for price trends.
	points := f.m.PriceTrend(ctx, "CDG", "CDG")
	require.NotEmpty(t, points)
	assert.Equal(t, 0, f.upstream.Calls())
}

func TestOfflineModeSynthesizes(t *testing.T) {
	f := newFixture(t, Config{Offline: true})
	ctx := context.Background()

	offers := f.m.SearchFlights(ctx, testCriteria)
	require.NotEmpty(t, offers)
	sorted := sort.SliceIsSorted(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
	assert.True(t, sorted)
	assert.Equal(t, 0, f.upstream.Calls())

	suggestions := f.m.AirportSuggestions(ctx, "JF")
	require.NotEmpty(t, suggestions)
	codes := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		codes = append(codes, s.Code)
	}
	assert.Contains(t, codes, "JFK")
	assert.LessOrEqual(t, len(suggestions), 8)
}

func TestLiveCallCachedAndReused(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.upstream.offers = []core.FlightOffer{{
		Airline: "British Airways", AirlineCode: "BA", FlightNumber: "BA112",
		OriginCode: "JFK", DestinationCode: "LHR",
		DepartureTime: "08:00", ArrivalTime: "20:05",
		DurationMinutes: 425, Price: 489, Currency: "EUR",
	}}

	first := f.m.SearchFlights(ctx, testCriteria)
	require.Len(t, first, 1)
	assert.Equal(t, 1, f.upstream.Calls())
	assert.Equal(t, 38, f.quota.CanMakeCall().CallsLeft)

	// Second identical search is served from cache: no new live call, no
	// extra quota.
	second := f.m.SearchFlights(ctx, testCriteria)
	require.Equal(t, first, second)
	assert.Equal(t, 1, f.upstream.Calls())
	assert.Equal(t, 38, f.quota.CanMakeCall().CallsLeft)

	// Different criteria miss the cache.
	other := testCriteria
	other.DestinationCode = "CDG"
	_ = f.m.SearchFlights(ctx, other)
	assert.Equal(t, 2, f.upstream.Calls())
}

func TestQuotaExhaustedSkipsNetwork(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	// Burn the daily budget.
	for f.quota.CanMakeCall().Allowed {
		f.quota.RecordCall(ctx)
	}

	offers := f.m.SearchFlights(ctx, testCriteria)
	require.NotEmpty(t, offers, "synthesized list must be non-empty")
	assert.Equal(t, 0, f.upstream.Calls(), "no network call attempted")
	assert.Equal(t, 0, f.tokens.calls, "denied before token acquisition")
}

func TestAuthFailureFallsBackWithoutBurningQuota(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.tokens.err = core.NewAuthenticationError("rejected", nil)

	offers := f.m.SearchFlights(ctx, testCriteria)
	require.NotEmpty(t, offers)
	assert.Equal(t, 0, f.upstream.Calls())
	assert.Equal(t, 39, f.quota.CanMakeCall().CallsLeft,
		"a failed token exchange must not consume quota")
}

func TestTransportFailureFallsBack(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.upstream.err = core.NewTransportError("timeout", errors.New("deadline exceeded"))

	points := f.m.PriceTrend(ctx, "MAD", "FCO")
	require.Len(t, points, 7, "synthesized trend has seven points")
	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Date, points[i].Date)
	}
	assert.Equal(t, 1, f.upstream.Calls())
}

func TestSynthesisBiasedByCachedTrend(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	// Seed a live trend for the route, then force flight search to fail.
	f.upstream.points = []core.PricePoint{
		{Date: "2026-09-01", Price: 400},
		{Date: "2026-09-02", Price: 400},
	}
	_ = f.m.PriceTrend(ctx, "JFK", "LHR")

	f.upstream.err = core.NewTransportError("down", nil)
	offers := f.m.SearchFlights(ctx, testCriteria)
	require.NotEmpty(t, offers)
	for _, o := range offers {
		assert.GreaterOrEqual(t, o.Price, 400*0.75-0.01)
		assert.LessOrEqual(t, o.Price, 400*1.25+0.01)
	}
}

func TestDestinationsCachedWith24hTTL(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	now := base
	f.cache.SetClock(func() time.Time { return now })

	f.upstream.destinations = []core.DestinationOffer{
		{OriginCode: "FRA", DestinationCode: "LIS", TotalPrice: 184.50},
	}

	_ = f.m.Destinations(ctx, "FRA", 250, false)
	require.Equal(t, 1, f.upstream.Calls())

	// Within 24h: cache hit.
	now = base.Add(23 * time.Hour)
	_ = f.m.Destinations(ctx, "FRA", 250, false)
	assert.Equal(t, 1, f.upstream.Calls())

	// After 25h: miss, fresh live path.
	now = base.Add(25 * time.Hour)
	_ = f.m.Destinations(ctx, "FRA", 250, false)
	assert.Equal(t, 2, f.upstream.Calls())
}

func TestStatus(t *testing.T) {
	t.Run("Offline", func(t *testing.T) {
		f := newFixture(t, Config{Offline: true})
		st := f.m.Status(context.Background())
		assert.False(t, st.Available)
		assert.True(t, st.UsingFallback)
	})

	t.Run("QuotaExhausted", func(t *testing.T) {
		f := newFixture(t, Config{})
		ctx := context.Background()
		for f.quota.CanMakeCall().Allowed {
			f.quota.RecordCall(ctx)
		}
		st := f.m.Status(ctx)
		assert.False(t, st.Available)
		assert.True(t, st.UsingFallback)
	})

	t.Run("AuthFailure", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.tokens.err = core.NewAuthenticationError("rejected", nil)
		st := f.m.Status(context.Background())
		assert.False(t, st.Available)
		assert.True(t, st.UsingFallback)
	})

	t.Run("Available", func(t *testing.T) {
		f := newFixture(t, Config{})
		st := f.m.Status(context.Background())
		assert.True(t, st.Available)
		assert.False(t, st.UsingFallback)
	})
}

func TestClearAllWipesCacheAndToken(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.upstream.offers = []core.FlightOffer{{Price: 100, Currency: "EUR"}}
	_ = f.m.SearchFlights(ctx, testCriteria)
	require.Equal(t, 1, f.upstream.Calls())

	require.NoError(t, f.m.ClearAll(ctx))
	assert.Equal(t, 1, f.tokens.invalidated)

	// Cache gone: the same search goes live again.
	_ = f.m.SearchFlights(ctx, testCriteria)
	assert.Equal(t, 2, f.upstream.Calls())

	// Quota state survives a cache wipe.
	assert.Equal(t, 37, f.quota.CanMakeCall().CallsLeft)
}

func TestSuggestLatestDiscardsSupersededResult(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.upstream.suggestions = []core.AirportSuggestion{{Code: "JFK"}}
	release := make(chan struct{})
	f.upstream.blockFirst = release

	applied := make(chan string, 2)
	oldDone := make(chan struct{})

	// First request blocks inside the live call.
	go func() {
		f.m.SuggestLatest(ctx, "J", func([]core.AirportSuggestion) {
			applied <- "J"
		})
		close(oldDone)
	}()

	// Give the first request time to take its sequence number and block.
	time.Sleep(50 * time.Millisecond)

	// Newer request for the refined query completes while the first is
	// still in flight; the newer one must win regardless of completion
	// order.
	f.m.SuggestLatest(ctx, "JF", func([]core.AirportSuggestion) {
		applied <- "JF"
	})

	close(release)
	<-oldDone

	require.Len(t, applied, 1, "only the most recent query is applied")
	assert.Equal(t, "JF", <-applied)
}
