package synth

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Synthesis is random-valued by design, so tests assert invariants (counts,
// ordering, ranges), never exact values.

func TestFlightsInvariants(t *testing.T) {
	s := NewWithSeed(42)

	for i := 0; i < 50; i++ {
		offers := s.Flights("JFK", "LHR", "2026-09-01", 0)

		require.GreaterOrEqual(t, len(offers), 12)
		require.LessOrEqual(t, len(offers), 18)

		sorted := sort.SliceIsSorted(offers, func(a, b int) bool {
			return offers[a].Price < offers[b].Price
		})
		require.True(t, sorted, "offers must be sorted ascending by price")

		for _, o := range offers {
			assert.Greater(t, o.Price, 0.0)
			assert.GreaterOrEqual(t, o.DurationMinutes, 0)
			assert.Contains(t, []int{0, 1, 2}, o.Stops)
			assert.Len(t, o.StopLegs, o.Stops)
			assert.Equal(t, "JFK", o.OriginCode)
			assert.Equal(t, "LHR", o.DestinationCode)
			assert.NotEmpty(t, o.Airline)
			assert.NotEmpty(t, o.FlightNumber)

			// Arrival consistent with departure + duration modulo a day.
			dep := parseClock(t, o.DepartureTime)
			arr := parseClock(t, o.ArrivalTime)
			assert.Equal(t, (dep+o.DurationMinutes)%(24*60), arr)
		}
	}
}

func TestFlightsBiasAroundAveragePrice(t *testing.T) {
	s := NewWithSeed(7)
	const avg = 400.0

	offers := s.Flights("CDG", "SIN", "2026-10-10", avg)
	for _, o := range offers {
		assert.GreaterOrEqual(t, o.Price, avg*0.75-0.01)
		assert.LessOrEqual(t, o.Price, avg*1.25+0.01)
	}
}

func TestDestinationsRespectMaxPrice(t *testing.T) {
	s := NewWithSeed(99)

	offers := s.Destinations("FRA", 250)
	require.GreaterOrEqual(t, len(offers), 8)
	require.LessOrEqual(t, len(offers), 14)

	seen := map[string]bool{}
	for _, o := range offers {
		assert.Equal(t, "FRA", o.OriginCode)
		assert.NotEqual(t, "FRA", o.DestinationCode)
		assert.Greater(t, o.TotalPrice, 0.0)
		assert.LessOrEqual(t, o.TotalPrice, 250.0)
		assert.False(t, seen[o.DestinationCode], "destinations must be distinct")
		seen[o.DestinationCode] = true
		assert.Less(t, o.DepartureDate, o.ReturnDate)
	}
}

func TestPriceTrendShape(t *testing.T) {
	s := NewWithSeed(3)
	const base = 200.0

	points := s.PriceTrend("MAD", "FCO", base)
	require.Len(t, points, 7)

	today := time.Now().UTC()
	for i, p := range points {
		assert.Equal(t, today.AddDate(0, 0, i).Format("2006-01-02"), p.Date,
			"dates must be consecutive from today")
		assert.GreaterOrEqual(t, p.Price, base*0.8-0.01)
		assert.LessOrEqual(t, p.Price, base*1.2+0.01)
		assert.NotEmpty(t, p.AirlineLabel)
	}
}

func TestAirportSuggestions(t *testing.T) {
	t.Run("JFMatchesJFK", func(t *testing.T) {
		got := AirportSuggestions("JF")
		require.NotEmpty(t, got)

		codes := make([]string, 0, len(got))
		for _, a := range got {
			codes = append(codes, a.Code)
			matched := strings.Contains(strings.ToLower(a.Code), "jf") ||
				strings.Contains(strings.ToLower(a.City), "jf") ||
				strings.Contains(strings.ToLower(a.Name), "jf")
			assert.True(t, matched, "%s should match query", a.Code)
		}
		assert.Contains(t, codes, "JFK")
	})

	t.Run("CapAndDedupe", func(t *testing.T) {
		// "a" matches most of the roster.
		got := AirportSuggestions("a")
		require.LessOrEqual(t, len(got), 8)

		seen := map[string]bool{}
		for _, a := range got {
			assert.False(t, seen[a.Code], "duplicate code %s", a.Code)
			seen[a.Code] = true
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		assert.Equal(t, AirportSuggestions("london"), AirportSuggestions("LONDON"))
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		assert.Empty(t, AirportSuggestions("  "))
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Empty(t, AirportSuggestions("zzzzzz"))
	})
}

func TestStopDistributionCoversAllBuckets(t *testing.T) {
	s := NewWithSeed(1)

	counts := map[int]int{}
	for i := 0; i < 30; i++ {
		for _, o := range s.Flights("LAX", "HND", "2026-11-01", 0) {
			counts[o.Stops]++
		}
	}
	// Weighted 60/25/15: all three buckets appear over enough samples, and
	// non-stop dominates.
	assert.Greater(t, counts[0], counts[1])
	assert.Greater(t, counts[1], 0)
	assert.Greater(t, counts[2], 0)
}

func parseClock(t *testing.T, hhmm string) int {
	t.Helper()
	parsed, err := time.Parse("15:04", hhmm)
	require.NoError(t, err)
	return parsed.Hour()*60 + parsed.Minute()
}
