// Package synth produces plausible substitute flight data when live data is
// unreachable or the call budget is exhausted. Generation is pure (no I/O):
// shapes are deterministic, values are randomized within documented ranges,
// so consumers always receive well-formed, non-empty results.
package synth

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"farefinder/internal/core"
)

const (
	minFlights = 12
	maxFlights = 18

	// Stop-count distribution: 60% non-stop, 25% one stop, 15% two stops.
	nonStopWeight = 0.60
	oneStopWeight = 0.85 // cumulative

	minBaseDuration = 105 // minutes
	maxBaseDuration = 360
	stopPenalty     = 75 // minutes added per stop

	// Price variation around the base: ±25%.
	priceSpread = 0.25

	trendDays      = 7
	maxSuggestions = 8
)

// Synthesizer generates substitute records. Safe for concurrent use.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a synthesizer seeded from the current time.
func New() *Synthesizer {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed creates a synthesizer with a fixed seed, for reproducing a
// generation sequence.
func NewWithSeed(seed int64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewSource(seed))}
}

// routeBase derives a stable per-route base price so repeated fallbacks for
// the same route stay in a consistent band.
func routeBase(origin, destination string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(origin) + "-" + strings.ToUpper(destination)))
	return 90 + float64(h.Sum32()%420)
}

func (s *Synthesizer) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Synthesizer) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Flights synthesizes between 12 and 18 offers for the route, sorted
// ascending by price. When avgPrice is positive it biases prices ±25% around
// it; otherwise a stable per-route base is used.
func (s *Synthesizer) Flights(origin, destination, departureDate string, avgPrice float64) []core.FlightOffer {
	base := avgPrice
	if base <= 0 {
		base = routeBase(origin, destination)
	}

	n := minFlights + s.intn(maxFlights-minFlights+1)
	offers := make([]core.FlightOffer, 0, n)
	for i := 0; i < n; i++ {
		al := airlines[s.intn(len(airlines))]

		stops := 0
		switch r := s.float64(); {
		case r < nonStopWeight:
			stops = 0
		case r < oneStopWeight:
			stops = 1
		default:
			stops = 2
		}

		duration := minBaseDuration + s.intn(maxBaseDuration-minBaseDuration+1) + stops*stopPenalty
		price := round2(base * (1 - priceSpread + s.float64()*2*priceSpread))
		if price <= 0 {
			price = 1
		}

		depMinutes := s.intn(24 * 60)
		arrMinutes := (depMinutes + duration) % (24 * 60)

		var legs []core.StopLeg
		for j := 0; j < stops; j++ {
			legs = append(legs, core.StopLeg{
				AirportCode:    s.pickStopover(origin, destination),
				LayoverMinutes: 45 + s.intn(120),
			})
		}

		offers = append(offers, core.FlightOffer{
			Airline:         al.name,
			AirlineCode:     al.code,
			FlightNumber:    fmt.Sprintf("%s%d", al.code, 100+s.intn(900)),
			OriginCode:      strings.ToUpper(origin),
			DestinationCode: strings.ToUpper(destination),
			DepartureTime:   clock(depMinutes),
			ArrivalTime:     clock(arrMinutes),
			DurationMinutes: duration,
			Price:           price,
			Currency:        "EUR",
			Stops:           stops,
			StopLegs:        legs,
			Aircraft:        aircraftTypes[s.intn(len(aircraftTypes))],
		})
	}

	sort.Slice(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
	return offers
}

// Destinations synthesizes discovery records from origin. Prices stay under
// maxPrice when one is given.
func (s *Synthesizer) Destinations(origin string, maxPrice float64) []core.DestinationOffer {
	today := time.Now().UTC()
	n := 8 + s.intn(7)
	offers := make([]core.DestinationOffer, 0, n)
	seen := map[string]bool{strings.ToUpper(origin): true}

	for len(offers) < n {
		dst := airports[s.intn(len(airports))].Code
		if seen[dst] {
			continue
		}
		seen[dst] = true

		price := routeBase(origin, dst) * (0.8 + s.float64()*0.4)
		if maxPrice > 0 {
			price = maxPrice * (0.30 + s.float64()*0.65)
		}

		dep := today.AddDate(0, 0, 7+s.intn(53))
		ret := dep.AddDate(0, 0, 3+s.intn(12))
		offers = append(offers, core.DestinationOffer{
			OriginCode:      strings.ToUpper(origin),
			DestinationCode: dst,
			DepartureDate:   dep.Format("2006-01-02"),
			ReturnDate:      ret.Format("2006-01-02"),
			TotalPrice:      round2(price),
		})
	}
	return offers
}

// PriceTrend synthesizes seven consecutive daily price points starting
// today, each at base × a factor in [0.8, 1.2], ordered ascending by date.
func (s *Synthesizer) PriceTrend(origin, destination string, basePrice float64) []core.PricePoint {
	base := basePrice
	if base <= 0 {
		base = routeBase(origin, destination)
	}

	today := time.Now().UTC()
	points := make([]core.PricePoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		al := airlines[s.intn(len(airlines))]
		points = append(points, core.PricePoint{
			Date:         today.AddDate(0, 0, i).Format("2006-01-02"),
			Price:        round2(base * (0.8 + s.float64()*0.4)),
			AirlineLabel: al.name,
		})
	}
	return points
}

// AirportSuggestions filters the fixed roster by case-insensitive substring
// match on code, city, or name, deduplicated by code and capped at 8.
func AirportSuggestions(query string) []core.AirportSuggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []core.AirportSuggestion
	seen := map[string]bool{}
	for _, a := range airports {
		if seen[a.Code] {
			continue
		}
		if strings.Contains(strings.ToLower(a.Code), q) ||
			strings.Contains(strings.ToLower(a.City), q) ||
			strings.Contains(strings.ToLower(a.Name), q) {
			seen[a.Code] = true
			out = append(out, a)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// pickStopover returns a roster airport distinct from both route endpoints.
func (s *Synthesizer) pickStopover(origin, destination string) string {
	for {
		c := airports[s.intn(len(airports))].Code
		if !strings.EqualFold(c, origin) && !strings.EqualFold(c, destination) {
			return c
		}
	}
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
