package amadeus

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"farefinder/internal/core"
)

// Normalization is tolerant by field but strict by shape: individual records
// missing optional fields pass through, a payload whose "data" array is
// absent or empty is malformed and sends the mediator to synthesis.

func dataArray(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, core.NewMalformedResponseError("response is not valid JSON", nil)
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, core.NewMalformedResponseError("response has no data array", nil)
	}
	arr := data.Array()
	if len(arr) == 0 {
		return nil, core.NewMalformedResponseError("response data array is empty", nil)
	}
	return arr, nil
}

func normalizeFlightOffers(body []byte) ([]core.FlightOffer, error) {
	arr, err := dataArray(body)
	if err != nil {
		return nil, err
	}
	carriers := gjson.GetBytes(body, "dictionaries.carriers")
	aircraft := gjson.GetBytes(body, "dictionaries.aircraft")

	offers := make([]core.FlightOffer, 0, len(arr))
	for _, item := range arr {
		segments := item.Get("itineraries.0.segments").Array()
		if len(segments) == 0 {
			continue
		}
		first, last := segments[0], segments[len(segments)-1]

		carrierCode := first.Get("carrierCode").String()
		offer := core.FlightOffer{
			Airline:         dictLookup(carriers, carrierCode),
			AirlineCode:     carrierCode,
			FlightNumber:    carrierCode + first.Get("number").String(),
			OriginCode:      first.Get("departure.iataCode").String(),
			DestinationCode: last.Get("arrival.iataCode").String(),
			DepartureTime:   clockFromISO(first.Get("departure.at").String()),
			ArrivalTime:     clockFromISO(last.Get("arrival.at").String()),
			DurationMinutes: parseISODuration(item.Get("itineraries.0.duration").String()),
			Price:           item.Get("price.grandTotal").Float(),
			Currency:        item.Get("price.currency").String(),
			Stops:           len(segments) - 1,
			Aircraft:        dictLookup(aircraft, first.Get("aircraft.code").String()),
		}
		if offer.Price == 0 {
			offer.Price = item.Get("price.total").Float()
		}
		if offer.Price <= 0 {
			continue // unpriced offers are useless to the caller
		}

		for i := 0; i < len(segments)-1; i++ {
			offer.StopLegs = append(offer.StopLegs, core.StopLeg{
				AirportCode: segments[i].Get("arrival.iataCode").String(),
			})
		}

		offers = append(offers, offer)
	}

	if len(offers) == 0 {
		return nil, core.NewMalformedResponseError("no usable offers in response", nil)
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
	return offers, nil
}

func normalizeDestinations(body []byte) ([]core.DestinationOffer, error) {
	arr, err := dataArray(body)
	if err != nil {
		return nil, err
	}

	offers := make([]core.DestinationOffer, 0, len(arr))
	for _, item := range arr {
		o := core.DestinationOffer{
			OriginCode:      item.Get("origin").String(),
			DestinationCode: item.Get("destination").String(),
			DepartureDate:   item.Get("departureDate").String(),
			ReturnDate:      item.Get("returnDate").String(),
			TotalPrice:      item.Get("price.total").Float(),
		}
		if o.DestinationCode == "" || o.TotalPrice <= 0 {
			continue
		}
		offers = append(offers, o)
	}
	if len(offers) == 0 {
		return nil, core.NewMalformedResponseError("no usable destinations in response", nil)
	}
	return offers, nil
}

func normalizePricePoints(body []byte) ([]core.PricePoint, error) {
	arr, err := dataArray(body)
	if err != nil {
		return nil, err
	}

	points := make([]core.PricePoint, 0, len(arr))
	for _, item := range arr {
		p := core.PricePoint{
			Date:  item.Get("departureDate").String(),
			Price: item.Get("price.total").Float(),
		}
		if p.Date == "" || p.Price <= 0 {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, core.NewMalformedResponseError("no usable price points in response", nil)
	}
	// ISO dates sort lexicographically.
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func normalizeLocations(body []byte, limit int) ([]core.AirportSuggestion, error) {
	arr, err := dataArray(body)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	suggestions := make([]core.AirportSuggestion, 0, limit)
	for _, item := range arr {
		code := item.Get("iataCode").String()
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		suggestions = append(suggestions, core.AirportSuggestion{
			Code:    code,
			City:    titleCase(item.Get("address.cityName").String()),
			Name:    titleCase(item.Get("name").String()),
			Country: titleCase(item.Get("address.countryName").String()),
		})
		if len(suggestions) == limit {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil, core.NewMalformedResponseError("no usable locations in response", nil)
	}
	return suggestions, nil
}

// dictLookup resolves a code through a response dictionary, falling back to
// the code itself.
func dictLookup(dict gjson.Result, code string) string {
	if code == "" {
		return ""
	}
	if v := dict.Get(code); v.Exists() && v.String() != "" {
		return titleCase(v.String())
	}
	return code
}

// clockFromISO extracts HH:MM from an ISO 8601 timestamp like
// "2026-09-01T14:35:00".
func clockFromISO(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+6 {
		return ts[i+1 : i+6]
	}
	return ""
}

// parseISODuration converts an ISO 8601 duration like "PT7H25M" to minutes.
// Unparseable input yields 0.
func parseISODuration(d string) int {
	d = strings.TrimPrefix(strings.ToUpper(d), "PT")
	minutes := 0
	if i := strings.IndexByte(d, 'H'); i >= 0 {
		if h, err := strconv.Atoi(d[:i]); err == nil {
			minutes += h * 60
		}
		d = d[i+1:]
	}
	if i := strings.IndexByte(d, 'M'); i >= 0 {
		if m, err := strconv.Atoi(d[:i]); err == nil {
			minutes += m
		}
	}
	return minutes
}

// titleCase converts the upstream's SHOUTING labels ("JOHN F KENNEDY INTL")
// into readable form.
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
