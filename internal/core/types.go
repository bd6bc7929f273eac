// Package core provides the shared value objects and error taxonomy for the
// flight mediation layer.
package core

import "strings"

// PassengerCounts holds the traveler breakdown for a flight search.
type PassengerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children,omitempty"`
	Infants  int `json:"infants,omitempty"`
}

// SearchCriteria describes a flight search request.
// Dates use the YYYY-MM-DD wire format of the upstream API.
type SearchCriteria struct {
	OriginCode      string          `json:"origin_code"`
	DestinationCode string          `json:"destination_code"`
	DepartureDate   string          `json:"departure_date"`
	ReturnDate      string          `json:"return_date,omitempty"`
	Passengers      PassengerCounts `json:"passengers"`
	MaxPrice        float64         `json:"max_price,omitempty"`
	NonStop         bool            `json:"non_stop,omitempty"`
}

// OneWay reports whether the criteria describe a one-way trip.
func (c SearchCriteria) OneWay() bool {
	return c.ReturnDate == ""
}

// Degenerate reports whether origin and destination are the same airport.
// Degenerate routes must never reach the live price or flight endpoints.
func (c SearchCriteria) Degenerate() bool {
	return strings.EqualFold(strings.TrimSpace(c.OriginCode), strings.TrimSpace(c.DestinationCode))
}

// StopLeg is an intermediate stop within a flight offer.
type StopLeg struct {
	AirportCode    string `json:"airport_code"`
	LayoverMinutes int    `json:"layover_minutes"`
}

// FlightOffer is a single priced flight, either normalized from the live API
// or synthesized. Invariants: DurationMinutes >= 0, Price > 0, Stops in
// {0,1,2}, ArrivalTime == DepartureTime + duration modulo 24h.
type FlightOffer struct {
	Airline         string    `json:"airline"`
	AirlineCode     string    `json:"airline_code"`
	FlightNumber    string    `json:"flight_number"`
	OriginCode      string    `json:"origin_code"`
	DestinationCode string    `json:"destination_code"`
	DepartureTime   string    `json:"departure_time"` // HH:MM
	ArrivalTime     string    `json:"arrival_time"`   // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	Stops           int       `json:"stops"`
	StopLegs        []StopLeg `json:"stop_legs,omitempty"`
	Aircraft        string    `json:"aircraft,omitempty"`
}

// PricePoint is one date/price sample in a price trend. Sequences returned
// by the mediator are ordered ascending by date.
type PricePoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Price        float64 `json:"price"`
	AirlineLabel string  `json:"airline_label,omitempty"`
}

// DestinationOffer is a destination-discovery result from a given origin.
type DestinationOffer struct {
	OriginCode      string  `json:"origin_code"`
	DestinationCode string  `json:"destination_code"`
	DepartureDate   string  `json:"departure_date"`
	ReturnDate      string  `json:"return_date,omitempty"`
	TotalPrice      float64 `json:"total_price"`
}

// AirportSuggestion is one autocomplete candidate for an airport query.
type AirportSuggestion struct {
	Code    string `json:"code"`
	City    string `json:"city"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// ServiceStatus reports whether the live API is reachable and whether the
// mediator is currently serving synthesized data.
type ServiceStatus struct {
	Available     bool   `json:"available"`
	UsingFallback bool   `json:"using_fallback"`
	Message       string `json:"message"`
}
