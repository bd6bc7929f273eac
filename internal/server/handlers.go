package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"farefinder/internal/core"
	"farefinder/internal/mediator"
)

// Handler holds the mediator consumed by every route.
type Handler struct {
	mediator *mediator.Mediator
}

// NewHandler creates a new Handler
func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

// errorResponse is the body returned for client errors. Mediated operations
// themselves never fail; only missing or unparsable parameters produce one.
type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SearchFlights handles GET /api/flights/search.
func (h *Handler) SearchFlights(c echo.Context) error {
	origin := strings.TrimSpace(c.QueryParam("origin"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	departureDate := strings.TrimSpace(c.QueryParam("departureDate"))
	if origin == "" || destination == "" || departureDate == "" {
		return badRequest(c, "origin, destination and departureDate are required")
	}

	criteria := core.SearchCriteria{
		OriginCode:      origin,
		DestinationCode: destination,
		DepartureDate:   departureDate,
		ReturnDate:      strings.TrimSpace(c.QueryParam("returnDate")),
	}
	criteria.Passengers.Adults = 1

	if v := c.QueryParam("adults"); v != "" {
		adults, err := strconv.Atoi(v)
		if err != nil || adults < 1 {
			return badRequest(c, "adults must be a positive integer")
		}
		criteria.Passengers.Adults = adults
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil || maxPrice < 0 {
			return badRequest(c, "maxPrice must be a non-negative number")
		}
		criteria.MaxPrice = maxPrice
	}
	if v := c.QueryParam("nonStop"); v != "" {
		nonStop, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "nonStop must be a boolean")
		}
		criteria.NonStop = nonStop
	}

	offers := h.mediator.SearchFlights(c.Request().Context(), criteria)
	return c.JSON(http.StatusOK, map[string]any{
		"flights": offers,
		"count":   len(offers),
	})
}

// Destinations handles GET /api/destinations.
func (h *Handler) Destinations(c echo.Context) error {
	origin := strings.TrimSpace(c.QueryParam("origin"))
	if origin == "" {
		return badRequest(c, "origin is required")
	}

	maxPrice := 500.0
	if v := c.QueryParam("maxPrice"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return badRequest(c, "maxPrice must be a positive number")
		}
		maxPrice = parsed
	}

	oneWay := false
	if v := c.QueryParam("oneWay"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "oneWay must be a boolean")
		}
		oneWay = parsed
	}

	offers := h.mediator.Destinations(c.Request().Context(), origin, maxPrice, oneWay)
	return c.JSON(http.StatusOK, map[string]any{
		"destinations": offers,
		"count":        len(offers),
	})
}

// PriceTrend handles GET /api/price-trend.
func (h *Handler) PriceTrend(c echo.Context) error {
	origin := strings.TrimSpace(c.QueryParam("origin"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	if origin == "" || destination == "" {
		return badRequest(c, "origin and destination are required")
	}

	points := h.mediator.PriceTrend(c.Request().Context(), origin, destination)
	return c.JSON(http.StatusOK, map[string]any{
		"trend": points,
	})
}

// AirportSuggestions handles GET /api/airports.
func (h *Handler) AirportSuggestions(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		query = strings.TrimSpace(c.QueryParam("keyword"))
	}
	if query == "" {
		return badRequest(c, "q is required")
	}

	suggestions := h.mediator.AirportSuggestions(c.Request().Context(), query)
	if suggestions == nil {
		suggestions = []core.AirportSuggestion{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"airports": suggestions,
	})
}

// Status handles GET /api/status.
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.mediator.Status(c.Request().Context()))
}

// ClearCache handles DELETE /api/cache.
func (h *Handler) ClearCache(c echo.Context) error {
	if err := h.mediator.ClearAll(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to clear cache"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}
