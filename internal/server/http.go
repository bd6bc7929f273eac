// Package server provides the HTTP surface the UI layer consumes.
package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"farefinder/internal/mediator"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	MetricsEnabled bool // Whether to expose the Prometheus metrics endpoint
}

// New creates a new HTTP server around the mediator.
func New(m *mediator.Mediator, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	handler := NewHandler(m)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())

	e.GET("/health", handler.Health)
	if cfg != nil && cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	e.GET("/api/flights/search", handler.SearchFlights)
	e.GET("/api/destinations", handler.Destinations)
	e.GET("/api/price-trend", handler.PriceTrend)
	e.GET("/api/airports", handler.AirportSuggestions)
	e.GET("/api/status", handler.Status)
	e.DELETE("/api/cache", handler.ClearCache)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
