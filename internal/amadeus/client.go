package amadeus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"farefinder/internal/core"
)

const (
	flightOffersEndpoint       = "/v2/shopping/flight-offers"
	flightDestinationsEndpoint = "/v1/shopping/flight-destinations"
	flightDatesEndpoint        = "/v1/shopping/flight-dates"
	locationsEndpoint          = "/v1/reference-data/locations"
)

// Client calls the Amadeus search endpoints. Every call carries a bearer
// token from the TokenManager and the fixed per-call timeout; there are no
// retries, a failed call is the mediator's cue to synthesize instead.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *TokenManager
	timeout    time.Duration
}

// NewClient creates a client for the API at baseURL.
func NewClient(httpClient *http.Client, baseURL string, tokens *TokenManager, timeout time.Duration) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		timeout:    timeout,
	}
}

// Tokens returns the token manager, for callers that pre-acquire a token
// before consuming quota.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// SearchFlightOffers runs the date-based flight-offers search.
func (c *Client) SearchFlightOffers(ctx context.Context, criteria core.SearchCriteria) ([]core.FlightOffer, error) {
	q := url.Values{}
	q.Set("originLocationCode", strings.ToUpper(criteria.OriginCode))
	q.Set("destinationLocationCode", strings.ToUpper(criteria.DestinationCode))
	q.Set("departureDate", criteria.DepartureDate)
	if criteria.ReturnDate != "" {
		q.Set("returnDate", criteria.ReturnDate)
	}
	adults := criteria.Passengers.Adults
	if adults < 1 {
		adults = 1
	}
	q.Set("adults", fmt.Sprintf("%d", adults))
	if criteria.MaxPrice > 0 {
		q.Set("maxPrice", fmt.Sprintf("%.0f", criteria.MaxPrice))
	}
	if criteria.NonStop {
		q.Set("nonStop", "true")
	}
	q.Set("max", "20")

	body, err := c.get(ctx, flightOffersEndpoint, q)
	if err != nil {
		return nil, err
	}
	return normalizeFlightOffers(body)
}

// FlightDestinations runs destination discovery from origin.
func (c *Client) FlightDestinations(ctx context.Context, origin string, maxPrice float64, oneWay bool) ([]core.DestinationOffer, error) {
	q := url.Values{}
	q.Set("origin", strings.ToUpper(origin))
	if maxPrice > 0 {
		q.Set("maxPrice", fmt.Sprintf("%.0f", maxPrice))
	}
	q.Set("oneWay", fmt.Sprintf("%t", oneWay))
	q.Set("nonStop", "false")
	q.Set("viewBy", "DESTINATION")

	body, err := c.get(ctx, flightDestinationsEndpoint, q)
	if err != nil {
		return nil, err
	}
	return normalizeDestinations(body)
}

// FlightDates returns the cheapest-date price sequence for a route.
func (c *Client) FlightDates(ctx context.Context, origin, destination string, oneWay bool) ([]core.PricePoint, error) {
	q := url.Values{}
	q.Set("origin", strings.ToUpper(origin))
	q.Set("destination", strings.ToUpper(destination))
	q.Set("oneWay", fmt.Sprintf("%t", oneWay))

	body, err := c.get(ctx, flightDatesEndpoint, q)
	if err != nil {
		return nil, err
	}
	return normalizePricePoints(body)
}

// Locations searches airports by keyword.
func (c *Client) Locations(ctx context.Context, keyword string, limit int) ([]core.AirportSuggestion, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("subType", "AIRPORT")
	q.Set("page[limit]", fmt.Sprintf("%d", limit))

	body, err := c.get(ctx, locationsEndpoint, q)
	if err != nil {
		return nil, err
	}
	return normalizeLocations(body, limit)
}

// get performs an authenticated GET with the fixed per-call timeout.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, core.NewTransportError("failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewTransportError("request to "+endpoint+" failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError("failed to read response from "+endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The cached token is no longer accepted; drop it so the next
		// operation performs a fresh exchange.
		c.tokens.Invalidate()
		return nil, core.NewAuthenticationError("upstream rejected token with status "+resp.Status, nil)
	case resp.StatusCode != http.StatusOK:
		return nil, core.NewTransportError("upstream returned status "+resp.Status, nil)
	}

	return body, nil
}
