// Package amadeus is the client for the Amadeus self-service flight APIs:
// OAuth2 client-credentials token lifecycle, the search endpoints, and
// normalization of their payloads into core value objects.
package amadeus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"farefinder/internal/core"
)

const tokenEndpoint = "/v1/security/oauth2/token"

// expiryMargin is subtracted from the granted lifetime so a token is
// refreshed before the upstream actually rejects it.
const expiryMargin = 60 * time.Second

// TokenManager exchanges client credentials for short-lived bearer tokens
// and caches the current token in memory only. It is process-wide singleton
// state with an explicit Invalidate lifecycle hook.
type TokenManager struct {
	mu           sync.Mutex
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string

	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewTokenManager creates a token manager. baseURL is the API root
// (e.g. "https://test.api.amadeus.com").
func NewTokenManager(httpClient *http.Client, baseURL, clientID, clientSecret string) *TokenManager {
	return &TokenManager{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// SetClock overrides the time source. Test use only.
func (tm *TokenManager) SetClock(now func() time.Time) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.now = now
}

// Token returns the cached bearer token when unexpired, otherwise performs a
// fresh credential exchange. A failed exchange returns an authentication
// error and never a stale token.
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" && tm.now().Before(tm.expiresAt) {
		return tm.token, nil
	}

	token, lifetime, err := tm.exchange(ctx)
	if err != nil {
		return "", err
	}

	tm.token = token
	tm.expiresAt = tm.now().Add(lifetime - expiryMargin)
	return tm.token, nil
}

// Invalidate discards the cached token. The next Token call performs a fresh
// exchange. Wired to the mediator's clear-all teardown.
func (tm *TokenManager) Invalidate() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.token = ""
	tm.expiresAt = time.Time{}
}

// exchange performs the client-credentials grant. Caller holds the mutex.
func (tm *TokenManager) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {tm.clientID},
		"client_secret": {tm.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		tm.baseURL+tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, core.NewAuthenticationError("failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return "", 0, core.NewAuthenticationError("token exchange failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, core.NewAuthenticationError("failed to read token response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, core.NewAuthenticationError(
			"token endpoint returned status "+resp.Status, nil)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return "", 0, core.NewAuthenticationError("failed to parse token response", err)
	}
	if grant.AccessToken == "" {
		return "", 0, core.NewAuthenticationError("token response contained no token", nil)
	}

	lifetime := time.Duration(grant.ExpiresIn) * time.Second
	if lifetime <= expiryMargin {
		// Keep a usable window even for implausibly short grants.
		lifetime = 2 * expiryMargin
	}
	return grant.AccessToken, lifetime, nil
}
