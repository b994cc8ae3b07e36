// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the authenticated request gateway for the Talk@FCIT
// backend.
//
// Every outbound call carries the stored access token as a bearer
// credential. A 401 triggers exactly one refresh-and-retry: the refresh
// token is exchanged at /auth/token/refresh/, the new access token is
// persisted, and the original request is re-dispatched once. If the
// refresh credential is absent or rejected, both stored tokens are
// cleared and ErrSessionExpired is returned; the UI layer translates
// that into a forced return to the login view.
//
// The gateway does not interpret domain payloads and never coalesces
// concurrent refresh attempts: two requests that each hit a 401 each
// perform their own refresh, and the credential store's mutex makes the
// last successful write win.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/talk-tui/internal/auth"
	"github.com/jeranaias/talk-tui/internal/config"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps response bodies to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024

	userAgent = "talk-tui/1.0"
)

// sharedTransport pools connections across all gateway requests.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// =============================================================================
// REQUEST DESCRIPTION
// =============================================================================

// attemptState is the explicit one-shot retry flag carried alongside a
// request description. It is never bolted onto *http.Request.
type attemptState int

const (
	attemptFresh attemptState = iota
	attemptRetried
)

// requestConfig describes one outbound call: method, path relative to the
// base URL, optional query parameters, optional JSON body.
type requestConfig struct {
	method string
	path   string
	query  url.Values
	body   any
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the authenticated request gateway.
type Client struct {
	// mu guards baseURL: the config watcher swaps it from its own
	// goroutine while request goroutines read it.
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	session    *auth.Session
	limiter    *rate.Limiter

	// onSessionExpired runs after an irrecoverable refresh failure, once
	// both tokens are cleared. The UI installs the forced navigation here.
	onSessionExpired func()
}

// New creates a gateway client from the API config and session context.
func New(cfg config.APIConfig, sess *auth.Session) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   cfg.RequestTimeout(),
		},
		session: sess,
	}
	if cfg.RequestsPerSecond > 0 {
		// Fractional rates truncate to a zero burst, which rejects every
		// request; a limiter must always admit at least one.
		burst := int(cfg.RequestsPerSecond) * 2
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// WithBaseURL overrides the base URL. The config watcher calls this on
// a hot reload, so the swap is synchronized against in-flight requests.
func (c *Client) WithBaseURL(u string) *Client {
	c.mu.Lock()
	c.baseURL = strings.TrimSuffix(u, "/")
	c.mu.Unlock()
	return c
}

// base returns the current base URL.
func (c *Client) base() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// WithHTTPClient overrides the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// OnSessionExpired installs the teardown hook called after both stored
// tokens are cleared.
func (c *Client) OnSessionExpired(fn func()) *Client {
	c.onSessionExpired = fn
	return c
}

// Session returns the session context this gateway authenticates with.
func (c *Client) Session() *auth.Session {
	return c.session
}

// =============================================================================
// DISPATCH
// =============================================================================

// do executes a request description, recovering once from credential
// expiry, and returns the response body.
func (c *Client) do(ctx context.Context, rc requestConfig) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return c.dispatch(ctx, rc, attemptFresh)
}

// dispatch sends the request. On 401 with state Fresh it refreshes and
// re-dispatches exactly once; it never recurses past attemptRetried.
func (c *Client) dispatch(ctx context.Context, rc requestConfig, state attemptState) ([]byte, error) {
	req, err := c.buildRequest(ctx, rc)
	if err != nil {
		return nil, err
	}

	log.Printf("API request: %s %s", req.Method, req.URL.Path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	log.Printf("API response: %d (%v)", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && state == attemptFresh {
		original := newAPIError(resp.StatusCode, body)
		if err := c.refresh(ctx); err != nil {
			c.teardown()
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, original)
		}
		return c.dispatch(ctx, rc, attemptRetried)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// buildRequest materializes a request description, attaching the bearer
// credential when one is stored.
func (c *Client) buildRequest(ctx context.Context, rc requestConfig) (*http.Request, error) {
	u := c.base() + rc.path
	if len(rc.query) > 0 {
		u += "?" + rc.query.Encode()
	}

	var reader io.Reader
	if rc.body != nil {
		data, err := json.Marshal(rc.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	if creds, err := c.session.Store().Load(); err == nil && creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	return req, nil
}

// =============================================================================
// REFRESH
// =============================================================================

// refreshResponse is the body of a successful token refresh.
type refreshResponse struct {
	Access string `json:"access"`
}

// refresh exchanges the stored refresh credential for a new access token
// and persists it. Any failure (missing credential, rejection, transport
// error) is terminal for the session.
func (c *Client) refresh(ctx context.Context) error {
	creds, err := c.session.Store().Load()
	if err != nil || creds.RefreshToken == "" {
		return fmt.Errorf("no refresh credential: %w", auth.ErrNoCredentials)
	}

	payload, err := json.Marshal(map[string]string{"refresh": creds.RefreshToken})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	// The refresh call bypasses dispatch: it must not carry the expired
	// bearer token and must never itself trigger a refresh.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base()+"/auth/token/refresh/", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log.Printf("API request: POST /auth/token/refresh/")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, body)
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil || rr.Access == "" {
		return fmt.Errorf("invalid refresh response: %w", err)
	}
	return c.session.Store().SetAccess(rr.Access)
}

// teardown clears both stored tokens and signals the UI layer.
func (c *Client) teardown() {
	if err := c.session.Reset(); err != nil {
		log.Printf("failed to clear credentials: %v", err)
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// readResponse reads the body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", int64(maxResponseSize))
	}
	return body, nil
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, requestConfig{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// postJSON performs a POST and, when out is non-nil, decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, requestConfig{method: http.MethodPost, path: path, body: in})
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// delete performs a DELETE, discarding any response body.
func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, requestConfig{method: http.MethodDelete, path: path})
	return err
}

// unmarshalList tolerates both bare JSON arrays and DRF-style paginated
// {"results": [...]} payloads.
func unmarshalList[T any](body []byte) ([]T, error) {
	var list []T
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}
	return page.Results, nil
}

// getList performs a GET and decodes a list response, paginated or not.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	body, err := c.do(ctx, requestConfig{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	return unmarshalList[T](body)
}
