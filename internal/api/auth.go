// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/jeranaias/talk-tui/internal/auth"
	"github.com/jeranaias/talk-tui/internal/model"
)

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// loginRequest is the body of /auth/login/.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a credential pair, persists it,
// and returns it. Login never carries a bearer header and never triggers
// refresh.
func (c *Client) Login(ctx context.Context, email, password string) (auth.Credentials, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login/", bytes.NewReader(payload))
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log.Printf("API request: POST /auth/login/")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return auth.Credentials{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return auth.Credentials{}, newAPIError(resp.StatusCode, body)
	}

	var creds auth.Credentials
	if err := json.Unmarshal(body, &creds); err != nil || creds.Empty() {
		return auth.Credentials{}, fmt.Errorf("invalid login response: %w", err)
	}
	if err := c.session.Store().Save(creds); err != nil {
		return auth.Credentials{}, err
	}
	return creds, nil
}

// Logout destroys the stored credential pair and the session actor.
// The backend has no logout endpoint; teardown is client-side.
func (c *Client) Logout() error {
	return c.session.Reset()
}

// Me fetches the authenticated actor's profile and records it on the
// session.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.getJSON(ctx, "/auth/me/", nil, &u); err != nil {
		return nil, err
	}
	c.session.SetActor(&u)
	return &u, nil
}

// Register creates a user account. Used both for self-registration and
// admin-created accounts; client-side validation happens in the views.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	var u model.User
	if err := c.postJSON(ctx, "/auth/users/", reg, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a profile by identifier.
func (c *Client) GetUser(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	if err := c.getJSON(ctx, fmt.Sprintf("/auth/users/%d/", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
