// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionExpired indicates the refresh credential was missing or
	// rejected: both stored tokens have been cleared and the caller-facing
	// layer must return to the unauthenticated landing state.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnauthorized indicates a 401 that was not recovered by refresh.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the actor lacks permission (403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the target no longer exists (404).
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx backend response. The gateway never interprets
// domain payloads; Detail carries whatever the backend said.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// errorBody is the DRF-style error payload shape.
type errorBody struct {
	Detail string `json:"detail"`
}

// newAPIError builds an APIError from a response body, tolerating
// non-JSON bodies.
func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return &APIError{Status: status, Detail: eb.Detail}
	}
	detail := string(body)
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return &APIError{Status: status, Detail: detail}
}
