// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"sync"

	"github.com/jeranaias/talk-tui/internal/model"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the explicit session context passed to the request gateway
// and to every view that needs the current actor. Views never reach into
// ambient storage; they ask the session.
type Session struct {
	mu    sync.RWMutex
	store Store
	actor *model.User
}

// NewSession creates a session backed by the given credential store.
func NewSession(store Store) *Session {
	return &Session{store: store}
}

// Store returns the underlying credential store.
func (s *Session) Store() Store {
	return s.store
}

// Actor returns the authenticated user, or nil when logged out.
func (s *Session) Actor() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

// SetActor records the authenticated user after login or /auth/me/.
func (s *Session) SetActor(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = u
}

// Authenticated reports whether a credential pair is stored. The actor
// may still be nil until /auth/me/ completes.
func (s *Session) Authenticated() bool {
	_, err := s.store.Load()
	return err == nil
}

// CanModerate reports whether the current actor may view the moderation
// queue.
func (s *Session) CanModerate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor != nil && s.actor.Role.CanModerate()
}

// Reset tears the session down: both tokens destroyed, actor cleared.
// Used by logout and by the gateway on irrecoverable refresh failure.
func (s *Session) Reset() error {
	s.mu.Lock()
	s.actor = nil
	s.mu.Unlock()
	return s.store.Clear()
}
