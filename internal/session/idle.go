// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks viewer activity and enforces the idle
// timeout. The UI records activity on every keypress; a periodic Check
// fires the warning callback shortly before the deadline and the
// timeout callback once it passes, at which point the app signs the
// viewer out locally.
package session

import (
	"sync"
	"time"
)

// =============================================================================
// IDLE MANAGER
// =============================================================================

// Manager watches for viewer inactivity.
type Manager struct {
	mu sync.Mutex

	startTime    time.Time
	lastActivity time.Time

	timeout       time.Duration
	warningBefore time.Duration
	warningShown  bool
	expiredFired  bool

	onTimeout func()
	onWarning func(remaining time.Duration)

	now func() time.Time
}

// Config holds idle manager settings.
type Config struct {
	// Timeout is how long the session may sit idle before the viewer
	// is signed out. Zero disables the idle timeout entirely.
	Timeout time.Duration

	// WarningBefore is how long before the deadline to warn.
	WarningBefore time.Duration
}

// DefaultConfig returns the default idle settings: a 30 minute
// timeout with a 2 minute warning.
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Minute,
		WarningBefore: 2 * time.Minute,
	}
}

// NewManager creates an idle manager. The activity clock starts now.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		timeout:       cfg.Timeout,
		warningBefore: cfg.WarningBefore,
		now:           time.Now,
	}
	m.startTime = m.now()
	m.lastActivity = m.startTime
	return m
}

// SetTimeoutCallback sets the function called once when the idle
// deadline passes.
func (m *Manager) SetTimeoutCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTimeout = fn
}

// SetWarningCallback sets the function called once when the deadline
// approaches.
func (m *Manager) SetWarningCallback(fn func(remaining time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWarning = fn
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity resets the idle clock. Called on user input.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = m.now()
	m.warningShown = false
	m.expiredFired = false
}

// IdleTime returns how long since the last recorded activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.lastActivity)
}

// Duration returns how long the session has been open.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.startTime)
}

// RemainingTime returns time until the idle deadline, or zero once
// passed. With the timeout disabled it always returns zero.
func (m *Manager) RemainingTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeout <= 0 {
		return 0
	}
	remaining := m.timeout - m.now().Sub(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the idle deadline has passed.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout > 0 && m.now().Sub(m.lastActivity) >= m.timeout
}

// =============================================================================
// PERIODIC CHECK
// =============================================================================

// Check evaluates the idle clock and fires due callbacks, each at
// most once per idle period. It returns false once the session has
// expired.
func (m *Manager) Check() bool {
	m.mu.Lock()

	if m.timeout <= 0 {
		m.mu.Unlock()
		return true
	}

	idle := m.now().Sub(m.lastActivity)
	expired := idle >= m.timeout

	var fireTimeout func()
	if expired && !m.expiredFired {
		m.expiredFired = true
		fireTimeout = m.onTimeout
	}

	var fireWarning func(time.Duration)
	var remaining time.Duration
	if !expired && !m.warningShown && idle >= m.timeout-m.warningBefore {
		m.warningShown = true
		remaining = m.timeout - idle
		fireWarning = m.onWarning
	}
	m.mu.Unlock()

	// Callbacks run outside the lock; they commonly call back into
	// the manager.
	if fireWarning != nil {
		fireWarning(remaining)
	}
	if fireTimeout != nil {
		fireTimeout()
	}
	return !expired
}
