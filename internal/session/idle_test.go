// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// advance installs a fake clock and returns a function that moves it.
func advance(m *Manager) func(d time.Duration) {
	current := time.Now()
	m.now = func() time.Time { return current }
	m.startTime = current
	m.lastActivity = current
	return func(d time.Duration) { current = current.Add(d) }
}

func TestCheckFiresWarningThenTimeout(t *testing.T) {
	m := NewManager(Config{Timeout: 10 * time.Minute, WarningBefore: 2 * time.Minute})
	tick := advance(m)

	var warnings []time.Duration
	var timeouts int
	m.SetWarningCallback(func(remaining time.Duration) { warnings = append(warnings, remaining) })
	m.SetTimeoutCallback(func() { timeouts++ })

	tick(7 * time.Minute)
	assert.True(t, m.Check())
	assert.Empty(t, warnings, "no warning before the threshold")

	tick(2 * time.Minute) // 9 minutes idle
	assert.True(t, m.Check())
	require.Len(t, warnings, 1)
	assert.Equal(t, time.Minute, warnings[0])

	// Warning fires once per idle period
	assert.True(t, m.Check())
	assert.Len(t, warnings, 1)

	tick(90 * time.Second) // past the deadline
	assert.False(t, m.Check())
	assert.Equal(t, 1, timeouts)

	// Timeout also fires once
	assert.False(t, m.Check())
	assert.Equal(t, 1, timeouts)
}

func TestActivityResetsIdleClock(t *testing.T) {
	m := NewManager(Config{Timeout: 10 * time.Minute, WarningBefore: 2 * time.Minute})
	tick := advance(m)

	var warnings int
	m.SetWarningCallback(func(time.Duration) { warnings++ })

	tick(9 * time.Minute)
	assert.True(t, m.Check())
	assert.Equal(t, 1, warnings)

	m.RecordActivity()
	assert.Equal(t, time.Duration(0), m.IdleTime())
	assert.Equal(t, 10*time.Minute, m.RemainingTime())

	// The warning is re-armed for the next idle period
	tick(9 * time.Minute)
	assert.True(t, m.Check())
	assert.Equal(t, 2, warnings)
}

func TestExpiredAndRemaining(t *testing.T) {
	m := NewManager(Config{Timeout: 10 * time.Minute, WarningBefore: 2 * time.Minute})
	tick := advance(m)

	assert.False(t, m.Expired())
	tick(10 * time.Minute)
	assert.True(t, m.Expired())
	assert.Equal(t, time.Duration(0), m.RemainingTime())
}

func TestZeroTimeoutDisablesIdleLogout(t *testing.T) {
	m := NewManager(Config{Timeout: 0})
	tick := advance(m)

	var timeouts int
	m.SetTimeoutCallback(func() { timeouts++ })

	tick(24 * time.Hour)
	assert.True(t, m.Check())
	assert.False(t, m.Expired())
	assert.Equal(t, 0, timeouts)
}
