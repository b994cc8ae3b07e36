// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		action     int
		wantTarget int
		wantDelta  int
	}{
		{"none click up", None, Up, Up, +1},
		{"none click down", None, Down, Down, -1},
		{"up toggle off", Up, Up, None, -1},
		{"up switch down", Up, Down, Down, -2},
		{"down toggle off", Down, Down, None, +1},
		{"down switch up", Down, Up, Up, +2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.current, 10)

			target, err := c.Apply(tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, target)

			value, count := c.State()
			assert.Equal(t, tt.wantTarget, value, "optimistic value applied immediately")
			assert.Equal(t, 10+tt.wantDelta, count, "optimistic delta applied immediately")
		})
	}
}

func TestConfirmSettlesOptimisticState(t *testing.T) {
	// Vote round-trip: (none, 10) -> click up -> (+1, 11) immediately,
	// confirmed state stays.
	c := New(None, 10)

	target, err := c.Apply(Up)
	require.NoError(t, err)
	assert.Equal(t, Up, target)

	value, count := c.State()
	assert.Equal(t, Up, value)
	assert.Equal(t, 11, count)

	c.Confirm()
	value, count = c.State()
	assert.Equal(t, Up, value)
	assert.Equal(t, 11, count)
	assert.False(t, c.InFlight())
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	c := New(None, 10)

	_, err := c.Apply(Up)
	require.NoError(t, err)

	c.Rollback()
	value, count := c.State()
	assert.Equal(t, None, value)
	assert.Equal(t, 10, count)
	assert.False(t, c.InFlight())

	// Rollback without a pending transition is a no-op
	c.Rollback()
	value, count = c.State()
	assert.Equal(t, None, value)
	assert.Equal(t, 10, count)
}

func TestToggleIdempotence(t *testing.T) {
	// Upvote twice in sequence from (none, 5): (+1, 6) then (none, 5).
	c := New(None, 5)

	target, err := c.Apply(Up)
	require.NoError(t, err)
	assert.Equal(t, Up, target)
	c.Confirm()

	value, count := c.State()
	assert.Equal(t, Up, value)
	assert.Equal(t, 6, count)

	target, err = c.Apply(Up)
	require.NoError(t, err)
	assert.Equal(t, None, target, "second click is a toggle-off, confirmed as value 0")
	c.Confirm()

	value, count = c.State()
	assert.Equal(t, None, value)
	assert.Equal(t, 5, count)
}

func TestSwitchAppliesDoubleDeltaInOneStep(t *testing.T) {
	// From (+1, 8), clicking down yields (-1, 6).
	c := New(Up, 8)

	target, err := c.Apply(Down)
	require.NoError(t, err)
	assert.Equal(t, Down, target)

	value, count := c.State()
	assert.Equal(t, Down, value)
	assert.Equal(t, 6, count)
}

func TestInFlightSerialization(t *testing.T) {
	c := New(None, 5)

	_, err := c.Apply(Up)
	require.NoError(t, err)
	assert.True(t, c.InFlight())

	// A second transition while the first awaits settlement is refused:
	// never more than one outstanding delta per item.
	_, err = c.Apply(Down)
	assert.ErrorIs(t, err, ErrVoteInFlight)

	value, count := c.State()
	assert.Equal(t, Up, value)
	assert.Equal(t, 6, count)

	c.Rollback()
	_, err = c.Apply(Down)
	assert.NoError(t, err, "settled controller accepts the next transition")
}

func TestApplyRejectsBadDirection(t *testing.T) {
	c := New(None, 5)
	for _, dir := range []int{0, 2, -2, 100} {
		_, err := c.Apply(dir)
		assert.ErrorIs(t, err, ErrBadDirection)
	}
	assert.False(t, c.InFlight())
}

func TestResetDiscardsLocalState(t *testing.T) {
	c := New(None, 5)
	_, err := c.Apply(Up)
	require.NoError(t, err)

	// Item refetched from the server mid-flight: server truth wins.
	c.Reset(Down, 3)
	value, count := c.State()
	assert.Equal(t, Down, value)
	assert.Equal(t, 3, count)
	assert.False(t, c.InFlight())
}
