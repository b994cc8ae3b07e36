// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vote implements the optimistic vote controller shared by every
// votable item (post cards, post detail, comments).
//
// A controller tracks the viewer's stored vote and the displayed count
// for one item. Applying a transition updates the local state
// immediately and hands the caller the target value to confirm against
// the backend; Confirm settles the optimistic state, Rollback restores
// the exact pre-transition snapshot. The displayed count is therefore
// always the server-confirmed value adjusted by at most one pending
// delta.
//
// Transitions on an item are serialized: Apply returns ErrVoteInFlight
// while a previous transition is awaiting Confirm or Rollback, so a
// double-click can never stack two optimistic deltas.
package vote

import (
	"errors"
	"sync"
)

// =============================================================================
// VOTE VALUES
// =============================================================================

// Vote directions. None is the absence of a vote.
const (
	Up   = 1
	None = 0
	Down = -1
)

var (
	// ErrVoteInFlight indicates a transition is already awaiting
	// confirmation; the caller should disable the control until it
	// settles.
	ErrVoteInFlight = errors.New("vote already in flight")

	// ErrBadDirection indicates a direction other than Up or Down.
	ErrBadDirection = errors.New("vote direction must be +1 or -1")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the vote state for one votable item.
type Controller struct {
	mu sync.Mutex

	value int // viewer's stored vote: Up, Down, or None
	count int // displayed count

	inFlight  bool
	snapValue int
	snapCount int
}

// New creates a controller seeded with the server-confirmed state.
func New(value, count int) *Controller {
	return &Controller{value: value, count: count}
}

// State returns the current (vote, displayed count) pair.
func (c *Controller) State() (value, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.count
}

// InFlight reports whether a transition is awaiting settlement.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Reset re-seeds the controller after the item is refetched from the
// server, discarding any local state.
func (c *Controller) Reset(value, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.count = count
	c.inFlight = false
}

// Apply performs one transition in the given direction (Up or Down) and
// returns the target value the caller must confirm against the backend:
//
//	current  action      new    delta
//	none     up          +1     +1
//	none     down        -1     -1
//	+1       up          none   -1
//	+1       down        -1     -2
//	-1       down        none   +1
//	-1       up          +1     +2
//
// The delta is applied to the displayed count before Apply returns. The
// snapshot taken here is what Rollback restores.
func (c *Controller) Apply(direction int) (target int, err error) {
	if direction != Up && direction != Down {
		return None, ErrBadDirection
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return None, ErrVoteInFlight
	}

	c.snapValue = c.value
	c.snapCount = c.count
	c.inFlight = true

	if c.value == direction {
		// Toggle off
		target = None
	} else {
		// Fresh vote or switch
		target = direction
	}
	c.count += target - c.value
	c.value = target
	return target, nil
}

// Confirm settles the pending transition: the optimistic state becomes
// authoritative.
func (c *Controller) Confirm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
}

// Rollback restores the exact snapshot taken by Apply, discarding the
// optimistic delta.
func (c *Controller) Rollback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inFlight {
		return
	}
	c.value = c.snapValue
	c.count = c.snapCount
	c.inFlight = false
}
