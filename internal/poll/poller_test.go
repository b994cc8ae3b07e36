// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerFiresImmediatelyAndOnInterval(t *testing.T) {
	var calls atomic.Int32
	p := New(20*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond, "first fetch plus at least two interval ticks")
}

func TestStopCancelsInFlightFetch(t *testing.T) {
	canceled := make(chan struct{})
	started := make(chan struct{})
	p := New(time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	})

	p.Start()
	<-started
	p.Stop()

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("fetch context was not canceled by Stop")
	}
	assert.False(t, p.Running())
}

func TestSlowFetchSkipsTicks(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	p := New(10*time.Millisecond, func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
		return nil
	})

	p.Start()
	defer p.Stop()

	// Let several ticks elapse while the first fetch blocks.
	require.Eventually(t, func() bool {
		return p.Skipped() >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "no concurrent fetches for one poller")

	close(release)
	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "polling resumes once the fetch settles")
}

func TestFetchErrorsObservedAndPollingContinues(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	var calls, observed atomic.Int32
	p := New(10*time.Millisecond, func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return wantErr
		}
		return nil
	})
	p.OnError(func(err error) {
		if errors.Is(err, wantErr) {
			observed.Add(1)
		}
	})

	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		return observed.Load() == 1 && calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	var calls atomic.Int32
	p := New(time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	p.Start()
	p.Start()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.Running())

	// A stopped poller can be restarted.
	p.Start()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	p.Stop()
}
