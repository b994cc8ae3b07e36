// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poll provides periodic background refresh for views whose
// backing data changes server-side (chat rooms, conversations, the
// notification badge).
//
// A Poller fires a fetch function on a fixed interval until stopped.
// Ticks are skipped while a previous fetch is still running, so a slow
// backend never stacks concurrent fetches for the same view.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Fetch is one refresh pass. The context is canceled when the poller
// stops.
type Fetch func(ctx context.Context) error

// Poller invokes a fetch function on a fixed interval.
type Poller struct {
	interval time.Duration
	fetch    Fetch

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	busy    atomic.Bool
	ticks   atomic.Int64
	skipped atomic.Int64

	// onError observes fetch failures; polling continues regardless.
	onError func(error)
}

// New creates a poller. The poller is idle until Start.
func New(interval time.Duration, fetch Fetch) *Poller {
	return &Poller{interval: interval, fetch: fetch}
}

// OnError registers an observer for fetch failures. Must be called
// before Start.
func (p *Poller) OnError(fn func(error)) {
	p.onError = fn
}

// Start begins polling. The first fetch fires immediately, then on
// every interval tick. Start on a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop cancels the in-flight fetch and waits for the loop to exit.
// Stop on an idle poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Ticks returns the number of fetches dispatched since Start.
func (p *Poller) Ticks() int64 { return p.ticks.Load() }

// Skipped returns the number of ticks dropped because a fetch was
// still in flight.
func (p *Poller) Skipped() int64 { return p.skipped.Load() }

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	p.run(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.busy.Load() {
				p.skipped.Add(1)
				continue
			}
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	p.busy.Store(true)
	defer p.busy.Store(false)

	p.ticks.Add(1)
	if err := p.fetch(ctx); err != nil && ctx.Err() == nil && p.onError != nil {
		p.onError(err)
	}
}
