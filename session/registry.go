// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"sync"
	"time"
)

// Registry owns one Controller per voter token and drives the periodic
// refresh that every controller relies on to notice a newly opened
// session.
type Registry struct {
	store    Store
	interval time.Duration
	hold     time.Duration

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(st Store, refreshInterval, hold time.Duration) *Registry {
	return &Registry{
		store:       st,
		interval:    refreshInterval,
		hold:        hold,
		controllers: make(map[string]*Controller),
	}
}

// Controller returns the voter's controller, creating it on first use.
// A fresh controller refreshes immediately so the first status request
// already reflects the store.
func (r *Registry) Controller(voterToken string) *Controller {
	r.mu.Lock()
	c, found := r.controllers[voterToken]
	if !found {
		c = NewController(r.store, voterToken, r.hold)
		r.controllers[voterToken] = c
	}
	r.mu.Unlock()

	if !found {
		c.Refresh()
	}
	return c
}

// Run refreshes every known controller on a fixed interval until the
// context is cancelled. No backoff: a failed fetch simply waits for
// the next tick or a manual refresh.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range r.snapshot() {
				c.Refresh()
			}
		}
	}
}

func (r *Registry) snapshot() []*Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		out = append(out, c)
	}
	return out
}
