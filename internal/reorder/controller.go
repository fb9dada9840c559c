// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package reorder

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Persister saves a complete ordering, ids[i] getting rank i.
type Persister interface {
	Reorder(ctx context.Context, ids []int64) error
}

// Outcome is how a drop settled.
type Outcome int

const (
	// Confirmed means the ordering was saved.
	Confirmed Outcome = iota
	// Reverted means saving failed and the list went back to the last
	// ordering known to be saved.
	Reverted
	// Superseded means saving failed but a newer change had already been
	// applied, so the list was left as that change made it.
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	case Superseded:
		return "superseded"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result reports the settlement of one drop.
type Result struct {
	Generation uint64
	Outcome    Outcome
	Err        error
}

// DefaultTimeout bounds each persist call.
const DefaultTimeout = 10 * time.Second

// Controller holds an ordered list for an editor. A drop is applied to the
// local list immediately and saved in the background; the full ordering is
// always submitted so no item keeps a stale rank. The controller also
// tracks the last ordering known to be saved, which is what a failed save
// reverts to.
type Controller[T any] struct {
	persist Persister
	id      func(T) int64
	timeout time.Duration

	mu        sync.Mutex
	items     []T
	gen       uint64
	pending   int
	onSettled func(Result)

	// saved is the newest ordering the persister accepted (or Set
	// installed), as of generation savedGen. reverted is true while items
	// shows saved because the latest drop failed.
	saved    []T
	savedGen uint64
	reverted bool
}

// NewController returns a controller over items. id extracts the
// persistent id of an item.
func NewController[T any](p Persister, id func(T) int64, items []T) *Controller[T] {
	c := &Controller[T]{persist: p, id: id, timeout: DefaultTimeout}
	c.items = slices.Clone(items)
	c.saved = c.items
	return c
}

// SetTimeout changes the per-save deadline.
func (c *Controller[T]) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// OnSettled registers fn to run after every save attempt finishes, for
// example to reload the list from the server. It runs on the saving
// goroutine.
func (c *Controller[T]) OnSettled(fn func(Result)) {
	c.mu.Lock()
	c.onSettled = fn
	c.mu.Unlock()
}

// Items returns a copy of the current local ordering.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Set replaces the local ordering, typically with a fresh server read.
// Saves still in flight can no longer revert the list.
func (c *Controller[T]) Set(items []T) {
	c.mu.Lock()
	c.items = slices.Clone(items)
	c.gen++
	c.saved = c.items
	c.savedGen = c.gen
	c.reverted = false
	c.mu.Unlock()
}

// Pending reports whether any save is in flight.
func (c *Controller[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Drop moves the item at from to index to, then saves the new ordering in
// the background. The returned channel receives exactly one Result. ok is
// false, and nothing happens, when from equals to or either index is out
// of range.
func (c *Controller[T]) Drop(ctx context.Context, from, to int) (_ <-chan Result, ok bool) {
	c.mu.Lock()
	if from == to || from < 0 || to < 0 || from >= len(c.items) || to >= len(c.items) {
		c.mu.Unlock()
		return nil, false
	}

	c.items = Move(c.items, from, to)
	c.reverted = false
	c.gen++
	gen := c.gen
	c.pending++
	ids := make([]int64, len(c.items))
	for i, it := range c.items {
		ids[i] = c.id(it)
	}
	next := c.items
	timeout := c.timeout
	c.mu.Unlock()

	done := make(chan Result, 1)
	go func() {
		saveCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.persist.Reorder(saveCtx, ids)
		cancel()

		res := c.settle(gen, next, err)
		done <- res
		close(done)
	}()
	return done, true
}

// settle records how the save of generation gen, which submitted next,
// finished. A failure of the newest drop shows the saved ordering again.
// A success newer than the saved ordering becomes the saved ordering, and
// is shown too when the list is currently reverted.
func (c *Controller[T]) settle(gen uint64, next []T, err error) Result {
	c.mu.Lock()
	c.pending--
	res := Result{Generation: gen, Outcome: Confirmed, Err: err}
	switch {
	case err == nil:
		if gen > c.savedGen {
			c.saved = next
			c.savedGen = gen
			if c.reverted {
				c.items = next
			}
		}
	case c.gen == gen:
		c.items = c.saved
		c.reverted = true
		res.Outcome = Reverted
	default:
		res.Outcome = Superseded
	}
	fn := c.onSettled
	c.mu.Unlock()

	if fn != nil {
		fn(res)
	}
	return res
}
