// Package sigchan wakes readers when shared state changes without carrying
// the change itself. A woken reader re-reads the state, such as an order
// book, so any number of changes between reads collapse into one wake-up.
package sigchan

import "context"

// Chan is a coalescing wake-up channel. Emit never blocks.
type Chan struct {
	c chan struct{}
}

// New returns a Chan holding up to bufferSize pending wake-ups, at least one.
func New(bufferSize int) *Chan {
	return &Chan{c: make(chan struct{}, max(1, bufferSize))}
}

// Emit records a change. It is dropped if a wake-up is already pending.
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C is the receive side, for use in select.
func (c *Chan) C() <-chan struct{} {
	return c.c
}

// Wait blocks until a change is pending or ctx is done.
func (c *Chan) Wait(ctx context.Context) error {
	select {
	case <-c.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
