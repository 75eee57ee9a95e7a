package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ka2n/exo/log"
)

// DefaultCapacity is the number of pending states a Channel buffers
const DefaultCapacity = 100

var (
	// ErrDetached is returned by Send once the consumer has gone away
	ErrDetached = errors.New("update consumer detached")
	// ErrClosed is returned by Send after Close
	ErrClosed = errors.New("update channel closed")
)

// Channel carries state snapshots from the controller and its load tasks to a
// single consumer. Ordering holds per producer only.
type Channel struct {
	ch     chan State
	done   chan struct{}
	closed chan struct{}

	// mu keeps close(ch) from racing in-flight sends
	mu       sync.RWMutex
	attached atomic.Bool

	detachOnce sync.Once
	closeOnce  sync.Once
}

// NewChannel returns a channel buffering up to capacity states.
// A capacity below 1 uses DefaultCapacity.
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Channel{
		ch:     make(chan State, capacity),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// Cap returns the buffer capacity
func (c *Channel) Cap() int {
	return cap(c.ch)
}

// Len returns the number of pending states
func (c *Channel) Len() int {
	return len(c.ch)
}

// Send enqueues s, blocking while the buffer is full.
// It gives up with ErrDetached, ErrClosed or ctx.Err().
func (c *Channel) Send(ctx context.Context, s State) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	select {
	case <-c.closed:
		return ErrClosed
	case <-c.done:
		return ErrDetached
	default:
	}

	select {
	case c.ch <- s:
		return nil
	case <-c.done:
		return ErrDetached
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attach returns the receiving side. Only the first call gets the live
// stream; later calls get an already closed channel and false.
func (c *Channel) Attach() (<-chan State, bool) {
	if c.attached.CompareAndSwap(false, true) {
		log.Info("Update consumer attached")
		return c.ch, true
	}
	log.Debug("Update consumer already attached, returning empty stream")
	empty := make(chan State)
	close(empty)
	return empty, false
}

// Detach tells producers the consumer is gone. Blocked and future sends
// return ErrDetached.
func (c *Channel) Detach() {
	c.detachOnce.Do(func() {
		close(c.done)
	})
}

// Close shuts down the producer side. The consumer drains what is buffered
// and then sees the stream end.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		close(c.ch)
		c.mu.Unlock()
	})
}
