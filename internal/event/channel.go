// Package event delivers published snapshots to any number of listeners.
package event

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Unsubscriber detaches a listener. Calling it more than once is a no-op.
type Unsubscriber interface {
	Unsubscribe()
}

// Channel is a typed broadcast point. Publish invokes every listener
// synchronously on the caller's goroutine, so a single publisher sees its
// events delivered in order.
type Channel[T any] struct {
	name string
	log  *zap.Logger

	mu   sync.Mutex
	subs []*Subscription[T] // replaced, never mutated in place
}

// Subscription is one registered listener.
type Subscription[T any] struct {
	ch     *Channel[T]
	fn     func(T)
	active atomic.Bool
}

func NewChannel[T any](name string, logger *zap.Logger) *Channel[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel[T]{name: name, log: logger}
}

// Name is the event name listeners registered for.
func (c *Channel[T]) Name() string { return c.name }

func (c *Channel[T]) Subscribe(fn func(T)) *Subscription[T] {
	s := &Subscription[T]{ch: c, fn: fn}
	s.active.Store(true)
	c.mu.Lock()
	next := make([]*Subscription[T], len(c.subs), len(c.subs)+1)
	copy(next, c.subs)
	c.subs = append(next, s)
	c.mu.Unlock()
	return s
}

// Publish delivers v to the listeners registered at call time and returns how
// many received it. Listeners removed mid-dispatch are skipped.
func (c *Channel[T]) Publish(v T) int {
	c.mu.Lock()
	subs := c.subs
	c.mu.Unlock()

	n := 0
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		if c.deliver(s, v) {
			n++
		}
	}
	return n
}

func (c *Channel[T]) deliver(s *Subscription[T], v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("listener panicked", zap.String("event", c.name), zap.Any("panic", r))
			ok = false
		}
	}()
	s.fn(v)
	return true
}

// Len reports the number of active listeners.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (s *Subscription[T]) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	c := s.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]*Subscription[T], 0, len(c.subs))
	for _, other := range c.subs {
		if other != s {
			next = append(next, other)
		}
	}
	c.subs = next
}
