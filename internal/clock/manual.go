package clock

import (
	"sync"
	"time"
)

// Manual hands out tickers that only fire when Tick is called. Tests use it
// to drive pollers period by period.
type Manual struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func NewManual() *Manual { return &Manual{} }

// Factory returns a Factory bound to m.
func (m *Manual) Factory() Factory {
	return func(time.Duration) Ticker {
		t := &manualTicker{c: make(chan time.Time)}
		m.mu.Lock()
		m.tickers = append(m.tickers, t)
		m.mu.Unlock()
		return t
	}
}

// Tick fires every live ticker once and returns how many accepted the tick.
// A ticker whose consumer is busy or gone drops the tick, like time.Ticker.
func (m *Manual) Tick() int {
	m.mu.Lock()
	live := make([]*manualTicker, 0, len(m.tickers))
	for _, t := range m.tickers {
		if !t.stopped() {
			live = append(live, t)
		}
	}
	m.mu.Unlock()

	n := 0
	now := time.Now()
	for _, t := range live {
		select {
		case t.c <- now:
			n++
		case <-time.After(50 * time.Millisecond):
		}
	}
	return n
}

// Live reports how many tickers have not been stopped.
func (m *Manual) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.stopped() {
			n++
		}
	}
	return n
}

type manualTicker struct {
	c    chan time.Time
	mu   sync.Mutex
	done bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
}

func (t *manualTicker) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
