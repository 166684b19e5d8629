// Package throughput turns successive cumulative byte counters into
// instantaneous transfer rates.
package throughput

import (
	"time"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// State is the previous sample's cumulative counters.
type State struct {
	RxBytes uint64
	TxBytes uint64
	At      time.Time
}

// Rates are kbps-equivalent: bytes*8 / elapsed milliseconds / 1000.
type Rates struct {
	Download float64
	Upload   float64
}

// Calculator owns the RateState. It is not safe for concurrent use; the
// caller sequences updates one at a time.
type Calculator struct {
	prev   State
	primed bool
}

func New() *Calculator { return &Calculator{} }

// Update folds a new reading into the state and returns the rates for it.
func (c *Calculator) Update(r model.NetworkReading) Rates {
	if !c.primed {
		c.prev = State{RxBytes: r.RxBytes, TxBytes: r.TxBytes, At: r.At}
		c.primed = true
		return Rates{}
	}

	if r.Type == model.NetworkNone {
		// Track counters while disconnected so reconnecting does not report
		// the whole gap as one burst.
		at := c.prev.At
		if r.At.After(at) {
			at = r.At
		}
		c.prev = State{RxBytes: r.RxBytes, TxBytes: r.TxBytes, At: at}
		return Rates{}
	}

	elapsed := r.At.Sub(c.prev.At)
	if elapsed <= 0 {
		return Rates{}
	}
	ms := float64(elapsed) / float64(time.Millisecond)
	rates := Rates{
		Download: kbps(c.prev.RxBytes, r.RxBytes, ms),
		Upload:   kbps(c.prev.TxBytes, r.TxBytes, ms),
	}
	c.prev = State{RxBytes: r.RxBytes, TxBytes: r.TxBytes, At: r.At}
	return rates
}

// State returns the stored counters and whether any sample has been seen.
func (c *Calculator) State() (State, bool) { return c.prev, c.primed }

// Reset forgets the previous sample.
func (c *Calculator) Reset() {
	c.prev = State{}
	c.primed = false
}

func kbps(prev, cur uint64, ms float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) * 8 / ms / 1000
}
