// Package clock abstracts the repeating timer used by the pollers.
package clock

import "time"

// Ticker is the subset of *time.Ticker the pollers need.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Factory creates a ticker firing every d.
type Factory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Real returns tickers backed by time.NewTicker.
func Real(d time.Duration) Ticker { return realTicker{t: time.NewTicker(d)} }
