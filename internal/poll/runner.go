// Package poll runs a sampling round on a fixed period with start/stop
// semantics shared by the native pipeline and the fallback source.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/clock"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// Pipeline is the control surface exposed to the display layer. All methods
// are fire-and-forget; failures only show up in logs and fault events.
type Pipeline interface {
	Start()
	Stop()
	ForceUpdate()
	SetAppState(model.AppState)
	State() model.MonitorState
}

// Round performs one sampling pass. It must check live before every publish;
// live turns false once the round has been superseded by Start or Stop.
type Round func(ctx context.Context, live func() bool)

// Runner owns at most one repeating timer. Rounds never overlap: a tick that
// arrives while a round is still running is skipped.
type Runner struct {
	interval  time.Duration
	newTicker clock.Factory
	round     Round
	log       *zap.Logger

	mu     sync.Mutex
	state  model.MonitorState
	cancel context.CancelFunc
	ticker clock.Ticker

	// gen changes on every Start and Stop.
	gen     atomic.Uint64
	roundMu sync.Mutex
	wg      sync.WaitGroup
}

func NewRunner(interval time.Duration, newTicker clock.Factory, round Round, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if newTicker == nil {
		newTicker = clock.Real
	}
	return &Runner{
		interval:  interval,
		newTicker: newTicker,
		round:     round,
		log:       logger,
	}
}

// Start arms the repeating timer, replacing any timer already running. The
// first round runs immediately.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.log.Debug("replacing running timer")
		r.halt()
	}
	gen := r.gen.Add(1)
	ctx, cancel := context.WithCancel(context.Background())
	t := r.newTicker(r.interval)
	r.cancel, r.ticker, r.state = cancel, t, model.Running

	r.wg.Add(1)
	go r.loop(ctx, t, gen)
	r.log.Info("polling started", zap.Duration("interval", r.interval))
}

// Stop cancels the timer and any in-flight round's remaining publications.
// Stopping a stopped runner is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.halt()
	r.state = model.Stopped
	r.log.Info("polling stopped")
}

// halt must be called with mu held.
func (r *Runner) halt() {
	r.gen.Add(1)
	r.cancel()
	r.ticker.Stop()
	r.cancel, r.ticker = nil, nil
}

// ForceUpdate runs one round in the background without touching the timer.
func (r *Runner) ForceUpdate() {
	gen := r.gen.Load()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.roundMu.Lock()
		defer r.roundMu.Unlock()
		r.run(context.Background(), gen)
	}()
}

// Refresh runs one round and returns once it has finished.
func (r *Runner) Refresh(ctx context.Context) {
	gen := r.gen.Load()
	r.roundMu.Lock()
	defer r.roundMu.Unlock()
	r.run(ctx, gen)
}

// SetAppState stops polling in the background and resumes it in the foreground.
func (r *Runner) SetAppState(s model.AppState) {
	r.log.Debug("app state changed", zap.String("state", string(s)))
	if s.Foreground() {
		r.Start()
		return
	}
	r.Stop()
}

func (r *Runner) State() model.MonitorState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until every loop and forced round has returned.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) loop(ctx context.Context, t clock.Ticker, gen uint64) {
	defer r.wg.Done()
	defer t.Stop()

	r.roundMu.Lock()
	r.run(ctx, gen)
	r.roundMu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !r.roundMu.TryLock() {
				r.log.Debug("previous round still running, skipping tick")
				continue
			}
			r.run(ctx, gen)
			r.roundMu.Unlock()
		}
	}
}

// run must be called with roundMu held.
func (r *Runner) run(ctx context.Context, gen uint64) {
	live := func() bool { return r.gen.Load() == gen }
	if !live() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	r.round(ctx, live)
}
