// Package monitor orchestrates the native sampling pipeline: every period it
// reads all categories from a sampler.Source, derives network throughput and
// publishes one event per category on the bus.
package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/clock"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/poll"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/throughput"
)

// DefaultInterval is the polling period of the native pipeline.
const DefaultInterval = 2 * time.Second

// Options tunes a Controller. Zero values pick the defaults.
type Options struct {
	Interval  time.Duration
	NewTicker clock.Factory
	Now       func() time.Time
	// FaultLogInterval throttles repeated failure logs per category.
	FaultLogInterval time.Duration
}

// Controller is the Monitor Controller. The embedded runner provides
// Start, Stop, ForceUpdate, Refresh, SetAppState, State and Wait.
type Controller struct {
	*poll.Runner

	src    sampler.Source
	bus    *event.Bus
	log    *zap.Logger
	now    func() time.Time
	faults *poll.Faults
	// rates is only touched from rounds, which the runner serializes.
	rates *throughput.Calculator
}

var _ poll.Pipeline = (*Controller)(nil)

func New(src sampler.Source, bus *event.Bus, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("monitor")
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		src:    src,
		bus:    bus,
		log:    logger,
		now:    opts.Now,
		faults: poll.NewFaults(bus, opts.FaultLogInterval, opts.Now, logger),
		rates:  throughput.New(),
	}
	c.Runner = poll.NewRunner(opts.Interval, opts.NewTicker, c.round, logger)
	return c
}

// round samples every category concurrently so a slow read does not hold
// back the others.
func (c *Controller) round(ctx context.Context, live func() bool) {
	var g errgroup.Group
	g.Go(func() error { c.sampleCPU(ctx, live); return nil })
	g.Go(func() error { c.sampleMemory(ctx, live); return nil })
	g.Go(func() error { c.sampleBattery(ctx, live); return nil })
	g.Go(func() error { c.sampleStorage(ctx, live); return nil })
	g.Go(func() error { c.sampleNetwork(ctx, live); return nil })
	_ = g.Wait()
}

func (c *Controller) sampleCPU(ctx context.Context, live func() bool) {
	r, err := c.src.CPU(ctx)
	if errors.Is(err, sampler.ErrNotReady) {
		c.log.Debug("cpu reading skipped", zap.Error(err))
		return
	}
	if err != nil {
		c.faults.Report(live, model.CategoryCPU, err)
		return
	}
	if live() {
		c.bus.CPU.Publish(sampler.CPUSnapshot(r, c.now()))
	}
}

func (c *Controller) sampleMemory(ctx context.Context, live func() bool) {
	r, err := c.src.Memory(ctx)
	if err != nil {
		c.faults.Report(live, model.CategoryMemory, err)
		return
	}
	snap, err := sampler.MemorySnapshot(r, c.now())
	if err != nil {
		c.faults.Report(live, model.CategoryMemory, err)
		return
	}
	if live() {
		c.bus.Memory.Publish(snap)
	}
}

func (c *Controller) sampleBattery(ctx context.Context, live func() bool) {
	r, err := c.src.Battery(ctx)
	if err != nil {
		c.faults.Report(live, model.CategoryBattery, err)
		return
	}
	snap, err := sampler.BatterySnapshot(r, c.now())
	if err != nil {
		c.faults.Report(live, model.CategoryBattery, err)
		return
	}
	if live() {
		c.bus.Battery.Publish(snap)
	}
}

func (c *Controller) sampleStorage(ctx context.Context, live func() bool) {
	r, err := c.src.Storage(ctx)
	if err != nil {
		c.faults.Report(live, model.CategoryStorage, err)
		return
	}
	snap, err := sampler.StorageSnapshot(r, c.now())
	if err != nil {
		c.faults.Report(live, model.CategoryStorage, err)
		return
	}
	if live() {
		c.bus.Storage.Publish(snap)
	}
}

func (c *Controller) sampleNetwork(ctx context.Context, live func() bool) {
	r, err := c.src.Network(ctx)
	if err != nil {
		c.faults.Report(live, model.CategoryNetwork, err)
		return
	}
	if r.At.IsZero() {
		r.At = c.now()
	}
	rates := c.rates.Update(r)
	if live() {
		c.bus.Network.Publish(model.Network{
			Type:          r.Type,
			DownloadSpeed: rates.Download,
			UploadSpeed:   rates.Upload,
			SampledAt:     r.At,
		})
	}
}
