// Package fallback substitutes for the native pipeline when the primary
// sampler is structurally absent. It polls a reduced metric set (memory,
// battery, storage, connection type) on a longer period and publishes through
// the same bus contract; CPU and throughput are never published.
package fallback

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/clock"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/poll"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
)

// DefaultInterval is the polling period of the fallback path.
const DefaultInterval = 3 * time.Second

type Options struct {
	Interval         time.Duration
	NewTicker        clock.Factory
	Now              func() time.Time
	FaultLogInterval time.Duration
}

// Poller drives a Probe. The embedded runner provides the control surface.
type Poller struct {
	*poll.Runner

	probe  Probe
	bus    *event.Bus
	now    func() time.Time
	faults *poll.Faults
}

var _ poll.Pipeline = (*Poller)(nil)

func New(probe Probe, bus *event.Bus, opts Options, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("fallback")
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Poller{
		probe:  probe,
		bus:    bus,
		now:    opts.Now,
		faults: poll.NewFaults(bus, opts.FaultLogInterval, opts.Now, logger),
	}
	p.Runner = poll.NewRunner(opts.Interval, opts.NewTicker, p.round, logger)
	return p
}

func (p *Poller) round(ctx context.Context, live func() bool) {
	var g errgroup.Group
	g.Go(func() error {
		r, err := p.probe.Memory(ctx)
		if err == nil {
			var snap model.Memory
			if snap, err = sampler.MemorySnapshot(r, p.now()); err == nil && live() {
				p.bus.Memory.Publish(snap)
			}
		}
		if err != nil {
			p.faults.Report(live, model.CategoryMemory, err)
		}
		return nil
	})
	g.Go(func() error {
		r, err := p.probe.Battery(ctx)
		if err == nil {
			var snap model.Battery
			if snap, err = sampler.BatterySnapshot(r, p.now()); err == nil && live() {
				p.bus.Battery.Publish(snap)
			}
		}
		if err != nil {
			p.faults.Report(live, model.CategoryBattery, err)
		}
		return nil
	})
	g.Go(func() error {
		r, err := p.probe.Storage(ctx)
		if err == nil {
			var snap model.Storage
			if snap, err = sampler.StorageSnapshot(r, p.now()); err == nil && live() {
				p.bus.Storage.Publish(snap)
			}
		}
		if err != nil {
			p.faults.Report(live, model.CategoryStorage, err)
		}
		return nil
	})
	g.Go(func() error {
		typ, err := p.probe.NetworkType(ctx)
		if err != nil {
			p.faults.Report(live, model.CategoryNetwork, err)
			return nil
		}
		if live() {
			p.bus.Network.Publish(model.Network{Type: typ, TypeOnly: true, SampledAt: p.now()})
		}
		return nil
	})
	_ = g.Wait()
}
