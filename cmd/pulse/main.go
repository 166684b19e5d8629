package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/bridge"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/config"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/device"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/exporter"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/fallback"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/logging"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/monitor"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/poll"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/ui"
)

// pipeline is what both the native controller and the fallback poller offer.
type pipeline interface {
	poll.Pipeline
	Refresh(ctx context.Context)
	Wait()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pulse:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromFlags(args)
	if err != nil {
		return err
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Path: cfg.LogFile}
	if cfg.Mode == config.ModeTUI && logOpts.Path == "" {
		logOpts.Path = filepath.Join(os.TempDir(), "pulse.log")
	}
	logOpts.Console = logOpts.Path == ""
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus(logger)
	profile := device.Lookup(ctx, "/sys", logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	detach := exporter.New(reg).Attach(bus)
	defer detach.Unsubscribe()

	p, native := newPipeline(ctx, cfg, bus, logger)
	defer func() {
		p.Stop()
		p.Wait()
	}()

	switch cfg.Mode {
	case config.ModeJSON:
		var settle time.Duration
		if native {
			// CPU and throughput need two samples.
			settle = min(cfg.Interval, time.Second)
		}
		return printOnce(ctx, p, bus, settle)
	case config.ModeJSONStream:
		return stream(ctx, p, bus)
	case config.ModeServe:
		p.Start()
		return bridge.New(p, bus, profile, reg, logger).ListenAndServe(ctx, cfg.Listen)
	default:
		p.Start()
		return ui.RunTUI(p, bus, profile)
	}
}

// newPipeline picks the native controller when the host exposes the primary
// counters and the fallback poller otherwise. It reports whether the native
// controller was chosen.
func newPipeline(ctx context.Context, cfg config.Config, bus *event.Bus, logger *zap.Logger) (pipeline, bool) {
	opts := sampler.HostOptions{StoragePath: cfg.StoragePath}
	if cfg.SyntheticCPU {
		opts.SyntheticCPU = sampler.NewSyntheticCPU(time.Now().UnixNano())
	}
	host := sampler.NewHost(opts, logger)

	// Probing also records the CPU baseline, so a forced native source runs it too.
	var probeErr error
	if cfg.Source != config.SourceFallback {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.Interval)
		probeErr = host.Probe(probeCtx)
		cancel()
	}
	src := chooseSource(cfg.Source, probeErr)
	logger.Info("metric source selected",
		zap.String("requested", string(cfg.Source)),
		zap.String("source", string(src)),
		zap.NamedError("probe", probeErr))

	if src == config.SourceFallback {
		return fallback.New(fallback.NewProcProbe(cfg.StoragePath), bus,
			fallback.Options{Interval: cfg.FallbackInterval}, logger), false
	}
	return monitor.New(host, bus, monitor.Options{Interval: cfg.Interval}, logger), true
}

// chooseSource resolves auto against the native probe result.
func chooseSource(requested config.Source, probeErr error) config.Source {
	if requested != config.SourceAuto {
		return requested
	}
	if probeErr != nil {
		return config.SourceFallback
	}
	return config.SourceNative
}

// printOnce runs a single round and writes every published event as one JSON
// document. A positive settle runs an unrecorded round first and waits that
// long, so delta-based readings have a baseline.
func printOnce(ctx context.Context, p pipeline, bus *event.Bus, settle time.Duration) error {
	if settle > 0 {
		p.Refresh(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
		}
	}

	var (
		mu   sync.Mutex
		envs []event.Envelope
	)
	sub := bus.Forward(func(e event.Envelope) {
		mu.Lock()
		envs = append(envs, e)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	p.Refresh(ctx)

	mu.Lock()
	defer mu.Unlock()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(envs)
}

// stream writes NDJSON until ctx is cancelled.
func stream(ctx context.Context, p pipeline, bus *event.Bus) error {
	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)
	sub := bus.Forward(func(e event.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(e)
	})
	defer sub.Unsubscribe()

	p.Start()
	<-ctx.Done()
	return nil
}
