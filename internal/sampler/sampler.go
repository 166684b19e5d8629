package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// HostOptions configures the native sampler.
type HostOptions struct {
	StoragePath string // filesystem whose block stats are reported
	SysfsPath   string // mount point used for power_supply lookups
	// SyntheticCPU replaces real CPU readings with a labeled generator.
	SyntheticCPU *SyntheticCPU
}

// Host is the native Source backed by gopsutil and sysfs.
type Host struct {
	opts HostOptions
	log  *zap.Logger
	now  func() time.Time
	// cpuTimes is cpu.TimesWithContext outside tests.
	cpuTimes func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)

	cpuMu     sync.Mutex
	prevTotal float64
	prevIdle  float64
	cpuPrimed bool
}

var _ Source = (*Host)(nil)

func NewHost(opts HostOptions, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StoragePath == "" {
		opts.StoragePath = "/"
	}
	if opts.SysfsPath == "" {
		opts.SysfsPath = "/sys"
	}
	return &Host{
		opts: opts,
		log:      logger.Named("sampler"),
		now:      time.Now,
		cpuTimes: cpu.TimesWithContext,
	}
}

// Probe checks that the native counters are reachable at all. It also primes
// the CPU delta so the next reading has a baseline.
func (h *Host) Probe(ctx context.Context) error {
	_, memErr := mem.VirtualMemoryWithContext(ctx)
	_, cpuErr := h.cpuPercent(ctx)
	if errors.Is(cpuErr, ErrNotReady) {
		cpuErr = nil
	}
	if memErr != nil && cpuErr != nil {
		h.log.Warn("native counters not reachable", zap.NamedError("memory", memErr), zap.NamedError("cpu", cpuErr))
		return fmt.Errorf("probe host counters: %w", ErrNoNativeSource)
	}
	return nil
}

func (h *Host) CPU(ctx context.Context) (model.CPUReading, error) {
	if h.opts.SyntheticCPU != nil {
		return h.opts.SyntheticCPU.Reading(h.now()), nil
	}
	pct, err := h.cpuPercent(ctx)
	if err != nil {
		return model.CPUReading{}, err
	}
	return model.CPUReading{Percent: pct}, nil
}

// cpuPercent derives total busy time from successive CPU time counters. A
// call without a usable previous sample returns ErrNotReady.
func (h *Host) cpuPercent(ctx context.Context) (float64, error) {
	times, err := h.cpuTimes(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("read cpu times: %w", err)
	}
	if len(times) == 0 {
		return 0, fmt.Errorf("no cpu time counters: %w", ErrUnavailable)
	}
	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait

	h.cpuMu.Lock()
	defer h.cpuMu.Unlock()
	primed := h.cpuPrimed
	dt := curTotal - h.prevTotal
	di := curIdle - h.prevIdle
	if primed && dt == 0 {
		return 0, fmt.Errorf("no cpu time elapsed since last reading: %w", ErrNotReady)
	}
	h.prevTotal, h.prevIdle, h.cpuPrimed = curTotal, curIdle, true
	// A counter that went backwards starts a new baseline.
	if !primed || dt < 0 {
		return 0, fmt.Errorf("cpu baseline recorded: %w", ErrNotReady)
	}
	return clampFloat(100*(1-di/dt), 0, 100), nil
}

func (h *Host) Memory(ctx context.Context) (model.MemoryReading, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.MemoryReading{}, fmt.Errorf("read virtual memory: %w", err)
	}
	if vm == nil || vm.Total == 0 {
		return model.MemoryReading{}, fmt.Errorf("virtual memory: %w", ErrUnavailable)
	}
	r := model.MemoryReading{Total: vm.Total, Available: vm.Available}
	if vm.Available <= vm.Total {
		r.Used = vm.Total - vm.Available
	}
	return r, nil
}

func (h *Host) Storage(ctx context.Context) (model.StorageReading, error) {
	usage, err := disk.UsageWithContext(ctx, h.opts.StoragePath)
	if err != nil {
		return model.StorageReading{}, fmt.Errorf("stat %s: %w", h.opts.StoragePath, err)
	}
	return model.StorageReading{Total: usage.Total, Free: usage.Free}, nil
}

func (h *Host) Network(ctx context.Context) (model.NetworkReading, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return model.NetworkReading{}, fmt.Errorf("read net counters: %w", err)
	}
	if len(counters) == 0 {
		return model.NetworkReading{}, fmt.Errorf("no net counters: %w", ErrUnavailable)
	}
	at := h.now()
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return model.NetworkReading{}, fmt.Errorf("list interfaces: %w", err)
	}
	links := make([]Link, 0, len(ifaces))
	for _, ifc := range ifaces {
		links = append(links, Link{Name: ifc.Name, Flags: ifc.Flags, HasAddr: len(ifc.Addrs) > 0})
	}
	return model.NetworkReading{
		Type:    ClassifyLinks(links),
		RxBytes: counters[0].BytesRecv,
		TxBytes: counters[0].BytesSent,
		At:      at,
	}, nil
}
