package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap/zaptest"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// scriptedTimes returns one TimesStat per call from seq.
func scriptedTimes(seq ...cpu.TimesStat) func(context.Context, bool) ([]cpu.TimesStat, error) {
	i := 0
	return func(context.Context, bool) ([]cpu.TimesStat, error) {
		ts := seq[min(i, len(seq)-1)]
		i++
		return []cpu.TimesStat{ts}, nil
	}
}

func TestHostCPUNeedsBaseline(t *testing.T) {
	h := NewHost(HostOptions{}, zaptest.NewLogger(t))
	h.cpuTimes = scriptedTimes(
		cpu.TimesStat{User: 100, Idle: 100},
		cpu.TimesStat{User: 100, Idle: 100},
		cpu.TimesStat{User: 130, Idle: 110},
		cpu.TimesStat{User: 10, Idle: 10},
		cpu.TimesStat{User: 20, Idle: 40},
	)
	ctx := context.Background()

	r, err := h.CPU(ctx)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("first reading = %+v, %v; want ErrNotReady", r, err)
	}
	if FaultKind(err) != model.FaultTransient {
		t.Fatalf("fault kind = %s", FaultKind(err))
	}

	if r, err := h.CPU(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("reading with no elapsed time = %+v, %v; want ErrNotReady", r, err)
	}

	r, err = h.CPU(ctx)
	if err != nil {
		t.Fatalf("third reading: %v", err)
	}
	if r.Percent != 75 || r.Synthetic {
		t.Fatalf("reading = %+v, want 75%% busy", r)
	}

	if _, err := h.CPU(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("counter reset: err = %v, want ErrNotReady", err)
	}
	r, err = h.CPU(ctx)
	if err != nil || r.Percent != 25 {
		t.Fatalf("after reset = %+v, %v; want 25%%", r, err)
	}
}

func TestHostProbePrimesCPU(t *testing.T) {
	h := NewHost(HostOptions{}, zaptest.NewLogger(t))
	h.cpuTimes = scriptedTimes(
		cpu.TimesStat{User: 50, Idle: 50},
		cpu.TimesStat{User: 60, Idle: 60},
	)
	if err := h.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	r, err := h.CPU(context.Background())
	if err != nil || r.Percent != 50 {
		t.Fatalf("reading after probe = %+v, %v", r, err)
	}
}
