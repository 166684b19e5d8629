// Package sampler reads instantaneous resource values from the operating
// environment. Implementations are stateless with respect to the pipeline:
// throughput deltas live in package throughput.
package sampler

import (
	"context"
	"errors"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

var (
	// ErrUnavailable means a category cannot be read at all on this host.
	ErrUnavailable = errors.New("sampler: source unavailable")
	// ErrNoNativeSource means the primary sampler is structurally absent and
	// the fallback path must be used instead.
	ErrNoNativeSource = errors.New("sampler: native source not present")
	// ErrNotReady means a delta-based reading has no usable baseline yet.
	// Callers skip the category for that round instead of reporting zero.
	ErrNotReady = errors.New("sampler: reading not ready")
)

// Source is the capability interface the pipeline depends on. Each call is
// independent; a failure in one must not affect the others.
type Source interface {
	CPU(ctx context.Context) (model.CPUReading, error)
	Memory(ctx context.Context) (model.MemoryReading, error)
	Battery(ctx context.Context) (model.BatteryReading, error)
	Storage(ctx context.Context) (model.StorageReading, error)
	Network(ctx context.Context) (model.NetworkReading, error)
}

// FaultKind maps a sampling error onto the published fault taxonomy.
func FaultKind(err error) model.FaultKind {
	if errors.Is(err, ErrUnavailable) {
		return model.FaultUnavailable
	}
	return model.FaultTransient
}
