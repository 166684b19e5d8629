//go:build !linux

package fallback

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
)

func (p ProcProbe) Memory(context.Context) (model.MemoryReading, error) {
	return model.MemoryReading{}, fmt.Errorf("procfs memory on %s: %w", runtime.GOOS, sampler.ErrUnavailable)
}

func (p ProcProbe) Battery(context.Context) (model.BatteryReading, error) {
	return model.BatteryReading{}, fmt.Errorf("sysfs battery on %s: %w", runtime.GOOS, sampler.ErrUnavailable)
}

func (p ProcProbe) Storage(context.Context) (model.StorageReading, error) {
	return model.StorageReading{}, fmt.Errorf("statfs on %s: %w", runtime.GOOS, sampler.ErrUnavailable)
}
