//go:build !linux

package sampler

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

func (h *Host) Battery(context.Context) (model.BatteryReading, error) {
	return model.BatteryReading{}, fmt.Errorf("battery on %s: %w", runtime.GOOS, ErrUnavailable)
}
