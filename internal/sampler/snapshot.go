package sampler

import (
	"fmt"
	"math"
	"time"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// Rough full-range battery durations used for the time estimates.
const (
	dischargeSeconds = 4 * 3600
	chargeSeconds    = 2 * 3600
)

// CPUSnapshot clamps a reading into [0,100].
func CPUSnapshot(r model.CPUReading, at time.Time) model.CPU {
	return model.CPU{
		Usage:     clampFloat(r.Percent, 0, 100),
		Synthetic: r.Synthetic,
		SampledAt: at,
	}
}

// MemorySnapshot derives the usage percentage. A zero total is reported as
// unavailable instead of dividing by zero.
func MemorySnapshot(r model.MemoryReading, at time.Time) (model.Memory, error) {
	if r.Total == 0 {
		return model.Memory{}, fmt.Errorf("memory total is zero: %w", ErrUnavailable)
	}
	used := r.Used
	if used == 0 && r.Available <= r.Total {
		used = r.Total - r.Available
	}
	if used > r.Total {
		used = r.Total
	}
	return model.Memory{
		Used:         used,
		Total:        r.Total,
		Available:    r.Available,
		UsagePercent: clampFloat(float64(used)/float64(r.Total)*100, 0, 100),
		SampledAt:    at,
	}, nil
}

// BatterySnapshot converts a level/scale pair into a percentage plus time
// estimates. A missing or zero scale is reported as unavailable.
func BatterySnapshot(r model.BatteryReading, at time.Time) (model.Battery, error) {
	if r.Scale <= 0 || r.Level < 0 {
		return model.Battery{}, fmt.Errorf("battery level %d/%d: %w", r.Level, r.Scale, ErrUnavailable)
	}
	level := clampFloat(float64(r.Level)/float64(r.Scale)*100, 0, 100)
	charging := r.Status == model.ChargeCharging || r.Status == model.ChargeFull
	b := model.Battery{
		Level:      level,
		IsCharging: charging,
		Status:     r.Status,
		SampledAt:  at,
	}
	if charging {
		b.TimeToFull = int64((100 - level) / 100 * chargeSeconds)
	} else {
		b.TimeRemaining = int64(level / 100 * dischargeSeconds)
	}
	return b, nil
}

// StorageSnapshot computes used = total - free.
func StorageSnapshot(r model.StorageReading, at time.Time) (model.Storage, error) {
	if r.Total == 0 {
		return model.Storage{}, fmt.Errorf("filesystem reports no blocks: %w", ErrUnavailable)
	}
	free := r.Free
	if free > r.Total {
		free = r.Total
	}
	return model.Storage{
		Total:     r.Total,
		Free:      free,
		Used:      r.Total - free,
		SampledAt: at,
	}, nil
}

func clampFloat(val, min, max float64) float64 {
	if math.IsNaN(val) {
		return min
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
