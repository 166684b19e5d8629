//go:build linux

package sampler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/procfs/sysfs"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// batteryFromEnergy prefers the energy pair, then the charge pair, then the
// capacity attribute as a level out of 100. Missing values leave Scale at 0,
// which BatterySnapshot reports as unavailable.
func batteryFromEnergy(ps sysfs.PowerSupply) model.BatteryReading {
	r := model.BatteryReading{Status: ParseChargeStatus(ps.Status)}
	switch {
	case ps.EnergyNow != nil && ps.EnergyFull != nil:
		r.Level, r.Scale = *ps.EnergyNow, *ps.EnergyFull
	case ps.ChargeNow != nil && ps.ChargeFull != nil:
		r.Level, r.Scale = *ps.ChargeNow, *ps.ChargeFull
	case ps.Capacity != nil:
		r.Level, r.Scale = *ps.Capacity, 100
	}
	return r
}

// BatteryFromCapacity reads only the capacity percentage.
func BatteryFromCapacity(ps sysfs.PowerSupply) model.BatteryReading {
	r := model.BatteryReading{Status: ParseChargeStatus(ps.Status)}
	if ps.Capacity != nil {
		r.Level, r.Scale = *ps.Capacity, 100
	}
	return r
}

// FirstBattery returns the first supply of type Battery in name order.
func FirstBattery(supplies sysfs.PowerSupplyClass) (sysfs.PowerSupply, bool) {
	for _, name := range sortedSupplyNames(supplies) {
		if strings.EqualFold(supplies[name].Type, "Battery") {
			return supplies[name], true
		}
	}
	return sysfs.PowerSupply{}, false
}

func sortedSupplyNames(supplies sysfs.PowerSupplyClass) []string {
	names := make([]string, 0, len(supplies))
	for name := range supplies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Host) Battery(ctx context.Context) (model.BatteryReading, error) {
	fs, err := sysfs.NewFS(h.opts.SysfsPath)
	if err != nil {
		return model.BatteryReading{}, fmt.Errorf("open sysfs %s: %v: %w", h.opts.SysfsPath, err, ErrUnavailable)
	}
	supplies, err := fs.PowerSupplyClass()
	if err != nil {
		return model.BatteryReading{}, fmt.Errorf("read power supplies: %w", err)
	}
	ps, ok := FirstBattery(supplies)
	if !ok {
		return model.BatteryReading{}, fmt.Errorf("no battery power supply: %w", ErrUnavailable)
	}
	return batteryFromEnergy(ps), nil
}
