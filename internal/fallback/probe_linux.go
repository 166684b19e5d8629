//go:build linux

package fallback

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
	"golang.org/x/sys/unix"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
)

func (p ProcProbe) Memory(context.Context) (model.MemoryReading, error) {
	fs, err := procfs.NewFS(p.ProcPath)
	if err != nil {
		return model.MemoryReading{}, fmt.Errorf("open procfs %s: %v: %w", p.ProcPath, err, sampler.ErrUnavailable)
	}
	mi, err := fs.Meminfo()
	if err != nil {
		return model.MemoryReading{}, fmt.Errorf("read meminfo: %w", err)
	}
	if mi.MemTotal == nil {
		return model.MemoryReading{}, fmt.Errorf("meminfo has no MemTotal: %w", sampler.ErrUnavailable)
	}
	r := model.MemoryReading{Total: *mi.MemTotal * 1024}
	switch {
	case mi.MemAvailable != nil:
		r.Available = *mi.MemAvailable * 1024
	case mi.MemFree != nil:
		r.Available = *mi.MemFree * 1024
	}
	if r.Available <= r.Total {
		r.Used = r.Total - r.Available
	}
	return r, nil
}

func (p ProcProbe) Battery(context.Context) (model.BatteryReading, error) {
	fs, err := sysfs.NewFS(p.SysPath)
	if err != nil {
		return model.BatteryReading{}, fmt.Errorf("open sysfs %s: %v: %w", p.SysPath, err, sampler.ErrUnavailable)
	}
	supplies, err := fs.PowerSupplyClass()
	if err != nil {
		return model.BatteryReading{}, fmt.Errorf("read power supplies: %w", err)
	}
	ps, ok := sampler.FirstBattery(supplies)
	if !ok {
		return model.BatteryReading{}, fmt.Errorf("no battery power supply: %w", sampler.ErrUnavailable)
	}
	return sampler.BatteryFromCapacity(ps), nil
}

func (p ProcProbe) Storage(context.Context) (model.StorageReading, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(p.StoragePath, &st); err != nil {
		return model.StorageReading{}, fmt.Errorf("statfs %s: %w", p.StoragePath, err)
	}
	bsize := uint64(st.Bsize)
	return model.StorageReading{
		Total: st.Blocks * bsize,
		Free:  st.Bavail * bsize,
	}, nil
}
