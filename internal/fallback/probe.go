package fallback

import (
	"context"
	"fmt"
	"net"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
)

// Probe reads the reduced metric set. It has no CPU reading and reports only
// the connection type, never byte counters.
type Probe interface {
	Memory(ctx context.Context) (model.MemoryReading, error)
	Battery(ctx context.Context) (model.BatteryReading, error)
	Storage(ctx context.Context) (model.StorageReading, error)
	NetworkType(ctx context.Context) (model.NetworkType, error)
}

// ProcProbe reads procfs, sysfs and statfs directly.
type ProcProbe struct {
	ProcPath    string
	SysPath     string
	StoragePath string
}

var _ Probe = ProcProbe{}

func NewProcProbe(storagePath string) ProcProbe {
	if storagePath == "" {
		storagePath = "/"
	}
	return ProcProbe{
		ProcPath:    "/proc",
		SysPath:     "/sys",
		StoragePath: storagePath,
	}
}

func (p ProcProbe) NetworkType(context.Context) (model.NetworkType, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return model.NetworkNone, fmt.Errorf("list interfaces: %w", err)
	}
	links := make([]sampler.Link, 0, len(ifaces))
	for _, ifc := range ifaces {
		l := sampler.Link{Name: ifc.Name}
		if ifc.Flags&net.FlagUp != 0 {
			l.Flags = append(l.Flags, "up")
		}
		if ifc.Flags&net.FlagLoopback != 0 {
			l.Flags = append(l.Flags, "loopback")
		}
		if addrs, err := ifc.Addrs(); err == nil {
			l.HasAddr = len(addrs) > 0
		}
		links = append(links, l)
	}
	return sampler.ClassifyLinks(links), nil
}
