// Package device looks up the static device profile shown next to the metrics.
package device

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

const unknown = "unknown"

// Lookup fetches the profile once. Missing fields are reported as "unknown";
// lookup failures are logged and never fatal.
func Lookup(ctx context.Context, sysPath string, logger *zap.Logger) model.DeviceProfile {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("device")
	p := model.DeviceProfile{Model: unknown, OSVersion: unknown, Brand: unknown}

	if info, err := host.InfoWithContext(ctx); err != nil {
		log.Warn("host info unavailable", zap.Error(err))
	} else {
		p.Hostname = info.Hostname
		p.OSVersion = osVersion(info.Platform, info.PlatformVersion, info.KernelVersion)
	}

	vendor, product, err := hardwareIdentity(sysPath)
	if err != nil {
		log.Debug("hardware identity unavailable", zap.Error(err))
	}
	if v := strings.TrimSpace(vendor); v != "" {
		p.Brand = v
	}
	if v := strings.TrimSpace(product); v != "" {
		p.Model = v
	}
	return p
}

func osVersion(platform, version, kernel string) string {
	switch {
	case platform != "" && version != "":
		return platform + " " + version
	case platform != "":
		return platform
	case kernel != "":
		return kernel
	default:
		return unknown
	}
}
