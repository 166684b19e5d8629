package sampler

import (
	"strings"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// ParseChargeStatus maps the sysfs status attribute.
func ParseChargeStatus(s string) model.ChargeStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "charging":
		return model.ChargeCharging
	case "discharging":
		return model.ChargeDischarging
	case "not charging":
		return model.ChargeNotCharging
	case "full":
		return model.ChargeFull
	default:
		return model.ChargeUnknown
	}
}
