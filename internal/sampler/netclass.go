package sampler

import (
	"strings"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// Link is the subset of interface state needed to classify connectivity.
type Link struct {
	Name    string
	Flags   []string
	HasAddr bool
}

var (
	wifiPrefixes     = []string{"wlan", "wlp", "wlx", "wl", "wifi", "ath"}
	cellularPrefixes = []string{"wwan", "rmnet", "ccmni", "pdp_ip", "ppp"}
	virtualPrefixes  = []string{"lo", "docker", "veth", "br-", "virbr", "cni", "flannel", "dummy"}
)

// ClassifyLinks picks the connection type of the host. Wi-Fi wins over
// cellular, which wins over any other routable interface.
func ClassifyLinks(links []Link) model.NetworkType {
	best := model.NetworkNone
	for _, l := range links {
		if !l.HasAddr || !hasFlag(l.Flags, "up") || hasFlag(l.Flags, "loopback") {
			continue
		}
		name := strings.ToLower(l.Name)
		switch {
		case hasPrefix(name, virtualPrefixes):
			continue
		case hasPrefix(name, wifiPrefixes):
			return model.NetworkWiFi
		case hasPrefix(name, cellularPrefixes):
			best = model.NetworkCellular
		case best == model.NetworkNone:
			best = model.NetworkOther
		}
	}
	return best
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
