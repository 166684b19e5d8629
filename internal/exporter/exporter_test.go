package exporter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

func TestExporterTracksLatestValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	exp := New(reg)
	bus := event.NewBus(nil)
	exp.Attach(bus)

	bus.CPU.Publish(model.CPU{Usage: 10})
	bus.CPU.Publish(model.CPU{Usage: 35, Synthetic: true})
	bus.Memory.Publish(model.Memory{Used: 4, Total: 8, Available: 4, UsagePercent: 50})
	bus.Battery.Publish(model.Battery{Level: 77, IsCharging: true})
	bus.Storage.Publish(model.Storage{Total: 128, Free: 32, Used: 96})
	bus.Network.Publish(model.Network{Type: model.NetworkWiFi, DownloadSpeed: 1.25, UploadSpeed: 0.5})
	bus.Faults.Publish(model.Fault{Category: model.CategoryBattery, Kind: model.FaultTransient})

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"cpu", exp.cpuUsage, 35},
		{"synthetic", exp.cpuSynthetic, 1},
		{"memory used", exp.memory.WithLabelValues("used"), 4},
		{"memory percent", exp.memoryUsage, 50},
		{"battery", exp.battery, 77},
		{"charging", exp.charging, 1},
		{"storage used", exp.storage.WithLabelValues("used"), 96},
		{"download", exp.speed.WithLabelValues("download"), 1.25},
		{"wifi", exp.netType.WithLabelValues("wifi"), 1},
		{"cellular", exp.netType.WithLabelValues("cellular"), 0},
		{"faults", exp.faults.WithLabelValues("battery", "transient"), 1},
		{"cpu events", exp.events.WithLabelValues(event.NameCPU), 2},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestTypeOnlyNetworkKeepsSpeeds(t *testing.T) {
	exp := New(prometheus.NewRegistry())
	bus := event.NewBus(nil)
	unsub := exp.Attach(bus)

	bus.Network.Publish(model.Network{Type: model.NetworkWiFi, DownloadSpeed: 2})
	bus.Network.Publish(model.Network{Type: model.NetworkCellular, TypeOnly: true})

	if got := testutil.ToFloat64(exp.speed.WithLabelValues("download")); got != 2 {
		t.Fatalf("download = %v", got)
	}
	if got := testutil.ToFloat64(exp.netType.WithLabelValues("cellular")); got != 1 {
		t.Fatalf("cellular = %v", got)
	}

	unsub.Unsubscribe()
	bus.CPU.Publish(model.CPU{Usage: 99})
	if got := testutil.ToFloat64(exp.cpuUsage); got != 0 {
		t.Fatalf("cpu updated after unsubscribe: %v", got)
	}
}
