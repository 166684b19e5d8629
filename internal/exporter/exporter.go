// Package exporter mirrors the latest published snapshots as Prometheus
// gauges. It keeps no history; every gauge holds the most recent value.
package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// Exporter holds the metric vectors fed from the bus.
type Exporter struct {
	cpuUsage     prometheus.Gauge
	cpuSynthetic prometheus.Gauge
	memory       *prometheus.GaugeVec
	memoryUsage  prometheus.Gauge
	battery      prometheus.Gauge
	charging     prometheus.Gauge
	storage      *prometheus.GaugeVec
	speed        *prometheus.GaugeVec
	netType      *prometheus.GaugeVec
	faults       *prometheus.CounterVec
	events       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Exporter {
	f := promauto.With(reg)
	return &Exporter{
		cpuUsage: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_cpu_usage_percent",
			Help: "Most recent CPU usage percentage",
		}),
		cpuSynthetic: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_cpu_synthetic",
			Help: "1 when the CPU value comes from the synthetic generator",
		}),
		memory: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulse_memory_bytes",
			Help: "Most recent memory counters",
		}, []string{"state"}),
		memoryUsage: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_memory_usage_percent",
			Help: "Most recent memory usage percentage",
		}),
		battery: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_battery_level_percent",
			Help: "Most recent battery level",
		}),
		charging: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_battery_charging",
			Help: "1 while the battery is charging or full",
		}),
		storage: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulse_storage_bytes",
			Help: "Most recent filesystem counters",
		}, []string{"state"}),
		speed: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulse_network_speed_kbps",
			Help: "Most recent network throughput",
		}, []string{"direction"}),
		netType: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulse_network_type_info",
			Help: "1 for the current connection type",
		}, []string{"type"}),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_sample_faults_total",
			Help: "Sampling failures by category and kind",
		}, []string{"category", "kind"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_events_published_total",
			Help: "Events delivered to the exporter by name",
		}, []string{"event"}),
	}
}

// Attach subscribes the exporter to every channel of bus.
func (e *Exporter) Attach(bus *event.Bus) event.Unsubscriber {
	return event.Group{
		bus.CPU.Subscribe(e.observeCPU),
		bus.Memory.Subscribe(e.observeMemory),
		bus.Battery.Subscribe(e.observeBattery),
		bus.Storage.Subscribe(e.observeStorage),
		bus.Network.Subscribe(e.observeNetwork),
		bus.Faults.Subscribe(e.observeFault),
	}
}

func (e *Exporter) observeCPU(v model.CPU) {
	e.events.WithLabelValues(event.NameCPU).Inc()
	e.cpuUsage.Set(v.Usage)
	e.cpuSynthetic.Set(boolGauge(v.Synthetic))
}

func (e *Exporter) observeMemory(v model.Memory) {
	e.events.WithLabelValues(event.NameMemory).Inc()
	e.memory.WithLabelValues("used").Set(float64(v.Used))
	e.memory.WithLabelValues("total").Set(float64(v.Total))
	e.memory.WithLabelValues("available").Set(float64(v.Available))
	e.memoryUsage.Set(v.UsagePercent)
}

func (e *Exporter) observeBattery(v model.Battery) {
	e.events.WithLabelValues(event.NameBattery).Inc()
	e.battery.Set(v.Level)
	e.charging.Set(boolGauge(v.IsCharging))
}

func (e *Exporter) observeStorage(v model.Storage) {
	e.events.WithLabelValues(event.NameStorage).Inc()
	e.storage.WithLabelValues("total").Set(float64(v.Total))
	e.storage.WithLabelValues("free").Set(float64(v.Free))
	e.storage.WithLabelValues("used").Set(float64(v.Used))
}

func (e *Exporter) observeNetwork(v model.Network) {
	e.events.WithLabelValues(event.NameNetwork).Inc()
	for _, t := range []model.NetworkType{model.NetworkWiFi, model.NetworkCellular, model.NetworkOther, model.NetworkNone} {
		e.netType.WithLabelValues(string(t)).Set(boolGauge(t == v.Type))
	}
	if v.TypeOnly {
		return
	}
	e.speed.WithLabelValues("download").Set(v.DownloadSpeed)
	e.speed.WithLabelValues("upload").Set(v.UploadSpeed)
}

func (e *Exporter) observeFault(v model.Fault) {
	e.events.WithLabelValues(event.NameFault).Inc()
	e.faults.WithLabelValues(string(v.Category), string(v.Kind)).Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
