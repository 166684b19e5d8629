package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

const gib = 1 << 30

type fakePipeline struct {
	mu     sync.Mutex
	forced int
	states []model.AppState
}

func (f *fakePipeline) Start() {}
func (f *fakePipeline) Stop()  {}
func (f *fakePipeline) ForceUpdate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forced++
}
func (f *fakePipeline) SetAppState(s model.AppState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, s)
}
func (f *fakePipeline) State() model.MonitorState { return model.Running }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBatteryTime(t *testing.T) {
	tests := []struct {
		name string
		b    model.Battery
		want string
	}{
		{"discharging", model.Battery{Status: model.ChargeDischarging, TimeRemaining: 5*3600 + 12*60}, "5h 12m remaining"},
		{"charging", model.Battery{Status: model.ChargeCharging, IsCharging: true, TimeToFull: 45 * 60}, "0h 45m to full"},
		{"full", model.Battery{Status: model.ChargeFull, IsCharging: true}, "Fully charged"},
		{"charging at 100", model.Battery{Level: 100, Status: model.ChargeCharging, IsCharging: true}, "Fully charged"},
		{"charging no estimate", model.Battery{Level: 40, Status: model.ChargeCharging, IsCharging: true}, "Charging"},
		{"unknown", model.Battery{Status: model.ChargeUnknown}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := batteryTime(tt.b); got != tt.want {
				t.Fatalf("batteryTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoragePercent(t *testing.T) {
	if got := storagePercent(model.Storage{Total: 128 * gib, Used: 96 * gib}); got != 75 {
		t.Fatalf("percent = %d", got)
	}
	if got := storagePercent(model.Storage{Total: 3, Used: 2}); got != 67 {
		t.Fatalf("rounded percent = %d", got)
	}
	if got := storagePercent(model.Storage{}); got != 0 {
		t.Fatalf("empty volume percent = %d", got)
	}
}

func TestGaugeBarClamps(t *testing.T) {
	if got := gaugeBar(150, 10); !strings.Contains(got, strings.Repeat(gaugeFill, 10)) || !strings.Contains(got, "100.0%") {
		t.Fatalf("gauge = %q", got)
	}
	if got := gaugeBar(-5, 10); !strings.Contains(got, strings.Repeat(gaugeEmpty, 10)) {
		t.Fatalf("gauge = %q", got)
	}
}

func TestSpeed(t *testing.T) {
	if got := speed(512); got != "512 kbps" {
		t.Fatalf("speed = %q", got)
	}
	if got := speed(2500); got != "2.5 Mbps" {
		t.Fatalf("speed = %q", got)
	}
}

func TestModelAppliesEvents(t *testing.T) {
	bus := event.NewBus(nil)
	m := New(&fakePipeline{}, bus, model.DeviceProfile{Brand: "Acme", Model: "One"})
	defer m.Close()

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	bus.CPU.Publish(model.CPU{Usage: 37, Synthetic: true, SampledAt: at})
	bus.Memory.Publish(model.Memory{Used: 3 * gib, Total: 8 * gib, UsagePercent: 37.5, SampledAt: at})
	bus.Faults.Publish(model.Fault{Category: model.CategoryBattery, Kind: model.FaultUnavailable, SampledAt: at})
	bus.Network.Publish(model.Network{Type: model.NetworkWiFi, TypeOnly: true, SampledAt: at.Add(time.Second)})

	m.Update(tickMsg{})
	if m.cpu == nil || m.cpu.Usage != 37 {
		t.Fatalf("cpu = %+v", m.cpu)
	}
	if !m.updated.Equal(at.Add(time.Second)) {
		t.Fatalf("updated = %v", m.updated)
	}

	view := m.View()
	for _, want := range []string{"synthetic", "3.0/8.0 GiB", "n/a (unavailable)", "speeds n/a", "09:30:01", "Acme One"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	bus.Battery.Publish(model.Battery{Level: 80, Status: model.ChargeDischarging, TimeRemaining: 3600, SampledAt: at})
	m.Update(tickMsg{})
	if _, ok := m.faults[model.CategoryBattery]; ok {
		t.Fatal("battery fault not cleared by a fresh snapshot")
	}
}

func TestStorageCardShowsFree(t *testing.T) {
	bus := event.NewBus(nil)
	m := New(&fakePipeline{}, bus, model.DeviceProfile{})
	defer m.Close()

	bus.Storage.Publish(model.Storage{Total: 128 * gib, Free: 32 * gib, Used: 96 * gib})
	m.Update(tickMsg{})
	card := m.storageCard()
	for _, want := range []string{"96/128 GiB", "(75%)", "32 GiB free"} {
		if !strings.Contains(card, want) {
			t.Fatalf("storage card missing %q:\n%s", want, card)
		}
	}
}

func TestKeysDrivePipeline(t *testing.T) {
	p := &fakePipeline{}
	m := New(p, event.NewBus(nil), model.DeviceProfile{})
	defer m.Close()

	m.Update(key("r"))
	m.Update(key("p"))
	m.Update(key(" "))
	if p.forced != 1 {
		t.Fatalf("forced = %d", p.forced)
	}
	want := []model.AppState{model.AppBackground, model.AppActive}
	if len(p.states) != 2 || p.states[0] != want[0] || p.states[1] != want[1] {
		t.Fatalf("states = %v", p.states)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Fatal("q did not quit")
	}
}

func TestCloseDetachesFromBus(t *testing.T) {
	bus := event.NewBus(nil)
	m := New(&fakePipeline{}, bus, model.DeviceProfile{})
	m.Close()
	if bus.CPU.Len() != 0 || bus.Faults.Len() != 0 {
		t.Fatalf("listeners left: cpu=%d faults=%d", bus.CPU.Len(), bus.Faults.Len())
	}
}
