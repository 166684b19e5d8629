package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/poll"
)

const inboxSize = 64

// Model renders the latest snapshot of every category from the bus.
type Model struct {
	pipeline poll.Pipeline
	profile  model.DeviceProfile
	inbox    chan any
	sub      event.Unsubscriber

	cpu     *model.CPU
	memory  *model.Memory
	battery *model.Battery
	storage *model.Storage
	network *model.Network
	faults  map[model.Category]model.Fault
	updated time.Time
	paused  bool

	width  int
	height int
}

// New subscribes to bus. Listeners never block the producer; values that do
// not fit in the inbox are dropped and the next round replaces them.
func New(p poll.Pipeline, bus *event.Bus, profile model.DeviceProfile) *Model {
	m := &Model{
		pipeline: p,
		profile:  profile,
		inbox:    make(chan any, inboxSize),
		faults:   make(map[model.Category]model.Fault),
		width:    120,
		height:   40,
	}
	m.sub = event.Group{
		bus.CPU.Subscribe(func(v model.CPU) { m.push(v) }),
		bus.Memory.Subscribe(func(v model.Memory) { m.push(v) }),
		bus.Battery.Subscribe(func(v model.Battery) { m.push(v) }),
		bus.Storage.Subscribe(func(v model.Storage) { m.push(v) }),
		bus.Network.Subscribe(func(v model.Network) { m.push(v) }),
		bus.Faults.Subscribe(func(v model.Fault) { m.push(v) }),
	}
	return m
}

func (m *Model) push(v any) {
	select {
	case m.inbox <- v:
	default:
	}
}

// Close detaches the model from the bus.
func (m *Model) Close() { m.sub.Unsubscribe() }

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.pipeline.ForceUpdate()
		case "p", " ":
			m.togglePause()
		}
	case tickMsg:
		m.drain()
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) togglePause() {
	if m.paused {
		m.pipeline.SetAppState(model.AppActive)
	} else {
		m.pipeline.SetAppState(model.AppBackground)
	}
	m.paused = !m.paused
}

func (m *Model) drain() {
	for {
		select {
		case v := <-m.inbox:
			m.apply(v)
		default:
			return
		}
	}
}

func (m *Model) apply(v any) {
	switch v := v.(type) {
	case model.CPU:
		m.cpu = &v
		delete(m.faults, model.CategoryCPU)
		m.touch(v.SampledAt)
	case model.Memory:
		m.memory = &v
		delete(m.faults, model.CategoryMemory)
		m.touch(v.SampledAt)
	case model.Battery:
		m.battery = &v
		delete(m.faults, model.CategoryBattery)
		m.touch(v.SampledAt)
	case model.Storage:
		m.storage = &v
		delete(m.faults, model.CategoryStorage)
		m.touch(v.SampledAt)
	case model.Network:
		m.network = &v
		delete(m.faults, model.CategoryNetwork)
		m.touch(v.SampledAt)
	case model.Fault:
		m.faults[v.Category] = v
		m.touch(v.SampledAt)
	}
}

func (m *Model) touch(t time.Time) {
	if t.IsZero() {
		t = time.Now()
	}
	if t.After(m.updated) {
		m.updated = t
	}
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	header := titleStyle.Render("Pulse") + "  " +
		subtleStyle.Render(fmt.Sprintf("%s %s · %s", m.profile.Brand, m.profile.Model, m.profile.OSVersion))

	status := "running"
	if m.paused {
		status = "paused"
	}
	updated := "waiting for first sample"
	if !m.updated.IsZero() {
		updated = "last update " + m.updated.Format("15:04:05")
	}
	footer := subtleStyle.Render(fmt.Sprintf("%s · %s · q quit  r refresh  p pause", status, updated))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, m.cpuCard(), m.memoryCard(), m.batteryCard())
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, m.storageCard(), m.networkCard())
	return lipgloss.JoinVertical(lipgloss.Left, header, line1, line2, footer)
}

func (m *Model) cpuCard() string {
	if f, ok := m.faults[model.CategoryCPU]; ok || m.cpu == nil {
		return card("CPU", unavailable(f, ok))
	}
	body := gaugeBar(m.cpu.Usage, 28)
	if m.cpu.Synthetic {
		body += "  " + warnStyle.Render("synthetic")
	}
	return card("CPU", body)
}

func (m *Model) memoryCard() string {
	if f, ok := m.faults[model.CategoryMemory]; ok || m.memory == nil {
		return card("Memory", unavailable(f, ok))
	}
	return card("Memory", fmt.Sprintf("%s  %.1f/%.1f GiB",
		gaugeBar(m.memory.UsagePercent, 28),
		bytesToGiB(m.memory.Used),
		bytesToGiB(m.memory.Total)))
}

func (m *Model) batteryCard() string {
	if f, ok := m.faults[model.CategoryBattery]; ok || m.battery == nil {
		return card("Battery", unavailable(f, ok))
	}
	return card("Battery", fmt.Sprintf("%s\n%s (%s)",
		gaugeBar(m.battery.Level, 20), batteryTime(*m.battery), m.battery.Status))
}

func (m *Model) storageCard() string {
	if f, ok := m.faults[model.CategoryStorage]; ok || m.storage == nil {
		return card("Storage", unavailable(f, ok))
	}
	s := m.storage
	return card("Storage", fmt.Sprintf("%s  %.0f/%.0f GiB (%d%%) · %.0f GiB free",
		gaugeBar(pct(s.Used, s.Total), 28),
		math.Round(bytesToGiB(s.Used)),
		math.Round(bytesToGiB(s.Total)),
		storagePercent(*s),
		math.Round(bytesToGiB(s.Free))))
}

func (m *Model) networkCard() string {
	if f, ok := m.faults[model.CategoryNetwork]; ok || m.network == nil {
		return card("Network", unavailable(f, ok))
	}
	n := m.network
	if n.TypeOnly {
		return card("Network", fmt.Sprintf("%s  speeds n/a", n.Type))
	}
	return card("Network", fmt.Sprintf("%s  ↓ %s  ↑ %s", n.Type, speed(n.DownloadSpeed), speed(n.UploadSpeed)))
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func unavailable(f model.Fault, ok bool) string {
	if !ok {
		return subtleStyle.Render("n/a")
	}
	return warnStyle.Render("n/a (" + string(f.Kind) + ")")
}

// batteryTime formats the charge estimate the way the dashboard shows it.
func batteryTime(b model.Battery) string {
	switch {
	case b.Status == model.ChargeFull, b.IsCharging && b.Level >= 100:
		return "Fully charged"
	case b.IsCharging && b.TimeToFull > 0:
		return hoursMinutes(b.TimeToFull) + " to full"
	case !b.IsCharging && b.TimeRemaining > 0:
		return hoursMinutes(b.TimeRemaining) + " remaining"
	case b.IsCharging:
		return "Charging"
	}
	return "Unknown"
}

func hoursMinutes(seconds int64) string {
	return fmt.Sprintf("%dh %dm", seconds/3600, seconds%3600/60)
}

// storagePercent is the whole-number share of used space, 0 for an empty volume.
func storagePercent(s model.Storage) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Used) / float64(s.Total) * 100))
}

func speed(kbps float64) string {
	if kbps >= 1000 {
		return fmt.Sprintf("%.1f Mbps", kbps/1000)
	}
	return fmt.Sprintf("%.0f kbps", kbps)
}

func pct(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) * 100 / float64(total)
}

func bytesToGiB(b uint64) float64 { return float64(b) / (1024 * 1024 * 1024) }

// RunTUI starts the Bubble Tea program and blocks until the user quits.
func RunTUI(p poll.Pipeline, bus *event.Bus, profile model.DeviceProfile) error {
	m := New(p, bus, profile)
	defer m.Close()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
