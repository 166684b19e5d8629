package event

import (
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// Event names as seen by display-layer listeners.
const (
	NameCPU     = "onCPUUpdate"
	NameMemory  = "onMemoryUpdate"
	NameBattery = "onBatteryUpdate"
	NameStorage = "onStorageUpdate"
	NameNetwork = "onNetworkUpdate"
	NameFault   = "onSampleFault"
)

// Bus groups one channel per category plus a channel for sampling faults.
type Bus struct {
	CPU     *Channel[model.CPU]
	Memory  *Channel[model.Memory]
	Battery *Channel[model.Battery]
	Storage *Channel[model.Storage]
	Network *Channel[model.Network]
	Faults  *Channel[model.Fault]
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("event")
	return &Bus{
		CPU:     NewChannel[model.CPU](NameCPU, logger),
		Memory:  NewChannel[model.Memory](NameMemory, logger),
		Battery: NewChannel[model.Battery](NameBattery, logger),
		Storage: NewChannel[model.Storage](NameStorage, logger),
		Network: NewChannel[model.Network](NameNetwork, logger),
		Faults:  NewChannel[model.Fault](NameFault, logger),
	}
}

// Envelope is the named wrapper used when events leave the process.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Forward subscribes fn to every channel of the bus, wrapping each event in
// an Envelope. The returned Unsubscriber detaches all of them.
func (b *Bus) Forward(fn func(Envelope)) Unsubscriber {
	return Group{
		forward(b.CPU, fn),
		forward(b.Memory, fn),
		forward(b.Battery, fn),
		forward(b.Storage, fn),
		forward(b.Network, fn),
		forward(b.Faults, fn),
	}
}

func forward[T any](c *Channel[T], fn func(Envelope)) Unsubscriber {
	name := c.Name()
	return c.Subscribe(func(v T) { fn(Envelope{Event: name, Data: v}) })
}

// Group detaches several listeners at once.
type Group []Unsubscriber

func (g Group) Unsubscribe() {
	for _, u := range g {
		u.Unsubscribe()
	}
}
