package model

import "time"

// Category names one metric family of the pipeline.
type Category string

const (
	CategoryCPU     Category = "cpu"
	CategoryMemory  Category = "memory"
	CategoryBattery Category = "battery"
	CategoryStorage Category = "storage"
	CategoryNetwork Category = "network"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryCPU, CategoryMemory, CategoryBattery, CategoryStorage, CategoryNetwork}

// CPU is the published CPU snapshot.
type CPU struct {
	Usage float64 `json:"usage"` // percent 0-100
	// Synthetic marks a generated stand-in value rather than a real reading.
	Synthetic bool      `json:"synthetic,omitempty"`
	SampledAt time.Time `json:"sampledAt"`
}

// Memory is the published memory snapshot; sizes in bytes.
type Memory struct {
	Used         uint64    `json:"used"`
	Total        uint64    `json:"total"`
	Available    uint64    `json:"available"`
	UsagePercent float64   `json:"usagePercent"`
	SampledAt    time.Time `json:"sampledAt"`
}

// Battery is the published battery snapshot. TimeRemaining is only set while
// discharging and TimeToFull only while charging; both are whole seconds.
type Battery struct {
	Level         float64      `json:"level"`
	IsCharging    bool         `json:"isCharging"`
	Status        ChargeStatus `json:"chargeStatus"`
	TimeRemaining int64        `json:"timeRemaining"`
	TimeToFull    int64        `json:"timeToFull"`
	SampledAt     time.Time    `json:"sampledAt"`
}

// Storage is the published filesystem snapshot; sizes in bytes.
type Storage struct {
	Total     uint64    `json:"total"`
	Free      uint64    `json:"free"`
	Used      uint64    `json:"used"`
	SampledAt time.Time `json:"sampledAt"`
}

// Network is the published connectivity snapshot. Speeds are kbps-equivalent.
// TypeOnly is set by sources that cannot measure throughput at all.
type Network struct {
	Type          NetworkType `json:"type"`
	DownloadSpeed float64     `json:"downloadSpeed"`
	UploadSpeed   float64     `json:"uploadSpeed"`
	TypeOnly      bool        `json:"typeOnly,omitempty"`
	SampledAt     time.Time   `json:"sampledAt"`
}

// NetworkType classifies the active connection.
type NetworkType string

const (
	NetworkWiFi     NetworkType = "wifi"
	NetworkCellular NetworkType = "cellular"
	NetworkOther    NetworkType = "other"
	NetworkNone     NetworkType = "none"
)

// ChargeStatus mirrors the platform battery status attribute.
type ChargeStatus string

const (
	ChargeUnknown     ChargeStatus = "unknown"
	ChargeCharging    ChargeStatus = "charging"
	ChargeDischarging ChargeStatus = "discharging"
	ChargeNotCharging ChargeStatus = "not_charging"
	ChargeFull        ChargeStatus = "full"
)

// FaultKind separates categories that cannot be read at all from one-off failures.
type FaultKind string

const (
	FaultUnavailable FaultKind = "unavailable"
	FaultTransient   FaultKind = "transient"
)

// Fault is published in place of a category snapshot that could not be produced.
type Fault struct {
	Category  Category  `json:"category"`
	Kind      FaultKind `json:"kind"`
	Message   string    `json:"message"`
	SampledAt time.Time `json:"sampledAt"`
}

// DeviceProfile is fetched once at startup.
type DeviceProfile struct {
	Model     string `json:"model"`
	OSVersion string `json:"osVersion"`
	Brand     string `json:"brand"`
	Hostname  string `json:"hostname,omitempty"`
}

// MonitorState is the lifecycle of a polling pipeline.
type MonitorState int

const (
	Stopped MonitorState = iota
	Running
)

func (s MonitorState) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "stopped"
	}
}

// AppState is the application visibility signal fed in from outside.
type AppState string

const (
	AppActive     AppState = "active"
	AppBackground AppState = "background"
	AppInactive   AppState = "inactive"
)

// Foreground reports whether the state should keep sampling alive.
func (s AppState) Foreground() bool { return s == AppActive }
