package model

import "time"

// Raw readings returned by a sampler before any derivation.

// CPUReading is an instantaneous CPU percentage.
type CPUReading struct {
	Percent   float64
	Synthetic bool
}

// MemoryReading holds system memory counters in bytes. Used is derived from
// Total-Available when the source does not report it.
type MemoryReading struct {
	Used      uint64
	Total     uint64
	Available uint64
}

// BatteryReading carries the level/scale pair exactly as the platform reports it.
type BatteryReading struct {
	Level  int64
	Scale  int64
	Status ChargeStatus
}

// StorageReading holds filesystem block totals in bytes.
type StorageReading struct {
	Total uint64
	Free  uint64
}

// NetworkReading holds system-wide cumulative byte counters at At.
type NetworkReading struct {
	Type    NetworkType
	RxBytes uint64
	TxBytes uint64
	At      time.Time
}
