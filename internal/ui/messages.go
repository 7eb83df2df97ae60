package ui

import "time"

// StatusMsg carries filter state sampled on the processing path. It is
// sent at a throttled cadence, not once per buffer.
type StatusMsg struct {
	Muted       bool
	GateOpen    bool
	Attenuation float32
	LevelDB     float64
}

// tickMsg drives the flash overlay poll.
type tickMsg time.Time
