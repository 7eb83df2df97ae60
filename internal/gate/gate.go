// Package gate implements the envelope-follower noise gate that classifies
// a multichannel audio stream as active or inactive. The algorithm follows
// the classic open/close threshold design: the gate opens instantly when any
// channel's peak exceeds the open threshold and closes when the decaying
// peak envelope falls below the close threshold, with attack, hold and
// release smoothing on the attenuation signal.
//
// The gate never touches the audio itself. Its open state and attenuation
// value are activity signals consumed by the notification trigger.
package gate

import "math"

// Config holds the tunable gate parameters. Thresholds are in dB in the
// range [-96, 0]; times are in milliseconds.
type Config struct {
	SampleRate       float64
	Channels         int
	OpenThresholdDB  float64
	CloseThresholdDB float64
	AttackMs         int
	HoldMs           int
	ReleaseMs        int
}

// minDecayHz fixes the real-world decay period of the peak envelope. The
// per-sample decay rate is the threshold span divided by one period at the
// configured sample rate, so the envelope always takes 1/75 s to fall from
// the open to the close threshold.
const minDecayHz = 75.0

// Engine is the per-sample gate state machine. One engine serves exactly
// one filter instance and is only ever touched from the audio-processing
// path; it carries state from sample to sample and cannot be shared.
type Engine struct {
	openThreshold  float32
	closeThreshold float32
	attackRate     float32
	releaseRate    float32
	decayRate      float32
	holdTime       float32
	sampleRateInv  float32
	channels       int

	isOpen      bool
	attenuation float32
	level       float32
	heldTime    float32
}

// New returns an engine configured with cfg. State starts closed.
func New(cfg Config) *Engine {
	e := &Engine{}
	e.Configure(cfg)
	return e
}

// Configure recomputes all derived coefficients and resets the gate state
// (closed, zero attenuation, zero level). The reset is abrupt rather than
// interpolated; a settings change mid-stream starts the classifier over.
func (e *Engine) Configure(cfg Config) {
	sampleRate := float32(cfg.SampleRate)

	e.channels = cfg.Channels
	e.sampleRateInv = 1.0 / sampleRate
	e.openThreshold = float32(DBToLinear(cfg.OpenThresholdDB))
	e.closeThreshold = float32(DBToLinear(cfg.CloseThresholdDB))
	e.attackRate = 1.0 / (msToSec(cfg.AttackMs) * sampleRate)
	e.releaseRate = 1.0 / (msToSec(cfg.ReleaseMs) * sampleRate)

	thresholdDiff := e.openThreshold - e.closeThreshold
	minDecayPeriod := (1.0 / minDecayHz) * sampleRate
	e.decayRate = thresholdDiff / minDecayPeriod

	e.holdTime = msToSec(cfg.HoldMs)
	e.isOpen = false
	e.attenuation = 0
	e.level = 0
	e.heldTime = 0
}

// ProcessBuffer advances the gate over one buffer of planar samples.
// samples holds one slice per channel; frames is the per-channel sample
// count. The loop is strictly sequential: level, attenuation and heldTime
// carry state from one sample to the next.
func (e *Engine) ProcessBuffer(samples [][]float32, frames int) {
	channels := e.channels
	if channels > len(samples) {
		channels = len(samples)
	}
	if channels == 0 {
		return
	}

	for i := 0; i < frames; i++ {
		curLevel := abs32(samples[0][i])
		for j := 1; j < channels; j++ {
			curLevel = max32(curLevel, abs32(samples[j][i]))
		}

		if curLevel > e.openThreshold && !e.isOpen {
			e.isOpen = true
		}
		// Closing tests the smoothed envelope, not the instantaneous
		// peak, so a single-sample dip cannot close the gate.
		if e.level < e.closeThreshold && e.isOpen {
			e.heldTime = 0
			e.isOpen = false
		}

		// The envelope decays every sample and is deliberately not
		// floored at zero; only max(level, curLevel) matters, so the
		// drift below zero during long silence is harmless.
		e.level = max32(e.level, curLevel) - e.decayRate

		if e.isOpen {
			e.attenuation = min32(1.0, e.attenuation+e.attackRate)
		} else {
			e.heldTime += e.sampleRateInv
			if e.heldTime > e.holdTime {
				e.attenuation = max32(0.0, e.attenuation-e.releaseRate)
			}
		}
	}
}

// ForceClose closes the gate immediately. Used when the monitored source is
// not muted, where activity must not accumulate towards a notification.
func (e *Engine) ForceClose() {
	e.isOpen = false
}

// IsOpen reports whether the gate is currently open.
func (e *Engine) IsOpen() bool {
	return e.isOpen
}

// Attenuation returns the smoothed [0,1] activity signal.
func (e *Engine) Attenuation() float32 {
	return e.attenuation
}

// Level returns the decaying peak envelope. It is unbounded below; treat it
// as a relative value only.
func (e *Engine) Level() float32 {
	return e.level
}

// DBToLinear converts a decibel value to linear amplitude.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDB converts linear amplitude to decibels, with a practical floor
// for non-positive input.
func LinearToDB(linear float64) float64 {
	if linear <= 0 {
		return -120.0
	}
	return 20.0 * math.Log10(linear)
}

func msToSec(ms int) float32 {
	return float32(ms) / 1000.0
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
