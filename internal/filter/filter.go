// Package filter wires the gate engine, the notification trigger and the
// delivery units into one filter instance. The host feeds it every audio
// buffer together with the monitored source's mute state; when sustained
// activity is detected while muted, the filter fires the audio clip and
// the visual flash, rate-limited by the refractory window.
package filter

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/univrsal/muted-notification/internal/config"
	"github.com/univrsal/muted-notification/internal/gate"
	"github.com/univrsal/muted-notification/internal/indicator"
)

// ClipPlayer is the playback unit contract. The concrete implementation
// lives in internal/playback; tests substitute a fake.
type ClipPlayer interface {
	Load(path string) error
	OpenDevice(name string) error
	Play()
	LengthMs() uint64
}

// flashFraction scales the cooldown into the flash duration. The flash is
// hidden a bit early so continuous talking into a muted mic reads as a
// blink per notification instead of a solid dot.
const flashFraction = 0.7

// Filter is one monitored-source instance. It is driven from a single
// processing goroutine; UpdateSettings is the only method safe to call
// from elsewhere.
type Filter struct {
	log     *slog.Logger
	engine  *gate.Engine
	player  ClipPlayer
	surface indicator.Surface

	sampleRate float64
	channels   int

	// Settings handed over from other goroutines, picked up at the next
	// buffer boundary.
	pending atomic.Pointer[config.Settings]

	// Applied state. lastGoodFile/lastGoodDevice track what the player
	// actually holds: a failed load stays empty so the next settings
	// update retries instead of being diffed away.
	settings       config.Settings
	lastGoodFile   string
	lastGoodDevice string

	cooldownMs   uint64
	clipLengthMs uint64
	lastFireMs   uint64

	now func() uint64 // milliseconds
}

// New returns a filter processing audio at the given stream format. Apply
// initial settings with Apply before the first buffer.
func New(sampleRate float64, channels int, player ClipPlayer, surface indicator.Surface, log *slog.Logger) *Filter {
	f := &Filter{
		log:        log,
		player:     player,
		surface:    surface,
		sampleRate: sampleRate,
		channels:   channels,
		now:        func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
	f.engine = gate.New(f.gateConfig(config.Default()))
	return f
}

// UpdateSettings schedules s to be applied before the next buffer. Safe to
// call from any goroutine; the handover is a single pointer swap and the
// apply itself runs on the processing path.
func (f *Filter) UpdateSettings(s config.Settings) {
	f.pending.Store(&s)
}

// Apply reconfigures the filter. Gate state is reset outright, and the
// clip and output device are reloaded only when their configured path or
// name changed. Must run on the processing path (or before it starts).
func (f *Filter) Apply(s config.Settings) {
	f.engine.Configure(f.gateConfig(s))

	if f.lastGoodFile == "" || f.lastGoodFile != s.File {
		f.lastGoodFile = ""
		f.lastGoodDevice = ""
		if err := f.player.Load(s.File); err == nil {
			f.lastGoodFile = s.File
		}
		// The output stream is opened with the clip's format, so a
		// clip reload always reopens the device too.
		if err := f.player.OpenDevice(s.Device); err == nil {
			f.lastGoodDevice = s.Device
		}
	}

	if f.lastGoodDevice == "" || f.lastGoodDevice != s.Device {
		f.lastGoodDevice = ""
		if err := f.player.OpenDevice(s.Device); err == nil {
			f.lastGoodDevice = s.Device
		}
	}

	f.clipLengthMs = f.player.LengthMs()
	f.cooldownMs = uint64(s.CooldownMs)
	f.settings = s
}

// ProcessBuffer advances the filter over one buffer of planar samples.
// muted is the monitored source's current mute state, re-checked every
// buffer: while the source is live the gate is forced closed and no
// notification can fire.
func (f *Filter) ProcessBuffer(samples [][]float32, frames int, muted bool) {
	if s := f.pending.Swap(nil); s != nil {
		f.Apply(*s)
	}

	if !muted {
		f.engine.ForceClose()
		return
	}

	f.engine.ProcessBuffer(samples, frames)

	// The refractory window spans the clip length plus the configured
	// cooldown, so a notification always finishes playing before the
	// next one can start. Re-firing on a still-open gate is intended:
	// someone who keeps talking into dead air gets reminded again at
	// this cadence.
	now := f.now()
	if f.engine.IsOpen() && now-f.lastFireMs > f.clipLengthMs+f.cooldownMs {
		f.lastFireMs = now
		if f.settings.AudioIndicator {
			f.player.Play()
		}
		if f.settings.VisualIndicator {
			d := time.Duration(float64(f.cooldownMs)*flashFraction) * time.Millisecond
			f.surface.RequestFlash(d, f.settings.VisualIndicatorSize)
		}
		f.log.Debug("notification fired",
			"clip_length_ms", f.clipLengthMs,
			"cooldown_ms", f.cooldownMs)
	}
}

// GateOpen reports the current gate state. Processing path only.
func (f *Filter) GateOpen() bool {
	return f.engine.IsOpen()
}

// Attenuation returns the gate's smoothed activity signal. Processing
// path only.
func (f *Filter) Attenuation() float32 {
	return f.engine.Attenuation()
}

// Level returns the gate's peak envelope. Processing path only.
func (f *Filter) Level() float32 {
	return f.engine.Level()
}

func (f *Filter) gateConfig(s config.Settings) gate.Config {
	return gate.Config{
		SampleRate:       f.sampleRate,
		Channels:         f.channels,
		OpenThresholdDB:  s.OpenThresholdDB,
		CloseThresholdDB: s.CloseThresholdDB,
		AttackMs:         s.AttackMs,
		HoldMs:           s.HoldMs,
		ReleaseMs:        s.ReleaseMs,
	}
}
