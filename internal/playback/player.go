package playback

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// Player owns one decoded clip and one output stream. All methods are
// invoked from the processing path only; the pull callback is the single
// thing that runs on the backend's audio thread. Reconfiguration follows a
// fixed protocol: stop stream -> close stream -> replace clip -> open
// stream, so the callback can never read a released clip.
type Player struct {
	log *slog.Logger

	ctxOK bool

	clip     atomic.Pointer[Clip]
	clipPath string
	lengthMs uint64

	stream     *portaudio.Stream
	deviceName string
	started    bool
}

// NewPlayer initializes the audio backend and returns a player. If the
// backend context cannot be initialized the player is still returned but
// stays disabled for its lifetime: loads, device opens and plays all
// degrade to logged no-ops.
func NewPlayer(log *slog.Logger) *Player {
	p := &Player{log: log}
	if err := portaudio.Initialize(); err != nil {
		p.log.Error("audio backend init failed, playback disabled",
			"error", fmt.Errorf("%w: %v", ErrContextInit, err))
		return p
	}
	p.ctxOK = true
	return p
}

// Load decodes the WAV file at path and installs it as the notification
// clip. On failure the player is left without a usable clip and later Play
// calls are no-ops. An output stream opened for a previous clip is torn
// down first because the stream format must match the decoder.
func (p *Player) Load(path string) error {
	if !p.ctxOK {
		return ErrContextInit
	}

	p.stopStream()
	p.clip.Store(nil)
	p.clipPath = ""
	p.lengthMs = 0

	clip, err := LoadClip(path)
	if err != nil {
		p.log.Error("failed to load clip", "path", path, "error", err)
		return err
	}

	p.clip.Store(clip)
	p.clipPath = path
	p.lengthMs = clip.LengthMs()
	p.log.Debug("clip loaded",
		"path", path,
		"length_ms", clip.LengthMs(),
		"sample_rate", clip.SampleRate(),
		"channels", clip.Channels())
	return nil
}

// OpenDevice opens the playback device with the given exact name,
// configured with the loaded clip's format and the pull callback. Any
// previously opened device is torn down first.
func (p *Player) OpenDevice(name string) error {
	if !p.ctxOK {
		return ErrContextInit
	}

	p.stopStream()
	p.deviceName = ""

	clip := p.clip.Load()
	if clip == nil {
		err := fmt.Errorf("%w: no clip loaded", ErrDeviceInit)
		p.log.Error("cannot open playback device", "device", name, "error", err)
		return err
	}

	info, err := findOutputDevice(name)
	if err != nil {
		p.log.Error("failed to find playback device", "device", name, "error", err)
		return err
	}

	params := portaudio.HighLatencyParameters(nil, info)
	params.Output.Channels = clip.Channels()
	params.SampleRate = float64(clip.SampleRate())
	params.FramesPerBuffer = portaudio.FramesPerBufferUnspecified

	stream, err := portaudio.OpenStream(params, p.pull)
	if err != nil {
		err = fmt.Errorf("%w: %q: %v", ErrDeviceInit, name, err)
		p.log.Error("failed to open playback device", "device", name, "error", err)
		return err
	}

	p.stream = stream
	p.deviceName = name
	p.log.Info("opened playback device", "device", name)
	return nil
}

// Play rewinds the clip and ensures the output stream is running. Calling
// it while the clip is already playing restarts it from frame zero rather
// than overlapping. With no clip or device it logs and returns; the
// processing path never sees an error from here.
func (p *Player) Play() {
	clip := p.clip.Load()
	if clip == nil || p.stream == nil {
		p.log.Error("cannot play notification clip, playback not configured")
		return
	}

	clip.Seek(0)
	if !p.started {
		if err := p.stream.Start(); err != nil {
			p.log.Error("failed to start playback stream", "error", err)
			return
		}
		p.started = true
	}
	p.log.Debug("playing notification clip")
}

// LengthMs returns the loaded clip's length in milliseconds, or zero when
// no clip is loaded.
func (p *Player) LengthMs() uint64 {
	return p.lengthMs
}

// Close stops the stream and releases the backend context.
func (p *Player) Close() {
	p.stopStream()
	p.clip.Store(nil)
	if p.ctxOK {
		if err := portaudio.Terminate(); err != nil {
			p.log.Error("failed to terminate audio backend", "error", err)
		}
		p.ctxOK = false
	}
}

// pull feeds the output stream from the clip cursor. Past the end of the
// clip it writes silence; the stream stays started but idle until the next
// Play rewinds the cursor. Runs on the backend's audio thread and must not
// block, allocate or log.
func (p *Player) pull(out []float32) {
	clip := p.clip.Load()
	written := 0
	if clip != nil {
		written = clip.ReadFrames(out) * clip.Channels()
	}
	for i := written; i < len(out); i++ {
		out[i] = 0
	}
}

// stopStream synchronously stops and closes the output stream. The stop
// blocks until the callback has quiesced, which makes it safe to release
// or replace the clip afterwards.
func (p *Player) stopStream() {
	if p.stream == nil {
		return
	}
	if p.started {
		if err := p.stream.Stop(); err != nil {
			p.log.Error("failed to stop playback stream", "error", err)
		}
		p.started = false
	}
	if err := p.stream.Close(); err != nil {
		p.log.Error("failed to close playback stream", "error", err)
	}
	p.stream = nil
}
