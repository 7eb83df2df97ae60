// Package capture opens the monitored microphone and delivers its audio to
// the processing callback as planar float32 buffers, the layout the gate
// engine consumes.
//
// Buffers are pulled with blocking reads on a plain goroutine, never
// delivered on the backend's audio thread. The consumer is therefore free
// to log, touch files and open or close playback streams.
package capture

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// ErrNoInputDevice is returned when no capture device is available.
var ErrNoInputDevice = errors.New("no audio input device found")

// DefaultFramesPerBuffer is 10ms at 48kHz, a typical host buffer cadence.
const DefaultFramesPerBuffer = 480

// Buffer is one captured block of planar samples: one slice per channel,
// Frames valid samples each. The slices are reused between reads; the
// consumer must not retain them.
type Buffer struct {
	Samples [][]float32
	Frames  int
}

// Config selects the capture device and stream format.
type Config struct {
	DeviceName      string // empty selects the system default input
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
}

// Device describes one capture-capable device.
type Device struct {
	Name       string
	Channels   int
	SampleRate float64
	Default    bool
}

// Stream is an open capture stream. The callback passed to Open runs on
// the read-loop goroutine started by Start.
type Stream struct {
	stream   *portaudio.Stream
	in       []float32
	planar   [][]float32
	channels int
	fn       func(Buffer)
	read     func() error

	started bool
	stop    chan struct{}
	exited  chan struct{}
}

// Devices returns all capture-capable devices in enumeration order.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()

	var devs []Device
	for _, info := range infos {
		if info.MaxInputChannels > 0 {
			devs = append(devs, Device{
				Name:       info.Name,
				Channels:   info.MaxInputChannels,
				SampleRate: info.DefaultSampleRate,
				Default:    info == def,
			})
		}
	}
	return devs, nil
}

// Open opens the configured input device with a blocking-read buffer. The
// stream starts delivering buffers after Start.
func Open(cfg Config, fn func(Buffer)) (*Stream, error) {
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = DefaultFramesPerBuffer
	}

	info, err := findInputDevice(cfg.DeviceName)
	if err != nil {
		return nil, err
	}
	if cfg.Channels > info.MaxInputChannels {
		cfg.Channels = info.MaxInputChannels
	}

	s := &Stream{
		in:       make([]float32, cfg.FramesPerBuffer*cfg.Channels),
		channels: cfg.Channels,
		planar:   newPlanar(cfg.Channels, cfg.FramesPerBuffer),
		fn:       fn,
		stop:     make(chan struct{}),
		exited:   make(chan struct{}),
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = cfg.Channels
	params.SampleRate = cfg.SampleRate
	params.FramesPerBuffer = cfg.FramesPerBuffer

	stream, err := portaudio.OpenStream(params, s.in)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream on %q: %w", info.Name, err)
	}
	s.stream = stream
	s.read = stream.Read
	return s, nil
}

// Start begins capture and launches the read loop.
func (s *Stream) Start() error {
	if err := s.stream.Start(); err != nil {
		return err
	}
	s.started = true
	go s.loop()
	return nil
}

// Close stops the read loop, then stops and releases the stream. The loop
// has exited by the time the stream is stopped, so the consumer callback
// has quiesced when Close returns.
func (s *Stream) Close() error {
	close(s.stop)
	if s.started {
		<-s.exited
	}
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}

// loop blocks on the stream and hands each buffer to the consumer. It is
// the only goroutine touching the planar buffers while it runs.
func (s *Stream) loop() {
	defer close(s.exited)
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		if err := s.read(); err != nil {
			if err == portaudio.InputOverflowed {
				continue
			}
			return
		}

		frames := deinterleave(s.in, s.planar, s.channels)
		s.fn(Buffer{Samples: s.planar, Frames: frames})
	}
}

// deinterleave splits interleaved samples into planar per-channel slices,
// growing them if the backend delivers more frames than expected. Returns
// the frame count.
func deinterleave(in []float32, planar [][]float32, channels int) int {
	frames := len(in) / channels
	for c := 0; c < channels; c++ {
		if cap(planar[c]) < frames {
			planar[c] = make([]float32, frames)
		}
		planar[c] = planar[c][:frames]
		for i := 0; i < frames; i++ {
			planar[c][i] = in[i*channels+c]
		}
	}
	return frames
}

func newPlanar(channels, frames int) [][]float32 {
	planar := make([][]float32, channels)
	for c := range planar {
		planar[c] = make([]float32, frames)
	}
	return planar
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		info, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
		}
		return info, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.MaxInputChannels > 0 && info.Name == name {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoInputDevice, name)
}
