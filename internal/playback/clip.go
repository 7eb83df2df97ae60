// Package playback owns the notification clip and the output device it is
// played through. A clip is decoded fully into memory when loaded; the
// output stream pulls frames from a cursor that only Play rewinds, so the
// real-time callback never allocates, locks or logs.
package playback

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/wav"
)

// Clip is a fully decoded notification sound: interleaved float32 PCM plus
// a read cursor. The cursor is atomic because Play (processing thread)
// rewinds it while the output callback (audio thread) advances it.
type Clip struct {
	data       []float32 // interleaved, frames * channels
	channels   int
	sampleRate int
	cursor     atomic.Int64 // frame index
}

// LoadClip decodes a WAV file into a Clip. Any open, parse or read failure
// is reported as ErrDecode.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %s: no audio format", ErrDecode, path)
	}

	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth != 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %s: unsupported bit depth %d", ErrDecode, path, bitDepth)
	}

	// Normalize integer PCM to [-1, 1] float32.
	scale := float32(int64(1) << (bitDepth - 1))
	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = float32(v) / scale
	}

	return &Clip{
		data:       data,
		channels:   buf.Format.NumChannels,
		sampleRate: buf.Format.SampleRate,
	}, nil
}

// Frames returns the total PCM frame count.
func (c *Clip) Frames() int {
	return len(c.data) / c.channels
}

// Channels returns the channel count of the decoded clip.
func (c *Clip) Channels() int {
	return c.channels
}

// SampleRate returns the sample rate of the decoded clip.
func (c *Clip) SampleRate() int {
	return c.sampleRate
}

// LengthMs returns the clip length in milliseconds. The frame count is
// divided by the sample rate before scaling, truncating to whole seconds
// exactly like the original filter did; the trigger refractory window is
// built on this value.
func (c *Clip) LengthMs() uint64 {
	return uint64(c.Frames()/c.sampleRate) * 1000
}

// Seek moves the read cursor to the given frame. A Seek racing the cursor
// advance in ReadFrames can lose the rewind; the window is a single output
// buffer and the worst case is one notification playing from slightly past
// frame zero, so the race is accepted rather than locked away.
func (c *Clip) Seek(frame int64) {
	c.cursor.Store(frame)
}

// ReadFrames copies sequential interleaved frames into out and advances the
// cursor. It returns the number of frames written, which is less than the
// requested count once the clip is exhausted; the caller fills the rest
// with silence. Safe to call from the real-time callback.
func (c *Clip) ReadFrames(out []float32) int {
	want := len(out) / c.channels
	pos := c.cursor.Load()
	total := int64(c.Frames())
	if pos >= total {
		return 0
	}

	n := want
	if remain := total - pos; int64(n) > remain {
		n = int(remain)
	}
	copy(out[:n*c.channels], c.data[pos*int64(c.channels):])
	c.cursor.Store(pos + int64(n))
	return n
}
