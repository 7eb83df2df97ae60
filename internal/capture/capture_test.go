package capture

import (
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

func TestDeinterleave(t *testing.T) {
	// Two channels, three frames: L0 R0 L1 R1 L2 R2.
	in := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	planar := newPlanar(2, 3)

	frames := deinterleave(in, planar, 2)
	if frames != 3 {
		t.Fatalf("frames = %d, want 3", frames)
	}

	wantL := []float32{0.1, 0.2, 0.3}
	wantR := []float32{-0.1, -0.2, -0.3}
	for i := range wantL {
		if planar[0][i] != wantL[i] {
			t.Errorf("left[%d] = %v, want %v", i, planar[0][i], wantL[i])
		}
		if planar[1][i] != wantR[i] {
			t.Errorf("right[%d] = %v, want %v", i, planar[1][i], wantR[i])
		}
	}
}

func TestDeinterleaveGrowsBuffers(t *testing.T) {
	// The backend may deliver more frames than the configured buffer
	// size; planar slices grow rather than truncate.
	in := make([]float32, 2*8)
	for i := range in {
		in[i] = float32(i)
	}
	planar := newPlanar(2, 4)

	frames := deinterleave(in, planar, 2)
	if frames != 8 {
		t.Fatalf("frames = %d, want 8", frames)
	}
	if len(planar[0]) != 8 || len(planar[1]) != 8 {
		t.Fatalf("planar lengths = %d/%d, want 8/8", len(planar[0]), len(planar[1]))
	}
	if planar[0][7] != 14 || planar[1][7] != 15 {
		t.Errorf("last frame = %v/%v, want 14/15", planar[0][7], planar[1][7])
	}
}

// newTestStream builds a stream around a fake blocking read so the loop
// runs without an audio backend.
func newTestStream(read func() error, fn func(Buffer)) *Stream {
	return &Stream{
		in:       make([]float32, 2*4),
		planar:   newPlanar(2, 4),
		channels: 2,
		fn:       fn,
		read:     read,
		stop:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

func TestReadLoopDeliversBuffers(t *testing.T) {
	// The consumer callback runs on the read-loop goroutine, not inside
	// a backend callback, so it may block and call back into the audio
	// layer. The loop exits promptly when stopped.
	delivered := make(chan Buffer)
	var s *Stream

	reads := 0
	s = newTestStream(func() error {
		reads++
		for i := range s.in {
			s.in[i] = float32(reads)
		}
		return nil
	}, func(buf Buffer) {
		delivered <- buf
	})

	go s.loop()

	for want := 1; want <= 3; want++ {
		select {
		case buf := <-delivered:
			if buf.Frames != 4 {
				t.Fatalf("frames = %d, want 4", buf.Frames)
			}
			if got := buf.Samples[0][0]; got != float32(want) {
				t.Fatalf("buffer %d carries sample %v, want %v", want, got, float32(want))
			}
		case <-time.After(time.Second):
			t.Fatal("read loop delivered no buffer")
		}
	}

	close(s.stop)
	select {
	case <-s.exited:
	case buf := <-delivered:
		// The loop may have been mid-iteration; drain one buffer and
		// then it must exit.
		_ = buf
		select {
		case <-s.exited:
		case <-time.After(time.Second):
			t.Fatal("read loop did not exit after stop")
		}
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit after stop")
	}
}

func TestReadLoopSkipsOverflow(t *testing.T) {
	// An input overflow is transient: the read is retried instead of
	// tearing the loop down.
	delivered := make(chan Buffer)
	reads := 0
	var s *Stream
	s = newTestStream(func() error {
		reads++
		if reads == 1 {
			return portaudio.InputOverflowed
		}
		return nil
	}, func(buf Buffer) {
		delivered <- buf
	})

	go s.loop()
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("loop stopped on transient overflow")
	}
	close(s.stop)
}

func TestDeinterleaveMono(t *testing.T) {
	in := []float32{0.5, 0.6, 0.7}
	planar := newPlanar(1, 3)

	if frames := deinterleave(in, planar, 1); frames != 3 {
		t.Fatalf("frames = %d, want 3", frames)
	}
	for i, want := range in {
		if planar[0][i] != want {
			t.Errorf("sample %d = %v, want %v", i, planar[0][i], want)
		}
	}
}
