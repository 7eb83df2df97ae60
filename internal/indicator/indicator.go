// Package indicator bridges the notification trigger to the UI surface
// that renders the visual flash. The trigger only decides when and for how
// long to flash; rendering and positioning belong to the surface.
package indicator

import (
	"sync/atomic"
	"time"
)

// Surface receives flash requests from the trigger. Implementations own
// their show/hide timing and geometry.
type Surface interface {
	// RequestFlash asks for a flash of the given duration and size. A
	// request while a flash is in-flight replaces the visible deadline
	// and size; requests never queue or stack.
	RequestFlash(duration time.Duration, sizePx int)
}

// Overlay is the shared flash state between the processing path (writer)
// and the UI poll loop (reader). Both sides touch it at coarse cadence and
// nothing here is hard real-time, so two atomics are all the coordination
// it needs.
type Overlay struct {
	deadlineMs atomic.Int64 // unix ms after which the flash is hidden
	sizePx     atomic.Int32

	now func() time.Time
}

// NewOverlay returns an overlay with no flash pending.
func NewOverlay() *Overlay {
	return &Overlay{now: time.Now}
}

// RequestFlash implements Surface. Called from the processing path.
func (o *Overlay) RequestFlash(duration time.Duration, sizePx int) {
	o.sizePx.Store(int32(sizePx))
	o.deadlineMs.Store(o.now().Add(duration).UnixMilli())
}

// Visible reports whether a flash should currently be shown and at what
// size. Called from the UI's poll tick.
func (o *Overlay) Visible() (bool, int) {
	if o.now().UnixMilli() >= o.deadlineMs.Load() {
		return false, 0
	}
	return true, int(o.sizePx.Load())
}
