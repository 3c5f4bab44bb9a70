package explorer

import (
	"time"

	"fyne.io/fyne/v2"
)

// resizeLayout wraps a layout and calls onResize after the laid out size, or
// the size of the enclosing window, really changed. Bursts during a window
// drag are coalesced.
type resizeLayout struct {
	internal fyne.Layout
	onResize func()

	externalSize     func() fyne.Size
	lastSize         fyne.Size
	lastExternalSize fyne.Size
	lastFired        time.Time
	timer            *time.Timer
}

const resizeInterval = 60 * time.Millisecond

func (r *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	r.internal.Layout(objects, size)
	if r.onResize == nil {
		return
	}

	internalChanged := sizeChanged(size, r.lastSize)
	if internalChanged {
		r.lastSize = size
	}

	externalChanged := false
	if r.externalSize != nil {
		external := r.externalSize()
		if externalChanged = sizeChanged(external, r.lastExternalSize); externalChanged {
			r.lastExternalSize = external
		}
	}

	// Layout also runs for reasons other than a resize.
	if internalChanged || externalChanged {
		r.scheduleResize()
	}
}

func (r *resizeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return r.internal.MinSize(objects)
}

// scheduleResize never calls onResize from inside Layout: changing the
// widget tree while the driver lays it out can panic.
func (r *resizeLayout) scheduleResize() {
	now := time.Now()
	elapsed := now.Sub(r.lastFired)
	if elapsed >= resizeInterval {
		r.lastFired = now
		fyne.Do(r.onResize)
		return
	}

	delay := max(resizeInterval-elapsed, 0)
	if r.timer != nil {
		r.timer.Reset(delay)
		return
	}
	r.timer = time.AfterFunc(delay, func() {
		fyne.Do(func() {
			r.timer = nil
			r.lastFired = time.Now()
			if r.onResize != nil {
				r.onResize()
			}
		})
	})
}

func sizeChanged(a, b fyne.Size) bool {
	return abs32(a.Width-b.Width) >= 0.5 || abs32(a.Height-b.Height) >= 0.5
}
