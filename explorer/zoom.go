package explorer

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var zoomLevels = []float32{
	0.75,
	1.0,
	1.25,
	1.5,
	1.75,
	2.0,
}

const defaultZoomLevelIndex = 1 // 1.0

func clampZoomLevelIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(zoomLevels) {
		return len(zoomLevels) - 1
	}
	return i
}

// zoom is the zoom level of a view, persisted in the app preferences.
type zoom struct {
	level    int
	onChange func(scale float32)

	in, out *widget.Button
}

func newZoom(onChange func(scale float32)) *zoom {
	z := &zoom{level: defaultZoomLevelIndex, onChange: onChange}
	if app := fyne.CurrentApp(); app != nil {
		z.level = clampZoomLevelIndex(app.Preferences().IntWithFallback(zoomLevelKey, defaultZoomLevelIndex))
	}
	return z
}

func (z *zoom) scale() float32 {
	return zoomLevels[clampZoomLevelIndex(z.level)]
}

func (z *zoom) adjust(steps int) {
	if steps != 0 {
		z.set(z.level + steps)
	}
}

func (z *zoom) set(level int) {
	level = clampZoomLevelIndex(level)
	if z.level == level {
		return
	}
	z.level = level
	if app := fyne.CurrentApp(); app != nil {
		app.Preferences().SetInt(zoomLevelKey, level)
	}
	z.updateButtons()
	if z.onChange != nil {
		z.onChange(z.scale())
	}
}

// bind makes in and out step the zoom and tracks their enabled state.
func (z *zoom) bind(in, out *widget.Button) {
	z.in, z.out = in, out
	in.OnTapped = func() { z.adjust(1) }
	out.OnTapped = func() { z.adjust(-1) }
	z.updateButtons()
}

func (z *zoom) updateButtons() {
	if z.out != nil {
		if z.level <= 0 {
			z.out.Disable()
		} else {
			z.out.Enable()
		}
	}
	if z.in != nil {
		if z.level >= len(zoomLevels)-1 {
			z.in.Disable()
		} else {
			z.in.Enable()
		}
	}
}

func scaleSize(s fyne.Size, scale float32) fyne.Size {
	return fyne.NewSize(s.Width*scale, s.Height*scale)
}

func isZoomModifierActive() bool {
	d, ok := fyne.CurrentApp().Driver().(desktop.Driver)
	if !ok {
		return false
	}

	mods := d.CurrentKeyModifiers()
	if mods&fyne.KeyModifierControl != 0 {
		return true
	}
	// Command+scroll on macOS.
	return mods&fyne.KeyModifierShortcutDefault != 0
}

// zoomScrollOverlay turns Ctrl+wheel into zoom steps. It is only visible, and
// so only receives scroll events, while the modifier is held.
type zoomScrollOverlay struct {
	widget.BaseWidget
	onStep func(steps int)
	accDY  float32
}

func newZoomScrollOverlay(onStep func(steps int)) *zoomScrollOverlay {
	z := &zoomScrollOverlay{onStep: onStep}
	z.ExtendBaseWidget(z)
	return z
}

func (z *zoomScrollOverlay) Visible() bool {
	if !z.BaseWidget.Visible() {
		return false
	}
	return isZoomModifierActive()
}

func (z *zoomScrollOverlay) Scrolled(e *fyne.ScrollEvent) {
	if z.onStep == nil {
		return
	}

	// A mouse wheel notch is about 40; accumulate so touchpads do not race.
	const notch = float32(40)

	if math.IsNaN(float64(e.Scrolled.DY)) || math.IsInf(float64(e.Scrolled.DY), 0) {
		return
	}

	z.accDY += e.Scrolled.DY

	var steps int
	for z.accDY >= notch {
		steps++
		z.accDY -= notch
	}
	for z.accDY <= -notch {
		steps--
		z.accDY += notch
	}

	if steps != 0 {
		z.onStep(steps)
	}
}

func (z *zoomScrollOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &zoomScrollOverlayRenderer{}
}

var _ fyne.Scrollable = (*zoomScrollOverlay)(nil)

type zoomScrollOverlayRenderer struct{}

func (r *zoomScrollOverlayRenderer) Layout(fyne.Size) {}
func (r *zoomScrollOverlayRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}
func (r *zoomScrollOverlayRenderer) Refresh()                     {}
func (r *zoomScrollOverlayRenderer) Objects() []fyne.CanvasObject { return nil }
func (r *zoomScrollOverlayRenderer) Destroy()                     {}
