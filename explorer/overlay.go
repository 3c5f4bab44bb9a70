package explorer

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/xexplorer/grid"
)

// selectionOverlay wraps the grid content and draws the marquee rectangle
// while the background is dragged. Positions are content coordinates. Cells
// are not Draggable, so drags starting on them land here too.
type selectionOverlay struct {
	widget.BaseWidget
	content fyne.CanvasObject

	rect *canvas.Rectangle

	startPos fyne.Position
	curPos   fyne.Position
	dragging bool

	onChanged func(r grid.Rect, cur fyne.Position)
	onEnd     func()
}

func newSelectionOverlay(content fyne.CanvasObject, onChanged func(grid.Rect, fyne.Position), onEnd func()) *selectionOverlay {
	s := &selectionOverlay{
		content:   content,
		rect:      canvas.NewRectangle(color.Transparent),
		onChanged: onChanged,
		onEnd:     onEnd,
	}
	s.rect.StrokeColor = theme.Color(theme.ColorNamePrimary)
	s.rect.StrokeWidth = 2
	r, g, b, _ := theme.Color(theme.ColorNameFocus).RGBA()
	s.rect.FillColor = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 64}

	s.rect.Hide()
	s.ExtendBaseWidget(s)
	return s
}

func (s *selectionOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &selectionOverlayRenderer{s: s}
}

func (s *selectionOverlay) Dragged(e *fyne.DragEvent) {
	if !s.dragging {
		s.dragging = true
		s.startPos = e.Position.Subtract(e.Dragged)
		s.rect.Show()
	}
	s.moveTo(e.Position)
}

// moveTo moves the free corner of the marquee, as dragging or auto scrolling
// under a held pointer does.
func (s *selectionOverlay) moveTo(pos fyne.Position) {
	s.curPos = pos
	r := s.marquee()
	s.rect.Move(fyne.NewPos(r.X, r.Y))
	s.rect.Resize(fyne.NewSize(r.Width, r.Height))

	if s.onChanged != nil {
		s.onChanged(r, pos)
	}
}

func (s *selectionOverlay) DragEnd() {
	if !s.dragging {
		return
	}
	s.dragging = false
	s.rect.Hide()
	s.rect.Refresh()

	if s.onEnd != nil {
		s.onEnd()
	}
}

func (s *selectionOverlay) marquee() grid.Rect {
	x1, x2 := min(s.startPos.X, s.curPos.X), max(s.startPos.X, s.curPos.X)
	y1, y2 := min(s.startPos.Y, s.curPos.Y), max(s.startPos.Y, s.curPos.Y)
	return grid.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

type selectionOverlayRenderer struct {
	s *selectionOverlay
}

func (r *selectionOverlayRenderer) Layout(size fyne.Size) {
	r.s.content.Resize(size)
	r.s.content.Move(fyne.NewPos(0, 0))
}

func (r *selectionOverlayRenderer) MinSize() fyne.Size {
	return r.s.content.MinSize()
}

func (r *selectionOverlayRenderer) Refresh() {
	r.s.content.Refresh()
	r.s.rect.Refresh()
}

func (r *selectionOverlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.s.content, r.s.rect}
}

func (r *selectionOverlayRenderer) Destroy() {}

var _ fyne.Draggable = (*selectionOverlay)(nil)
