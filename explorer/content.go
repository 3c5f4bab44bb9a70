package explorer

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// gridContent is the scrolled canvas of the grid. Its min size is the full
// content size of the layout, while only the cells of the current window are
// placed on it.
type gridContent struct {
	widget.BaseWidget
	view *View
}

func newGridContent(v *View) *gridContent {
	g := &gridContent{view: v}
	g.ExtendBaseWidget(g)
	return g
}

func (g *gridContent) CreateRenderer() fyne.WidgetRenderer {
	r := &gridContentRenderer{
		content: g,
		bound:   make(map[int]*itemCell),
		busy:    widget.NewProgressBarInfinite(),
	}
	r.busy.Hide()
	r.objects = []fyne.CanvasObject{r.busy}
	return r
}

type gridContentRenderer struct {
	content *gridContent
	bound   map[int]*itemCell
	free    []*itemCell
	busy    *widget.ProgressBarInfinite
	objects []fyne.CanvasObject
}

func (r *gridContentRenderer) Layout(fyne.Size) {
	r.place()
}

func (r *gridContentRenderer) MinSize() fyne.Size {
	s := r.content.view.session
	if s == nil {
		return fyne.Size{}
	}
	return toFyneSize(s.ContentSize())
}

func (r *gridContentRenderer) Refresh() {
	r.place()
}

func (r *gridContentRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *gridContentRenderer) Destroy() {}

// place binds a pooled cell to every visible index and parks the rest.
func (r *gridContentRenderer) place() {
	v := r.content.view
	s := v.session
	if s == nil {
		r.release(nil)
		r.busy.Hide()
		return
	}

	cells := s.Visible()
	keep := make(map[int]bool, len(cells))
	for _, cell := range cells {
		keep[cell.Index] = true
	}
	r.release(keep)

	for _, cell := range cells {
		ri, ok := s.Render(cell.Index)
		if !ok {
			continue
		}
		c, ok := r.bound[cell.Index]
		if !ok {
			c = r.acquire()
			r.bound[cell.Index] = c
		}
		c.bind(cell.Index, ri, cell.Rect.Width)
		c.Move(fyne.NewPos(cell.Rect.X, cell.Rect.Y))
		c.Resize(fyne.NewSize(cell.Rect.Width, cell.Rect.Height))
		c.Show()
	}

	if rect, ok := s.Layout().LoadMoreRect(); ok && s.Query().IsFetchingNextPage() {
		h := min(r.busy.MinSize().Height, rect.Height)
		r.busy.Move(fyne.NewPos(rect.X, rect.Y))
		r.busy.Resize(fyne.NewSize(rect.Width, h))
		r.busy.Show()
	} else {
		r.busy.Hide()
	}
}

// release parks every bound cell whose index is not in keep.
func (r *gridContentRenderer) release(keep map[int]bool) {
	for index, c := range r.bound {
		if keep[index] {
			continue
		}
		delete(r.bound, index)
		c.index = -1
		c.Hide()
		r.free = append(r.free, c)
	}
}

func (r *gridContentRenderer) acquire() *itemCell {
	if n := len(r.free); n > 0 {
		c := r.free[n-1]
		r.free = r.free[:n-1]
		return c
	}
	c := newItemCell(r.content.view)
	r.objects = append(r.objects, c)
	return c
}

// boundCells is the number of cells currently showing an item.
func (r *gridContentRenderer) boundCells() int {
	return len(r.bound)
}
