package grid

// Cell is a visible item of the window.
type Cell struct {
	ID     string
	Index  int
	Row    int // physical row on screen
	Column int // physical column on screen
	Rect   Rect
}

// Window composes a row and a column virtualizer over a Layout and reports
// which items intersect the viewport.
type Window struct {
	layout   Layout
	overscan int
	rows     *Virtualizer
	cols     *Virtualizer

	offset   Position
	viewport Size

	loadMoreInView bool
}

// NewWindow builds a window over l. overscan extra rows and columns are kept
// on each side of the viewport.
func NewWindow(l Layout, overscan int) *Window {
	w := &Window{overscan: overscan}
	w.rows = NewVirtualizer(w.rowOptions(l))
	w.cols = NewVirtualizer(w.columnOptions(l))
	w.layout = l
	return w
}

func (w *Window) rowOptions(l Layout) VirtualizerOptions {
	return VirtualizerOptions{
		Count:        l.TotalRowCount,
		EstimateSize: l.RowSize,
		PaddingStart: l.opts.Padding.Top,
		PaddingEnd:   l.opts.Padding.Bottom,
		Overscan:     w.overscan,
	}
}

func (w *Window) columnOptions(l Layout) VirtualizerOptions {
	return VirtualizerOptions{
		Count:        l.TotalColumnCount,
		EstimateSize: l.ColumnSize,
		PaddingStart: l.opts.Padding.Left,
		PaddingEnd:   l.opts.Padding.Right,
		Overscan:     w.overscan,
	}
}

// SetLayout swaps in a new layout. Axes whose item size changed are
// re-measured, and a change in the loaded count re-arms the load more trigger.
func (w *Window) SetLayout(l Layout) {
	prev := w.layout
	w.layout = l

	w.rows.SetOptions(w.rowOptions(l))
	if l.ItemHeight != prev.ItemHeight || l.opts.Gap.Y != prev.opts.Gap.Y {
		w.rows.Measure()
	}
	w.cols.SetOptions(w.columnOptions(l))
	if l.ItemWidth != prev.ItemWidth || l.opts.Gap.X != prev.opts.Gap.X {
		w.cols.Measure()
	}

	if l.opts.Count != prev.opts.Count {
		w.loadMoreInView = false
	}
	w.checkLoadMore()
}

// SetViewport records the scroll offset and the visible size.
func (w *Window) SetViewport(offset Position, size Size) {
	w.offset, w.viewport = offset, size
	w.checkLoadMore()
}

func (w *Window) Layout() Layout {
	return w.layout
}

func (w *Window) Offset() Position {
	return w.offset
}

func (w *Window) Viewport() Size {
	return w.viewport
}

// ContentSize is the scrollable size as the virtualizers measure it.
func (w *Window) ContentSize() Size {
	if w.layout.Empty() {
		return Size{}
	}
	return Size{Width: w.cols.TotalSize(), Height: w.rows.TotalSize()}
}

// RowRange and ColumnRange expose the per axis ranges of the current viewport.
func (w *Window) RowRange() (start, end int) {
	return w.rows.Range(w.offset.Y, w.viewport.Height)
}

func (w *Window) ColumnRange() (start, end int) {
	return w.cols.Range(w.offset.X, w.viewport.Width)
}

// Visible returns the loaded items in or near the viewport, row by row.
// Cells of a partially filled last row are skipped.
func (w *Window) Visible() []Cell {
	if w.layout.Empty() {
		return nil
	}
	r0, r1 := w.RowRange()
	c0, c1 := w.ColumnRange()
	if r0 == r1 || c0 == c1 {
		return nil
	}

	cells := make([]Cell, 0, (r1-r0)*(c1-c0))
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			index, ok := w.layout.IndexAt(row, col)
			if !ok {
				continue
			}
			it, _ := w.layout.Item(index)
			cells = append(cells, Cell{ID: it.ID, Index: index, Row: row, Column: col, Rect: it.Rect})
		}
	}
	return cells
}

// LoadMoreInView reports whether the load more area intersects the viewport.
func (w *Window) LoadMoreInView() bool {
	return w.loadMoreInView
}

// checkLoadMore calls LoadMore on the transition of the load more area into
// view. Staying in view does not call it again.
func (w *Window) checkLoadMore() {
	in := false
	if rect, ok := w.layout.LoadMoreRect(); ok && w.viewport.Width > 0 && w.viewport.Height > 0 {
		in = rect.Intersects(Rect{X: w.offset.X, Y: w.offset.Y, Width: w.viewport.Width, Height: w.viewport.Height})
	}
	if in && !w.loadMoreInView {
		w.loadMoreInView = true
		w.layout.opts.LoadMore()
		return
	}
	w.loadMoreInView = in
}
