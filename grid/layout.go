// Package grid computes the geometry of the explorer's virtualized item grid
// and the window of items that falls inside the viewport.
package grid

import "slices"

// Size is a width and height in device independent pixels.
type Size struct {
	Width, Height float32
}

// Position is an offset from the top left of the grid content.
type Position struct {
	X, Y float32
}

// Gap is the spacing between columns (X) and rows (Y).
type Gap struct {
	X, Y float32
}

type Padding struct {
	Top, Right, Bottom, Left float32
}

type Rect struct {
	X, Y, Width, Height float32
}

// Intersects reports whether r and o overlap with a non zero area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Options are the inputs of a grid layout.
type Options struct {
	// Width and Height are the viewport size. A zero Width is filled in from
	// the observed container width by Measure.
	Width, Height float32

	// Count is the number of loaded items. TotalCount includes items not yet
	// fetched; zero means the total is unknown.
	Count      int
	TotalCount int

	// Columns fixes the column count of a vertical grid. Zero fits as many
	// columns of ItemSize.Width as the width allows.
	Columns int
	// Rows fixes the row count of a horizontal grid. Zero fits rows to
	// Height when both Height and ItemSize.Height are known, else one row.
	Rows int

	// ItemSize zero fields are derived: a zero width stretches the item to
	// fill its column and a zero height copies the width.
	ItemSize Size
	Gap      Gap
	Padding  Padding

	Horizontal bool
	Reverse    bool

	// LoadMore is called when the load more area scrolls into view. The area
	// is not laid out without it.
	LoadMore     func()
	LoadMoreSize float32

	// ItemID returns the stable identity of the item at index. Items carry
	// an empty ID without it.
	ItemID func(index int) string
}

// Item is the position of one index in the grid.
type Item struct {
	ID     string
	Index  int
	Row    int
	Column int
	Rect   Rect
}

// Layout is the computed geometry. It is a value and safe to share.
type Layout struct {
	ColumnCount      int
	RowCount         int
	TotalColumnCount int
	TotalRowCount    int
	ItemWidth        float32
	ItemHeight       float32

	opts Options
}

// Compute lays out opts. Degenerate inputs, such as a zero width with auto
// columns, give an empty layout rather than an error.
func Compute(opts Options) Layout {
	l := Layout{opts: opts}
	if opts.Count < 0 {
		l.opts.Count = 0
	}
	total := l.total()
	pad, gap := opts.Padding, opts.Gap

	if opts.Horizontal {
		usable := opts.Height - pad.Top - pad.Bottom

		rows := opts.Rows
		if rows <= 0 {
			rows = 1
			if opts.Height > 0 && opts.ItemSize.Height > 0 {
				rows = max(1, fit(usable, opts.ItemSize.Height, gap.Y))
			}
		}

		h := opts.ItemSize.Height
		if h <= 0 && opts.Height > 0 {
			h = (usable - float32(rows-1)*gap.Y) / float32(rows)
		}
		w := opts.ItemSize.Width
		if w <= 0 {
			w = h
		}
		if h <= 0 {
			h = w
		}
		if w <= 0 || h <= 0 {
			return l
		}

		l.RowCount, l.TotalRowCount = rows, rows
		l.ColumnCount = ceilDiv(l.opts.Count, rows)
		l.TotalColumnCount = ceilDiv(total, rows)
		l.ItemWidth, l.ItemHeight = w, h
		return l
	}

	usable := opts.Width - pad.Left - pad.Right

	cols := opts.Columns
	if cols <= 0 {
		if opts.ItemSize.Width > 0 {
			cols = fit(usable, opts.ItemSize.Width, gap.X)
		} else if usable > 0 {
			cols = 1
		}
	}
	if cols <= 0 {
		return l
	}

	w := opts.ItemSize.Width
	if w <= 0 {
		w = (usable - float32(cols-1)*gap.X) / float32(cols)
	}
	h := opts.ItemSize.Height
	if h <= 0 {
		h = w
	}
	if w <= 0 || h <= 0 {
		return l
	}

	l.ColumnCount, l.TotalColumnCount = cols, cols
	l.RowCount = ceilDiv(l.opts.Count, cols)
	l.TotalRowCount = ceilDiv(total, cols)
	l.ItemWidth, l.ItemHeight = w, h
	return l
}

// Options returns the inputs the layout was computed from.
func (l Layout) Options() Options {
	return l.opts
}

func (l Layout) Count() int {
	return l.opts.Count
}

func (l Layout) Gap() Gap {
	return l.opts.Gap
}

func (l Layout) Padding() Padding {
	return l.opts.Padding
}

// Empty reports whether nothing can be placed yet.
func (l Layout) Empty() bool {
	return l.ItemWidth <= 0 || l.ItemHeight <= 0
}

// Item returns the placement of index, or false when index is outside the
// loaded items or the layout is empty.
func (l Layout) Item(index int) (Item, bool) {
	if index < 0 || index >= l.opts.Count || l.Empty() {
		return Item{}, false
	}

	var row, col int
	if l.opts.Horizontal {
		col, row = index/l.RowCount, index%l.RowCount
	} else {
		row, col = index/l.ColumnCount, index%l.ColumnCount
	}

	it := Item{
		Index:  index,
		Row:    row,
		Column: col,
		Rect:   l.cellRect(row, col),
	}
	if l.opts.ItemID != nil {
		it.ID = l.opts.ItemID(index)
	}
	return it, true
}

// cellRect places a logical row and column, mirroring the growing axis when
// the grid is reversed.
func (l Layout) cellRect(row, col int) Rect {
	if l.opts.Reverse {
		if l.opts.Horizontal {
			col = l.TotalColumnCount - 1 - col
		} else {
			row = l.TotalRowCount - 1 - row
		}
	}
	return Rect{
		X:      l.opts.Padding.Left + float32(col)*(l.ItemWidth+l.opts.Gap.X),
		Y:      l.opts.Padding.Top + float32(row)*(l.ItemHeight+l.opts.Gap.Y),
		Width:  l.ItemWidth,
		Height: l.ItemHeight,
	}
}

// IndexAt maps a physical row and column, as laid out on screen, back to an
// item index. Cells past the loaded items report false.
func (l Layout) IndexAt(row, col int) (int, bool) {
	if l.Empty() || row < 0 || col < 0 || row >= l.TotalRowCount || col >= l.TotalColumnCount {
		return 0, false
	}

	var index int
	if l.opts.Horizontal {
		if l.opts.Reverse {
			col = l.TotalColumnCount - 1 - col
		}
		index = col*l.RowCount + row
	} else {
		if l.opts.Reverse {
			row = l.TotalRowCount - 1 - row
		}
		index = row*l.ColumnCount + col
	}

	if index >= l.opts.Count {
		return 0, false
	}
	return index, true
}

// RowAt and ColumnAt return the physical row or column under a content
// coordinate. A gap belongs to the line before it.
func (l Layout) RowAt(y float32) int {
	return lineAt(y-l.opts.Padding.Top, l.ItemHeight+l.opts.Gap.Y, l.TotalRowCount)
}

func (l Layout) ColumnAt(x float32) int {
	return lineAt(x-l.opts.Padding.Left, l.ItemWidth+l.opts.Gap.X, l.TotalColumnCount)
}

// IndexAtPoint returns the item drawn under p, ignoring gaps.
func (l Layout) IndexAtPoint(p Position) (int, bool) {
	row, col := l.RowAt(p.Y), l.ColumnAt(p.X)
	index, ok := l.IndexAt(row, col)
	if !ok {
		return 0, false
	}
	it, _ := l.Item(index)
	if !it.Rect.Contains(p) {
		return 0, false
	}
	return index, true
}

// IndicesIn returns the loaded items whose cell overlaps r, in index order.
func (l Layout) IndicesIn(r Rect) []int {
	if l.Empty() || r.Width <= 0 || r.Height <= 0 {
		return nil
	}
	r0, r1 := lineSpan(r.Y-l.opts.Padding.Top, r.Height, l.ItemHeight+l.opts.Gap.Y, l.TotalRowCount)
	c0, c1 := lineSpan(r.X-l.opts.Padding.Left, r.Width, l.ItemWidth+l.opts.Gap.X, l.TotalColumnCount)

	var out []int
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			index, ok := l.IndexAt(row, col)
			if !ok {
				continue
			}
			if it, _ := l.Item(index); it.Rect.Intersects(r) {
				out = append(out, index)
			}
		}
	}
	slices.Sort(out)
	return out
}

// RowSize and ColumnSize are the extents the virtualizers use: the item plus
// the gap before it, except for the first line.
func (l Layout) RowSize(i int) float32 {
	if i == 0 {
		return l.ItemHeight
	}
	return l.ItemHeight + l.opts.Gap.Y
}

func (l Layout) ColumnSize(i int) float32 {
	if i == 0 {
		return l.ItemWidth
	}
	return l.ItemWidth + l.opts.Gap.X
}

// ContentSize is the scrollable size of the grid, including rows or columns
// not fetched yet.
func (l Layout) ContentSize() Size {
	if l.Empty() {
		return Size{}
	}
	pad, gap := l.opts.Padding, l.opts.Gap
	return Size{
		Width:  pad.Left + pad.Right + span(l.TotalColumnCount, l.ItemWidth, gap.X),
		Height: pad.Top + pad.Bottom + span(l.TotalRowCount, l.ItemHeight, gap.Y),
	}
}

// LoadMoreRect is the area that triggers LoadMore when it becomes visible.
// Its size is the unfetched lines plus LoadMoreSize capped at the content
// extent. This is a capped sum, not the lesser of the two. It sits on the
// trailing edge, or the leading edge when reversed. When the total is unknown
// it is a LoadMoreSize strip on that edge.
func (l Layout) LoadMoreRect() (Rect, bool) {
	o := l.opts
	if o.LoadMore == nil || l.Empty() || o.Count == 0 {
		return Rect{}, false
	}
	if o.TotalCount > 0 && o.TotalCount <= o.Count {
		return Rect{}, false
	}

	content := l.ContentSize()

	var (
		extent, cross, padStart, line, viewport float32
		loaded, total                           int
	)
	if o.Horizontal {
		extent, cross = content.Width, content.Height
		padStart = o.Padding.Left
		line = l.ItemWidth + o.Gap.X
		loaded, total = l.ColumnCount, l.TotalColumnCount
		viewport = o.Width
	} else {
		extent, cross = content.Height, content.Width
		padStart = o.Padding.Top
		line = l.ItemHeight + o.Gap.Y
		loaded, total = l.RowCount, l.TotalRowCount
		viewport = o.Height
	}

	size := o.LoadMoreSize
	if loaded == total {
		if size <= 0 {
			return Rect{}, false
		}
	} else {
		if size <= 0 {
			size = viewport
		}
		var unloaded float32
		if o.Reverse {
			unloaded = padStart + float32(total-loaded)*line
		} else {
			unloaded = extent - padStart - float32(loaded)*line
		}
		size += unloaded
	}
	size = min(size, extent)

	start := extent - size
	if o.Reverse {
		start = 0
	}

	if o.Horizontal {
		return Rect{X: start, Y: 0, Width: size, Height: cross}, true
	}
	return Rect{X: 0, Y: start, Width: cross, Height: size}, true
}

func (l Layout) total() int {
	if l.opts.TotalCount > l.opts.Count {
		return l.opts.TotalCount
	}
	return l.opts.Count
}

// fit returns how many items of size item fit in space with gap between
// them: floor(space/item) refined by the gaps that count needs.
func fit(space, item, gap float32) int {
	if space <= 0 || item <= 0 {
		return 0
	}
	n := int(space / item)
	if n > 1 {
		n = int((space - float32(n-1)*gap) / item)
	}
	return n
}

func span(n int, item, gap float32) float32 {
	if n <= 0 {
		return 0
	}
	return float32(n)*item + float32(n-1)*gap
}

func lineAt(pos, line float32, n int) int {
	if pos < 0 || line <= 0 {
		return -1
	}
	i := int(pos / line)
	if i >= n {
		return -1
	}
	return i
}

// lineSpan clamps the lines touched by [pos, pos+extent) to [0, n).
func lineSpan(pos, extent, line float32, n int) (int, int) {
	if n == 0 || line <= 0 {
		return 0, -1
	}
	first := max(int(pos/line), 0)
	last := min(int((pos+extent)/line), n-1)
	return first, last
}

func ceilDiv(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
