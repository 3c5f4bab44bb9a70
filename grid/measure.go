package grid

// Static reports whether a layout for opts is independent of the container
// width: an explicit width, a horizontal strip, or explicit columns with an
// explicit item width. Static layouts ignore resize observations so that
// measuring the container cannot feed back into its size.
func Static(opts Options) bool {
	return opts.Width > 0 ||
		opts.Horizontal ||
		opts.Columns > 0 && opts.ItemSize.Width > 0
}

// Measure tracks the observed container width and the options of one grid.
// A width observed while the layout is static is held back and applied once
// the options stop being static.
type Measure struct {
	opts     Options
	width    float32
	deferred float32
	hasDefer bool
	layout   Layout
}

func NewMeasure(opts Options) *Measure {
	m := &Measure{opts: opts}
	m.layout = m.compute()
	return m
}

// SetOptions replaces the layout inputs and recomputes the layout.
func (m *Measure) SetOptions(opts Options) Layout {
	m.opts = opts
	if m.hasDefer && !Static(opts) {
		m.width = m.deferred
		m.hasDefer = false
	}
	m.layout = m.compute()
	return m.layout
}

// Observe records a new container width. It reports whether the layout changed.
func (m *Measure) Observe(width float32) bool {
	if Static(m.opts) {
		m.deferred, m.hasDefer = width, true
		return false
	}
	if width == m.width {
		return false
	}
	m.width = width
	prev := m.layout
	m.layout = m.compute()
	return !sameGeometry(prev, m.layout)
}

// Width is the last applied container width.
func (m *Measure) Width() float32 {
	return m.width
}

func (m *Measure) Options() Options {
	return m.opts
}

func (m *Measure) Layout() Layout {
	return m.layout
}

func (m *Measure) compute() Layout {
	opts := m.opts
	if opts.Width <= 0 {
		opts.Width = m.width
	}
	return Compute(opts)
}

func sameGeometry(a, b Layout) bool {
	return a.ColumnCount == b.ColumnCount &&
		a.RowCount == b.RowCount &&
		a.TotalColumnCount == b.TotalColumnCount &&
		a.TotalRowCount == b.TotalRowCount &&
		a.ItemWidth == b.ItemWidth &&
		a.ItemHeight == b.ItemHeight
}
