package grid

import "sort"

// VirtualizerOptions configures one axis of the window.
type VirtualizerOptions struct {
	Count        int
	EstimateSize func(index int) float32
	PaddingStart float32
	PaddingEnd   float32
	// Overscan is the number of extra lines kept on each side of the viewport.
	Overscan int
}

// VirtualItem is one line along an axis. Start is measured from the content
// origin, padding included.
type VirtualItem struct {
	Index int
	Start float32
	Size  float32
}

func (v VirtualItem) End() float32 {
	return v.Start + v.Size
}

// Virtualizer maps a scroll offset to the contiguous range of lines on one
// axis that intersect the viewport.
type Virtualizer struct {
	opts   VirtualizerOptions
	starts []float32
	sizes  []float32
}

func NewVirtualizer(opts VirtualizerOptions) *Virtualizer {
	v := &Virtualizer{}
	v.SetOptions(opts)
	return v
}

// SetOptions replaces the options. Line sizes are only re-estimated when the
// count changes; call Measure when the estimate itself changed.
func (v *Virtualizer) SetOptions(opts VirtualizerOptions) {
	countChanged := opts.Count != len(v.sizes)
	v.opts = opts
	if countChanged || v.starts == nil {
		v.Measure()
		return
	}
	v.restart()
}

func (v *Virtualizer) Options() VirtualizerOptions {
	return v.opts
}

// Measure re-estimates every line size.
func (v *Virtualizer) Measure() {
	n := max(v.opts.Count, 0)
	v.sizes = make([]float32, n)
	for i := range v.sizes {
		if v.opts.EstimateSize != nil {
			v.sizes[i] = max(v.opts.EstimateSize(i), 0)
		}
	}
	v.restart()
}

func (v *Virtualizer) restart() {
	v.starts = make([]float32, len(v.sizes))
	pos := v.opts.PaddingStart
	for i, size := range v.sizes {
		v.starts[i] = pos
		pos += size
	}
}

// TotalSize is the scrollable extent of the axis.
func (v *Virtualizer) TotalSize() float32 {
	n := len(v.sizes)
	if n == 0 {
		return v.opts.PaddingStart + v.opts.PaddingEnd
	}
	return v.starts[n-1] + v.sizes[n-1] + v.opts.PaddingEnd
}

// Range returns the half open range [start, end) of lines intersecting
// [offset, offset+viewport), widened by the overscan.
func (v *Virtualizer) Range(offset, viewport float32) (start, end int) {
	n := len(v.sizes)
	if n == 0 || viewport <= 0 {
		return 0, 0
	}
	limit := offset + viewport

	// First line ending after offset.
	start = sort.Search(n, func(i int) bool {
		return v.starts[i]+v.sizes[i] > offset
	})
	// First line starting at or after limit.
	end = sort.Search(n, func(i int) bool {
		return v.starts[i] >= limit
	})
	if start >= end {
		return 0, 0
	}

	start = max(0, start-v.opts.Overscan)
	end = min(n, end+v.opts.Overscan)
	return start, end
}

// Items returns the lines of Range with their positions.
func (v *Virtualizer) Items(offset, viewport float32) []VirtualItem {
	start, end := v.Range(offset, viewport)
	if start == end {
		return nil
	}
	out := make([]VirtualItem, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, VirtualItem{Index: i, Start: v.starts[i], Size: v.sizes[i]})
	}
	return out
}
