package explorer

import (
	"time"

	"fyne.io/fyne/v2"
	"github.com/RoaringBitmap/roaring"

	"github.com/alexballas/xexplorer/grid"
)

// marquee is the state of a rubber band selection.
type marquee struct {
	selecting bool
	lastEnd   time.Time
	// last is the index set selected by the previous drag step.
	last *roaring.Bitmap
	// pointer is the drag position relative to the viewport. It stays put
	// while auto scrolling moves the content under it.
	pointer fyne.Position

	ticker *time.Ticker
	stop   chan struct{}
	dir    int
	step   float32
}

func (m *marquee) reset() {
	m.stopAutoScroll()
	m.selecting = false
	m.last = nil
}

func (m *marquee) stopAutoScroll() {
	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	m.ticker = nil
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.dir, m.step = 0, 0
}

func (v *View) onMarquee(r grid.Rect, cur fyne.Position) {
	// Set before anything else: on some platforms MouseUp on a cell arrives
	// before DragEnd and must not replace the marquee selection.
	v.marquee.selecting = true
	if v.session == nil || len(v.session.Items()) == 0 {
		return
	}
	v.marquee.pointer = cur.Subtract(v.scroll.Offset)
	v.updateAutoScroll()
	v.updateDragSelection(r)
}

func (v *View) onMarqueeEnd() {
	v.marquee.reset()
	v.marquee.lastEnd = time.Now()
}

// updateDragSelection selects the items under r, a rectangle in content
// coordinates. Nothing is written when the set did not change.
func (v *View) updateDragSelection(r grid.Rect) {
	sel := v.session.Selection()
	if !sel.IsMultiSelect() {
		return
	}

	hits := roaring.New()
	for _, i := range v.session.Layout().IndicesIn(r) {
		hits.Add(uint32(i))
	}
	if v.marquee.last != nil && v.marquee.last.Equals(hits) {
		return
	}
	v.marquee.last = hits

	raw := hits.ToArray()
	indices := make([]int, len(raw))
	for i, x := range raw {
		indices[i] = int(x)
	}
	sel.SelectIndices(indices)
}

// updateAutoScroll scrolls while the pointer is held near the top or bottom
// edge, faster the closer it gets.
func (v *View) updateAutoScroll() {
	m := &v.marquee
	height := v.scroll.Size().Height
	if !m.selecting || height <= 0 {
		m.stopAutoScroll()
		return
	}

	zone := v.autoScrollZone()
	var dir int
	var intensity float32
	switch y := m.pointer.Y; {
	case y < zone:
		dir, intensity = -1, (zone-y)/zone
	case y > height-zone:
		dir, intensity = 1, (y-(height-zone))/zone
	}
	intensity = min(intensity, 1)
	if dir == 0 || intensity <= 0 {
		m.stopAutoScroll()
		return
	}

	maxStep := min(max(v.session.ItemSize().Height*0.5, 12), 80)
	m.dir = dir
	m.step = intensity * maxStep
	v.startAutoScroll()
}

func (v *View) startAutoScroll() {
	m := &v.marquee
	if m.ticker != nil {
		return
	}
	m.ticker = time.NewTicker(30 * time.Millisecond)
	m.stop = make(chan struct{})

	ticker, stop := m.ticker, m.stop
	go func() {
		for {
			select {
			case <-ticker.C:
				fyne.Do(v.autoScrollTick)
			case <-stop:
				return
			}
		}
	}()
}

func (v *View) autoScrollTick() {
	m := &v.marquee
	if !m.selecting || m.dir == 0 || m.step <= 0 {
		m.stopAutoScroll()
		return
	}

	offset := v.scroll.Offset.Y
	next := min(max(offset+float32(m.dir)*m.step, 0), v.maxScrollOffset())
	if next == offset {
		m.stopAutoScroll()
		return
	}

	v.scroll.Offset.Y = next
	v.scroll.Refresh()
	v.syncViewport()

	// The content under the held pointer moved: drag the marquee corner
	// along, which reselects.
	v.overlay.moveTo(m.pointer.Add(v.scroll.Offset))
}
