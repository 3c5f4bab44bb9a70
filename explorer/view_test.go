package explorer

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/grid"
	"github.com/alexballas/xexplorer/query"
	"github.com/alexballas/xexplorer/selection"
)

// newTestView lists dir with 100x100 items in a 300x150 view: three columns,
// two rows on screen.
func newTestView(t *testing.T, dir string) (*View, *gridContentRenderer) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	src := &query.DirSource{Root: dir}
	s := NewSession(Options{
		Source:   src,
		Counter:  src,
		Grid:     grid.Options{ItemSize: grid.Size{Width: 100, Height: 100}},
		Location: dir,
	})
	t.Cleanup(s.Close)
	s.Start()
	s.Wait()

	v := NewView(s, nil)
	v.Resize(fyne.NewSize(300, 150))
	v.onResize()
	fyne.DoAndWait(func() {})

	r, ok := test.TempWidgetRenderer(t, v.content).(*gridContentRenderer)
	require.True(t, ok)
	return v, r
}

func selectedIndices(s *Session) []int {
	var out []int
	for i := range s.Items() {
		if s.Selection().IsIndexSelected(i) {
			out = append(out, i)
		}
	}
	return out
}

func TestView_BindsOnlyVisibleCells(t *testing.T) {
	v, r := newTestView(t, writeFiles(t, 30))

	assert.Equal(t, 3, v.Session().Layout().ColumnCount)
	assert.Equal(t, fyne.NewSize(300, 1000), r.MinSize())
	assert.Equal(t, 6, r.boundCells())
	for i := 0; i < 6; i++ {
		assert.Contains(t, r.bound, i)
	}

	v.scroll.Offset.Y = 500
	v.syncViewport()

	assert.Equal(t, 6, r.boundCells())
	for i := 15; i < 21; i++ {
		c, ok := r.bound[i]
		require.True(t, ok, "index %d", i)
		assert.Equal(t, i, c.index)
		assert.Equal(t, fyne.NewPos(float32(i%3)*100, float32(i/3)*100), c.Position())
	}
	// Cells scrolled out were reused, not created.
	assert.Len(t, r.objects, 1+6)
}

func TestView_SetSessionNil(t *testing.T) {
	v, r := newTestView(t, writeFiles(t, 5))
	require.Equal(t, 5, r.boundCells())

	v.SetSession(nil)
	assert.Equal(t, 0, r.boundCells())
	assert.Equal(t, fyne.Size{}, r.MinSize())
}

func TestView_CopyPath(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	v := &View{}
	src := &query.StaticSource{Pages: []query.Page{{Items: []any{map[string]any{
		"type": "NonIndexedPath",
		"item": map[string]any{"path": "/tmp/demo-folder/demo-file.txt", "name": "demo-file", "extension": "txt"},
	}}}}}
	s := NewSession(Options{Source: src})
	s.Start()
	s.Wait()
	require.Len(t, s.Items(), 1)

	v.CopyPath(s.Items()[0])
	assert.Equal(t, "/tmp/demo-folder/demo-file.txt", a.Clipboard().Content())
}

func TestView_ClickSelection(t *testing.T) {
	v, r := newTestView(t, writeFiles(t, 10))
	s := v.Session()

	click := func(index int, mod fyne.KeyModifier) {
		r.bound[index].MouseUp(&desktop.MouseEvent{Button: desktop.MouseButtonPrimary, Modifier: mod})
	}

	click(1, 0)
	assert.Equal(t, []int{1}, selectedIndices(s))

	click(4, fyne.KeyModifierControl)
	assert.Equal(t, []int{1, 4}, selectedIndices(s))

	click(2, fyne.KeyModifierShift)
	assert.Equal(t, []int{2, 3, 4}, selectedIndices(s), "range from the last toggled item")

	click(4, fyne.KeyModifierControl)
	assert.Equal(t, []int{2, 3}, selectedIndices(s))

	ri, ok := s.Render(3)
	require.True(t, ok)
	assert.True(t, ri.Selected)
	assert.True(t, r.bound[3].bg.Visible())
	assert.False(t, r.bound[4].bg.Visible())
}

func TestView_MarqueeSelection(t *testing.T) {
	v, r := newTestView(t, writeFiles(t, 10))
	s := v.Session()

	changes := 0
	v.OnSelectionChanged = func() { changes++ }

	// Drag up and left from (150,110) to (50,50).
	v.overlay.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 50)},
		Dragged:    fyne.NewDelta(-100, -60),
	})
	assert.Equal(t, []int{0, 1, 3, 4}, selectedIndices(s))
	assert.Equal(t, 1, changes)
	assert.True(t, v.recentlyDragged())

	// Moving within the same cells does not select again.
	v.overlay.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 55)},
		Dragged:    fyne.NewDelta(10, 5),
	})
	assert.Equal(t, 1, changes)

	v.overlay.DragEnd()
	assert.False(t, v.overlay.dragging)
	assert.Nil(t, v.marquee.ticker)

	// The click that ends a drag does not replace the marquee selection.
	r.bound[5].MouseUp(&desktop.MouseEvent{Button: desktop.MouseButtonPrimary})
	assert.Equal(t, []int{0, 1, 3, 4}, selectedIndices(s))

	v.marquee.lastEnd = time.Now().Add(-time.Second)
	r.bound[5].MouseUp(&desktop.MouseEvent{Button: desktop.MouseButtonPrimary})
	assert.Equal(t, []int{5}, selectedIndices(s))
}

func TestView_MarqueeSingleSelect(t *testing.T) {
	v, _ := newTestView(t, writeFiles(t, 10))
	v.Session().Selection().SetSingle(true)

	v.overlay.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(250, 100)},
		Dragged:    fyne.NewDelta(200, 50),
	})
	v.overlay.DragEnd()
	assert.Empty(t, selectedIndices(v.Session()))
}

func TestView_ContextMenu(t *testing.T) {
	v, _ := newTestView(t, writeFiles(t, 6))
	s := v.Session()
	s.Selection().SelectIndices([]int{0, 2})

	menu := v.contextMenu(2)
	require.NotNil(t, menu)
	assert.Equal(t, []int{0, 2}, selectedIndices(s), "right click inside the selection keeps it")

	var labels []string
	for _, item := range menu.Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Open", "Copy Path", "", "Cut", "Copy", "Deselect"}, labels)

	menu.Items[3].Action()
	assert.Equal(t, selection.ClipboardCut, s.Clipboard().Kind())
	assert.Equal(t, 2, s.Clipboard().Len())
	ri, _ := s.Render(2)
	assert.True(t, ri.Cut)

	v.contextMenu(5)
	assert.Equal(t, []int{5}, selectedIndices(s), "right click outside the selection replaces it")

	assert.Nil(t, v.contextMenu(42))
}

func TestView_OpenNavigatesIntoDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), nil, 0o644))

	v, _ := newTestView(t, dir)
	var navigated string
	var opened entity.Item
	v.OnNavigate = func(path string) { navigated = path }
	v.OnOpen = func(item entity.Item) { opened = item }

	for i, item := range v.Session().Items() {
		v.open(i)
		if entity.DataOf(item).IsDir {
			assert.Equal(t, filepath.Join(dir, "sub"), navigated)
		} else {
			assert.Same(t, item, opened)
			assert.True(t, v.Session().Selection().IsIndexSelected(i))
		}
	}
	assert.NotEmpty(t, navigated)
	assert.NotNil(t, opened)
}

func TestView_Zoom(t *testing.T) {
	v, _ := newTestView(t, writeFiles(t, 10))
	s := v.Session()

	v.SetZoomLevel(3)
	assert.Equal(t, 3, v.ZoomLevel())
	assert.Equal(t, grid.Size{Width: 150, Height: 150}, s.ItemSize())
	assert.Equal(t, 2, s.Layout().ColumnCount)
	assert.Equal(t, 3, fyne.CurrentApp().Preferences().Int(zoomLevelKey))

	v.SetZoomLevel(100)
	assert.Equal(t, len(zoomLevels)-1, v.ZoomLevel())

	v.zoom.adjust(-100)
	assert.Equal(t, 0, v.ZoomLevel())
	assert.Equal(t, grid.Size{Width: 75, Height: 75}, s.ItemSize())
	assert.Equal(t, 4, s.Layout().ColumnCount)
}

func TestZoomScrollOverlay_AccumulatesNotches(t *testing.T) {
	var steps []int
	z := newZoomScrollOverlay(func(n int) { steps = append(steps, n) })

	z.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 20)})
	assert.Empty(t, steps)
	z.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 25)})
	assert.Equal(t, []int{1}, steps)
	z.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -90)})
	assert.Equal(t, []int{1, -2}, steps)
}

func TestResizeLayout_OnResizeWhenExternalSizeChanges(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	callbacks := 0
	external := fyne.NewSize(1200, 800)
	r := &resizeLayout{
		internal: layout.NewStackLayout(),
		onResize: func() {
			callbacks++
		},
		externalSize: func() fyne.Size {
			return external
		},
	}

	contentSize := fyne.NewSize(700, 500)
	r.Layout(nil, contentSize)
	fyne.DoAndWait(func() {})
	require.Equal(t, 1, callbacks, "initial layout")

	r.lastFired = time.Now().Add(-time.Second)
	r.Layout(nil, contentSize)
	fyne.DoAndWait(func() {})
	assert.Equal(t, 1, callbacks, "no size change")

	external = fyne.NewSize(1300, 800)
	r.lastFired = time.Now().Add(-time.Second)
	r.Layout(nil, contentSize)
	fyne.DoAndWait(func() {})
	assert.Equal(t, 2, callbacks, "window resized around unchanged content")
}

func TestCalculateItemSize(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	def := calculateItemSize(0)
	assert.InDelta(t, fileIconCellWidth, def.Width, 0.01)
	assert.Greater(t, def.Height, float32(fileIconSize))

	wide := calculateItemSize(fileIconCellWidth * 2)
	assert.Greater(t, wide.Height, def.Height)
}

func TestAncestors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	assert.Equal(t, []string{"/", "/home", "/home/user", "/home/user/docs"}, ancestors("/home/user/docs/"))
	assert.Equal(t, []string{"/"}, ancestors("/"))
}
