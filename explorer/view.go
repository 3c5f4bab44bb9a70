package explorer

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/xexplorer/entity"
)

// View shows a Session as a scrollable, virtualized grid with click and
// marquee selection, a context menu and zooming.
type View struct {
	widget.BaseWidget

	session   *Session
	thumbs    *ThumbnailManager
	unobserve []func()

	scroll      *container.Scroll
	content     *gridContent
	overlay     *selectionOverlay
	zoomOverlay *zoomScrollOverlay
	zoom        *zoom
	root        *fyne.Container

	baseItemSize fyne.Size
	shownErr     error
	activeMenu   *widget.PopUp

	marquee marquee

	// OnOpen is called on double click of an item that is not a directory.
	OnOpen func(entity.Item)
	// OnNavigate is called on double click of a directory.
	OnNavigate func(path string)
	// OnError is called once for every new fetch error of the session.
	OnError func(error)
	// OnSelectionChanged is called after every selection change.
	OnSelectionChanged func()
}

// NewView builds a view over s. thumbs may be nil to show file icons only.
// An item height of zero in the session's grid options is derived from the
// width so that the icon and three lines of label fit.
func NewView(s *Session, thumbs *ThumbnailManager) *View {
	v := &View{thumbs: thumbs}
	v.zoom = newZoom(v.applyZoom)
	v.content = newGridContent(v)
	v.overlay = newSelectionOverlay(v.content, v.onMarquee, v.onMarqueeEnd)
	v.scroll = container.NewScroll(v.overlay)
	v.scroll.OnScrolled = func(fyne.Position) {
		v.syncViewport()
	}
	v.zoomOverlay = newZoomScrollOverlay(v.zoom.adjust)
	v.root = container.New(&resizeLayout{
		internal: layout.NewStackLayout(),
		onResize: v.onResize,
		externalSize: func() fyne.Size {
			if c := fyne.CurrentApp().Driver().CanvasForObject(v); c != nil {
				return c.Size()
			}
			return fyne.Size{}
		},
	}, v.scroll, v.zoomOverlay)

	v.ExtendBaseWidget(v)
	v.SetSession(s)
	return v
}

func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.root)
}

func (v *View) Session() *Session {
	return v.session
}

// SetSession swaps the listing shown, scrolling back to the top.
func (v *View) SetSession(s *Session) {
	for _, fn := range v.unobserve {
		fn()
	}
	v.unobserve = nil
	v.DismissMenu()
	v.marquee.reset()

	v.session = s
	v.shownErr = nil
	if s == nil {
		v.refresh()
		return
	}

	base := toFyneSize(s.ItemSize())
	if base.Height <= 0 {
		base = calculateItemSize(base.Width)
	}
	v.baseItemSize = base
	s.SetItemSize(toGridSize(scaleSize(base, v.zoom.scale())))

	v.unobserve = append(v.unobserve,
		s.Observe(v.sessionChanged),
		s.Selection().Observe(v.selectionChanged),
	)

	v.scroll.Offset = fyne.Position{}
	if size := v.scroll.Size(); size.Width > 0 {
		s.ObserveWidth(size.Width)
	}
	v.syncViewport()
	v.refresh()
}

// SetZoomLevel selects one of the zoom steps, 0 being the smallest.
func (v *View) SetZoomLevel(level int) {
	v.zoom.set(level)
}

func (v *View) ZoomLevel() int {
	return v.zoom.level
}

func (v *View) applyZoom(scale float32) {
	if v.session == nil {
		return
	}
	v.session.SetItemSize(toGridSize(scaleSize(v.baseItemSize, scale)))
	v.syncViewport()
	v.refresh()
}

func (v *View) onResize() {
	v.DismissMenu()
	if v.session == nil {
		return
	}
	v.session.ObserveWidth(v.scroll.Size().Width)
	v.syncViewport()
	v.refresh()
}

// syncViewport hands the scroll position to the session and redraws the
// window. Reaching the load more area fetches the next page.
func (v *View) syncViewport() {
	if v.session == nil {
		return
	}
	v.session.SetViewport(toGridPos(v.scroll.Offset), toGridSize(v.scroll.Size()))
	v.content.Refresh()
}

func (v *View) sessionChanged() {
	if err := v.session.Err(); err != nil && err != v.shownErr {
		v.shownErr = err
		if v.OnError != nil {
			v.OnError(err)
		}
	}
	v.refresh()
}

func (v *View) selectionChanged() {
	v.content.Refresh()
	if v.OnSelectionChanged != nil {
		v.OnSelectionChanged()
	}
}

func (v *View) refresh() {
	v.content.Refresh()
	v.scroll.Refresh()
}

func (v *View) selectIndex(i int) {
	v.session.Selection().Select(i)
}

func (v *View) toggleIndex(i int) {
	v.session.Selection().Toggle(i)
}

func (v *View) extendTo(i int) {
	v.session.Selection().ExtendTo(i)
}

// SelectAll selects every loaded item.
func (v *View) SelectAll() {
	if v.session == nil || !v.session.Selection().IsMultiSelect() {
		return
	}
	indices := make([]int, len(v.session.Items()))
	for i := range indices {
		indices[i] = i
	}
	v.session.Selection().SelectIndices(indices)
}

func (v *View) open(i int) {
	ri, ok := v.session.Render(i)
	if !ok {
		return
	}
	d := entity.DataOf(ri.Item)
	if d.IsDir && d.Path != "" {
		if v.OnNavigate != nil {
			v.OnNavigate(d.Path)
		}
		return
	}
	v.session.Selection().Select(i)
	if v.OnOpen != nil {
		v.OnOpen(ri.Item)
	}
}

// OpenSelection acts like a double click on the selection. A lone selected
// directory is entered, otherwise every selected file is opened.
func (v *View) OpenSelection() {
	if v.session == nil {
		return
	}
	items := v.session.Selection().SelectedItems()
	if len(items) == 1 {
		if d := entity.DataOf(items[0]); d.IsDir && d.Path != "" {
			if v.OnNavigate != nil {
				v.OnNavigate(d.Path)
			}
			return
		}
	}
	if v.OnOpen == nil {
		return
	}
	for _, item := range items {
		if !entity.DataOf(item).IsDir {
			v.OnOpen(item)
		}
	}
}

// CopyPath puts the path of item on the system clipboard.
func (v *View) CopyPath(item entity.Item) {
	if item == nil {
		return
	}
	path := entity.DataOf(item).Path
	if path == "" {
		return
	}
	if app := fyne.CurrentApp(); app != nil {
		app.Clipboard().SetContent(path)
	}
}

// contextMenu builds the menu of the item at index. The item joins the
// selection first unless it is part of it already.
func (v *View) contextMenu(index int) *fyne.Menu {
	ri, ok := v.session.Render(index)
	if !ok {
		return nil
	}
	sel := v.session.Selection()
	sel.EnsureSelected(ri.Item)

	item := ri.Item
	items := []*fyne.MenuItem{
		fyne.NewMenuItem(lang.L("Open"), func() {
			v.DismissMenu()
			v.open(index)
		}),
		fyne.NewMenuItem(lang.L("Copy Path"), func() {
			v.DismissMenu()
			v.CopyPath(item)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(lang.L("Cut"), func() {
			v.DismissMenu()
			v.session.Cut()
		}),
		fyne.NewMenuItem(lang.L("Copy"), func() {
			v.DismissMenu()
			v.session.Copy()
		}),
	}
	if sel.IsMultiSelect() {
		items = append(items, fyne.NewMenuItem(lang.L("Deselect"), func() {
			v.DismissMenu()
			sel.RemoveSelectedItem(item)
		}))
	}
	return fyne.NewMenu("", items...)
}

func (v *View) showContextMenu(index int, pos fyne.Position, obj fyne.CanvasObject) {
	menu := v.contextMenu(index)
	if menu == nil {
		return
	}
	v.DismissMenu()

	c := fyne.CurrentApp().Driver().CanvasForObject(v)
	if c == nil {
		return
	}
	m := widget.NewMenu(menu)
	m.OnDismiss = v.DismissMenu

	abs := fyne.CurrentApp().Driver().AbsolutePositionForObject(obj).Add(pos)
	v.activeMenu = widget.NewPopUp(m, c)
	v.activeMenu.ShowAtPosition(abs)
}

func (v *View) DismissMenu() {
	if v.activeMenu != nil {
		v.activeMenu.Hide()
		v.activeMenu = nil
	}
}

func (v *View) recentlyDragged() bool {
	return v.marquee.selecting || time.Since(v.marquee.lastEnd) < dragClickGuard*time.Millisecond
}

func (v *View) maxScrollOffset() float32 {
	if v.session == nil {
		return 0
	}
	return max(v.session.ContentSize().Height-v.scroll.Size().Height, 0)
}

func (v *View) autoScrollZone() float32 {
	return min(max(theme.Padding()*4, 24), v.scroll.Size().Height/2)
}
