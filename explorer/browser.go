package explorer

import (
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/grid"
	"github.com/alexballas/xexplorer/internal/config"
	"github.com/alexballas/xexplorer/internal/logging"
	"github.com/alexballas/xexplorer/query"
)

var sortLabels = []string{"Name (A-Z)", "Name (Z-A)", "Size", "Date"}

// Browser is a local directory explorer window content: places sidebar,
// breadcrumbs, toolbar, the grid view and a status footer. Every directory
// is a new Session.
type Browser struct {
	win    fyne.Window
	cfg    config.Explorer
	thumbs *ThumbnailManager
	log    *zap.Logger

	dir        string
	showHidden bool
	sortOrder  query.SortOrder
	filter     string

	originalOnTypedRune func(rune)
	originalOnTypedKey  func(*fyne.KeyEvent)

	view       *View
	sidebar    *sidebar
	breadcrumb *breadcrumb
	search     *widget.Entry
	status     *widget.Label
	content    fyne.CanvasObject

	// OnOpen is called when a file is double clicked.
	OnOpen func(entity.Item)
}

// NewBrowser builds the browser UI in win. thumbs may be nil.
func NewBrowser(win fyne.Window, cfg config.Explorer, thumbs *ThumbnailManager) *Browser {
	b := &Browser{
		win:        win,
		cfg:        cfg,
		thumbs:     thumbs,
		log:        logging.Named("browser"),
		showHidden: cfg.ShowHidden,
	}
	if prefs := fyne.CurrentApp().Preferences(); prefs != nil {
		b.showHidden = prefs.BoolWithFallback(showHiddenKey, b.showHidden)
		b.sortOrder = query.SortOrder(prefs.IntWithFallback(sortOrderKey, int(query.SortNameAsc)))
	}

	b.view = NewView(nil, thumbs)
	b.view.OnNavigate = b.SetLocation
	b.view.OnOpen = func(item entity.Item) {
		if b.OnOpen != nil {
			b.OnOpen(item)
		}
	}
	b.view.OnError = func(err error) {
		b.log.Error("listing failed", zap.String("dir", b.dir), zap.Error(err))
		if b.win != nil {
			dialog.ShowError(err, b.win)
		}
	}
	b.view.OnSelectionChanged = b.updateStatus

	b.sidebar = newSidebar(b.SetLocation)
	b.breadcrumb = newBreadcrumb(b.SetLocation)
	b.search = widget.NewEntry()
	b.search.SetPlaceHolder(lang.L("Search..."))
	b.search.OnChanged = b.setFilter
	b.status = widget.NewLabel("")
	b.status.Truncation = fyne.TextTruncateEllipsis
	b.content = b.makeUI()
	b.registerShortcuts()
	b.installKeyHooks()
	return b
}

func (b *Browser) Content() fyne.CanvasObject {
	return b.content
}

func (b *Browser) View() *View {
	return b.view
}

func (b *Browser) Location() string {
	return b.dir
}

// SetLocation lists dir in a new session. The previous session is closed
// and the search filter is cleared.
func (b *Browser) SetLocation(dir string) {
	if b.filter != "" {
		b.filter = ""
		b.search.OnChanged = nil
		b.search.SetText("")
		b.search.OnChanged = b.setFilter
	}
	b.list(dir)
}

func (b *Browser) setFilter(text string) {
	b.filter = text
	if b.dir != "" {
		b.list(b.dir)
	}
}

func (b *Browser) list(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		b.log.Warn("resolve location", zap.String("dir", dir), zap.Error(err))
		return
	}
	b.view.DismissMenu()
	b.dir = abs
	b.breadcrumb.update(abs)
	b.sidebar.syncSelection(abs)

	prev := b.view.Session()
	b.view.SetSession(b.newSession(abs))
	if prev != nil {
		prev.Close()
	}
	b.view.Session().Start()
	b.updateStatus()
	b.log.Info("location", zap.String("dir", abs))
}

// Refresh lists the current directory again, keeping the selection.
func (b *Browser) Refresh() {
	if s := b.view.Session(); s != nil {
		s.Refetch()
	}
}

func (b *Browser) newSession(dir string) *Session {
	src := &query.DirSource{
		Root:       dir,
		PageSize:   b.cfg.PageSize,
		ShowHidden: b.showHidden,
		Sort:       b.sortOrder,
		Match:      b.filter,
	}
	s := NewSession(Options{
		Source:       src,
		Counter:      src,
		Grid:         GridOptions(b.cfg),
		Overscan:     b.cfg.Overscan,
		SingleSelect: b.cfg.SingleSelect,
		Location:     dir,
		Dispatch:     fyne.Do,
		Logger:       b.log.Named("session"),
	})
	s.Observe(b.updateStatus)
	return s
}

// GridOptions maps explorer settings to grid layout inputs. The item height
// is left to the view.
func GridOptions(cfg config.Explorer) grid.Options {
	return grid.Options{
		Columns:      cfg.Columns,
		ItemSize:     grid.Size{Width: cfg.ItemSize},
		Gap:          grid.Gap{X: cfg.Gap, Y: cfg.Gap},
		Padding:      grid.Padding{Top: cfg.Padding, Right: cfg.Padding, Bottom: cfg.Padding, Left: cfg.Padding},
		LoadMoreSize: cfg.LoadMoreSize,
	}
}

func (b *Browser) updateStatus() {
	s := b.view.Session()
	if s == nil {
		b.status.SetText("")
		return
	}
	loaded := len(s.Items())
	total, known := s.Query().TotalCount()
	if !known {
		total = loaded
	}
	text := fmt.Sprintf(lang.L("%d items"), total)
	if n := s.Selection().Len(); n > 0 {
		text = fmt.Sprintf(lang.L("%d of %d selected"), n, total)
	}
	if cut := s.Clipboard().Len(); cut > 0 {
		text += fmt.Sprintf(" · "+lang.L("%d on clipboard"), cut)
	}
	b.status.SetText(text)
}

func (b *Browser) makeUI() fyne.CanvasObject {
	sortSelect := widget.NewSelect(localized(sortLabels), nil)
	sortSelect.PlaceHolder = lang.L("Sort By")
	sortSelect.SetSelectedIndex(int(b.sortOrder))
	sortSelect.OnChanged = func(string) {
		b.sortOrder = query.SortOrder(sortSelect.SelectedIndex())
		fyne.CurrentApp().Preferences().SetInt(sortOrderKey, int(b.sortOrder))
		b.list(b.dir)
	}

	zoomOut := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), nil)
	zoomIn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), nil)
	b.view.zoom.bind(zoomIn, zoomOut)

	refresh := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), b.Refresh)

	newFolder := widget.NewButtonWithIcon("", theme.FolderNewIcon(), b.showNewFolder)

	options := widget.NewButtonWithIcon("", theme.SettingsIcon(), nil)
	options.OnTapped = func() {
		hidden := widget.NewCheck(lang.L("Show Hidden Files"), func(on bool) {
			b.showHidden = on
			fyne.CurrentApp().Preferences().SetBool(showHiddenKey, on)
			b.list(b.dir)
		})
		hidden.Checked = b.showHidden
		pop := widget.NewPopUp(container.NewVBox(hidden), b.win.Canvas())
		pop.ShowAtPosition(fyne.CurrentApp().Driver().AbsolutePositionForObject(options).Add(fyne.NewPos(0, options.Size().Height)))
	}

	searchWrapper := container.NewGridWrap(fyne.NewSize(220, 36), b.search)
	controls := container.NewHBox(searchWrapper, sortSelect, newFolder, refresh, zoomOut, zoomIn, options)
	title := widget.NewLabelWithStyle(lang.L("Explorer"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	top := container.NewHScroll(container.NewBorder(nil, nil, title, controls, nil))
	top.Direction = container.ScrollHorizontalOnly
	header := container.NewVBox(top, widget.NewSeparator())

	split := container.NewHSplit(
		container.NewPadded(b.sidebar.list),
		container.NewBorder(container.NewPadded(b.breadcrumb.scroll), nil, nil, nil, b.view),
	)
	split.SetOffset(0.2)

	return container.NewBorder(header, container.NewHScroll(b.status), nil, nil, split)
}

func (b *Browser) showNewFolder() {
	if b.win == nil || b.dir == "" {
		return
	}
	entry := widget.NewEntry()
	d := dialog.NewForm(lang.L("New Folder"), lang.L("Create Folder"), lang.L("Cancel"), []*widget.FormItem{
		{Text: lang.X("file.name", "Name"), Widget: entry},
	}, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		if err := os.MkdirAll(filepath.Join(b.dir, entry.Text), 0o750); err != nil {
			dialog.ShowError(err, b.win)
			return
		}
		b.Refresh()
	}, b.win)
	d.Show()
	b.win.Canvas().Focus(entry)
}

func (b *Browser) registerShortcuts() {
	if b.win == nil {
		return
	}
	c := b.win.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyA, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		b.view.SelectAll()
	})
	c.AddShortcut(&fyne.ShortcutCopy{}, func(fyne.Shortcut) {
		if s := b.view.Session(); s != nil {
			s.Copy()
		}
	})
	c.AddShortcut(&fyne.ShortcutCut{}, func(fyne.Shortcut) {
		if s := b.view.Session(); s != nil {
			s.Cut()
		}
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		b.Refresh()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyUp, Modifier: fyne.KeyModifierAlt}, func(fyne.Shortcut) {
		if parent := filepath.Dir(b.dir); parent != b.dir {
			b.SetLocation(parent)
		}
	})
}

func (b *Browser) installKeyHooks() {
	if b.win == nil {
		return
	}
	c := b.win.Canvas()
	b.originalOnTypedRune = c.OnTypedRune()
	c.SetOnTypedRune(b.typedRuneHook)
	b.originalOnTypedKey = c.OnTypedKey()
	c.SetOnTypedKey(b.typedKeyHook)
}

// navigating reports whether focus is on nothing or on the places list, the
// only states in which typing drives the browser instead of a text input.
func (b *Browser) navigating() bool {
	focused := b.win.Canvas().Focused()
	return focused == nil || focused == b.sidebar.list
}

// typedRuneHook moves typing into the search entry.
func (b *Browser) typedRuneHook(r rune) {
	if b.originalOnTypedRune != nil {
		b.originalOnTypedRune(r)
	}
	if b.win == nil || b.win.Canvas().Focused() == b.search || !b.navigating() {
		return
	}
	b.win.Canvas().Focus(b.search)
	b.search.SetText(b.search.Text + string(r))
	b.search.CursorColumn = len([]rune(b.search.Text))
	b.search.Refresh()
}

// typedKeyHook opens the selection on Return.
func (b *Browser) typedKeyHook(ev *fyne.KeyEvent) {
	if b.originalOnTypedKey != nil {
		b.originalOnTypedKey(ev)
	}
	if b.win == nil || ev == nil {
		return
	}
	if ev.Name != fyne.KeyReturn && ev.Name != fyne.KeyEnter {
		return
	}
	if !b.navigating() {
		return
	}
	b.view.OpenSelection()
}

func localized(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = lang.L(s)
	}
	return out
}
