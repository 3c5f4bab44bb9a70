// Package explorer renders a paginated item list as a virtualized grid with
// Fyne and wires it to the cache, query, selection and grid packages.
package explorer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alexballas/xexplorer/cache"
	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/grid"
	"github.com/alexballas/xexplorer/internal/logging"
	"github.com/alexballas/xexplorer/query"
	"github.com/alexballas/xexplorer/selection"
)

// Options configures a Session.
type Options struct {
	Source  query.Source
	Counter query.Counter

	// Grid holds the layout inputs. Count, TotalCount and LoadMore are filled
	// in by the session.
	Grid     grid.Options
	Overscan int

	SingleSelect bool
	// Location is the path the items are listed from. It is recorded as the
	// source of cut and copy operations.
	Location string

	// Dispatch runs query results on the caller's goroutine, fyne.Do in the UI.
	Dispatch func(func())
	OnError  func(error)
	Logger   *zap.Logger
}

// RenderItem is everything a cell needs to draw one item.
type RenderItem struct {
	Item     entity.Item
	Selected bool
	Cut      bool
}

// Session is one listing of the explorer: its cache, the paginated query,
// the selection and clipboard state and the grid geometry.
type Session struct {
	opts      Options
	log       *zap.Logger
	cache     *cache.Cache
	query     *query.Infinite
	selection *selection.Model
	clipboard *selection.Clipboard

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	base      grid.Options
	measure   *grid.Measure
	window    *grid.Window
	lastErr   error
	observers map[int]func()
	nextObs   int
}

// NewSession wires a session. Nothing is fetched until Start.
func NewSession(opts Options) *Session {
	if opts.Source == nil {
		panic("explorer: NewSession requires a source")
	}
	s := &Session{
		opts:      opts,
		log:       opts.Logger,
		cache:     cache.New(),
		clipboard: &selection.Clipboard{},
		base:      opts.Grid,
		observers: make(map[int]func()),
	}
	if s.log == nil {
		s.log = logging.Named("explorer")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.query = query.NewInfinite(query.Options{
		Cache:    s.cache,
		Source:   opts.Source,
		Counter:  opts.Counter,
		Dispatch: opts.Dispatch,
		OnChange: s.sync,
		Logger:   s.log.Named("query"),
	})
	s.selection = selection.New(s.query.Items)
	s.selection.SetSingle(opts.SingleSelect)

	s.measure = grid.NewMeasure(s.gridOptionsLocked())
	s.window = grid.NewWindow(s.measure.Layout(), opts.Overscan)
	return s
}

// Start fetches the first page.
func (s *Session) Start() {
	s.log.Debug("session start", zap.String("location", s.opts.Location))
	s.query.FetchNextPage(s.ctx)
}

// Refetch reloads the listing. Selection and clipboard are kept by identity.
func (s *Session) Refetch() {
	s.query.Refetch(s.ctx)
}

// Close cancels fetches in flight. Their results are still applied when the
// source ignores the cancellation.
func (s *Session) Close() {
	s.cancel()
}

// Wait blocks until no fetch or count is outstanding, including pages the
// load more trigger requested while applying earlier ones.
func (s *Session) Wait() {
	for {
		s.query.Wait()
		if !s.query.IsFetchingNextPage() {
			return
		}
	}
}

func (s *Session) Location() string {
	return s.opts.Location
}

func (s *Session) Cache() *cache.Cache {
	return s.cache
}

func (s *Session) Query() *query.Infinite {
	return s.query
}

func (s *Session) Selection() *selection.Model {
	return s.selection
}

func (s *Session) Clipboard() *selection.Clipboard {
	return s.clipboard
}

func (s *Session) Items() []entity.Item {
	return s.query.Items()
}

// Err is the error of the last fetch, nil once a fetch succeeds.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Observe registers fn to run after every change of the items or the layout.
// The returned func unregisters it.
func (s *Session) Observe(fn func()) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Render returns the item at index with its selection and clipboard state.
func (s *Session) Render(index int) (RenderItem, bool) {
	items := s.query.Items()
	if index < 0 || index >= len(items) {
		return RenderItem{}, false
	}
	item := items[index]
	return RenderItem{
		Item:     item,
		Selected: s.selection.IsItemSelected(item),
		Cut:      s.clipboard.IsCut(item),
	}, true
}

func (s *Session) Layout() grid.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Layout()
}

// Visible returns the cells in or near the viewport.
func (s *Session) Visible() []grid.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Visible()
}

// ContentSize is the scrollable size of the grid.
func (s *Session) ContentSize() grid.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.ContentSize()
}

// SetViewport records the scroll position. Scrolling the load more area into
// view fetches the next page.
func (s *Session) SetViewport(offset grid.Position, size grid.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.SetViewport(offset, size)
}

// ObserveWidth feeds a container width to the layout. It reports whether the
// geometry changed.
func (s *Session) ObserveWidth(width float32) bool {
	s.mu.Lock()
	changed := s.measure.Observe(width)
	s.window.SetLayout(s.measure.Layout())
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// SetItemSize changes the item size, as zooming does.
func (s *Session) SetItemSize(size grid.Size) {
	s.mu.Lock()
	if s.base.ItemSize == size {
		s.mu.Unlock()
		return
	}
	s.base.ItemSize = size
	s.applyLocked()
	s.mu.Unlock()
	s.notify()
}

// ItemSize is the configured item size, before stretching.
func (s *Session) ItemSize() grid.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base.ItemSize
}

// Cut and Copy put the current selection on the clipboard.
func (s *Session) Cut() {
	s.clipboard.Cut(s.opts.Location, s.selection.SelectedItems()...)
	s.notify()
}

func (s *Session) Copy() {
	s.clipboard.Copy(s.opts.Location, s.selection.SelectedItems()...)
	s.notify()
}

// sync runs after every query state change.
func (s *Session) sync() {
	s.mu.Lock()
	s.applyLocked()
	err := s.query.Err()
	report := err != nil && err != s.lastErr
	s.lastErr = err
	s.mu.Unlock()

	if report && s.opts.OnError != nil {
		s.opts.OnError(err)
	}
	s.notify()
}

func (s *Session) applyLocked() {
	s.window.SetLayout(s.measure.SetOptions(s.gridOptionsLocked()))
}

func (s *Session) gridOptionsLocked() grid.Options {
	o := s.base
	o.Count = len(s.query.Items())
	o.TotalCount = 0
	if total, ok := s.query.TotalCount(); ok {
		o.TotalCount = total
	}
	o.ItemID = s.itemID
	o.LoadMore = nil
	if s.query.HasNextPage() {
		o.LoadMore = s.loadMore
	}
	return o
}

func (s *Session) itemID(index int) string {
	items := s.query.Items()
	if index < 0 || index >= len(items) {
		return ""
	}
	return entity.IdentityOf(items[index])
}

func (s *Session) loadMore() {
	if s.query.LoadMore(s.ctx) {
		s.log.Debug("load more", zap.Int("loaded", len(s.query.Items())))
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
