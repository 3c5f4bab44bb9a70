package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alexballas/xexplorer/cache"
	"github.com/alexballas/xexplorer/entity"
	"github.com/alexballas/xexplorer/internal/logging"
)

// Options configures an Infinite query.
type Options struct {
	Cache  *cache.Cache
	Source Source
	// Counter is queried once the first page has loaded. Optional.
	Counter Counter
	// Dispatch runs the apply step of a finished fetch. UI callers pass a
	// function that hops onto the UI goroutine. Nil runs it inline on the
	// fetching goroutine.
	Dispatch func(func())
	// OnChange is called from the apply step after every state change.
	OnChange func()
	Logger   *zap.Logger
}

// Infinite is a paginated query over a Source. Pages are fetched on a
// goroutine; ingesting into the cache, resolving and decoding happen in the
// apply step, in that order. Only one fetch is outstanding at a time.
type Infinite struct {
	cache    *cache.Cache
	source   Source
	dispatch func(func())
	onChange func()
	log      *zap.Logger
	count    *Count

	mu       sync.Mutex
	items    []entity.Item
	pages    int
	cursor   string
	hasNext  bool
	fetching bool
	err      error
	gen      int

	wg sync.WaitGroup
}

// NewInfinite builds an idle query. Nothing is fetched until FetchNextPage.
func NewInfinite(opts Options) *Infinite {
	if opts.Cache == nil || opts.Source == nil {
		panic("query: NewInfinite requires a cache and a source")
	}
	q := &Infinite{
		cache:    opts.Cache,
		source:   opts.Source,
		dispatch: opts.Dispatch,
		onChange: opts.OnChange,
		log:      opts.Logger,
		hasNext:  true,
	}
	if q.dispatch == nil {
		q.dispatch = func(fn func()) { fn() }
	}
	if q.log == nil {
		q.log = logging.Named("query")
	}
	if opts.Counter != nil {
		q.count = newCount(opts.Counter, q.dispatch, q.changed, q.log)
	}
	return q
}

// Items is the decoded item list of every loaded page, in order.
// The returned slice is replaced, never mutated, when pages land.
func (q *Infinite) Items() []entity.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items
}

func (q *Infinite) PageCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pages
}

func (q *Infinite) HasNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hasNext
}

func (q *Infinite) IsFetchingNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fetching
}

// Err is the error of the last fetch, or nil after a successful one.
func (q *Infinite) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// TotalCount is the result of the count query, once it is known.
func (q *Infinite) TotalCount() (int, bool) {
	if q.count == nil {
		return 0, false
	}
	return q.count.Value()
}

// FetchNextPage starts fetching the next page. It reports false when a fetch
// is already outstanding or there is no next page.
func (q *Infinite) FetchNextPage(ctx context.Context) bool {
	q.mu.Lock()
	if q.fetching || !q.hasNext {
		q.mu.Unlock()
		return false
	}
	q.fetching = true
	gen, cursor, first := q.gen, q.cursor, q.pages == 0
	q.mu.Unlock()

	q.log.Debug("fetching page", zap.String("cursor", cursor), zap.Int("generation", gen))
	q.start(ctx, gen, cursor, first)
	return true
}

// LoadMore is the load more trigger of the grid: it fetches the next page
// unless one is in flight or none is left.
func (q *Infinite) LoadMore(ctx context.Context) bool {
	return q.FetchNextPage(ctx)
}

// Refetch reloads from the first page. A fetch in flight is superseded: its
// result is dropped when it lands. Loaded items stay visible until the
// first page of the refetch replaces them.
func (q *Infinite) Refetch(ctx context.Context) {
	q.mu.Lock()
	q.gen++
	q.fetching = true
	q.hasNext = true
	gen := q.gen
	q.mu.Unlock()

	q.log.Debug("refetching", zap.Int("generation", gen))
	q.start(ctx, gen, "", true)
}

// Wait blocks until every started fetch has been applied.
func (q *Infinite) Wait() {
	q.wg.Wait()
	if q.count != nil {
		q.count.Wait()
	}
}

func (q *Infinite) start(ctx context.Context, gen int, cursor string, replace bool) {
	q.wg.Add(1)
	go func() {
		page, err := q.source.FetchPage(ctx, cursor)
		q.dispatch(func() {
			defer q.wg.Done()
			q.apply(ctx, gen, page, err, replace)
		})
	}()
}

func (q *Infinite) apply(ctx context.Context, gen int, page Page, err error, replace bool) {
	q.mu.Lock()
	if gen != q.gen {
		q.mu.Unlock()
		q.log.Debug("dropping superseded page", zap.Int("generation", gen))
		return
	}
	q.fetching = false

	if err == nil {
		var items []entity.Item
		items, err = q.ingest(page)
		if err == nil {
			if replace {
				q.items, q.pages = nil, 0
			}
			// Copy so slices already handed out keep their contents.
			next := make([]entity.Item, 0, len(q.items)+len(items))
			next = append(next, q.items...)
			q.items = append(next, items...)
			q.pages++
			q.cursor = page.NextCursor
			q.hasNext = page.NextCursor != ""
		}
	}
	q.err = err
	firstPage := err == nil && q.pages == 1
	q.mu.Unlock()

	if err != nil {
		q.log.Error("page failed", zap.Error(err), zap.Int("generation", gen))
	} else {
		q.log.Debug("page loaded", zap.Int("items", len(page.Items)), zap.Int("nodes", len(page.Nodes)),
			zap.Bool("has_next", page.NextCursor != ""))
	}

	// The count only becomes meaningful once the first page has loaded.
	if firstPage && q.count != nil {
		q.count.Fetch(ctx)
	}
	q.changed()
}

// ingest applies a page: nodes into the cache, then resolve, then decode.
func (q *Infinite) ingest(page Page) ([]entity.Item, error) {
	if err := q.cache.SetNodes(page.Nodes...); err != nil {
		return nil, fmt.Errorf("ingest page nodes: %w", err)
	}
	resolved, err := q.cache.ResolveAll(page.Items)
	if err != nil {
		return nil, fmt.Errorf("resolve page items: %w", err)
	}
	items, err := entity.DecodeAll(resolved)
	if err != nil {
		return nil, fmt.Errorf("decode page items: %w", err)
	}
	return items, nil
}

func (q *Infinite) changed() {
	if q.onChange != nil {
		q.onChange()
	}
}

// IsDataError reports whether err comes from an inconsistent page rather
// than from the source failing.
func IsDataError(err error) bool {
	return errors.Is(err, cache.ErrInvalidNode) ||
		errors.Is(err, cache.ErrMissingNode) ||
		errors.Is(err, entity.ErrInvalidItem)
}
