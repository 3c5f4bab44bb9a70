package query

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Count is the total count query. It is enabled by the first successful page
// of its Infinite query and refreshed on every refetch.
type Count struct {
	source   Counter
	dispatch func(func())
	onChange func()
	log      *zap.Logger

	mu    sync.Mutex
	value int
	known bool
	err   error
	gen   int

	wg sync.WaitGroup
}

func newCount(source Counter, dispatch func(func()), onChange func(), log *zap.Logger) *Count {
	return &Count{source: source, dispatch: dispatch, onChange: onChange, log: log}
}

// Value is the last counted total.
func (c *Count) Value() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.known
}

func (c *Count) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Fetch starts counting. A count in flight is superseded.
func (c *Count) Fetch(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		n, err := c.source.Count(ctx)
		c.dispatch(func() {
			defer c.wg.Done()
			c.apply(gen, n, err)
		})
	}()
}

func (c *Count) Wait() {
	c.wg.Wait()
}

func (c *Count) apply(gen, n int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.err = err
	if err == nil {
		c.value, c.known = n, true
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("count failed", zap.Error(err))
	} else {
		c.log.Debug("counted", zap.Int("total", n))
	}
	if c.onChange != nil {
		c.onChange()
	}
}
