// Package query drives the paginated data the explorer renders: it fetches
// pages from a Source, ingests their node tables into the normalized cache and
// resolves their items into entity values.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// Page is one response of a paginated source. Items reference the nodes of
// the same page (or of earlier pages) by cache reference.
type Page struct {
	Items []any
	Nodes []any
	// NextCursor fetches the following page. Empty on the last page.
	NextCursor string
}

// Source yields pages. An empty cursor asks for the first page.
type Source interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
}

// Counter yields the total number of items a Source will produce.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

var ErrInvalidPage = errors.New("invalid page")

// DecodePage parses a JSON page of the form
// {"items": [...], "nodes": [...], "cursor": "..."}.
// Numbers decode as int64 or float64.
func DecodePage(data []byte) (Page, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	return PageOf(v)
}

// PageOf reads a page out of an already parsed JSON document.
func PageOf(v any) (Page, error) {
	var err error
	m, ok := v.(map[string]any)
	if !ok {
		return Page{}, fmt.Errorf("%w: expected object, got %T", ErrInvalidPage, v)
	}

	var p Page
	if p.Items, err = list(m, "items"); err != nil {
		return Page{}, err
	}
	if p.Nodes, err = list(m, "nodes"); err != nil {
		return Page{}, err
	}
	switch c := m["cursor"].(type) {
	case string:
		p.NextCursor = c
	case nil:
	default:
		return Page{}, fmt.Errorf("%w: cursor is %T", ErrInvalidPage, c)
	}
	return p, nil
}

func list(m map[string]any, key string) ([]any, error) {
	switch v := m[key].(type) {
	case []any:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T", ErrInvalidPage, key, v)
	}
}

// StaticSource serves fixed pages in order. The cursor is the page number.
type StaticSource struct {
	Pages []Page
	Total int
}

func (s *StaticSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	i := 0
	if cursor != "" {
		if _, err := fmt.Sscanf(cursor, "%d", &i); err != nil {
			return Page{}, fmt.Errorf("bad cursor %q: %w", cursor, err)
		}
	}
	if i < 0 || i >= len(s.Pages) {
		return Page{}, fmt.Errorf("page %d out of range", i)
	}
	p := s.Pages[i]
	if i+1 < len(s.Pages) {
		p.NextCursor = fmt.Sprint(i + 1)
	} else {
		p.NextCursor = ""
	}
	return p, nil
}

func (s *StaticSource) Count(ctx context.Context) (int, error) {
	if s.Total > 0 {
		return s.Total, nil
	}
	n := 0
	for _, p := range s.Pages {
		n += len(p.Items)
	}
	return n, nil
}
