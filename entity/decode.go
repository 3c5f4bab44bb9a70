package entity

import (
	"errors"
	"fmt"

	"github.com/alexballas/xexplorer/cache"
)

var ErrInvalidItem = errors.New("invalid explorer item")

// Decode builds an Item from a resolved payload of the form
// {type, item, thumbnail_key, has_local_thumbnail}. The inner item must
// already be resolved to a live cache.Record (or be an inline object).
func Decode(v any) (Item, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrInvalidItem, v)
	}

	kind, _ := m["type"].(string)
	rec, err := innerRecord(m["item"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidItem, kind, err)
	}

	var item Item
	switch Kind(kind) {
	case KindPath:
		item = NewPath(rec)
	case KindObject:
		item = NewObject(rec)
	case KindLocation:
		item = NewLocation(rec)
	case KindLabel:
		item = NewLabel(rec)
	case KindNonIndexedPath:
		if _, ok := rec["path"].(string); !ok {
			return nil, fmt.Errorf("%w: %s without path", ErrInvalidItem, kind)
		}
		item = NewNonIndexedPath(rec)
	case KindSpacedropPeer:
		if _, ok := rec["name"].(string); !ok {
			return nil, fmt.Errorf("%w: %s without name", ErrInvalidItem, kind)
		}
		item = NewSpacedropPeer(rec)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidItem, kind)
	}

	switch item.(type) {
	case *NonIndexedPath, *SpacedropPeer:
	default:
		if _, ok := PubID(rec["pub_id"]); !ok {
			return nil, fmt.Errorf("%w: %s without pub_id", ErrInvalidItem, kind)
		}
	}

	b := baseOf(item)
	b.hasLocalThumbnail, _ = m["has_local_thumbnail"].(bool)
	b.thumbnailKey = stringList(m["thumbnail_key"])
	return item, nil
}

// DecodeAll decodes every element, stopping at the first failure.
func DecodeAll(values []any) ([]Item, error) {
	items := make([]Item, 0, len(values))
	for i, v := range values {
		item, err := Decode(v)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func innerRecord(v any) (cache.Record, error) {
	switch t := v.(type) {
	case cache.Record:
		return t, nil
	case map[string]any:
		if _, ok := t[cache.TypeKey]; ok {
			return nil, errors.New("unresolved reference")
		}
		return cache.Record(t), nil
	case nil:
		return nil, errors.New("missing item")
	default:
		return nil, fmt.Errorf("item is %T", v)
	}
}

func baseOf(item Item) *base {
	switch t := item.(type) {
	case *Path:
		return &t.base
	case *Object:
		return &t.base
	case *Location:
		return &t.base
	case *NonIndexedPath:
		return &t.base
	case *SpacedropPeer:
		return &t.base
	case *Label:
		return &t.base
	}
	panic(fmt.Sprintf("entity: unhandled item variant %T", item))
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
