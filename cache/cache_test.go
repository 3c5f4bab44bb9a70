package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// SetNodes
// ---------------------------------------------------------------------------

func TestSetNodes_MergeIsAdditive(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "a": 1}))
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "b": 2}))

	rec, ok := c.GetNode("T", "1")
	require.True(t, ok)
	assert.Equal(t, Record{"a": 1, "b": 2}, rec)
}

func TestSetNodes_MergeOverwritesFields(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(Node{Type: "T", ID: "1", Fields: map[string]any{"name": "old", "size": 3}}))
	require.NoError(t, c.SetNodes(Node{Type: "T", ID: "1", Fields: map[string]any{"name": "new"}}))

	rec, _ := c.GetNode("T", "1")
	assert.Equal(t, "new", rec["name"])
	assert.Equal(t, 3, rec["size"])
}

func TestSetNodes_Idempotent(t *testing.T) {
	node := map[string]any{"__type": "T", "__id": "1", "name": "x"}
	payload := map[string]any{"file": Ref("T", "1")}

	once := New()
	require.NoError(t, once.SetNodes(node))
	want, err := once.Resolve(payload)
	require.NoError(t, err)

	twice := New()
	require.NoError(t, twice.SetNodes(node))
	require.NoError(t, twice.SetNodes(node))
	got, err := twice.Resolve(payload)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 1, twice.Len())
}

func TestSetNodes_IdentityKeysNotStored(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "name": "x"}))
	rec, _ := c.GetNode("T", "1")
	assert.NotContains(t, rec, TypeKey)
	assert.NotContains(t, rec, IDKey)
}

func TestSetNodes_AcceptsNodeLists(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes([]any{
		map[string]any{"__type": "A", "__id": "1"},
		map[string]any{"__type": "B", "__id": "1"},
	}, &Node{Type: "A", ID: "2"}))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"A", "B"}, c.Types())
}

func TestSetNodes_TypedNodeLists(t *testing.T) {
	cases := map[string]any{
		"maps":     []map[string]any{{"__type": "T", "__id": "1", "name": "a"}, {"__type": "T", "__id": "2", "name": "b"}},
		"records":  []Record{{"__type": "T", "__id": "1", "name": "a"}, {"__type": "T", "__id": "2", "name": "b"}},
		"nodes":    []Node{{Type: "T", ID: "1", Fields: map[string]any{"name": "a"}}, {Type: "T", ID: "2", Fields: map[string]any{"name": "b"}}},
		"pointers": []*Node{{Type: "T", ID: "1", Fields: map[string]any{"name": "a"}}, {Type: "T", ID: "2", Fields: map[string]any{"name": "b"}}},
	}
	for name, list := range cases {
		t.Run(name, func(t *testing.T) {
			c := New()
			require.NoError(t, c.SetNodes(list))
			assert.Equal(t, 2, c.Len())
			rec, ok := c.GetNode("T", "2")
			require.True(t, ok)
			assert.Equal(t, Record{"name": "b"}, rec)
		})
	}
}

func TestSetNodes_InvalidNodeInTypedList(t *testing.T) {
	c := New()
	err := c.SetNodes([]map[string]any{{"__type": "T", "__id": "1"}, {"__type": "T"}})
	assert.ErrorIs(t, err, ErrInvalidNode)
	assert.Contains(t, err.Error(), "tried to 'SetNodes'")
	assert.Equal(t, 1, c.Len())
}

func TestSetNodes_InvalidNode(t *testing.T) {
	cases := map[string]any{
		"not an object": "hello",
		"missing type":  map[string]any{"__id": "1"},
		"missing id":    map[string]any{"__type": "T"},
		"numeric id":    map[string]any{"__type": "T", "__id": 1},
		"empty type":    Node{ID: "1"},
		"nil pointer":   (*Node)(nil),
	}
	for name, node := range cases {
		t.Run(name, func(t *testing.T) {
			err := New().SetNodes(node)
			var invalid *InvalidNodeError
			require.ErrorAs(t, err, &invalid)
			assert.True(t, errors.Is(err, ErrInvalidNode))
		})
	}
}

func TestSetNodes_StopsAtFirstInvalid(t *testing.T) {
	c := New()
	err := c.SetNodes(
		map[string]any{"__type": "T", "__id": "1"},
		map[string]any{"__type": "T"},
		map[string]any{"__type": "T", "__id": "3"},
	)
	require.Error(t, err)

	_, ok := c.GetNode("T", "1")
	assert.True(t, ok)
	_, ok = c.GetNode("T", "3")
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve_RoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "name": "x"}))

	got, err := c.Resolve(map[string]any{"type": "Path", "item": Ref("T", "1")})
	require.NoError(t, err)

	m := got.(map[string]any)
	assert.Equal(t, "Path", m["type"])
	assert.Equal(t, Record{"name": "x"}, m["item"])
}

func TestResolve_TopLevelReference(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "name": "x"}))

	got, err := c.Resolve(Ref("T", "1"))
	require.NoError(t, err)
	assert.Equal(t, Record{"name": "x"}, got)
}

func TestResolve_MissingNode(t *testing.T) {
	_, err := New().Resolve(Ref("T", "missing"))

	var missing *MissingNodeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "T", missing.Type)
	assert.Equal(t, "missing", missing.ID)
	assert.True(t, errors.Is(err, ErrMissingNode))
}

func TestResolve_MissingNodeNested(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1"}))

	_, err := c.ResolveAll([]any{
		map[string]any{"item": Ref("T", "1")},
		map[string]any{"item": []any{Ref("T", "2")}},
	})
	assert.ErrorIs(t, err, ErrMissingNode)
}

func TestResolve_InvalidReference(t *testing.T) {
	_, err := New().Resolve(map[string]any{"__type": 4, "__id": "1"})
	assert.ErrorIs(t, err, ErrInvalidNode)

	var invalid *InvalidNodeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, OpResolve, invalid.Op)
	assert.Contains(t, err.Error(), "tried to 'Resolve'")
}

func TestResolve_SharesLiveRecords(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "name": "x"}))

	items, err := c.ResolveAll([]any{
		map[string]any{"item": Ref("T", "1")},
		map[string]any{"item": Ref("T", "1")},
	})
	require.NoError(t, err)

	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1", "name": "renamed"}))

	for _, it := range items {
		rec := it.(map[string]any)["item"].(Record)
		assert.Equal(t, "renamed", rec["name"])
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	c := New()
	require.NoError(t, c.SetNodes(map[string]any{"__type": "T", "__id": "1"}))

	ref := Ref("T", "1")
	payload := map[string]any{"items": []any{ref}}
	_, err := c.Resolve(payload)
	require.NoError(t, err)

	assert.Equal(t, ref, payload["items"].([]any)[0])
}

func TestResolve_ScalarsPassThrough(t *testing.T) {
	c := New()
	for _, v := range []any{nil, "s", 3, 2.5, true} {
		got, err := c.Resolve(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
