package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexballas/xexplorer/cache"
	"github.com/alexballas/xexplorer/entity"
)

func pathItem(b ...int) entity.Item {
	return entity.NewPath(cache.Record{"pub_id": b})
}

type list struct{ items []entity.Item }

func (l *list) get() []entity.Item { return l.items }

func newList(n int) *list {
	l := &list{}
	for i := 0; i < n; i++ {
		l.items = append(l.items, pathItem(i))
	}
	return l
}

func TestModel_AddRemove(t *testing.T) {
	l := newList(3)
	m := New(l.get)

	m.AddSelectedItem(l.items[0])
	m.AddSelectedItem(l.items[2])
	assert.True(t, m.IsItemSelected(l.items[0]))
	assert.False(t, m.IsItemSelected(l.items[1]))
	assert.Equal(t, []entity.Item{l.items[0], l.items[2]}, m.SelectedItems())

	m.RemoveSelectedItem(l.items[0])
	assert.False(t, m.IsItemSelected(l.items[0]))
	assert.Equal(t, 1, m.Len())
}

func TestModel_ResetSelectedItems(t *testing.T) {
	l := newList(4)
	m := New(l.get)
	m.AddSelectedItem(l.items[0])

	m.ResetSelectedItems(l.items[1], l.items[3])
	assert.Equal(t, []string{"01", "03"}, m.SelectedIdentities())

	m.ResetSelectedItems()
	assert.Empty(t, m.SelectedItems())
}

func TestModel_SelectionSurvivesRefetch(t *testing.T) {
	l := newList(3)
	m := New(l.get)
	old := l.items[1]
	m.AddSelectedItem(old)

	// Refetch: new instances with the same pub_ids.
	l.items = []entity.Item{pathItem(0), pathItem(1), pathItem(2)}
	fresh := l.items[1]
	require.NotSame(t, old, fresh)

	assert.True(t, m.IsItemSelected(fresh))
	selected := m.SelectedItems()
	require.Len(t, selected, 1)
	assert.Same(t, fresh, selected[0])
}

func TestModel_SelectedItemMissingFromList(t *testing.T) {
	l := newList(3)
	m := New(l.get)
	m.AddSelectedItem(l.items[2])

	l.items = l.items[:2]
	assert.Empty(t, m.SelectedItems())
	assert.False(t, m.IsItemSelected(pathItem(2)))
	// The identity is kept so the item is selected again once it is paged back in.
	assert.Equal(t, []string{"02"}, m.SelectedIdentities())
}

func TestModel_EnsureSelected(t *testing.T) {
	l := newList(3)
	m := New(l.get)
	m.ResetSelectedItems(l.items[0], l.items[1])

	m.EnsureSelected(l.items[1])
	assert.Equal(t, 2, m.Len())

	m.EnsureSelected(l.items[2])
	assert.Equal(t, []entity.Item{l.items[2]}, m.SelectedItems())
}

func TestModel_IndexOperations(t *testing.T) {
	l := newList(10)
	m := New(l.get)

	m.Select(2)
	assert.Equal(t, 2, m.Anchor())
	assert.True(t, m.IsIndexSelected(2))

	m.ExtendTo(5)
	assert.Equal(t, []string{"02", "03", "04", "05"}, m.SelectedIdentities())
	assert.Equal(t, 2, m.Anchor())

	m.ExtendTo(0)
	assert.Equal(t, []string{"00", "01", "02"}, m.SelectedIdentities())

	m.Toggle(7)
	assert.True(t, m.IsIndexSelected(7))
	assert.Equal(t, 7, m.Anchor())
	m.Toggle(7)
	assert.False(t, m.IsIndexSelected(7))

	m.SelectIndices([]int{1, 3, 99})
	assert.Equal(t, []string{"01", "03"}, m.SelectedIdentities())
	assert.Equal(t, 99, m.Anchor())

	// Out of range anchor restarts from the top.
	m.ExtendTo(1)
	assert.Equal(t, []string{"00", "01"}, m.SelectedIdentities())

	m.Select(-1)
	m.Toggle(10)
	assert.Equal(t, []string{"00", "01"}, m.SelectedIdentities())
}

func TestModel_SingleSelect(t *testing.T) {
	l := newList(5)
	m := New(l.get)
	m.SetSingle(true)
	assert.False(t, m.IsMultiSelect())

	m.Select(1)
	m.Toggle(3)
	assert.Equal(t, []string{"03"}, m.SelectedIdentities())

	m.ExtendTo(4)
	assert.Equal(t, []string{"04"}, m.SelectedIdentities())

	m.AddSelectedItem(l.items[0])
	assert.Equal(t, []string{"00"}, m.SelectedIdentities())

	m.ResetSelectedItems(l.items[1], l.items[2])
	assert.Equal(t, []string{"01"}, m.SelectedIdentities())
}

func TestModel_Observe(t *testing.T) {
	l := newList(2)
	m := New(l.get)

	calls := 0
	stop := m.Observe(func() { calls++ })
	m.Select(0)
	m.Toggle(1)
	assert.Equal(t, 2, calls)

	stop()
	m.ResetSelectedItems()
	assert.Equal(t, 2, calls)
}

func TestModel_InvalidateAfterInPlaceChange(t *testing.T) {
	l := newList(3)
	m := New(l.get)
	m.AddSelectedItem(pathItem(9))
	assert.Equal(t, 0, m.Len())

	l.items[2] = pathItem(9)
	m.Invalidate()
	assert.True(t, m.IsIndexSelected(2))
}

func TestModel_ListChangesBehindSameHead(t *testing.T) {
	a, b, c := pathItem(1), pathItem(2), pathItem(3)
	l := &list{items: []entity.Item{a, b}}
	m := New(l.get)
	m.AddSelectedItem(b)
	require.Equal(t, []entity.Item{b}, m.SelectedItems())

	// Same length and first item, different tail.
	l.items = []entity.Item{a, c}
	assert.False(t, m.IsItemSelected(b))
	assert.False(t, m.IsIndexSelected(1))
	assert.Empty(t, m.SelectedItems())
	assert.Equal(t, 0, m.Len())

	l.items[1] = b
	assert.True(t, m.IsIndexSelected(1), "in place edits are seen without Invalidate")
	assert.Equal(t, []entity.Item{b}, m.SelectedItems())
}

func TestNew_RequiresAccessor(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestClipboard(t *testing.T) {
	a, b := pathItem(1), pathItem(2)
	var c Clipboard
	assert.False(t, c.IsCut(a))

	c.Cut("/src", a)
	assert.True(t, c.IsCut(pathItem(1)))
	assert.False(t, c.IsCut(b))
	assert.Equal(t, "/src", c.SourcePath())

	c.Copy("/src", a, b)
	assert.Equal(t, ClipboardCopy, c.Kind())
	assert.False(t, c.IsCut(a))
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, ClipboardNone, c.Kind())
}
