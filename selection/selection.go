// Package selection tracks which explorer items are selected.
//
// Selection is stored as a set of identity strings, not item values: items are
// rebuilt on every page load or refetch, while their identity is derived from
// stable domain fields and survives.
package selection

import (
	"sort"

	"github.com/alexballas/xexplorer/entity"
)

// Model is the selection state of one explorer session.
type Model struct {
	items  func() []entity.Item
	single bool

	selected map[string]struct{}
	anchor   int // Selection anchor for Shift-Select

	observers map[int]func()
	nextObs   int

	// identity -> index for the list last seen through items()
	memoItems []entity.Item
	memoIndex map[string]int
	memoIDs   []string
}

// New builds a model over a live accessor to the current item list.
func New(items func() []entity.Item) *Model {
	if items == nil {
		panic("selection: New requires an item accessor")
	}
	return &Model{
		items:     items,
		selected:  make(map[string]struct{}),
		anchor:    -1,
		observers: make(map[int]func()),
	}
}

// SetSingle restricts the model to at most one selected item.
// Toggle and ExtendTo then behave like Select.
func (m *Model) SetSingle(single bool) {
	m.single = single
	if single && len(m.selected) > 1 {
		m.selected = make(map[string]struct{})
		m.anchor = -1
		m.notify()
	}
}

func (m *Model) IsMultiSelect() bool {
	return !m.single
}

// Observe registers fn to run after every mutation. The returned func unregisters it.
func (m *Model) Observe(fn func()) func() {
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() { delete(m.observers, id) }
}

func (m *Model) notify() {
	for _, fn := range m.observers {
		fn()
	}
}

func (m *Model) AddSelectedItem(item entity.Item) {
	if m.single {
		m.selected = make(map[string]struct{})
	}
	m.selected[entity.IdentityOf(item)] = struct{}{}
	m.notify()
}

func (m *Model) RemoveSelectedItem(item entity.Item) {
	delete(m.selected, entity.IdentityOf(item))
	m.notify()
}

// ResetSelectedItems clears the selection and then selects exactly items.
func (m *Model) ResetSelectedItems(items ...entity.Item) {
	m.selected = make(map[string]struct{}, len(items))
	if m.single && len(items) > 1 {
		items = items[:1]
	}
	for _, item := range items {
		m.selected[entity.IdentityOf(item)] = struct{}{}
	}
	m.anchor = -1
	m.notify()
}

// EnsureSelected selects only item unless it is already selected.
// Used before showing a context menu on an item.
func (m *Model) EnsureSelected(item entity.Item) {
	if m.IsItemSelected(item) {
		return
	}
	m.ResetSelectedItems(item)
}

// SelectedItems derives the selected items from the current list, in list order.
// Items are looked up fresh on every call, so after a refetch the returned
// values are the new instances.
func (m *Model) SelectedItems() []entity.Item {
	items := m.items()
	ids := m.identities(items)

	var out []entity.Item
	for i, id := range ids {
		if _, ok := m.selected[id]; ok {
			out = append(out, items[i])
		}
	}
	return out
}

// IsItemSelected reports whether the item's identity is selected and present in the current list.
func (m *Model) IsItemSelected(item entity.Item) bool {
	id := entity.IdentityOf(item)
	if _, ok := m.selected[id]; !ok {
		return false
	}
	m.identities(m.items())
	_, ok := m.memoIndex[id]
	return ok
}

// IsIndexSelected is IsItemSelected for the item at index in the current list.
func (m *Model) IsIndexSelected(index int) bool {
	ids := m.identities(m.items())
	if index < 0 || index >= len(ids) {
		return false
	}
	_, ok := m.selected[ids[index]]
	return ok
}

// SelectedIdentities returns the raw identity set, sorted.
// It may include identities whose items are not in the current list.
func (m *Model) SelectedIdentities() []string {
	out := make([]string, 0, len(m.selected))
	for id := range m.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len is the number of selected items present in the current list.
func (m *Model) Len() int {
	ids := m.identities(m.items())
	n := 0
	for _, id := range ids {
		if _, ok := m.selected[id]; ok {
			n++
		}
	}
	return n
}

// Invalidate drops the identity memo. Call it when the records behind the
// current items changed their identity fields.
func (m *Model) Invalidate() {
	m.memoIndex = nil
}

// identities memoizes the identity of every item in the list. The memo is
// reused only while the list holds the same item values in the same order.
func (m *Model) identities(items []entity.Item) []string {
	if m.memoIndex != nil && sameItems(m.memoItems, items) {
		return m.memoIDs
	}

	m.memoItems = append(m.memoItems[:0], items...)
	m.memoIDs = make([]string, len(items))
	m.memoIndex = make(map[string]int, len(items))
	for i, item := range items {
		id := entity.IdentityOf(item)
		m.memoIDs[i] = id
		if _, dup := m.memoIndex[id]; !dup {
			m.memoIndex[id] = i
		}
	}
	return m.memoIDs
}

func sameItems(a, b []entity.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
