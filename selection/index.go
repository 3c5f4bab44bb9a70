package selection

import "github.com/alexballas/xexplorer/entity"

// Index based selection used by pointer and keyboard interaction.
// Out of range indices are ignored.

// Select selects only the item at index and makes it the anchor.
func (m *Model) Select(index int) {
	items := m.items()
	if index < 0 || index >= len(items) {
		return
	}
	m.selected = map[string]struct{}{entity.IdentityOf(items[index]): {}}
	m.anchor = index
	m.notify()
}

// SelectIndices replaces the selection with the items at indices.
// The last index becomes the anchor.
func (m *Model) SelectIndices(indices []int) {
	if m.single {
		if len(indices) > 0 {
			m.Select(indices[len(indices)-1])
		}
		return
	}
	items := m.items()
	m.selected = make(map[string]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(items) {
			continue
		}
		m.selected[entity.IdentityOf(items[i])] = struct{}{}
	}
	if len(indices) > 0 {
		m.anchor = indices[len(indices)-1]
	}
	m.notify()
}

// Toggle flips the item at index and makes it the anchor.
func (m *Model) Toggle(index int) {
	if m.single {
		m.Select(index)
		return
	}
	items := m.items()
	if index < 0 || index >= len(items) {
		return
	}
	id := entity.IdentityOf(items[index])
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
	} else {
		m.selected[id] = struct{}{}
	}
	m.anchor = index
	m.notify()
}

// ExtendTo selects the contiguous range between the anchor and index.
// The anchor itself does not move.
func (m *Model) ExtendTo(index int) {
	if m.single {
		m.Select(index)
		return
	}
	items := m.items()
	if index < 0 || index >= len(items) {
		return
	}

	if m.anchor < 0 || m.anchor >= len(items) {
		m.anchor = 0
	}

	start, end := m.anchor, index
	if start > end {
		start, end = end, start
	}

	m.selected = make(map[string]struct{}, end-start+1)
	for i := start; i <= end; i++ {
		m.selected[entity.IdentityOf(items[i])] = struct{}{}
	}
	m.notify()
}

// Anchor is the index further range selection extends from, or -1.
func (m *Model) Anchor() int {
	return m.anchor
}
