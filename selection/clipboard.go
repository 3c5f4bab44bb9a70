package selection

import "github.com/alexballas/xexplorer/entity"

// ClipboardKind is the pending cut/copy operation.
type ClipboardKind int

const (
	ClipboardNone ClipboardKind = iota
	ClipboardCut
	ClipboardCopy
)

// Clipboard holds the explorer's cut/copy state, keyed by identity like the selection.
type Clipboard struct {
	kind       ClipboardKind
	sourcePath string
	ids        map[string]struct{}
}

func (c *Clipboard) Cut(sourcePath string, items ...entity.Item) {
	c.set(ClipboardCut, sourcePath, items)
}

func (c *Clipboard) Copy(sourcePath string, items ...entity.Item) {
	c.set(ClipboardCopy, sourcePath, items)
}

func (c *Clipboard) set(kind ClipboardKind, sourcePath string, items []entity.Item) {
	c.kind = kind
	c.sourcePath = sourcePath
	c.ids = make(map[string]struct{}, len(items))
	for _, item := range items {
		c.ids[entity.IdentityOf(item)] = struct{}{}
	}
}

func (c *Clipboard) Clear() {
	c.kind = ClipboardNone
	c.sourcePath = ""
	c.ids = nil
}

func (c *Clipboard) Kind() ClipboardKind {
	return c.kind
}

func (c *Clipboard) SourcePath() string {
	return c.sourcePath
}

// IsCut reports whether item is part of a pending cut. Rendering dims such items.
func (c *Clipboard) IsCut(item entity.Item) bool {
	if c.kind != ClipboardCut {
		return false
	}
	_, ok := c.ids[entity.IdentityOf(item)]
	return ok
}

func (c *Clipboard) Len() int {
	return len(c.ids)
}
