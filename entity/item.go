// Package entity models the explorer's item variants and their stable identities.
package entity

import (
	"github.com/alexballas/xexplorer/cache"
)

// Kind names an item variant as it appears in query payloads.
type Kind string

const (
	KindPath           Kind = "Path"
	KindObject         Kind = "Object"
	KindLocation       Kind = "Location"
	KindNonIndexedPath Kind = "NonIndexedPath"
	KindSpacedropPeer  Kind = "SpacedropPeer"
	KindLabel          Kind = "Label"
)

// Item is one explorer entry. The set of implementations is closed: every
// variant lives in this package and must provide its own Identity, so a new
// variant cannot be added without deciding how it is identified.
type Item interface {
	Kind() Kind
	// Identity is the stable key of the item, see IdentityOf.
	Identity() string
	// Record is the live cache record of the wrapped entity.
	Record() cache.Record
	Thumbnail() (key []string, local bool)

	sealed()
}

type base struct {
	rec               cache.Record
	thumbnailKey      []string
	hasLocalThumbnail bool
}

func (b *base) Record() cache.Record { return b.rec }

func (b *base) Thumbnail() ([]string, bool) {
	return b.thumbnailKey, b.hasLocalThumbnail
}

func (*base) sealed() {}

// Path is an indexed file path.
type Path struct{ base }

func (*Path) Kind() Kind {
	return KindPath
}

func (p *Path) Identity() string {
	return pubIDIdentity(p.rec)
}

func NewPath(rec cache.Record) *Path {
	return &Path{base{rec: rec}}
}

// Object is an indexed object that may have several file paths.
type Object struct{ base }

func (*Object) Kind() Kind {
	return KindObject
}

func (o *Object) Identity() string {
	return pubIDIdentity(o.rec)
}

func NewObject(rec cache.Record) *Object {
	return &Object{base{rec: rec}}
}

// Location is a library location root.
type Location struct{ base }

func (*Location) Kind() Kind {
	return KindLocation
}

func (l *Location) Identity() string {
	return pubIDIdentity(l.rec)
}

func NewLocation(rec cache.Record) *Location {
	return &Location{base{rec: rec}}
}

// NonIndexedPath is an ephemeral filesystem entry addressed by its path.
type NonIndexedPath struct{ base }

func (*NonIndexedPath) Kind() Kind {
	return KindNonIndexedPath
}

func (n *NonIndexedPath) Identity() string {
	s, _ := n.rec["path"].(string)
	return s
}

func NewNonIndexedPath(rec cache.Record) *NonIndexedPath {
	return &NonIndexedPath{base{rec: rec}}
}

// SpacedropPeer is a discovered peer addressed by its display name.
type SpacedropPeer struct{ base }

func (*SpacedropPeer) Kind() Kind {
	return KindSpacedropPeer
}

func (s *SpacedropPeer) Identity() string {
	name, _ := s.rec["name"].(string)
	return name
}

func NewSpacedropPeer(rec cache.Record) *SpacedropPeer {
	return &SpacedropPeer{base{rec: rec}}
}

// Label is a user label.
type Label struct{ base }

func (*Label) Kind() Kind {
	return KindLabel
}

func (l *Label) Identity() string {
	return pubIDIdentity(l.rec)
}

func NewLabel(rec cache.Record) *Label {
	return &Label{base{rec: rec}}
}

