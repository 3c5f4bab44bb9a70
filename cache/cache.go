// Package cache implements the normalized client-side entity store used by the explorer.
//
// Query responses arrive as a flat table of nodes plus a payload that refers to
// those nodes by (type, id). The cache keeps exactly one live Record per
// (type, id) and resolves payload references into those shared records, so a
// later partial update is visible to every holder without re-resolving.
package cache

import (
	"sort"
	"sync"
)

const (
	// TypeKey and IDKey identify a node, and mark a map as a reference while resolving.
	TypeKey = "__type"
	IDKey   = "__id"
)

// Record is the canonical, shared storage of one node's fields.
// Identity keys are never stored in it.
type Record map[string]any

// Node is a typed form of a cache node for producers that don't build maps.
type Node struct {
	Type   string
	ID     string
	Fields map[string]any
}

// Ref builds the reference placeholder for a node.
func Ref(typ, id string) map[string]any {
	return map[string]any{TypeKey: typ, IDKey: id}
}

// Cache is a normalized node store. One instance is shared by every consumer of a client context.
type Cache struct {
	mu    sync.RWMutex
	nodes map[string]map[string]Record
}

func New() *Cache {
	return &Cache{nodes: make(map[string]map[string]Record)}
}

// SetNodes merges each node into the record stored at its (type, id).
//
// Merging overwrites field by field, so fields missing from the incoming node
// survive. The first invalid node stops ingestion and is reported as an
// *InvalidNodeError; nodes before it stay ingested. A node argument may also
// be a slice of nodes: []any, []map[string]any, []Record, []Node or []*Node.
func (c *Cache) SetNodes(nodes ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range nodes {
		if err := c.setList(n); err != nil {
			return err
		}
	}
	return nil
}

// setList ingests n, expanding the slice forms of a node list.
func (c *Cache) setList(n any) error {
	switch list := n.(type) {
	case []any:
		return setEach(c, list)
	case []map[string]any:
		return setEach(c, list)
	case []Record:
		return setEach(c, list)
	case []Node:
		return setEach(c, list)
	case []*Node:
		return setEach(c, list)
	default:
		return c.setNode(n)
	}
}

func setEach[T any](c *Cache, list []T) error {
	for _, inner := range list {
		if err := c.setNode(inner); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) setNode(n any) error {
	typ, id, fields, err := splitNode(n)
	if err != nil {
		return err
	}

	bucket, ok := c.nodes[typ]
	if !ok {
		bucket = make(map[string]Record)
		c.nodes[typ] = bucket
	}

	rec, ok := bucket[id]
	if !ok {
		rec = make(Record, len(fields))
		bucket[id] = rec
	}
	// Be aware this is a merge, not a replace
	for k, v := range fields {
		if k == TypeKey || k == IDKey {
			continue
		}
		rec[k] = v
	}
	return nil
}

func splitNode(n any) (string, string, map[string]any, error) {
	switch v := n.(type) {
	case Node:
		return checkIdentity(n, v.Type, v.ID, v.Fields)
	case *Node:
		if v == nil {
			return "", "", nil, &InvalidNodeError{Op: OpSetNodes, Node: n, Reason: "nil node"}
		}
		return checkIdentity(n, v.Type, v.ID, v.Fields)
	case map[string]any:
		return splitMap(n, v)
	case Record:
		return splitMap(n, v)
	default:
		return "", "", nil, &InvalidNodeError{Op: OpSetNodes, Node: n, Reason: "node is not an object"}
	}
}

func splitMap(n any, m map[string]any) (string, string, map[string]any, error) {
	typ, ok := m[TypeKey].(string)
	if !ok {
		return "", "", nil, &InvalidNodeError{Op: OpSetNodes, Node: n, Reason: "missing or non-string " + TypeKey}
	}
	id, ok := m[IDKey].(string)
	if !ok {
		return "", "", nil, &InvalidNodeError{Op: OpSetNodes, Node: n, Reason: "missing or non-string " + IDKey}
	}
	return checkIdentity(n, typ, id, m)
}

func checkIdentity(n any, typ, id string, fields map[string]any) (string, string, map[string]any, error) {
	if typ == "" {
		return "", "", nil, &InvalidNodeError{Op: OpSetNodes, Node: n, Reason: "empty " + TypeKey}
	}
	if id == "" {
		return "", "", nil, &InvalidNodeError{Op: OpSetNodes, Node: n, Reason: "empty " + IDKey}
	}
	return typ, id, fields, nil
}

// GetNode returns the live record stored at (typ, id) without resolving anything inside it.
func (c *Cache) GetNode(typ, id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.nodes[typ][id]
	return rec, ok
}

// Len reports the number of stored nodes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, bucket := range c.nodes {
		n += len(bucket)
	}
	return n
}

// Types lists the node types present, sorted.
func (c *Cache) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.nodes))
	for t := range c.nodes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
