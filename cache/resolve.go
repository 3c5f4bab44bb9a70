package cache

// Resolve replaces every reference inside v with the live record it names.
//
// Slices and plain maps are rebuilt with resolved children rather than
// mutated, so the input payload can be resolved again after more nodes land.
// A reference to a node that was never ingested yields *MissingNodeError.
func (c *Cache) Resolve(v any) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.restore(v)
}

// ResolveAll resolves each element of items.
func (c *Cache) ResolveAll(items []any) ([]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]any, len(items))
	for i, item := range items {
		r, err := c.restore(item)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (c *Cache) restore(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			r, err := c.restore(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			r, err := c.restore(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case Record:
		// Records are already canonical storage.
		return t, nil
	case map[string]any:
		if isReference(t) {
			return c.lookup(t)
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			r, err := c.restore(e)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func isReference(m map[string]any) bool {
	_, hasType := m[TypeKey]
	_, hasID := m[IDKey]
	return hasType && hasID
}

func (c *Cache) lookup(ref map[string]any) (Record, error) {
	typ, ok := ref[TypeKey].(string)
	if !ok {
		return nil, &InvalidNodeError{Op: OpResolve, Node: ref, Reason: "invalid " + TypeKey + " in reference"}
	}
	id, ok := ref[IDKey].(string)
	if !ok {
		return nil, &InvalidNodeError{Op: OpResolve, Node: ref, Reason: "invalid " + IDKey + " in reference"}
	}
	rec, ok := c.nodes[typ][id]
	if !ok {
		return nil, &MissingNodeError{Type: typ, ID: id}
	}
	return rec, nil
}
