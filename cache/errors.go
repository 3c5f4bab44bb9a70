package cache

import (
	"errors"
	"fmt"
)

const (
	OpSetNodes = "SetNodes"
	OpResolve  = "Resolve"
)

var (
	ErrInvalidNode = errors.New("invalid cache node")
	ErrMissingNode = errors.New("missing cache node")
)

// InvalidNodeError reports a node or reference without usable identity fields.
// It means the producer is broken; callers should fail loudly rather than retry.
type InvalidNodeError struct {
	Op     string // "SetNodes" or "Resolve"
	Node   any
	Reason string
}

func (e *InvalidNodeError) Error() string {
	op := e.Op
	if op == "" {
		op = OpSetNodes
	}
	return fmt.Sprintf("tried to '%s' but encountered invalid node '%s': %s", op, describe(e.Node), e.Reason)
}

func (e *InvalidNodeError) Is(target error) bool { return target == ErrInvalidNode }

// MissingNodeError reports a reference whose node was never ingested.
type MissingNodeError struct {
	Type string
	ID   string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("missing node for id '%s' of type '%s'", e.ID, e.Type)
}

func (e *MissingNodeError) Is(target error) bool { return target == ErrMissingNode }

func describe(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
