package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLayoutCorrupt reports a flat layout whose records cannot all be
	// attached to a window.
	ErrLayoutCorrupt = errors.New("layout: corrupt layout")
	// ErrTeardown reports a flatten pass that met a split child being closed.
	ErrTeardown = errors.New("layout: node is being torn down")
)

// CorruptError lists the records Reconcile could not attach.
type CorruptError struct {
	Unresolved []NodeID
	Passes     int
}

func (e *CorruptError) Error() string {
	ids := make([]string, len(e.Unresolved))
	for i, id := range e.Unresolved {
		ids[i] = string(id)
	}
	return fmt.Sprintf("layout: corrupt layout: %d unresolved after %d passes: %s",
		len(ids), e.Passes, strings.Join(ids, ", "))
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrLayoutCorrupt
}
