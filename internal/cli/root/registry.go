package root

import (
	"fmt"
	"slices"
	"strings"

	"github.com/regenrek/panestore/internal/cli/spec"
)

// Handler runs one command.
type Handler func(ctx CommandContext) error

// Registry maps command ids to handlers.
type Registry struct {
	handlers map[string]Handler
	dupes    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds id to handler. A second registration for the same id is
// kept out and reported by EnsureHandlers.
func (r *Registry) Register(id string, handler Handler) {
	if r == nil || id == "" || handler == nil {
		return
	}
	if _, taken := r.handlers[id]; taken {
		r.dupes = append(r.dupes, id)
		return
	}
	r.handlers[id] = handler
}

// HandlerFor returns the handler bound to id.
func (r *Registry) HandlerFor(id string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.handlers[id]
	return h, ok
}

// WiringError describes a mismatch between the command tree and the
// registered handlers.
type WiringError struct {
	// Missing are leaf commands without a handler.
	Missing []string
	// Unknown are handlers for ids the command tree does not declare.
	Unknown []string
	// Duplicate are ids registered more than once.
	Duplicate []string
}

func (e *WiringError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing handlers: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "handlers for undeclared commands: "+strings.Join(e.Unknown, ", "))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "registered twice: "+strings.Join(e.Duplicate, ", "))
	}
	return fmt.Sprintf("cli wiring: %s", strings.Join(parts, "; "))
}

// EnsureHandlers checks that every leaf command has exactly one handler and
// that no handler is bound to an undeclared id.
func (r *Registry) EnsureHandlers(doc *spec.Spec) error {
	if r == nil || doc == nil {
		return nil
	}
	declared := make(map[string]bool)
	werr := &WiringError{Duplicate: slices.Clone(r.dupes)}
	for _, cmd := range doc.AllCommands() {
		declared[cmd.ID] = true
		if len(cmd.Subcommands) > 0 {
			continue
		}
		if _, ok := r.handlers[cmd.ID]; !ok {
			werr.Missing = append(werr.Missing, cmd.ID)
		}
	}
	for id := range r.handlers {
		if !declared[id] {
			werr.Unknown = append(werr.Unknown, id)
		}
	}
	slices.Sort(werr.Missing)
	slices.Sort(werr.Unknown)
	slices.Sort(werr.Duplicate)
	if len(werr.Missing)+len(werr.Unknown)+len(werr.Duplicate) == 0 {
		return nil
	}
	return werr
}
