// Package livetree is an in-memory window system. It realizes reconciled
// layouts as live nodes so they can be inspected, edited and flattened
// again without a display.
package livetree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/regenrek/panestore/internal/layout"
)

var (
	// ErrNotFound reports an unknown node identity.
	ErrNotFound = errors.New("livetree: node not found")
	// ErrFull reports a container that cannot take another child.
	ErrFull = errors.New("livetree: container is full")
)

// Node is one live window, container or terminal.
type Node struct {
	id       string
	kind     layout.Kind
	attrs    layout.Attrs
	parent   *Node
	children []*Node
	closing  bool
}

func newNode(kind layout.Kind, attrs layout.Attrs) *Node {
	return &Node{id: uuid.NewString(), kind: kind, attrs: attrs}
}

func (n *Node) Identity() string             { return n.id }
func (n *Node) Kind() layout.Kind            { return n.kind }
func (n *Node) Attributes() layout.Attrs     { return n.attrs }
func (n *Node) Closing() bool                { return n.closing }
func (n *Node) Parent() *Node                { return n.parent }
func (n *Node) SetAttributes(a layout.Attrs) { n.attrs = a }

// Children returns the node's children in display order.
func (n *Node) Children() []layout.LiveNode {
	out := make([]layout.LiveNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// capacity is the number of children a kind holds; -1 is unbounded.
func capacity(kind layout.Kind) int {
	switch kind {
	case layout.KindWindow:
		return 1
	case layout.KindSplitH, layout.KindSplitV:
		return 2
	case layout.KindNotebook:
		return -1
	default:
		return 0
	}
}

func (n *Node) append(child *Node) error {
	limit := capacity(n.kind)
	if limit == 0 || (limit > 0 && len(n.children) >= limit) {
		return fmt.Errorf("%w: %s %s", ErrFull, n.kind, n.id)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// Tree holds the live windows. It implements the session toolkit.
type Tree struct {
	mu      sync.Mutex
	windows []*Node
	logger  *slog.Logger
}

// New returns an empty tree.
func New(logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tree{logger: logger.With(slog.String("component", "livetree"))}
}

// Windows returns the toplevel windows in creation order.
func (t *Tree) Windows() []layout.LiveNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]layout.LiveNode, len(t.windows))
	for i, w := range t.windows {
		out[i] = w
	}
	return out
}

// Realize builds live nodes for every root of forest. Nothing is added when
// any part of the forest cannot be built.
func (t *Tree) Realize(ctx context.Context, forest layout.Forest) error {
	built := make([]*Node, 0, len(forest))
	for _, root := range forest {
		if err := ctx.Err(); err != nil {
			return err
		}
		if root.Kind != layout.KindWindow {
			return fmt.Errorf("livetree: root %s is a %s", root.ID, root.Kind)
		}
		n, err := build(root)
		if err != nil {
			return err
		}
		built = append(built, n)
	}
	t.mu.Lock()
	t.windows = append(t.windows, built...)
	t.mu.Unlock()
	t.logger.Debug("realized layout", slog.Int("windows", len(built)))
	return nil
}

func build(src *layout.Node) (*Node, error) {
	n := newNode(src.Kind, src.Attrs)
	for _, c := range src.Children {
		child, err := build(c)
		if err != nil {
			return nil, err
		}
		if err := n.append(child); err != nil {
			return nil, fmt.Errorf("livetree: attach %s: %w", c.ID, err)
		}
	}
	return n, nil
}

// NewDefaultWindow opens a window holding one terminal.
func (t *Tree) NewDefaultWindow(ctx context.Context, term layout.TerminalAttrs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := newNode(layout.KindWindow, layout.WindowAttrs{})
	if err := w.append(newNode(layout.KindTerminal, term)); err != nil {
		return err
	}
	t.mu.Lock()
	t.windows = append(t.windows, w)
	t.mu.Unlock()
	return nil
}

// Find returns the node with the given identity.
func (t *Tree) Find(id string) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, w := range t.windows {
		if n := find(w, id); n != nil {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func find(n *Node, id string) *Node {
	if n.id == id {
		return n
	}
	for _, c := range n.children {
		if hit := find(c, id); hit != nil {
			return hit
		}
	}
	return nil
}

// Terminals returns every live terminal in depth-first order.
func (t *Tree) Terminals() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.kind == layout.KindTerminal {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	for _, w := range t.windows {
		walk(w)
	}
	return out
}

// Split replaces the terminal id with a split holding it and a new terminal
// built from attrs. It returns the new terminal.
func (t *Tree) Split(id string, kind layout.Kind, attrs layout.TerminalAttrs) (*Node, error) {
	if !kind.IsSplit() {
		return nil, fmt.Errorf("livetree: %s is not a split kind", kind)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var target *Node
	for _, w := range t.windows {
		if target = find(w, id); target != nil {
			break
		}
	}
	if target == nil || target.kind != layout.KindTerminal {
		return nil, fmt.Errorf("%w: terminal %s", ErrNotFound, id)
	}
	parent := target.parent
	split := newNode(kind, layout.SplitAttrs{Ratio: 0.5})
	split.parent = parent
	idx := slices.Index(parent.children, target)
	parent.children[idx] = split
	target.parent = nil
	fresh := newNode(layout.KindTerminal, attrs)
	if err := split.append(target); err != nil {
		return nil, err
	}
	if err := split.append(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// SetClosing marks a node as being torn down.
func (t *Tree) SetClosing(id string, closing bool) error {
	n, err := t.Find(id)
	if err != nil {
		return err
	}
	t.mu.Lock()
	n.closing = closing
	t.mu.Unlock()
	return nil
}

// Close removes a node. A split left with one child is replaced by that
// child; a window left empty is removed.
func (t *Tree) Close(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, w := range t.windows {
		if w.id == id {
			t.windows = slices.Delete(t.windows, i, i+1)
			return nil
		}
		n := find(w, id)
		if n == nil {
			continue
		}
		t.detach(n)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (t *Tree) detach(n *Node) {
	parent := n.parent
	parent.children = slices.DeleteFunc(parent.children, func(c *Node) bool { return c == n })
	n.parent = nil
	switch {
	case parent.kind.IsSplit() && len(parent.children) == 1:
		only := parent.children[0]
		grand := parent.parent
		idx := slices.Index(grand.children, parent)
		grand.children[idx] = only
		only.parent = grand
	case parent.kind == layout.KindWindow && len(parent.children) == 0:
		t.windows = slices.DeleteFunc(t.windows, func(w *Node) bool { return w == parent })
	case parent.kind == layout.KindNotebook && len(parent.children) == 0:
		t.detach(parent)
	}
}
