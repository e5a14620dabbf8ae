package layout

import "slices"

// Node is a reconstructed layout node.
type Node struct {
	ID       NodeID
	Kind     Kind
	Attrs    Attrs
	Children []*Node
}

// Window returns the window attributes of a root node.
func (n *Node) Window() (WindowAttrs, bool) {
	a, ok := n.Attrs.(WindowAttrs)
	return a, ok
}

// Split returns the attributes of a split container.
func (n *Node) Split() (SplitAttrs, bool) {
	a, ok := n.Attrs.(SplitAttrs)
	return a, ok
}

// Notebook returns the attributes of a tabbed container.
func (n *Node) Notebook() (NotebookAttrs, bool) {
	a, ok := n.Attrs.(NotebookAttrs)
	return a, ok
}

// Terminal returns the attributes of a terminal leaf.
func (n *Node) Terminal() (TerminalAttrs, bool) {
	a, ok := n.Attrs.(TerminalAttrs)
	return a, ok
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Forest is the result of Reconcile: one root per window.
type Forest []*Node

// Terminals returns every terminal node in depth-first order.
func (f Forest) Terminals() []*Node {
	var out []*Node
	for _, root := range f {
		root.Walk(func(n *Node, _ int) bool {
			if n.Kind == KindTerminal {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// Reconcile rebuilds the window forest from an unordered flat layout.
//
// Stub records are dropped. The remaining records are attached in passes:
// windows become roots, every other record is attached once its parent is
// attached. The number of passes is bounded by the record count and stops
// early when a pass attaches nothing. Records left over are reported through
// a *CorruptError and no forest is returned.
func Reconcile(flat Flat) (Forest, error) {
	pending := make([]NodeID, 0, len(flat))
	for _, id := range flat.IDs() {
		if flat[id].Kind == KindStub {
			continue
		}
		pending = append(pending, id)
	}
	resolved := make(map[NodeID]*Node, len(pending))
	var forest Forest
	bound := len(pending)
	passes := 0
	for passes < bound && len(pending) > 0 {
		passes++
		next := pending[:0:0]
		for _, id := range pending {
			rec := flat[id]
			if rec.Kind == KindWindow {
				node := newNode(id, rec)
				resolved[id] = node
				forest = append(forest, node)
				continue
			}
			parent, ok := resolved[rec.Parent]
			if !ok || !parent.Kind.HoldsChildren() || rec.Kind == KindInvalid {
				next = append(next, id)
				continue
			}
			node := newNode(id, rec)
			resolved[id] = node
			parent.Children = append(parent.Children, node)
		}
		progressed := len(next) < len(pending)
		pending = next
		if !progressed {
			break
		}
	}
	if len(pending) > 0 {
		return nil, &CorruptError{Unresolved: slices.Clone(pending), Passes: passes}
	}
	for _, root := range forest {
		markSplitChildren(root)
	}
	return forest, nil
}

func newNode(id NodeID, rec Record) *Node {
	attrs := cloneAttrs(rec.Attrs)
	if attrs == nil || !rec.Kind.accepts(attrs) {
		attrs = rec.Kind.newAttrs()
	}
	return &Node{ID: id, Kind: rec.Kind, Attrs: attrs}
}

// markSplitChildren restores the runtime in-split flag and caption that the
// trimming rule drops from children of split containers.
func markSplitChildren(n *Node) {
	if n.Kind.IsSplit() {
		sa, _ := n.Split()
		if sa.Caption == "" {
			sa.Caption = PlaceholderCaption
			n.Attrs = sa
		}
		for _, c := range n.Children {
			if captionOf(c.Attrs) == "" || !inSplit(c.Attrs) {
				c.Attrs = withSplitCaption(c.Attrs, sa.Caption)
			}
		}
	}
	for _, c := range n.Children {
		markSplitChildren(c)
	}
}
