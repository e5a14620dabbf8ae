package layout

import (
	"errors"
	"fmt"
)

// Flatten walks the live windows depth first and emits one record per node.
// The namer is reset for the pass. Stub nodes are skipped with their
// subtree. If any child of a split is closing the whole pass fails with
// ErrTeardown and nothing is returned.
func Flatten(roots []LiveNode, namer Namer) (Flat, error) {
	if namer == nil {
		namer = NewCounterNamer()
	}
	namer.Reset(countNodes(roots))
	f := &flattener{namer: namer, out: make(Flat)}
	for _, root := range roots {
		if root == nil || root.Kind() == KindStub {
			continue
		}
		if root.Kind() != KindWindow {
			return nil, fmt.Errorf("layout: toplevel node %s is a %s, want Window", root.Identity(), root.Kind())
		}
		if err := f.visit(root, "", nil); err != nil {
			return nil, err
		}
	}
	return f.out, nil
}

type flattener struct {
	namer Namer
	out   Flat
}

// splitCtx carries the enclosing split's caption to its children.
type splitCtx struct {
	caption string
}

func (f *flattener) visit(n LiveNode, parent NodeID, split *splitCtx) error {
	kind := n.Kind()
	if kind == KindWindow && parent != "" {
		return fmt.Errorf("layout: window %s nested under %s", n.Identity(), parent)
	}
	attrs := cloneAttrs(n.Attributes())
	if attrs == nil {
		attrs = kind.newAttrs()
	}
	if !kind.accepts(attrs) {
		return fmt.Errorf("layout: %s node %s carries %T", kind, n.Identity(), attrs)
	}
	if split != nil {
		attrs = withSplitCaption(attrs, split.caption)
	}
	var childSplit *splitCtx
	if kind.IsSplit() {
		sa := attrs.(SplitAttrs)
		if sa.Caption == "" {
			sa.Caption = PlaceholderCaption
		}
		attrs = sa
		childSplit = &splitCtx{caption: sa.Caption}
		for _, c := range n.Children() {
			if c != nil && c.Closing() {
				return fmt.Errorf("%w: %s under %s", ErrTeardown, c.Identity(), n.Identity())
			}
		}
	}
	id := f.namer.Next(kind)
	if _, dup := f.out[id]; dup {
		return fmt.Errorf("layout: namer produced duplicate id %s", id)
	}
	f.out[id] = Record{Kind: kind, Parent: parent, Attrs: attrs}
	for _, c := range n.Children() {
		if c == nil || c.Kind() == KindStub {
			continue
		}
		if err := f.visit(c, id, childSplit); err != nil {
			return err
		}
	}
	return nil
}

// IsTeardown reports whether err came from a flatten pass aborted by a
// closing node.
func IsTeardown(err error) bool {
	return errors.Is(err, ErrTeardown)
}
