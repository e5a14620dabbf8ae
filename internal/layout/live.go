package layout

// LiveNode is the read-only view of a realized window, container or terminal
// that the toolkit hands to Flatten.
type LiveNode interface {
	// Identity is opaque and stable for the node's lifetime.
	Identity() string
	Kind() Kind
	// Attributes returns the variant matching Kind.
	Attributes() Attrs
	// Children returns the node's children in display order.
	Children() []LiveNode
	// Closing reports whether the node is being torn down.
	Closing() bool
}

// countNodes returns the number of nodes Flatten will name.
func countNodes(roots []LiveNode) int {
	total := 0
	var walk func(LiveNode)
	walk = func(n LiveNode) {
		if n == nil || n.Kind() == KindStub {
			return
		}
		total++
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return total
}
