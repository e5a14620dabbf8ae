package layout

import (
	"fmt"
	"strconv"
)

// Namer hands out node ids during one flatten pass.
type Namer interface {
	// Reset starts a new pass over total nodes.
	Reset(total int)
	// Next returns the id for the next visited node.
	Next(kind Kind) NodeID
}

// CounterNamer produces ids of the form c<n><kind letter>, zero padded to the
// width of the largest counter in the pass so that ids sort by visit order.
type CounterNamer struct {
	next  int
	width int
}

// NewCounterNamer returns a namer ready for a pass of at most 100 nodes.
func NewCounterNamer() *CounterNamer {
	n := &CounterNamer{}
	n.Reset(0)
	return n
}

func (n *CounterNamer) Reset(total int) {
	n.next = 0
	n.width = max(2, len(strconv.Itoa(max(total-1, 0))))
}

func (n *CounterNamer) Next(kind Kind) NodeID {
	id := NodeID(fmt.Sprintf("c%0*d%s", n.width, n.next, kind.letter()))
	n.next++
	return id
}
