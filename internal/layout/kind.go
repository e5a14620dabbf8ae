package layout

import (
	"fmt"
	"strings"
)

// Kind is the node type of a layout record.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindWindow
	KindSplitH
	KindSplitV
	KindNotebook
	KindTerminal
	// KindStub marks the template-only new terminal record. It never takes
	// part in a real session tree.
	KindStub
)

func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "Window"
	case KindSplitH:
		return "SplitH"
	case KindSplitV:
		return "SplitV"
	case KindNotebook:
		return "Notebook"
	case KindTerminal:
		return "Terminal"
	case KindStub:
		return "Stub"
	default:
		return "Invalid"
	}
}

// ParseKind accepts the canonical names plus the legacy HPaned, VPaned and
// Defstub spellings.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "window":
		return KindWindow, nil
	case "splith", "hpaned":
		return KindSplitH, nil
	case "splitv", "vpaned":
		return KindSplitV, nil
	case "notebook":
		return KindNotebook, nil
	case "terminal":
		return KindTerminal, nil
	case "stub", "defstub":
		return KindStub, nil
	default:
		return KindInvalid, fmt.Errorf("layout: unknown kind %q", raw)
	}
}

// IsSplit reports whether k is a two-pane split container.
func (k Kind) IsSplit() bool {
	return k == KindSplitH || k == KindSplitV
}

// HoldsChildren reports whether records of kind k may be parents.
func (k Kind) HoldsChildren() bool {
	switch k {
	case KindWindow, KindSplitH, KindSplitV, KindNotebook:
		return true
	default:
		return false
	}
}

func (k Kind) letter() string {
	switch k {
	case KindWindow:
		return "w"
	case KindSplitH:
		return "h"
	case KindSplitV:
		return "v"
	case KindNotebook:
		return "n"
	case KindTerminal:
		return "t"
	case KindStub:
		return "s"
	default:
		return "x"
	}
}

// newAttrs returns the zero attribute variant used by records of kind k.
func (k Kind) newAttrs() Attrs {
	switch k {
	case KindWindow:
		return WindowAttrs{}
	case KindSplitH, KindSplitV:
		return SplitAttrs{}
	case KindNotebook:
		return NotebookAttrs{}
	case KindTerminal, KindStub:
		return TerminalAttrs{}
	default:
		return nil
	}
}

// accepts reports whether a is the attribute variant for kind k.
func (k Kind) accepts(a Attrs) bool {
	switch a.(type) {
	case WindowAttrs:
		return k == KindWindow
	case SplitAttrs:
		return k.IsSplit()
	case NotebookAttrs:
		return k == KindNotebook
	case TerminalAttrs:
		return k == KindTerminal || k == KindStub
	default:
		return false
	}
}
