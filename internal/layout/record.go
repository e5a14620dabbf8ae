package layout

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
)

// NodeID names a record within one flat layout.
type NodeID string

// PlaceholderCaption is used for split containers that have no caption.
const PlaceholderCaption = "NC"

// PendingMarker prefixes a cloned terminal's title or command until the
// user renames it or the command is confirmed.
const PendingMarker = "!"

// Attrs is the closed set of per-kind attribute variants: WindowAttrs,
// SplitAttrs, NotebookAttrs and TerminalAttrs.
type Attrs interface {
	isAttrs()
}

// Point is a window position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Size is a window size in pixels.
type Size struct {
	W int
	H int
}

// WindowAttrs describes a toplevel window.
type WindowAttrs struct {
	Title      string
	TitleFixed bool
	Caption    string
	Position   *Point
	Size       *Size
	Maximized  bool
	Fullscreen bool
	LastActive bool
}

// SplitAttrs describes a horizontal or vertical split container.
type SplitAttrs struct {
	Caption  string
	Ratio    float64
	Position int
	// InSplit is runtime bookkeeping and is never persisted.
	InSplit bool
}

// NotebookAttrs describes a tabbed container.
type NotebookAttrs struct {
	Caption    string
	Labels     []string
	ActivePage int
	InSplit    bool
}

// TerminalAttrs describes a terminal leaf, or the new terminal stub.
type TerminalAttrs struct {
	Title       string
	Caption     string
	Profile     string
	Directory   string
	Command     string
	Environment []string
	Group       string
	InSplit     bool
}

func (WindowAttrs) isAttrs()   {}
func (SplitAttrs) isAttrs()    {}
func (NotebookAttrs) isAttrs() {}
func (TerminalAttrs) isAttrs() {}

// ProfileName returns the profile, treating an empty value as "default".
func (t TerminalAttrs) ProfileName() string {
	if strings.TrimSpace(t.Profile) == "" {
		return "default"
	}
	return t.Profile
}

// Argv splits the terminal command using shell quoting rules. A pending
// command yields no argv: it must not run until confirmed.
func (t TerminalAttrs) Argv() ([]string, error) {
	cmd := strings.TrimSpace(t.Command)
	if cmd == "" || IsPending(cmd) {
		return nil, nil
	}
	parts, err := shellquote.Split(cmd)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, errors.New("layout: empty command")
	}
	return parts, nil
}

// Env returns the environment entries in KEY=VALUE form, skipping malformed
// entries.
func (t TerminalAttrs) Env() []string {
	out := make([]string, 0, len(t.Environment))
	for _, entry := range t.Environment {
		key, _, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// MarkPending prefixes s with PendingMarker unless s is empty or already
// pending.
func MarkPending(s string) string {
	if s == "" || IsPending(s) {
		return s
	}
	return PendingMarker + s
}

// IsPending reports whether s carries the pending marker.
func IsPending(s string) bool {
	return strings.HasPrefix(s, PendingMarker)
}

// StripPending removes the pending marker.
func StripPending(s string) string {
	return strings.TrimPrefix(s, PendingMarker)
}

// Record is one node of a flat layout.
type Record struct {
	Kind   Kind
	Parent NodeID
	Attrs  Attrs
}

// Clone deep-copies the record's attributes.
func (r Record) Clone() Record {
	r.Attrs = cloneAttrs(r.Attrs)
	return r
}

func cloneAttrs(a Attrs) Attrs {
	switch v := a.(type) {
	case WindowAttrs:
		if v.Position != nil {
			p := *v.Position
			v.Position = &p
		}
		if v.Size != nil {
			s := *v.Size
			v.Size = &s
		}
		return v
	case NotebookAttrs:
		v.Labels = slices.Clone(v.Labels)
		return v
	case TerminalAttrs:
		v.Environment = slices.Clone(v.Environment)
		return v
	default:
		return a
	}
}

// captionOf returns the caption of any attribute variant.
func captionOf(a Attrs) string {
	switch v := a.(type) {
	case WindowAttrs:
		return v.Caption
	case SplitAttrs:
		return v.Caption
	case NotebookAttrs:
		return v.Caption
	case TerminalAttrs:
		return v.Caption
	default:
		return ""
	}
}

// withSplitCaption marks a as living inside a split whose caption is
// caption. Windows never live inside a split and are returned unchanged.
func withSplitCaption(a Attrs, caption string) Attrs {
	switch v := a.(type) {
	case SplitAttrs:
		v.Caption, v.InSplit = caption, true
		return v
	case NotebookAttrs:
		v.Caption, v.InSplit = caption, true
		return v
	case TerminalAttrs:
		v.Caption, v.InSplit = caption, true
		return v
	default:
		return a
	}
}

func inSplit(a Attrs) bool {
	switch v := a.(type) {
	case SplitAttrs:
		return v.InSplit
	case NotebookAttrs:
		return v.InSplit
	case TerminalAttrs:
		return v.InSplit
	default:
		return false
	}
}

// Flat is an unordered, parent-referencing record set.
type Flat map[NodeID]Record

// Clone deep-copies the layout.
func (f Flat) Clone() Flat {
	if f == nil {
		return nil
	}
	out := make(Flat, len(f))
	for id, rec := range f {
		out[id] = rec.Clone()
	}
	return out
}

// IDs returns the record ids in natural order, so c9t sorts before c10t.
func (f Flat) IDs() []NodeID {
	ids := make([]NodeID, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

// compareIDs orders ids by comparing ASCII digit runs numerically. Ids that
// only differ in leading zeros fall back to a byte comparison, so the order
// is total.
func compareIDs(a, b NodeID) int {
	as, bs := string(a), string(b)
	for as != "" && bs != "" {
		ra, rb := leadingRun(as), leadingRun(bs)
		var c int
		if isDigits(ra) && isDigits(rb) {
			c = compareNumbers(ra, rb)
		} else {
			c = strings.Compare(ra, rb)
		}
		if c != 0 {
			return c
		}
		as, bs = as[len(ra):], bs[len(rb):]
	}
	if c := cmp.Compare(len(as), len(bs)); c != 0 {
		return c
	}
	return strings.Compare(string(a), string(b))
}

// compareNumbers compares two digit runs of any length by value, then
// shorter first.
func compareNumbers(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(ta), len(tb)); c != 0 {
		return c
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return cmp.Compare(len(a), len(b))
}

// leadingRun returns the non-empty prefix of s made of only ASCII digits or
// only other bytes.
func leadingRun(s string) string {
	digit := isDigit(s[0])
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != digit {
			return s[:i]
		}
	}
	return s
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}
