// Package render draws reconciled layouts for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/userpath"
)

const defaultLabelWidth = 48

// Options control rendering.
type Options struct {
	// Profile selects the color output. Ascii disables styling.
	Profile termenv.Profile
	// LabelWidth caps free text such as titles and commands.
	LabelWidth int
}

// ProfileFor returns the color profile for stdout, or Ascii when color is
// disabled.
func ProfileFor(noColor bool) termenv.Profile {
	if noColor {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

type styles struct {
	root     lipgloss.Style
	kind     lipgloss.Style
	label    lipgloss.Style
	muted    lipgloss.Style
	pending  lipgloss.Style
	enumer   lipgloss.Style
	maxWidth int
}

func newStyles(opts Options) styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(opts.Profile)
	width := opts.LabelWidth
	if width <= 0 {
		width = defaultLabelWidth
	}
	return styles{
		root:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FDE68A")),
		kind:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		label:    r.NewStyle().Foreground(lipgloss.Color("#CBD5E1")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#64748B")),
		pending:  r.NewStyle().Italic(true).Foreground(lipgloss.Color("#FBBF24")),
		enumer:   r.NewStyle().Foreground(lipgloss.Color("#3A3A3A")),
		maxWidth: width,
	}
}

// Forest renders the windows of a reconciled layout as a tree rooted at
// name.
func Forest(name string, forest layout.Forest, opts Options) string {
	st := newStyles(opts)
	t := tree.Root(st.root.Render(name)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.enumer)
	for _, root := range forest {
		t.Child(st.subtree(root))
	}
	return t.String()
}

func (st styles) subtree(n *layout.Node) any {
	label := st.nodeLabel(n)
	if len(n.Children) == 0 {
		return label
	}
	t := tree.Root(label).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(st.enumer)
	for _, c := range n.Children {
		t.Child(st.subtree(c))
	}
	return t
}

func (st styles) nodeLabel(n *layout.Node) string {
	parts := []string{st.kind.Render(n.Kind.String()), st.muted.Render(string(n.ID))}
	switch a := n.Attrs.(type) {
	case layout.WindowAttrs:
		if a.Title != "" {
			parts = append(parts, st.quoted(a.Title))
		}
		if a.Size != nil {
			parts = append(parts, st.muted.Render(fmt.Sprintf("%dx%d", a.Size.W, a.Size.H)))
		}
		if a.Position != nil {
			parts = append(parts, st.muted.Render(fmt.Sprintf("@%d,%d", a.Position.X, a.Position.Y)))
		}
		if a.Maximized {
			parts = append(parts, st.muted.Render("maximized"))
		}
		if a.Fullscreen {
			parts = append(parts, st.muted.Render("fullscreen"))
		}
	case layout.SplitAttrs:
		parts = append(parts, st.label.Render("["+st.clip(a.Caption)+"]"))
		if a.Ratio > 0 {
			parts = append(parts, st.muted.Render(fmt.Sprintf("%.0f%%", a.Ratio*100)))
		}
	case layout.NotebookAttrs:
		if a.Caption != "" {
			parts = append(parts, st.label.Render("["+st.clip(a.Caption)+"]"))
		}
		if len(a.Labels) > 0 {
			parts = append(parts, st.muted.Render("tabs: "+st.clip(strings.Join(a.Labels, ", "))))
		}
	case layout.TerminalAttrs:
		if a.Title != "" {
			parts = append(parts, st.text(a.Title))
		}
		if a.Profile != "" && a.Profile != layout.DefaultName {
			parts = append(parts, st.muted.Render("profile=")+st.label.Render(a.Profile))
		}
		if a.Directory != "" {
			parts = append(parts, st.muted.Render("dir=")+st.label.Render(st.clip(userpath.ShortenUser(a.Directory))))
		}
		if a.Command != "" {
			parts = append(parts, st.muted.Render("cmd=")+st.text(a.Command))
		}
		if a.Group != "" {
			parts = append(parts, st.muted.Render("group=")+st.label.Render(a.Group))
		}
	}
	return strings.Join(parts, " ")
}

// text renders user text, styling values that carry the pending marker.
func (st styles) text(s string) string {
	if layout.IsPending(s) {
		return st.pending.Render(st.clip(layout.StripPending(s)) + " (pending)")
	}
	return st.label.Render(st.clip(s))
}

func (st styles) quoted(s string) string {
	if layout.IsPending(s) {
		return st.text(s)
	}
	return st.label.Render(`"` + st.clip(s) + `"`)
}

// clip strips escape sequences and truncates to the label width.
func (st styles) clip(s string) string {
	s = strings.ReplaceAll(ansi.Strip(s), "\n", " ")
	return runewidth.Truncate(s, st.maxWidth, "…")
}
