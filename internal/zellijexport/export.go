// Package zellijexport converts stored layouts into zellij KDL layouts.
package zellijexport

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sblinch/kdl-go"

	"github.com/regenrek/panestore/internal/layout"
)

type paneNode struct {
	Name     string
	Command  string
	Args     []string
	Cwd      string
	Size     string
	Split    string
	Stacked  bool
	Children []*paneNode
}

type tabNode struct {
	Name string
	Root *paneNode
}

// Build renders forest as a zellij layout. Each window becomes a tab; a
// notebook directly under a window becomes one tab per page.
func Build(forest layout.Forest) (string, error) {
	if len(forest) == 0 {
		return "", fmt.Errorf("zellijexport: layout has no windows")
	}
	var tabs []tabNode
	for i, win := range forest {
		attrs, _ := win.Window()
		name := strings.TrimSpace(layout.StripPending(attrs.Title))
		if name == "" {
			name = fmt.Sprintf("window %d", i+1)
		}
		if len(win.Children) == 0 {
			tabs = append(tabs, tabNode{Name: name, Root: &paneNode{}})
			continue
		}
		child := win.Children[0]
		if child.Kind == layout.KindNotebook {
			tabs = append(tabs, notebookTabs(name, child)...)
			continue
		}
		tabs = append(tabs, tabNode{Name: name, Root: buildPane(child)})
	}

	var sb strings.Builder
	sb.WriteString("layout {\n")
	writeDefaultTabTemplate(&sb, 1)
	for _, tab := range tabs {
		writeTab(&sb, tab, 1)
	}
	sb.WriteString("}\n")
	out := sb.String()
	if _, err := kdl.Parse(bytes.NewReader([]byte(out))); err != nil {
		return "", fmt.Errorf("zellijexport: generated invalid kdl: %w", err)
	}
	return out, nil
}

func notebookTabs(window string, nb *layout.Node) []tabNode {
	attrs, _ := nb.Notebook()
	out := make([]tabNode, 0, len(nb.Children))
	for i, page := range nb.Children {
		name := fmt.Sprintf("%s %d", window, i+1)
		if i < len(attrs.Labels) && strings.TrimSpace(attrs.Labels[i]) != "" {
			name = strings.TrimSpace(attrs.Labels[i])
		}
		out = append(out, tabNode{Name: name, Root: buildPane(page)})
	}
	return out
}

func buildPane(n *layout.Node) *paneNode {
	switch n.Kind {
	case layout.KindTerminal:
		attrs, _ := n.Terminal()
		p := &paneNode{
			Name: strings.TrimSpace(layout.StripPending(attrs.Title)),
			Cwd:  strings.TrimSpace(attrs.Directory),
		}
		if argv, err := attrs.Argv(); err == nil && len(argv) > 0 {
			p.Command = argv[0]
			p.Args = argv[1:]
		}
		return p
	case layout.KindSplitH, layout.KindSplitV:
		attrs, _ := n.Split()
		p := &paneNode{Split: splitDirection(n.Kind)}
		sizes := splitSizes(attrs.Ratio, len(n.Children))
		for i, c := range n.Children {
			child := buildPane(c)
			child.Size = sizes[i]
			p.Children = append(p.Children, child)
		}
		return p
	case layout.KindNotebook:
		p := &paneNode{Stacked: true}
		for _, c := range n.Children {
			p.Children = append(p.Children, buildPane(c))
		}
		return p
	default:
		return &paneNode{}
	}
}

// splitDirection maps a split kind to zellij's naming: SplitH places
// children side by side, which zellij calls a vertical split.
func splitDirection(kind layout.Kind) string {
	if kind == layout.KindSplitH {
		return "vertical"
	}
	return "horizontal"
}

func splitSizes(ratio float64, count int) []string {
	sizes := make([]string, count)
	if count != 2 || ratio <= 0 || ratio >= 1 {
		return sizes
	}
	first := int(math.Round(ratio * 100))
	if first <= 0 || first >= 100 {
		return sizes
	}
	sizes[0] = strconv.Itoa(first) + "%"
	sizes[1] = strconv.Itoa(100-first) + "%"
	return sizes
}

func writeDefaultTabTemplate(sb *strings.Builder, indent int) {
	writeIndent(sb, indent)
	sb.WriteString("default_tab_template {\n")
	writeIndent(sb, indent+1)
	sb.WriteString("pane size=1 borderless=true {\n")
	writeIndent(sb, indent+2)
	sb.WriteString("plugin location=\"zellij:tab-bar\"\n")
	writeIndent(sb, indent+1)
	sb.WriteString("}\n")
	writeIndent(sb, indent+1)
	sb.WriteString("children\n")
	writeIndent(sb, indent)
	sb.WriteString("}\n")
}

func writeTab(sb *strings.Builder, tab tabNode, indent int) {
	writeIndent(sb, indent)
	sb.WriteString("tab name=")
	sb.WriteString(strconv.Quote(tab.Name))
	sb.WriteString(" {\n")
	writePane(sb, tab.Root, indent+1)
	writeIndent(sb, indent)
	sb.WriteString("}\n")
}

func writePane(sb *strings.Builder, node *paneNode, indent int) {
	writeIndent(sb, indent)
	sb.WriteString("pane")
	if node.Size != "" {
		sb.WriteString(" size=")
		sb.WriteString(strconv.Quote(node.Size))
	}
	if node.Split != "" {
		sb.WriteString(" split_direction=")
		sb.WriteString(strconv.Quote(node.Split))
	}
	if node.Stacked {
		sb.WriteString(" stacked=true")
	}
	if node.Name != "" {
		sb.WriteString(" name=")
		sb.WriteString(strconv.Quote(node.Name))
	}
	if node.Command != "" {
		sb.WriteString(" command=")
		sb.WriteString(strconv.Quote(node.Command))
	}
	if node.Cwd != "" {
		sb.WriteString(" cwd=")
		sb.WriteString(strconv.Quote(node.Cwd))
	}
	hasChildren := len(node.Children) > 0
	hasArgs := len(node.Args) > 0
	if !hasChildren && !hasArgs {
		sb.WriteString("\n")
		return
	}
	sb.WriteString(" {\n")
	if hasArgs {
		writeIndent(sb, indent+1)
		sb.WriteString("args")
		for _, arg := range node.Args {
			sb.WriteString(" ")
			sb.WriteString(strconv.Quote(arg))
		}
		sb.WriteString("\n")
	}
	for _, child := range node.Children {
		writePane(sb, child, indent+1)
	}
	writeIndent(sb, indent)
	sb.WriteString("}\n")
}

func writeIndent(sb *strings.Builder, indent int) {
	for range indent {
		sb.WriteString("    ")
	}
}
