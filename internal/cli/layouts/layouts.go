// Package layouts implements the layouts commands.
package layouts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/regenrek/panestore/internal/cli/output"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/livetree"
	"github.com/regenrek/panestore/internal/render"
	"github.com/regenrek/panestore/internal/store"
	"github.com/regenrek/panestore/internal/userpath"
	"github.com/regenrek/panestore/internal/zellijexport"
)

// Register registers layout handlers.
func Register(reg *root.Registry) {
	reg.Register("layouts.list", runList)
	reg.Register("layouts.show", runShow)
	reg.Register("layouts.check", runCheck)
	reg.Register("layouts.rm", runRemove)
	reg.Register("layouts.rename", runRename)
	reg.Register("layouts.export", runExport)
}

func nameArg(ctx root.CommandContext) string {
	return ctx.Arg("name")
}

func summarize(st *store.Store, name string) output.LayoutSummary {
	sum := output.LayoutSummary{Name: name, Active: name == st.ActiveLayout()}
	flat, err := st.Layout(name)
	if err != nil {
		return sum
	}
	sum.Records = len(flat)
	if forest, err := layout.Reconcile(flat); err == nil {
		sum.Windows = len(forest)
		sum.Terminals = len(forest.Terminals())
	}
	return sum
}

func runList(ctx root.CommandContext) error {
	st := ctx.Store
	names := st.Layouts()
	items := make([]output.LayoutSummary, 0, len(names))
	for _, name := range names {
		items = append(items, summarize(st, name))
	}
	if ctx.JSON {
		return ctx.Emit(output.LayoutList{Layouts: items, Total: len(items)})
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tWINDOWS\tTERMINALS\tRECORDS"); err != nil {
		return err
	}
	for _, l := range items {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", l.Name, l.Windows, l.Terminals, l.Records); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(ctx.Out, "Use '%s layouts show <name>' to draw a layout\n", ctx.Deps.AppName)
	return err
}

func runShow(ctx root.CommandContext) error {
	name := nameArg(ctx)
	flat, err := ctx.Store.Layout(name)
	if err != nil {
		return err
	}
	forest, err := layout.Reconcile(flat)
	if err != nil {
		return err
	}
	out := render.Forest(name, forest, render.Options{Profile: render.ProfileFor(ctx.NoColor)})
	_, err = fmt.Fprintln(ctx.Out, out)
	return err
}

// runCheck rebuilds the layout on an in-memory tree and flattens it again,
// the same round trip a restore followed by a save performs.
func runCheck(ctx root.CommandContext) error {
	name := nameArg(ctx)
	flat, err := ctx.Store.Layout(name)
	if err != nil {
		return err
	}
	report := Check(ctx.Context, name, flat, ctx.Deps.Logger)
	if ctx.JSON {
		return ctx.Emit(report)
	}
	if report.OK {
		_, err := fmt.Fprintf(ctx.Out, "%s: ok (%d windows, %d terminals)\n", name, report.Windows, report.Terminals)
		return err
	}
	for _, problem := range report.Problems {
		if _, err := fmt.Fprintf(ctx.ErrOut, "%s: %s\n", name, problem); err != nil {
			return err
		}
	}
	return fmt.Errorf("layout %s failed the check", name)
}

func runRemove(ctx root.CommandContext) error {
	name := nameArg(ctx)
	if !ctx.Store.HasLayout(name) {
		return fmt.Errorf("%w: %s", store.ErrLayoutNotFound, name)
	}
	ctx.Store.DeleteLayout(name)
	msg := "Removed layout %s\n"
	if name == layout.DefaultName {
		msg = "Reset layout %s\n"
	}
	_, err := fmt.Fprintf(ctx.Out, msg, name)
	return err
}

func runRename(ctx root.CommandContext) error {
	from := ctx.Arg("from")
	to := ctx.Arg("to")
	if err := ctx.Store.RenameLayout(from, to); err != nil {
		return err
	}
	_, err := fmt.Fprintf(ctx.Out, "Renamed layout %s to %s\n", from, to)
	return err
}

func runExport(ctx root.CommandContext) error {
	name := nameArg(ctx)
	format := strings.TrimSpace(ctx.Cmd.String("format"))
	if format == "" {
		format = "yaml"
	}
	flat, err := ctx.Store.Layout(name)
	if err != nil {
		return err
	}
	content, err := Export(name, flat, format)
	if err != nil {
		return err
	}
	result := output.LayoutExport{Name: name, Format: format, Content: content}
	if ctx.Cmd.Bool("write") {
		if format != "kdl" {
			return fmt.Errorf("--write needs --format kdl")
		}
		dir := userpath.ExpandUser(strings.TrimSpace(ctx.Cmd.String("dir")))
		path, err := zellijexport.WriteLayoutFile(dir, name, content)
		if err != nil {
			return err
		}
		result.Path = path
	}
	if ctx.JSON {
		return ctx.Emit(result)
	}
	if result.Path != "" {
		_, err := fmt.Fprintf(ctx.Out, "Wrote %s\n", result.Path)
		return err
	}
	_, err = fmt.Fprint(ctx.Out, content)
	return err
}

// Export encodes one layout as yaml, toml or a zellij kdl layout.
func Export(name string, flat layout.Flat, format string) (string, error) {
	switch format {
	case "kdl":
		forest, err := layout.Reconcile(flat)
		if err != nil {
			return "", err
		}
		return zellijexport.Build(forest)
	case "yaml", "toml":
		encoded, err := layout.EncodeFlat(flat)
		if err != nil {
			return "", err
		}
		doc := map[string]any{name: encoded}
		if format == "toml" {
			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
				return "", fmt.Errorf("encode toml: %w", err)
			}
			return buf.String(), nil
		}
		data, err := yaml.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// Check reconciles flat, realizes it on a fresh in-memory tree and flattens
// the result, reporting anything lost on the way.
func Check(ctx context.Context, name string, flat layout.Flat, logger *slog.Logger) output.LayoutCheck {
	if logger == nil {
		logger = slog.Default()
	}
	report := output.LayoutCheck{Name: name}
	forest, err := layout.Reconcile(flat)
	var corrupt *layout.CorruptError
	switch {
	case errors.As(err, &corrupt):
		for _, id := range corrupt.Unresolved {
			report.Unresolved = append(report.Unresolved, string(id))
		}
		report.Passes = corrupt.Passes
		report.Problems = append(report.Problems, fmt.Sprintf("%d records never attach to a window: %s",
			len(corrupt.Unresolved), strings.Join(report.Unresolved, ", ")))
		return report
	case err != nil:
		report.Problems = append(report.Problems, err.Error())
		return report
	}
	report.Windows = len(forest)
	report.Terminals = len(forest.Terminals())
	if report.Windows == 0 {
		report.Problems = append(report.Problems, "layout has no windows")
		return report
	}

	tree := livetree.New(logger)
	if err := tree.Realize(ctx, forest); err != nil {
		report.Problems = append(report.Problems, "rebuild: "+err.Error())
		return report
	}
	again, err := layout.Flatten(tree.Windows(), nil)
	if err != nil {
		report.Problems = append(report.Problems, "flatten: "+err.Error())
		return report
	}
	roundTrip, err := layout.Reconcile(again)
	if err != nil {
		report.Problems = append(report.Problems, "reconcile after flatten: "+err.Error())
		return report
	}
	if len(roundTrip) != report.Windows || len(roundTrip.Terminals()) != report.Terminals {
		report.Problems = append(report.Problems, fmt.Sprintf("round trip changed shape: %d windows, %d terminals",
			len(roundTrip), len(roundTrip.Terminals())))
		return report
	}
	logger.Debug("layout check passed", slog.String("layout", name), slog.Int("records", len(again)))
	report.OK = true
	return report
}
