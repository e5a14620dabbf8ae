// Package profiles implements the profiles commands.
package profiles

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/regenrek/panestore/internal/cli/output"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/store"
)

// Register registers profile handlers.
func Register(reg *root.Registry) {
	reg.Register("profiles.list", runList)
	reg.Register("profiles.add", runAdd)
	reg.Register("profiles.rm", runRemove)
	reg.Register("profiles.rename", runRename)
}

func runList(ctx root.CommandContext) error {
	st := ctx.Store
	active := st.ActiveProfile()
	effective := st.EffectiveProfile()
	names := st.Profiles()
	if ctx.JSON {
		items := make([]output.ProfileSummary, 0, len(names))
		for _, name := range names {
			items = append(items, output.ProfileSummary{Name: name, Active: name == active, Effective: name == effective})
		}
		return ctx.Emit(output.ProfileList{Profiles: items, Override: st.ProfileOverride(), Total: len(items)})
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tSTATUS"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, status(name, active, effective)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func status(name, active, effective string) string {
	var parts []string
	if name == active {
		parts = append(parts, "active")
	}
	if name == effective && name != active {
		parts = append(parts, "override")
	}
	return strings.Join(parts, ",")
}

func runAdd(ctx root.CommandContext) error {
	name := ctx.Arg("name")
	if !ctx.Store.AddProfile(name) {
		return fmt.Errorf("%w: %s", store.ErrProfileExists, name)
	}
	_, err := fmt.Fprintf(ctx.Out, "Added profile %s\n", name)
	return err
}

func runRemove(ctx root.CommandContext) error {
	name := ctx.Arg("name")
	if _, err := ctx.Store.Profile(name); err != nil {
		return err
	}
	ctx.Store.DeleteProfile(name)
	msg := "Removed profile %s\n"
	if name == "default" {
		msg = "Reset profile %s to defaults\n"
	}
	_, err := fmt.Fprintf(ctx.Out, msg, name)
	return err
}

func runRename(ctx root.CommandContext) error {
	from := ctx.Arg("from")
	to := ctx.Arg("to")
	if err := ctx.Store.RenameProfile(from, to); err != nil {
		return err
	}
	_, err := fmt.Fprintf(ctx.Out, "Renamed profile %s to %s\n", from, to)
	return err
}
