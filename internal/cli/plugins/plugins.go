// Package plugins implements the plugins commands.
package plugins

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/regenrek/panestore/internal/cli/output"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/store"
	"github.com/regenrek/panestore/internal/value"
)

// Register registers plugin handlers.
func Register(reg *root.Registry) {
	reg.Register("plugins.list", runList)
	reg.Register("plugins.show", runShow)
	reg.Register("plugins.rm", runRemove)
}

func enabledPlugins(st *store.Store) []string {
	v, err := st.Get(store.KeyEnabledPlugins)
	if err != nil {
		return nil
	}
	return v.List()
}

// names lists plugins with stored settings plus enabled plugins that have
// none yet.
func names(st *store.Store) []string {
	out := st.Plugins()
	for _, name := range enabledPlugins(st) {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func settings(st *store.Store, name string, enabled []string) output.PluginSettings {
	return output.PluginSettings{
		Name:     name,
		Enabled:  slices.Contains(enabled, name),
		Settings: st.PluginTree(name).ToMap(),
	}
}

func runList(ctx root.CommandContext) error {
	st := ctx.Store
	enabled := enabledPlugins(st)
	all := names(st)
	if ctx.JSON {
		items := make([]output.PluginSettings, 0, len(all))
		for _, name := range all {
			items = append(items, settings(st, name, enabled))
		}
		return ctx.Emit(output.PluginList{Plugins: items, Total: len(items)})
	}
	if len(all) == 0 {
		_, err := fmt.Fprintln(ctx.Out, "No plugins.")
		return err
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tENABLED\tSETTINGS"); err != nil {
		return err
	}
	for _, name := range all {
		on := "no"
		if slices.Contains(enabled, name) {
			on = "yes"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", name, on, len(st.PluginTree(name))); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runShow(ctx root.CommandContext) error {
	st := ctx.Store
	name := ctx.Arg("name")
	tree := st.PluginTree(name)
	if ctx.JSON {
		return ctx.Emit(settings(st, name, enabledPlugins(st)))
	}
	if len(tree) == 0 {
		_, err := fmt.Fprintf(ctx.Out, "Plugin %s has no settings.\n", name)
		return err
	}
	return writeTree(ctx, tree)
}

func writeTree(ctx root.CommandContext, tree value.Map) error {
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	for _, key := range tree.Keys() {
		v := tree[key]
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", key, v.Kind(), v.String()); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runRemove(ctx root.CommandContext) error {
	name := ctx.Arg("name")
	if !ctx.Store.DeletePluginTree(name) {
		return fmt.Errorf("plugin %s has no settings", name)
	}
	_, err := fmt.Fprintf(ctx.Out, "Removed settings for plugin %s\n", name)
	return err
}
