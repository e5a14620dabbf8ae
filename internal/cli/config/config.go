// Package config implements the config get, set and keys commands.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"

	"github.com/regenrek/panestore/internal/cli/output"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/store"
	"github.com/regenrek/panestore/internal/value"
)

const keybindingPrefix = store.KeyKeybindings + "."

// Register registers config handlers.
func Register(reg *root.Registry) {
	reg.Register("config.get", runGet)
	reg.Register("config.set", runSet)
	reg.Register("config.keys", runKeys)
}

func lookupOptions(ctx root.CommandContext) []store.LookupOption {
	var opts []store.LookupOption
	if name := strings.TrimSpace(ctx.Cmd.String("in")); name != "" {
		opts = append(opts, store.WithProfile(name))
	}
	if name := strings.TrimSpace(ctx.Cmd.String("plugin")); name != "" {
		opts = append(opts, store.WithPlugin(name))
	}
	return opts
}

func runGet(ctx root.CommandContext) error {
	st := ctx.Store
	key := ctx.Arg("key")
	v, err := get(st, key, lookupOptions(ctx))
	if err != nil {
		return withSuggestion(err, key, knownKeys(st))
	}
	if ctx.JSON {
		return ctx.Emit(keyValue(ctx, key, v))
	}
	_, err = fmt.Fprintln(ctx.Out, v.String())
	return err
}

func get(st *store.Store, key string, opts []store.LookupOption) (value.Value, error) {
	if action, ok := strings.CutPrefix(key, keybindingPrefix); ok {
		table, err := st.Get(store.KeyKeybindings)
		if err != nil {
			return value.Value{}, err
		}
		binding, ok := table.Table()[action]
		if !ok {
			return value.Value{}, fmt.Errorf("%w: %s", store.ErrKeyNotFound, key)
		}
		return value.String(binding), nil
	}
	return st.Get(key, opts...)
}

func runSet(ctx root.CommandContext) error {
	st := ctx.Store
	key := ctx.Arg("key")
	raw := ctx.Cmd.StringArg("value")
	opts := lookupOptions(ctx)

	if action, ok := strings.CutPrefix(key, keybindingPrefix); ok {
		if err := setBinding(st, action, raw); err != nil {
			return withSuggestion(err, key, knownKeys(st))
		}
	} else {
		v, err := parseValue(st, key, raw, ctx.Cmd.String("type"), ctx.Cmd.String("plugin") != "")
		if err != nil {
			return err
		}
		if err := st.Set(key, v, opts...); err != nil {
			return withSuggestion(err, key, knownKeys(st))
		}
	}
	v, err := get(st, key, opts)
	if err != nil {
		return err
	}
	if ctx.JSON {
		return ctx.Emit(keyValue(ctx, key, v))
	}
	_, err = fmt.Fprintf(ctx.Out, "%s = %s\n", key, v.String())
	return err
}

// parseValue converts CLI text using the key's template kind. Plugin keys
// have no template: --type picks the kind, otherwise it is guessed.
func parseValue(st *store.Store, key, raw, kindName string, plugin bool) (value.Value, error) {
	kind := st.KindOf(key)
	if kind == value.KindInvalid && plugin {
		if kindName == "" {
			return value.Guess(raw), nil
		}
		kind = kindFromName(kindName)
	}
	if kind == value.KindInvalid {
		if v, err := st.Get(key); err == nil {
			kind = v.Kind()
		} else {
			return value.Value{}, withSuggestion(fmt.Errorf("%w: %s", store.ErrUnknownKey, key), key, knownKeys(st))
		}
	}
	v, err := value.ParseAs(kind, raw)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", store.ErrInvalidValue, err)
	}
	return v, nil
}

func kindFromName(name string) value.Kind {
	for _, kind := range []value.Kind{value.KindBool, value.KindInt, value.KindFloat, value.KindString, value.KindList} {
		if kind.String() == name {
			return kind
		}
	}
	return value.KindInvalid
}

func setBinding(st *store.Store, action, binding string) error {
	table, err := st.Get(store.KeyKeybindings)
	if err != nil {
		return err
	}
	bindings := table.Table()
	defaults := st.Templates().Keybindings
	if _, ok := defaults[action]; !ok {
		if _, ok := bindings[action]; !ok {
			return fmt.Errorf("%w: %s%s", store.ErrUnknownKey, keybindingPrefix, action)
		}
	}
	bindings[action] = binding
	return st.Set(store.KeyKeybindings, value.Table(bindings))
}

func keyValue(ctx root.CommandContext, key string, v value.Value) output.KeyValue {
	return output.KeyValue{
		Key:     key,
		Kind:    v.Kind().String(),
		Value:   v.Any(),
		Profile: strings.TrimSpace(ctx.Cmd.String("in")),
		Plugin:  strings.TrimSpace(ctx.Cmd.String("plugin")),
	}
}

func runKeys(ctx root.CommandContext) error {
	keys := ctx.Store.Keys()
	if scope := strings.TrimSpace(ctx.Cmd.String("scope")); scope != "" {
		keys = slices.DeleteFunc(keys, func(k store.KeyInfo) bool { return string(k.Scope) != scope })
	}
	if filter := ctx.Arg("filter"); filter != "" {
		keys = rankKeys(keys, filter)
	}
	if ctx.JSON {
		items := make([]output.KeySummary, 0, len(keys))
		for _, k := range keys {
			items = append(items, output.KeySummary{Name: k.Name, Scope: string(k.Scope), Kind: k.Kind.String(), Default: k.Default.Any()})
		}
		return ctx.Emit(output.KeyList{Keys: items, Total: len(items)})
	}
	if len(keys) == 0 {
		_, err := fmt.Fprintln(ctx.Out, "No matching keys.")
		return err
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "KEY\tSCOPE\tTYPE\tDEFAULT"); err != nil {
		return err
	}
	for _, k := range keys {
		def := k.Default.String()
		if k.Scope == store.ScopeKeybindings {
			def = fmt.Sprintf("%d bindings", len(k.Default.Table()))
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k.Name, k.Scope, k.Kind, def); err != nil {
			return err
		}
	}
	return w.Flush()
}

// rankKeys keeps the keys matching filter, best match first.
func rankKeys(keys []store.KeyInfo, filter string) []store.KeyInfo {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	matches := fuzzy.Find(filter, names)
	out := make([]store.KeyInfo, 0, len(matches))
	for _, m := range matches {
		out = append(out, keys[m.Index])
	}
	return out
}

func knownKeys(st *store.Store) []string {
	var names []string
	for _, k := range st.Keys() {
		names = append(names, k.Name)
	}
	for action := range st.Templates().Keybindings {
		names = append(names, keybindingPrefix+action)
	}
	slices.Sort(names)
	return names
}

const maxSuggestions = 3

// withSuggestion appends close key names to unknown key errors.
func withSuggestion(err error, key string, known []string) error {
	if !errors.Is(err, store.ErrUnknownKey) && !errors.Is(err, store.ErrKeyNotFound) {
		return err
	}
	hints := Suggest(key, known)
	if len(hints) == 0 {
		return err
	}
	return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(hints, ", "))
}

// Suggest returns up to three known names that fuzzily match key.
func Suggest(key string, known []string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	matches := fuzzy.Find(key, known)
	if len(matches) == 0 {
		// Typos rarely keep every character in order; retry on the
		// longest underscore separated part.
		parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '.' })
		slices.SortFunc(parts, func(a, b string) int { return len(b) - len(a) })
		if len(parts) > 0 && parts[0] != key {
			matches = fuzzy.Find(parts[0], known)
		}
	}
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
