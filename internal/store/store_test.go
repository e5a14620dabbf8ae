package store

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/value"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	return New(Options{Path: path, Logger: testLogger()})
}

func mustGet(t *testing.T, s *Store, key string, opts ...LookupOption) value.Value {
	t.Helper()
	v, err := s.Get(key, opts...)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return v
}

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestGetPrecedence(t *testing.T) {
	tmpl := DefaultTemplates()
	tmpl.Global["shared"] = value.String("global")
	tmpl.Profile["shared"] = value.String("profile")
	s := New(Options{Templates: &tmpl, Logger: testLogger()})

	if got := mustGet(t, s, "shared"); !got.Equal(value.String("global")) {
		t.Fatalf("shared = %v, want global scope", got)
	}
	if got := mustGet(t, s, "font"); !got.Equal(value.String("Mono 10")) {
		t.Fatalf("font = %v", got)
	}
	bindings := mustGet(t, s, KeyKeybindings)
	if bindings.Kind() != value.KindTable || bindings.Table()["full_screen"] != "F11" {
		t.Fatalf("keybindings = %v", bindings)
	}
	if err := s.Set("url_regex", value.String("https?://"), WithPlugin("urls")); err != nil {
		t.Fatalf("Set plugin: %v", err)
	}
	if got := mustGet(t, s, "url_regex", WithPlugin("urls")); got.Str() != "https?://" {
		t.Fatalf("plugin value = %v", got)
	}
	if _, err := s.Get("url_regex"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("plugin key without plugin: err = %v", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("missing key: err = %v", err)
	}
	got := mustGet(t, s, "nope", WithDefault(value.Bool(false)))
	if got.Kind() != value.KindBool || got.Bool() {
		t.Fatalf("falsy default not honored: %v", got)
	}
}

func TestMissingProfileFallsBackToDefault(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if got := mustGet(t, s, "font", WithProfile("ghost")); got.Str() != "Mono 10" {
		t.Fatalf("font = %v", got)
	}
	if err := s.Set("font", value.String("x"), WithProfile("ghost")); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("Set on missing profile: err = %v", err)
	}
}

func TestSetRejectsUnknownAndMistyped(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.Set("no_such_key", value.Bool(true)); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("unknown key: err = %v", err)
	}
	if err := s.Set("borderless", value.String("yes")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("mistyped: err = %v", err)
	}
	if s.Dirty() {
		t.Fatalf("failed writes must not dirty the store")
	}
	if err := s.Set("cell_height", value.Int(2)); err != nil {
		t.Fatalf("int into float: %v", err)
	}
	if got := mustGet(t, s, "cell_height"); got.Kind() != value.KindFloat || got.Float() != 2 {
		t.Fatalf("cell_height = %#v", got)
	}
	if !s.Dirty() {
		t.Fatalf("expected dirty after Set")
	}
}

func TestPersistWritesOnlyWhenDirty(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.Set("focus", value.String("mouse")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Persist(false); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("expected file: %v", err)
	}
	if err := os.Remove(s.Path()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Persist(false); err != nil {
		t.Fatalf("second Persist: %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("clean store rewrote the file: %v", err)
	}
	if err := s.Persist(true); err != nil {
		t.Fatalf("forced Persist: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("forced persist did not write: %v", err)
	}
}

func TestPersistKeepsOnlyDifferences(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.Set("borderless", value.Bool(true)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("allow_bold", value.Bool(false)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("focus", value.String("click")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Persist(false); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	doc := readYAML(t, s.Path())
	if doc["version"] != SchemaVersion {
		t.Fatalf("version = %v", doc["version"])
	}
	global, _ := doc["global_config"].(map[string]any)
	if !reflect.DeepEqual(global, map[string]any{"borderless": true}) {
		t.Fatalf("global_config = %v", global)
	}
	profiles, _ := doc["profiles"].(map[string]any)
	def, _ := profiles["default"].(map[string]any)
	if !reflect.DeepEqual(def, map[string]any{"allow_bold": false}) {
		t.Fatalf("profiles.default = %v", def)
	}
	if _, ok := doc["keybindings"]; ok {
		t.Fatalf("unchanged keybindings persisted: %v", doc["keybindings"])
	}
}

func TestPersistFailureLeavesDirty(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(Options{Path: filepath.Join(blocker, "config.yml"), Logger: testLogger()})
	s.MarkDirty()
	if err := s.Persist(false); !errors.Is(err, ErrPersist) {
		t.Fatalf("Persist err = %v, want ErrPersist", err)
	}
	if !s.Dirty() {
		t.Fatalf("failed persist cleared dirty")
	}
}

func TestSuppressWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	s := New(Options{Path: path, NoSave: true, Logger: testLogger()})
	s.MarkDirty()
	if err := s.Persist(true); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("suppressed store wrote a file: %v", err)
	}
	s.SetSuppressWrite(false)
	if err := s.Persist(false); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file after re-enabling writes: %v", err)
	}
}

func TestDeleteActiveProfileFallsBack(t *testing.T) {
	s := newTestStore(t, "config.yml")
	s.AddProfile("work")
	s.SetActiveProfile("work", false)
	if err := s.Set("font", value.String("Work 12")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.DeleteProfile("work")
	if got := s.ActiveProfile(); got != layout.DefaultName {
		t.Fatalf("active = %q", got)
	}
	if got := mustGet(t, s, "font"); got.Str() != "Mono 10" {
		t.Fatalf("font = %v", got)
	}
}

func TestDefaultProfileIsRecreated(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.Set("font", value.String("Changed")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.DeleteProfile(layout.DefaultName)
	p, err := s.Profile(layout.DefaultName)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p["font"].Str() != "Mono 10" {
		t.Fatalf("recreated font = %v", p["font"])
	}

	if err := s.Set("font", value.String("Kept")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.RenameProfile(layout.DefaultName, "kept"); err != nil {
		t.Fatalf("RenameProfile: %v", err)
	}
	if got := s.Profiles(); !slices.Equal(got, []string{"default", "kept"}) {
		t.Fatalf("profiles = %v", got)
	}
	if got := mustGet(t, s, "font", WithProfile("kept")); got.Str() != "Kept" {
		t.Fatalf("renamed font = %v", got)
	}
	if err := s.RenameProfile("kept", layout.DefaultName); !errors.Is(err, ErrProfileExists) {
		t.Fatalf("rename onto existing: err = %v", err)
	}
	if err := s.RenameProfile("ghost", "x"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("rename missing: err = %v", err)
	}
}

func TestProfileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	s := New(Options{Path: path, Profile: "work", Logger: testLogger()})
	s.SetActiveProfile(layout.DefaultName, false)
	if got := s.ActiveProfile(); got != "work" {
		t.Fatalf("active = %q, want override", got)
	}
	if err := s.Set("font", value.String("Work 12")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.SetActiveProfile(layout.DefaultName, true)
	if got := s.EffectiveProfile(); got != layout.DefaultName {
		t.Fatalf("forced default resolved to %q", got)
	}
	if got := mustGet(t, s, "font"); got.Str() != "Mono 10" {
		t.Fatalf("font = %v", got)
	}
	if got := mustGet(t, s, "font", WithProfile(layout.DefaultName)); got.Str() != "Work 12" {
		t.Fatalf("explicit default lookup = %v, want override", got)
	}
	s.DeleteProfile("work")
	if got := s.ProfileOverride(); got != "" {
		t.Fatalf("override = %q after delete", got)
	}
}

func TestLayoutLifecycle(t *testing.T) {
	s := newTestStore(t, "config.yml")
	work := layout.Flat{
		"w": {Kind: layout.KindWindow, Attrs: layout.WindowAttrs{Title: "work"}},
		"t": {Kind: layout.KindTerminal, Parent: "w", Attrs: layout.TerminalAttrs{Directory: "/srv"}},
	}
	if !s.AddLayout("work", work) {
		t.Fatalf("AddLayout returned false")
	}
	if s.AddLayout("work", work) {
		t.Fatalf("duplicate AddLayout returned true")
	}
	if err := s.RenameLayout("work", layout.DefaultName); !errors.Is(err, ErrLayoutExists) {
		t.Fatalf("rename onto default: err = %v", err)
	}
	if err := s.SetActiveLayout("work"); err != nil {
		t.Fatalf("SetActiveLayout: %v", err)
	}
	if err := s.RenameLayout("work", "dev"); err != nil {
		t.Fatalf("RenameLayout: %v", err)
	}
	if got := s.ActiveLayout(); got != "dev" {
		t.Fatalf("active layout = %q", got)
	}
	if err := s.SetRecordAttr("dev", "t", "command", "htop"); err != nil {
		t.Fatalf("SetRecordAttr: %v", err)
	}
	rec, err := s.LayoutRecord("dev", "t")
	if err != nil {
		t.Fatalf("LayoutRecord: %v", err)
	}
	if rec.Attrs.(layout.TerminalAttrs).Command != "htop" {
		t.Fatalf("command not set: %+v", rec.Attrs)
	}
	if err := s.SetRecordAttr("dev", "missing", "command", "x"); !errors.Is(err, ErrLayoutKeyNotFound) {
		t.Fatalf("missing record: err = %v", err)
	}
	if _, err := s.Layout("work"); !errors.Is(err, ErrLayoutNotFound) {
		t.Fatalf("old name: err = %v", err)
	}
	if !s.DeleteLayout("dev") {
		t.Fatalf("DeleteLayout returned false")
	}
	if got := s.ActiveLayout(); got != layout.DefaultName {
		t.Fatalf("active after delete = %q", got)
	}
	if !s.DeleteLayout(layout.DefaultName) {
		t.Fatalf("delete default returned false")
	}
	def, err := s.Layout(layout.DefaultName)
	if err != nil {
		t.Fatalf("default missing after delete: %v", err)
	}
	if rec, ok := def[layout.NewTerminalID]; !ok || rec.Kind != layout.KindStub {
		t.Fatalf("default lost its stub: %v", def)
	}
}

func TestDefaultLayoutKeepsStub(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.SetRecordAttr(layout.DefaultName, layout.NewTerminalID, "profile", "work"); err != nil {
		t.Fatalf("SetRecordAttr: %v", err)
	}
	replacement := layout.Flat{"w": {Kind: layout.KindWindow, Attrs: layout.WindowAttrs{}}}
	if err := s.SetLayout(layout.DefaultName, replacement); err != nil {
		t.Fatalf("SetLayout: %v", err)
	}
	if got := s.DefaultTerminal().Profile; got != "work" {
		t.Fatalf("stub profile = %q, want carried over", got)
	}
}

func TestDefaultTerminalMergesActiveStub(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.SetRecordAttr(layout.DefaultName, layout.NewTerminalID, "directory", "/home"); err != nil {
		t.Fatalf("SetRecordAttr: %v", err)
	}
	dev := layout.Flat{
		"w":                  {Kind: layout.KindWindow, Attrs: layout.WindowAttrs{}},
		layout.NewTerminalID: {Kind: layout.KindStub, Attrs: layout.TerminalAttrs{Command: "zsh"}},
	}
	s.AddLayout("dev", dev)
	if err := s.SetActiveLayout("dev"); err != nil {
		t.Fatalf("SetActiveLayout: %v", err)
	}
	got := s.DefaultTerminal()
	if got.Directory != "/home" || got.Command != "zsh" {
		t.Fatalf("DefaultTerminal = %+v", got)
	}
}

func TestPluginTree(t *testing.T) {
	s := newTestStore(t, "config.yml")
	s.SetPluginTree("logger", value.Map{"path": value.String("/tmp/x")})
	tree := s.PluginTree("logger")
	tree["path"] = value.String("mutated")
	if got := s.PluginTree("logger")["path"].Str(); got != "/tmp/x" {
		t.Fatalf("PluginTree leaked a reference: %q", got)
	}
	s.Acknowledge()
	if s.DeletePluginTree("ghost") {
		t.Fatalf("deleting a missing tree reported true")
	}
	if !s.Dirty() {
		t.Fatalf("DeletePluginTree must dirty the store")
	}
	if !s.DeletePluginTree("logger") {
		t.Fatalf("DeletePluginTree returned false")
	}
	if got := s.Plugins(); len(got) != 0 {
		t.Fatalf("plugins = %v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, name)
			if err := s.Set("borderless", value.Bool(true)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set("cell_height", value.Float(1.5)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			s.AddProfile("work")
			if err := s.Set("scrollback_lines", value.Int(5000), WithProfile("work")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			s.SetPluginTree("urls", value.Map{"enabled": value.Bool(true), "patterns": value.List("a", "b")})
			work := layout.Flat{
				"w": {Kind: layout.KindWindow, Attrs: layout.WindowAttrs{Title: "dev", Size: &layout.Size{W: 800, H: 600}}},
				"t": {Kind: layout.KindTerminal, Parent: "w", Attrs: layout.TerminalAttrs{Profile: "work", Command: "htop -d 5"}},
			}
			s.AddLayout("work", work)
			if err := s.Persist(false); err != nil {
				t.Fatalf("Persist: %v", err)
			}

			loaded := New(Options{Path: s.Path(), Logger: testLogger()})
			if err := loaded.Load(); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := mustGet(t, loaded, "borderless"); !got.Bool() {
				t.Fatalf("borderless = %v", got)
			}
			if got := mustGet(t, loaded, "cell_height"); got.Float() != 1.5 {
				t.Fatalf("cell_height = %v", got)
			}
			if got := mustGet(t, loaded, "scrollback_lines", WithProfile("work")); got.Int() != 5000 {
				t.Fatalf("scrollback_lines = %v", got)
			}
			tree := loaded.PluginTree("urls")
			if !tree["enabled"].Bool() || !slices.Equal(tree["patterns"].List(), []string{"a", "b"}) {
				t.Fatalf("plugin tree = %v", tree)
			}
			got, err := loaded.Layout("work")
			if err != nil {
				t.Fatalf("Layout: %v", err)
			}
			if !reflect.DeepEqual(got, work) {
				t.Fatalf("layout = %#v, want %#v", got, work)
			}
			if loaded.Dirty() {
				t.Fatalf("freshly loaded store is dirty")
			}
		})
	}
}

func TestNewerSchemaIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "version: 2.1.0\nglobal_config:\n  focus: mouse\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(Options{Path: path, Logger: testLogger()})
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.ReadOnly() {
		t.Fatalf("expected read-only store")
	}
	if got := mustGet(t, s, "focus"); got.Str() != "mouse" {
		t.Fatalf("focus = %v", got)
	}
	if err := s.Set("borderless", value.Bool(true)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Persist(false); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Persist err = %v, want ErrReadOnly", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Fatalf("read-only file was rewritten:\n%s", data)
	}
}

func TestUnparseableFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("global_config: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(Options{Path: path, Logger: testLogger()})
	if err := s.Load(); err == nil {
		t.Fatalf("expected parse error")
	}
	if !s.ReadOnly() {
		t.Fatalf("expected read-only store")
	}
	if got := mustGet(t, s, "focus"); got.Str() != "click" {
		t.Fatalf("focus = %v", got)
	}
}

func TestLoadDropsUnknownGlobalKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "global_config:\n  made_up: 1\n  focus: mouse\nprofiles:\n  work:\n    custom_thing: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(Options{Path: path, Logger: testLogger()})
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Get("made_up"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("unknown global key kept: err = %v", err)
	}
	if got := mustGet(t, s, "custom_thing", WithProfile("work")); !got.Bool() {
		t.Fatalf("custom profile key = %v", got)
	}
}

func TestReloadSkipsOwnWritesAndDirtyState(t *testing.T) {
	s := newTestStore(t, "config.yml")
	if err := s.Set("focus", value.String("mouse")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Persist(false); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	changed, err := s.Reload()
	if err != nil || changed {
		t.Fatalf("Reload after own write = %v, %v", changed, err)
	}

	external := "global_config:\n  focus: sloppy\n  borderless: true\n"
	if err := os.WriteFile(s.Path(), []byte(external), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Set("hide_tabbar", value.Bool(true)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	changed, err = s.Reload()
	if err != nil || changed {
		t.Fatalf("Reload while dirty = %v, %v", changed, err)
	}

	s.Acknowledge()
	changed, err = s.Reload()
	if err != nil || !changed {
		t.Fatalf("Reload after external edit = %v, %v", changed, err)
	}
	if got := mustGet(t, s, "focus"); got.Str() != "sloppy" {
		t.Fatalf("focus = %v", got)
	}
}

func TestContextRoundTrip(t *testing.T) {
	s := newTestStore(t, "config.yml")
	ctx := WithContext(t.Context(), s)
	if FromContext(ctx) != s {
		t.Fatalf("FromContext did not return the attached store")
	}
	if FromContext(t.Context()) != nil {
		t.Fatalf("expected nil store on bare context")
	}
}
