package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/livetree"
	"github.com/regenrek/panestore/internal/store"
	"github.com/regenrek/panestore/internal/value"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	store *store.Store
	tree  *livetree.Tree
	coord *Coordinator
}

func newHarness(t *testing.T) harness {
	t.Helper()
	st := store.New(store.Options{Path: filepath.Join(t.TempDir(), "config.yml"), Logger: testLogger()})
	tree := livetree.New(testLogger())
	coord, err := New(Options{Store: st, Toolkit: tree, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return harness{store: st, tree: tree, coord: coord}
}

func splitLayout() layout.Flat {
	return layout.Flat{
		"w":  {Kind: layout.KindWindow, Attrs: layout.WindowAttrs{Title: "dev"}},
		"s":  {Kind: layout.KindSplitH, Parent: "w", Attrs: layout.SplitAttrs{}},
		"t1": {Kind: layout.KindTerminal, Parent: "s", Attrs: layout.TerminalAttrs{Directory: "/src"}},
		"t2": {Kind: layout.KindTerminal, Parent: "s", Attrs: layout.TerminalAttrs{Command: "htop"}},
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{Toolkit: livetree.New(nil)}); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := New(Options{Store: store.New(store.Options{})}); err == nil {
		t.Fatalf("expected error without toolkit")
	}
}

func TestRestoreRealizesStoredLayout(t *testing.T) {
	h := newHarness(t)
	h.store.AddLayout("dev", splitLayout())
	res, err := h.coord.Restore(context.Background(), "dev")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.Fallback || res.Windows != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := len(h.tree.Terminals()); got != 2 {
		t.Fatalf("terminals = %d", got)
	}
	if h.store.ActiveLayout() != "dev" || h.coord.LayoutName() != "dev" {
		t.Fatalf("active layout = %q, coordinator = %q", h.store.ActiveLayout(), h.coord.LayoutName())
	}
}

func TestRestoreFallsBackOnMissingLayout(t *testing.T) {
	h := newHarness(t)
	res, err := h.coord.Restore(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !res.Fallback || res.Windows != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := len(h.tree.Windows()); got != 1 {
		t.Fatalf("windows = %d", got)
	}
}

func TestRestoreFallsBackOnCorruptLayout(t *testing.T) {
	h := newHarness(t)
	h.store.AddLayout("broken", layout.Flat{
		"w":  {Kind: layout.KindWindow, Attrs: layout.WindowAttrs{}},
		"t1": {Kind: layout.KindTerminal, Parent: "w", Attrs: layout.TerminalAttrs{}},
		"t2": {Kind: layout.KindTerminal, Parent: "gone", Attrs: layout.TerminalAttrs{}},
	})
	res, err := h.coord.Restore(context.Background(), "broken")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !res.Fallback {
		t.Fatalf("expected fallback")
	}
	if !slices.Equal(res.Unresolved, []layout.NodeID{"t2"}) {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
	if got := len(h.tree.Terminals()); got != 1 {
		t.Fatalf("terminals = %d, want the single default terminal", got)
	}
}

func TestRestoreSuppressesPersistence(t *testing.T) {
	h := newHarness(t)
	h.store.AddLayout("dev", splitLayout())
	if _, err := h.coord.Restore(context.Background(), "dev"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	h.coord.LayoutChanged()
	if h.coord.Changed() {
		t.Fatalf("LayoutChanged recorded during restore")
	}
	if err := h.store.Persist(true); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(h.store.Path()); !os.IsNotExist(err) {
		t.Fatalf("store wrote during restore: %v", err)
	}
	h.coord.RestoreDone()
	if h.store.SuppressWrite() {
		t.Fatalf("RestoreDone did not re-enable writes")
	}
	if err := h.coord.SaveState(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if _, err := os.Stat(h.store.Path()); err != nil {
		t.Fatalf("expected file after restore: %v", err)
	}
}

func TestSaveStateDescribesChangedLayout(t *testing.T) {
	h := newHarness(t)
	if err := h.tree.NewDefaultWindow(context.Background(), layout.TerminalAttrs{Directory: "/home"}); err != nil {
		t.Fatalf("NewDefaultWindow: %v", err)
	}
	first := h.tree.Terminals()[0]
	if _, err := h.tree.Split(first.Identity(), layout.KindSplitV, layout.TerminalAttrs{Directory: "/tmp"}); err != nil {
		t.Fatalf("Split: %v", err)
	}
	h.coord.LayoutChanged()
	if err := h.coord.SaveState(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if h.coord.Changed() || h.store.Dirty() {
		t.Fatalf("changed=%v dirty=%v after SaveState", h.coord.Changed(), h.store.Dirty())
	}

	reloaded := store.New(store.Options{Path: h.store.Path(), Logger: testLogger()})
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	flat, err := reloaded.Layout(layout.DefaultName)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if _, ok := flat[layout.NewTerminalID]; !ok {
		t.Fatalf("saved default layout lost its stub")
	}
	forest, err := layout.Reconcile(flat)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(forest) != 1 || len(forest.Terminals()) != 2 {
		t.Fatalf("saved layout shape: %d windows, %d terminals", len(forest), len(forest.Terminals()))
	}
	split := forest[0].Children[0]
	if sa, ok := split.Split(); !ok || sa.Caption != layout.PlaceholderCaption {
		t.Fatalf("split attrs = %+v", split.Attrs)
	}
}

func TestCommitKeepsLayoutDuringTeardown(t *testing.T) {
	h := newHarness(t)
	h.store.AddLayout("dev", splitLayout())
	if _, err := h.coord.Restore(context.Background(), "dev"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	h.coord.RestoreDone()
	before, _ := h.store.Layout("dev")

	victim := h.tree.Terminals()[1]
	if err := h.tree.SetClosing(victim.Identity(), true); err != nil {
		t.Fatalf("SetClosing: %v", err)
	}
	h.coord.LayoutChanged()
	if err := h.coord.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	after, _ := h.store.Layout("dev")
	if len(after) != len(before) {
		t.Fatalf("layout replaced during teardown: %d -> %d records", len(before), len(after))
	}
	if !h.coord.Changed() {
		t.Fatalf("pending change dropped")
	}
}

func TestQuitDiscardsSaves(t *testing.T) {
	h := newHarness(t)
	h.store.MarkDirty()
	h.coord.BeginQuit()
	h.coord.LayoutChanged()
	if err := h.coord.SaveState(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if _, err := os.Stat(h.store.Path()); !os.IsNotExist(err) {
		t.Fatalf("save ran during quit: %v", err)
	}
}

func TestSaveAs(t *testing.T) {
	h := newHarness(t)
	if err := h.tree.NewDefaultWindow(context.Background(), layout.TerminalAttrs{}); err != nil {
		t.Fatalf("NewDefaultWindow: %v", err)
	}
	if err := h.coord.SaveAs("solo"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if h.coord.LayoutName() != "solo" || h.store.ActiveLayout() != "solo" {
		t.Fatalf("save target not switched")
	}
	if !h.store.HasLayout("solo") {
		t.Fatalf("layout not stored")
	}
	if err := h.coord.SaveAs(" "); !errors.Is(err, store.ErrInvalidValue) {
		t.Fatalf("empty name: err = %v", err)
	}
}

func TestTerminalPreset(t *testing.T) {
	h := newHarness(t)
	if err := h.tree.NewDefaultWindow(context.Background(), layout.TerminalAttrs{
		Title: "logs", Directory: "/var/log", Command: "tail -f syslog", Profile: "ops",
	}); err != nil {
		t.Fatalf("NewDefaultWindow: %v", err)
	}
	src := h.tree.Terminals()[0]

	plain := h.coord.TerminalPreset(src)
	if plain.Command != "" || plain.Directory != "" {
		t.Fatalf("preset without cloning = %+v", plain)
	}

	if err := h.store.Set(store.KeyAlwaysSplitWithProfile, value.Bool(true)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	clone := h.coord.TerminalPreset(src)
	if clone.Title != "!logs" || clone.Command != "!tail -f syslog" {
		t.Fatalf("clone not marked pending: %+v", clone)
	}
	if clone.Directory != "/var/log" || clone.Profile != "ops" {
		t.Fatalf("clone lost attributes: %+v", clone)
	}
	if argv, err := clone.Argv(); err != nil || argv != nil {
		t.Fatalf("pending command produced argv %v, %v", argv, err)
	}
	if got := h.coord.TerminalPreset(nil); got.Command != "" {
		t.Fatalf("nil source preset = %+v", got)
	}
}
