package layout

import (
	"reflect"
	"slices"
	"testing"
)

func TestEncodeRecordTrims(t *testing.T) {
	rec := Record{Kind: KindTerminal, Parent: "c01h", Attrs: TerminalAttrs{
		Title:     "",
		Caption:   "NC",
		Profile:   "default",
		Directory: "/srv",
		InSplit:   true,
	}}
	got, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	want := map[string]any{"type": "Terminal", "parent": "c01h", "directory": "/srv"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EncodeRecord = %v, want %v", got, want)
	}
}

func TestEncodeRecordRejectsMismatchedAttrs(t *testing.T) {
	if _, err := EncodeRecord(Record{Kind: KindWindow, Attrs: TerminalAttrs{}}); err == nil {
		t.Fatalf("expected error for mismatched attrs")
	}
}

func TestTrimDropsUnderscoreKeys(t *testing.T) {
	attrs := map[string]any{"type": "Terminal", "_last_dir": "/x", "title": "t", "fullscreen": false}
	Trim(attrs)
	want := map[string]any{"type": "Terminal", "title": "t"}
	if !reflect.DeepEqual(attrs, want) {
		t.Fatalf("Trim = %v, want %v", attrs, want)
	}
}

func TestDecodeRecordLenient(t *testing.T) {
	rec, err := DecodeRecord(map[string]any{
		"type":       "Window",
		"parent":     "ignored",
		"maximised":  "True",
		"titlefixed": "false",
		"size":       "1024x768",
		"position":   []any{3, 4},
		"uuid":       "urn:uuid:whatever",
	})
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	assertEqual(t, rec.Parent, NodeID(""), "window parent")
	w := rec.Attrs.(WindowAttrs)
	assertEqual(t, w.Maximized, true, "maximized")
	assertEqual(t, w.TitleFixed, false, "titlefixed")
	if w.Size == nil || *w.Size != (Size{W: 1024, H: 768}) {
		t.Fatalf("size = %v", w.Size)
	}
	if w.Position == nil || *w.Position != (Point{X: 3, Y: 4}) {
		t.Fatalf("position = %v", w.Position)
	}

	split, err := DecodeRecord(map[string]any{"type": "HPaned", "parent": "w", "ratio": "0.25", "position": int64(120)})
	if err != nil {
		t.Fatalf("DecodeRecord(HPaned): %v", err)
	}
	assertEqual(t, split.Kind, KindSplitH, "kind")
	assertEqual(t, split.Attrs.(SplitAttrs).Ratio, 0.25, "ratio")
	assertEqual(t, split.Attrs.(SplitAttrs).Position, 120, "position")
}

func TestDecodeRecordErrors(t *testing.T) {
	if _, err := DecodeRecord(map[string]any{"parent": "x"}); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := DecodeRecord(map[string]any{"type": "Canvas"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDecodeFlatSkipsBadRecords(t *testing.T) {
	flat, errs := DecodeFlat(map[string]any{
		"window0": map[string]any{"type": "Window"},
		"child0":  map[string]any{"type": "Terminal", "parent": "window0"},
		"broken":  "not a record",
		"typo":    map[string]any{"type": "Termnial"},
	})
	assertEqual(t, len(errs), 2, "len(errs)")
	if !slices.Equal(flat.IDs(), []NodeID{"child0", "window0"}) {
		t.Fatalf("IDs() = %v", flat.IDs())
	}
}

func TestWithAttr(t *testing.T) {
	rec := Record{Kind: KindTerminal, Parent: "w", Attrs: TerminalAttrs{Caption: "logs", InSplit: true, Command: "top"}}
	got, err := WithAttr(rec, "directory", "/var/log")
	if err != nil {
		t.Fatalf("WithAttr: %v", err)
	}
	ta := got.Attrs.(TerminalAttrs)
	assertEqual(t, ta.Directory, "/var/log", "directory")
	assertEqual(t, ta.Command, "top", "command kept")
	assertEqual(t, ta.Caption, "logs", "caption kept")
	assertEqual(t, ta.InSplit, true, "in split kept")

	got, err = WithAttr(got, "command", nil)
	if err != nil {
		t.Fatalf("WithAttr(remove): %v", err)
	}
	assertEqual(t, got.Attrs.(TerminalAttrs).Command, "", "removed command")

	if _, err := WithAttr(rec, "type", "Window"); err == nil {
		t.Fatalf("expected error when editing type")
	}
}

func TestStubTerminalMerge(t *testing.T) {
	flat := DefaultLayout()
	assertEqual(t, StubTerminal(flat).Profile, "", "compiled-in stub profile")
	flat[NewTerminalID] = Record{Kind: KindStub, Attrs: TerminalAttrs{Profile: "work", Directory: "~/src"}}
	got := StubTerminal(flat)
	assertEqual(t, got.Profile, "work", "profile")
	assertEqual(t, got.ProfileName(), "work", "profile name")
	assertEqual(t, got.Directory, "~/src", "directory")

	delete(flat, NewTerminalID)
	if !EnsureStub(flat) {
		t.Fatalf("EnsureStub did not reseed")
	}
	if EnsureStub(flat) {
		t.Fatalf("EnsureStub reseeded twice")
	}
	assertEqual(t, flat[NewTerminalID].Kind, KindStub, "reseeded kind")
}

func TestPendingMarkers(t *testing.T) {
	assertEqual(t, MarkPending("vim"), "!vim", "MarkPending")
	assertEqual(t, MarkPending("!vim"), "!vim", "MarkPending twice")
	assertEqual(t, MarkPending(""), "", "MarkPending empty")
	assertEqual(t, StripPending("!vim"), "vim", "StripPending")

	argv, err := TerminalAttrs{Command: "!rm -rf build"}.Argv()
	if err != nil || argv != nil {
		t.Fatalf("pending Argv() = %v, %v, want nil", argv, err)
	}
	argv, err = TerminalAttrs{Command: `ssh host "tail -f /var/log/syslog"`}.Argv()
	if err != nil {
		t.Fatalf("Argv: %v", err)
	}
	if !slices.Equal(argv, []string{"ssh", "host", "tail -f /var/log/syslog"}) {
		t.Fatalf("Argv() = %q", argv)
	}
	if _, err := (TerminalAttrs{Command: `echo "unterminated`}).Argv(); err == nil {
		t.Fatalf("expected quoting error")
	}
}

func TestParseKindAliases(t *testing.T) {
	for raw, want := range map[string]Kind{
		"Window": KindWindow, "VPaned": KindSplitV, "splith": KindSplitH,
		"Notebook": KindNotebook, "Terminal": KindTerminal, "Defstub": KindStub,
	} {
		got, err := ParseKind(raw)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v, want %v", raw, got, err, want)
		}
	}
}
