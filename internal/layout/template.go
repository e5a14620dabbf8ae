package layout

// DefaultName is the name of the layout and profile that always exist.
const DefaultName = "default"

// NewTerminalID is the record slot in the default layout holding the stub
// that seeds attributes of newly created terminals.
const NewTerminalID NodeID = "NewT"

// DefaultLayout returns the compiled-in layout: one window holding one
// terminal, plus the new terminal stub.
func DefaultLayout() Flat {
	return Flat{
		"window0":     {Kind: KindWindow, Attrs: WindowAttrs{}},
		"child0":      {Kind: KindTerminal, Parent: "window0", Attrs: TerminalAttrs{}},
		NewTerminalID: DefaultStub(),
	}
}

// DefaultStub returns the compiled-in new terminal stub.
func DefaultStub() Record {
	return Record{Kind: KindStub, Attrs: TerminalAttrs{}}
}

// EnsureStub reseeds the new terminal stub when it is absent or not a stub.
// It reports whether f was changed.
func EnsureStub(f Flat) bool {
	if rec, ok := f[NewTerminalID]; ok && rec.Kind == KindStub {
		if _, ok := rec.Attrs.(TerminalAttrs); ok {
			return false
		}
	}
	f[NewTerminalID] = DefaultStub()
	return true
}

// StubTerminal merges the stub stored in f over the compiled-in stub. Set
// fields of the stored stub win.
func StubTerminal(f Flat) TerminalAttrs {
	base := DefaultStub().Attrs.(TerminalAttrs)
	rec, ok := f[NewTerminalID]
	if !ok || rec.Kind != KindStub {
		return base
	}
	stored, ok := rec.Attrs.(TerminalAttrs)
	if !ok {
		return base
	}
	return MergeTerminal(base, stored)
}

// MergeTerminal overlays the non-empty fields of over onto base.
func MergeTerminal(base, over TerminalAttrs) TerminalAttrs {
	out := cloneAttrs(base).(TerminalAttrs)
	if over.Title != "" {
		out.Title = over.Title
	}
	if over.Caption != "" {
		out.Caption = over.Caption
	}
	if over.Profile != "" {
		out.Profile = over.Profile
	}
	if over.Directory != "" {
		out.Directory = over.Directory
	}
	if over.Command != "" {
		out.Command = over.Command
	}
	if len(over.Environment) > 0 {
		out.Environment = append([]string(nil), over.Environment...)
	}
	if over.Group != "" {
		out.Group = over.Group
	}
	return out
}
