package store

import (
	"fmt"
	"strings"

	"github.com/regenrek/panestore/internal/layout"
)

// Layouts returns the stored layout names, sorted.
func (s *Store) Layouts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.layouts)
}

// HasLayout reports whether name is stored.
func (s *Store) HasLayout(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.layouts[name]
	return ok
}

// Layout returns a copy of the named layout.
func (s *Store) Layout(name string) (layout.Flat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	return f.Clone(), nil
}

// LayoutRecord returns one record of the named layout.
func (s *Store) LayoutRecord(name string, id layout.NodeID) (layout.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.layouts[name]
	if !ok {
		return layout.Record{}, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	rec, ok := f[id]
	if !ok {
		return layout.Record{}, fmt.Errorf("%w: %s/%s", ErrLayoutKeyNotFound, name, id)
	}
	return rec.Clone(), nil
}

// AddLayout stores a new layout. It returns false when name already exists.
func (s *Store) AddLayout(name string, f layout.Flat) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[name]; ok {
		return false
	}
	s.setLayoutLocked(name, f)
	return true
}

// ReplaceLayout overwrites an existing layout.
func (s *Store) ReplaceLayout(name string, f layout.Flat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	s.setLayoutLocked(name, f)
	return nil
}

// SetLayout stores f under name, creating or replacing it.
func (s *Store) SetLayout(name string, f layout.Flat) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty layout name", ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLayoutLocked(name, f)
	return nil
}

// setLayoutLocked stores a copy of f. The default layout always keeps a new
// terminal stub; when f has none the current one is carried over.
func (s *Store) setLayoutLocked(name string, f layout.Flat) {
	next := f.Clone()
	if next == nil {
		next = layout.Flat{}
	}
	if name == layout.DefaultName {
		if _, ok := next[layout.NewTerminalID]; !ok {
			if prev, ok := s.layouts[name][layout.NewTerminalID]; ok && prev.Kind == layout.KindStub {
				next[layout.NewTerminalID] = prev.Clone()
			}
		}
		s.ensureStubLocked(next)
	}
	s.layouts[name] = next
	s.dirty = true
}

func (s *Store) ensureStubLocked(f layout.Flat) {
	if rec, ok := f[layout.NewTerminalID]; ok && rec.Kind == layout.KindStub {
		return
	}
	if stub, ok := s.tmpl.Layout[layout.NewTerminalID]; ok {
		f[layout.NewTerminalID] = stub.Clone()
		return
	}
	layout.EnsureStub(f)
}

// DeleteLayout removes name. Deleting "default" reseeds it from the
// template. It reports whether a layout was removed.
func (s *Store) DeleteLayout(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[name]; !ok {
		return false
	}
	delete(s.layouts, name)
	if name == layout.DefaultName {
		s.layouts[name] = s.tmpl.Layout.Clone()
	}
	if s.activeLayout == name {
		s.activeLayout = layout.DefaultName
	}
	s.dirty = true
	return true
}

// RenameLayout moves a layout to a new name. Renaming "default" leaves a
// fresh default behind.
func (s *Store) RenameLayout(from, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("%w: empty layout name", ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.layouts[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, from)
	}
	if from == to {
		return nil
	}
	if _, exists := s.layouts[to]; exists {
		return fmt.Errorf("%w: %s", ErrLayoutExists, to)
	}
	s.layouts[to] = f
	delete(s.layouts, from)
	if from == layout.DefaultName {
		s.layouts[from] = s.tmpl.Layout.Clone()
	}
	if to == layout.DefaultName {
		s.ensureStubLocked(f)
	}
	if s.activeLayout == from {
		s.activeLayout = to
	}
	s.dirty = true
	return nil
}

// ActiveLayout returns the layout restored at startup.
func (s *Store) ActiveLayout() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLayout
}

// SetActiveLayout selects a stored layout.
func (s *Store) SetActiveLayout(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	s.activeLayout = name
	return nil
}

// SetRecordAttr edits one on-disk attribute of a stored record. A nil value
// removes the attribute.
func (s *Store) SetRecordAttr(name string, id layout.NodeID, key string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.layouts[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	rec, ok := f[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrLayoutKeyNotFound, name, id)
	}
	next, err := layout.WithAttr(rec, key, val)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrInvalidValue, name, id, err)
	}
	f[id] = next
	s.dirty = true
	return nil
}

// DefaultTerminal returns the attributes seeding a new terminal: the
// template stub, overlaid by the default layout's stub, overlaid by the
// active layout's stub.
func (s *Store) DefaultTerminal() layout.TerminalAttrs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := layout.StubTerminal(s.tmpl.Layout)
	out = layout.MergeTerminal(out, layout.StubTerminal(s.layouts[layout.DefaultName]))
	if s.activeLayout != layout.DefaultName {
		out = layout.MergeTerminal(out, layout.StubTerminal(s.layouts[s.activeLayout]))
	}
	return out
}
