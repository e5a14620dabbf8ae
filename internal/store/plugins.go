package store

import (
	"strings"

	"github.com/regenrek/panestore/internal/value"
)

// Plugins returns the names of plugins with a stored tree.
func (s *Store) Plugins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.plugins)
}

// PluginTree returns a copy of the plugin's tree, or nil when it has none.
func (s *Store) PluginTree(name string) value.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plugins[name].Clone()
}

// SetPluginTree replaces the plugin's whole tree.
func (s *Store) SetPluginTree(name string, tree value.Map) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := tree.Clone()
	if next == nil {
		next = value.Map{}
	}
	s.plugins[name] = next
	s.dirty = true
}

// DeletePluginTree removes the plugin's tree and reports whether one
// existed. The store is marked dirty either way.
func (s *Store) DeletePluginTree(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.plugins[name]
	delete(s.plugins, name)
	s.dirty = true
	return existed
}
