package store

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/value"
)

// KeyKeybindings is the lookup key that addresses the whole keybinding table.
const KeyKeybindings = "keybindings"

// Options configure a Store.
type Options struct {
	// Path is the config file. YAML unless it ends in .toml.
	Path string
	// NoSave makes Persist a no-op for the store's lifetime.
	NoSave bool
	// Profile replaces "default" when the active profile is resolved.
	Profile string
	// Templates overrides the built-in defaults.
	Templates *Templates
	Logger    *slog.Logger
}

// Store is the scoped configuration store. One instance is shared by every
// consumer in the process; see WithContext.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
	tmpl   Templates

	global      value.Map
	profiles    map[string]value.Map
	keybindings map[string]string
	plugins     map[string]value.Map
	layouts     map[string]layout.Flat

	activeProfile   string
	activeLayout    string
	profileOverride string
	// pinnedDefault is set when "default" was selected with force, which
	// keeps lookups off the override.
	pinnedDefault bool

	dirty         bool
	suppressWrite bool
	// readOnly is set when the file on disk must not be overwritten: it was
	// written by a newer schema or failed to parse.
	readOnly  bool
	lastWrite fileState
	lastRead  fileState
}

// New returns a store seeded from the templates. Nothing is read from disk.
func New(opts Options) *Store {
	tmpl := DefaultTemplates()
	if opts.Templates != nil {
		tmpl = opts.Templates.Clone()
	}
	if tmpl.Layout == nil {
		tmpl.Layout = layout.DefaultLayout()
	}
	layout.EnsureStub(tmpl.Layout)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:            strings.TrimSpace(opts.Path),
		logger:          logger.With(slog.String("component", "store")),
		tmpl:            tmpl,
		activeProfile:   layout.DefaultName,
		activeLayout:    layout.DefaultName,
		profileOverride: strings.TrimSpace(opts.Profile),
		suppressWrite:   opts.NoSave,
	}
	s.resetLocked()
	return s
}

// resetLocked reseeds every scope from the templates.
func (s *Store) resetLocked() {
	s.global = s.tmpl.Global.Clone()
	s.profiles = map[string]value.Map{layout.DefaultName: s.tmpl.Profile.Clone()}
	s.keybindings = maps.Clone(s.tmpl.Keybindings)
	if s.keybindings == nil {
		s.keybindings = map[string]string{}
	}
	s.plugins = map[string]value.Map{}
	s.layouts = map[string]layout.Flat{layout.DefaultName: s.tmpl.Layout.Clone()}
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Templates returns a copy of the compiled-in defaults.
func (s *Store) Templates() Templates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tmpl.Clone()
}

// Dirty reports whether in-memory state differs from the last persist.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Acknowledge clears the dirty flag without writing.
func (s *Store) Acknowledge() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// MarkDirty forces the next Persist(false) to write.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// SetSuppressWrite toggles whether Persist writes at all.
func (s *Store) SetSuppressWrite(v bool) {
	s.mu.Lock()
	s.suppressWrite = v
	s.mu.Unlock()
}

// SuppressWrite reports whether writes are suppressed. A read-only store
// is reported by ReadOnly instead.
func (s *Store) SuppressWrite() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suppressWrite
}

// ReadOnly reports whether the file on disk is protected from overwrites.
func (s *Store) ReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readOnly
}

type lookup struct {
	profile    string
	plugin     string
	def        value.Value
	hasDefault bool
}

// LookupOption adjusts a Get or Set.
type LookupOption func(*lookup)

// WithProfile targets a profile other than the active one.
func WithProfile(name string) LookupOption {
	return func(l *lookup) { l.profile = strings.TrimSpace(name) }
}

// WithPlugin consults, or writes to, the named plugin tree.
func WithPlugin(name string) LookupOption {
	return func(l *lookup) { l.plugin = strings.TrimSpace(name) }
}

// WithDefault is returned by Get when no scope has the key. Falsy defaults
// are honored.
func WithDefault(v value.Value) LookupOption {
	return func(l *lookup) {
		l.def = v
		l.hasDefault = true
	}
}

func buildLookup(opts []LookupOption) lookup {
	var l lookup
	for _, opt := range opts {
		if opt != nil {
			opt(&l)
		}
	}
	return l
}

// resolveProfileLocked maps a requested profile name to an existing profile.
// An empty name means the active profile. "default" is replaced by the
// override when one is set, unless it was selected with force. A missing
// profile falls back to "default".
func (s *Store) resolveProfileLocked(name string) string {
	pinned := false
	if name == "" {
		name = s.activeProfile
		pinned = s.pinnedDefault
	}
	if name == layout.DefaultName && s.profileOverride != "" && !pinned {
		if _, ok := s.profiles[s.profileOverride]; ok {
			name = s.profileOverride
		}
	}
	if _, ok := s.profiles[name]; ok {
		return name
	}
	return layout.DefaultName
}

// Get resolves key. Scopes are consulted in order: global, profile,
// keybindings, plugin, then the caller's default.
func (s *Store) Get(key string, opts ...LookupOption) (value.Value, error) {
	l := buildLookup(opts)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.global[key]; ok {
		return v.Clone(), nil
	}
	if v, ok := s.profiles[s.resolveProfileLocked(l.profile)][key]; ok {
		return v.Clone(), nil
	}
	if key == KeyKeybindings {
		return value.Table(s.keybindings), nil
	}
	if l.plugin != "" {
		if v, ok := s.plugins[l.plugin][key]; ok {
			return v.Clone(), nil
		}
	}
	if l.hasDefault {
		return l.def.Clone(), nil
	}
	return value.Value{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

// Set writes key into the first scope that owns it: global template keys,
// then keys the profile already has, then the keybinding table, then the
// plugin tree (created on demand). Every successful write marks the store
// dirty.
func (s *Store) Set(key string, v value.Value, opts ...LookupOption) error {
	l := buildLookup(opts)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tmpl.Global[key]; ok {
		coerced, err := coerce(key, v, s.tmpl.Global[key])
		if err != nil {
			return err
		}
		s.global[key] = coerced
		s.dirty = true
		return nil
	}
	profile := l.profile
	if profile != "" {
		if _, ok := s.profiles[profile]; !ok {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
		}
	}
	profile = s.resolveProfileLocked(profile)
	if cur, ok := s.profiles[profile][key]; ok {
		tmplVal, has := s.tmpl.Profile[key]
		if !has {
			tmplVal = cur
		}
		coerced, err := coerce(key, v, tmplVal)
		if err != nil {
			return err
		}
		s.profiles[profile][key] = coerced
		s.dirty = true
		return nil
	}
	if key == KeyKeybindings {
		if v.Kind() != value.KindTable {
			return fmt.Errorf("%w: %s wants a table, got %s", ErrInvalidValue, key, v.Kind())
		}
		s.keybindings = v.Table()
		s.dirty = true
		return nil
	}
	if l.plugin != "" {
		if !v.IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidValue, key)
		}
		tree, ok := s.plugins[l.plugin]
		if !ok {
			tree = value.Map{}
			s.plugins[l.plugin] = tree
		}
		tree[key] = v.Clone()
		s.dirty = true
		return nil
	}
	s.logger.Warn("rejected write to unknown key", slog.String("key", key), slog.String("profile", profile))
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// coerce checks v against the template kind. Integers widen to floats.
func coerce(key string, v value.Value, tmpl value.Value) (value.Value, error) {
	if !v.IsValid() {
		return value.Value{}, fmt.Errorf("%w: %s", ErrInvalidValue, key)
	}
	if !tmpl.IsValid() || v.Kind() == tmpl.Kind() {
		return v.Clone(), nil
	}
	if tmpl.Kind() == value.KindFloat && v.Kind() == value.KindInt {
		return value.Float(float64(v.Int())), nil
	}
	return value.Value{}, fmt.Errorf("%w: %s wants %s, got %s", ErrInvalidValue, key, tmpl.Kind(), v.Kind())
}

// Scope names where a key lives.
type Scope string

const (
	ScopeGlobal      Scope = "global"
	ScopeProfile     Scope = "profile"
	ScopeKeybindings Scope = "keybindings"
)

// KeyInfo describes a known key.
type KeyInfo struct {
	Name    string
	Scope   Scope
	Kind    value.Kind
	Default value.Value
}

// Keys lists every template key plus the keybinding table.
func (s *Store) Keys() []KeyInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]KeyInfo, 0, len(s.tmpl.Global)+len(s.tmpl.Profile)+1)
	for _, k := range s.tmpl.Global.Keys() {
		v := s.tmpl.Global[k]
		out = append(out, KeyInfo{Name: k, Scope: ScopeGlobal, Kind: v.Kind(), Default: v.Clone()})
	}
	for _, k := range s.tmpl.Profile.Keys() {
		v := s.tmpl.Profile[k]
		out = append(out, KeyInfo{Name: k, Scope: ScopeProfile, Kind: v.Kind(), Default: v.Clone()})
	}
	out = append(out, KeyInfo{Name: KeyKeybindings, Scope: ScopeKeybindings, Kind: value.KindTable, Default: value.Table(s.tmpl.Keybindings)})
	return out
}

// KindOf returns the template kind for key, or KindInvalid when the key has
// no template.
func (s *Store) KindOf(key string) value.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.tmpl.Global[key]; ok {
		return v.Kind()
	}
	if v, ok := s.tmpl.Profile[key]; ok {
		return v.Kind()
	}
	if key == KeyKeybindings {
		return value.KindTable
	}
	return value.KindInvalid
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
