package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/regenrek/panestore/internal/layout"
	"github.com/regenrek/panestore/internal/value"
)

// Profiles returns the profile names, sorted.
func (s *Store) Profiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.profiles)
}

// Profile returns a copy of the named profile map.
func (s *Store) Profile(name string) (value.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p.Clone(), nil
}

// ActiveProfile returns the selected profile name as set.
func (s *Store) ActiveProfile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProfile
}

// EffectiveProfile returns the profile lookups actually read from, after the
// override and missing-profile fallback are applied.
func (s *Store) EffectiveProfile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveProfileLocked("")
}

// ProfileOverride returns the launch-time profile override.
func (s *Store) ProfileOverride() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileOverride
}

// AddProfile creates name from the profile template. It returns false when
// the profile already exists.
func (s *Store) AddProfile(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addProfileLocked(name)
}

func (s *Store) addProfileLocked(name string) bool {
	if _, ok := s.profiles[name]; ok {
		return false
	}
	s.profiles[name] = s.tmpl.Profile.Clone()
	s.dirty = true
	return true
}

// DeleteProfile removes name. Deleting the active profile first makes
// "default" active; deleting the override clears it; deleting "default"
// recreates it from the template. Missing profiles are a no-op.
func (s *Store) DeleteProfile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[name]; !ok {
		return
	}
	if name == s.activeProfile {
		s.activeProfile = layout.DefaultName
		s.pinnedDefault = false
		s.addProfileLocked(layout.DefaultName)
	}
	if name == s.profileOverride {
		s.profileOverride = ""
	}
	delete(s.profiles, name)
	if name == layout.DefaultName {
		s.profiles[layout.DefaultName] = s.tmpl.Profile.Clone()
	}
	s.dirty = true
	s.logger.Info("profile deleted", slog.String("profile", name))
}

// RenameProfile moves a profile to a new name, following the active profile and the
// override. Renaming "default" leaves a fresh "default" behind.
func (s *Store) RenameProfile(from, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, from)
	}
	if from == to {
		return nil
	}
	if _, exists := s.profiles[to]; exists {
		return fmt.Errorf("%w: %s", ErrProfileExists, to)
	}
	s.profiles[to] = p
	delete(s.profiles, from)
	if s.activeProfile == from {
		s.activeProfile = to
	}
	if s.profileOverride == from {
		s.profileOverride = to
	}
	if from == layout.DefaultName {
		s.profiles[layout.DefaultName] = s.tmpl.Profile.Clone()
	}
	s.dirty = true
	return nil
}

// SetActiveProfile selects name, creating it from the template when missing.
// Selecting "default" picks the override instead unless force is set.
func (s *Store) SetActiveProfile(name string, force bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = layout.DefaultName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == layout.DefaultName && s.profileOverride != "" && !force {
		name = s.profileOverride
	}
	s.addProfileLocked(name)
	s.activeProfile = name
	s.pinnedDefault = force && name == layout.DefaultName
}
