package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/regenrek/panestore/internal/atomicfile"
	"github.com/regenrek/panestore/internal/identity"
)

// SchemaVersion is written to every persisted file. Files with a newer major
// version are loaded but never overwritten.
const SchemaVersion = "1.0.0"

const filePerm = 0o600

type fileState struct {
	modTime time.Time
	size    int64
}

func (f fileState) zero() bool {
	return f.modTime.IsZero() && f.size == 0
}

func (f fileState) same(o fileState) bool {
	return f.size == o.size && f.modTime.Equal(o.modTime)
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{modTime: info.ModTime(), size: info.Size()}, nil
}

func (s *Store) format() format {
	if identity.IsTOMLPath(s.path) {
		return formatTOML
	}
	return formatYAML
}

// Load reads the config file and replaces in-memory state. A missing file
// leaves the defaults in place. A file that cannot be parsed, or that was
// written by a newer schema, makes the store read-only.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	if s.path == "" {
		return nil
	}
	state, err := statFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.resetLocked()
		s.dirty = false
		s.readOnly = false
		s.lastRead = fileState{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	doc, err := decodeDocument(data, s.format())
	if err != nil {
		s.readOnly = true
		s.lastRead = state
		s.logger.Warn("config file unreadable; keeping defaults and refusing to overwrite",
			slog.String("path", s.path), slog.Any("err", err))
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.readOnly = s.newerSchema(doc.Version)
	s.applyLocked(doc)
	s.dirty = false
	s.lastRead = state
	return nil
}

// newerSchema reports whether raw names a major version this build cannot
// safely rewrite.
func (s *Store) newerSchema(raw string) bool {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if raw == "" {
		return false
	}
	got, err := semver.NewVersion(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed config version", slog.String("version", raw), slog.Any("err", err))
		return false
	}
	ours := semver.MustParse(SchemaVersion)
	if got.Major() > ours.Major() {
		s.logger.Warn("config file written by a newer version; changes will not be saved",
			slog.String("path", s.path), slog.String("version", got.String()))
		return true
	}
	return false
}

// Persist writes the store to disk. Without force it only writes when the
// store is dirty. Suppressed writes succeed silently. On failure the store
// stays dirty and the file on disk is left untouched.
func (s *Store) Persist(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suppressWrite {
		return nil
	}
	if !force && !s.dirty {
		return nil
	}
	if s.readOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, s.path)
	}
	if s.path == "" {
		return fmt.Errorf("%w: no config path", ErrPersist)
	}
	doc, err := s.documentLocked()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	f := s.format()
	err = atomicfile.WriteWith(s.path, filePerm, func(w io.Writer) error {
		return encodeDocument(w, doc, f)
	})
	if err != nil {
		s.logger.Error("config persist failed", slog.String("path", s.path), slog.Any("err", err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.dirty = false
	if state, err := statFile(s.path); err == nil {
		s.lastWrite = state
		s.lastRead = state
	}
	s.logger.Debug("config persisted", slog.String("path", s.path))
	return nil
}

// Reload re-reads the file after an external change. It does nothing when the
// file matches what was last read or written, or when unsaved changes are
// pending. It reports whether state was replaced.
func (s *Store) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return false, nil
	}
	if s.dirty {
		s.logger.Info("skipping reload; unsaved changes pending", slog.String("path", s.path))
		return false, nil
	}
	state, err := statFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if state.same(s.lastRead) || (!state.zero() && state.same(s.lastWrite)) {
		return false, nil
	}
	if err := s.loadLocked(); err != nil {
		return false, err
	}
	s.logger.Info("config reloaded", slog.String("path", s.path))
	return true, nil
}
