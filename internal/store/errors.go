package store

import "errors"

var (
	// ErrKeyNotFound is returned by Get when no scope has the key and the
	// caller supplied no default.
	ErrKeyNotFound = errors.New("store: key not found")
	// ErrUnknownKey is returned by Set for a key no scope accepts.
	ErrUnknownKey = errors.New("store: unknown key")
	// ErrInvalidValue is returned by Set when the value kind does not match
	// the template.
	ErrInvalidValue = errors.New("store: invalid value")
	// ErrProfileNotFound reports an explicit reference to a missing profile.
	ErrProfileNotFound = errors.New("store: profile not found")
	// ErrProfileExists reports a rename onto an existing profile.
	ErrProfileExists = errors.New("store: profile already exists")
	// ErrLayoutNotFound reports a missing named layout.
	ErrLayoutNotFound = errors.New("store: layout not found")
	// ErrLayoutExists reports a rename onto an existing layout.
	ErrLayoutExists = errors.New("store: layout already exists")
	// ErrLayoutKeyNotFound reports a missing record within a layout.
	ErrLayoutKeyNotFound = errors.New("store: layout key not found")
	// ErrPersist wraps disk failures during Persist. The store stays dirty.
	ErrPersist = errors.New("store: persist failed")
	// ErrReadOnly is returned by Persist when the file on disk was written
	// by a newer schema or could not be parsed.
	ErrReadOnly = errors.New("store: config file is read-only")
)
