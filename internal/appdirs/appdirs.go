package appdirs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/regenrek/panestore/internal/identity"
	"github.com/regenrek/panestore/internal/runenv"
	"github.com/regenrek/panestore/internal/userpath"
)

var permsWarnOnce sync.Once

// ConfigDirPath resolves the config directory without creating it.
func ConfigDirPath() (string, error) {
	if override := runenv.ConfigDir(); override != "" {
		return filepath.Clean(userpath.ExpandUser(override)), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, identity.AppSlug), nil
}

// ConfigPath resolves the config file: PANESTORE_CONFIG wins, then the
// default file inside the config directory.
func ConfigPath() (string, error) {
	if override := runenv.ConfigPath(); override != "" {
		return filepath.Clean(userpath.ExpandUser(override)), nil
	}
	dir, err := ConfigDirPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, identity.ConfigFileYML), nil
}

// DataDirPath resolves the directory for logs without creating it.
func DataDirPath() (string, error) {
	if override := runenv.DataDir(); override != "" {
		return filepath.Clean(userpath.ExpandUser(override)), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(dir, identity.AppSlug), nil
}

// DataDir returns the data directory, creating it with private permissions.
func DataDir() (string, error) {
	dir, err := DataDirPath()
	if err != nil {
		return "", err
	}
	return ensurePrivateDir(dir, runenv.DataDir() != "")
}

// ensurePrivateDir creates dir 0700 or tightens an existing default dir we
// own. Overrides are left alone with a one-time warning.
func ensurePrivateDir(dir string, isOverride bool) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
		return dir, nil
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}
	mode := info.Mode().Perm()
	if !groupOrWorldAccessible(mode) {
		return dir, nil
	}
	if !isOverride && ownedByCurrentUser(info) {
		if err := os.Chmod(dir, 0o700); err != nil {
			return "", fmt.Errorf("chmod dir: %w", err)
		}
		return dir, nil
	}
	permsWarnOnce.Do(func() {
		slog.Warn("directory is group/world accessible; consider chmod 0700", "path", dir, "mode", mode.String())
	})
	return dir, nil
}
