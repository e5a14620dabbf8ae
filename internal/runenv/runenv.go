package runenv

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ConfigDirEnv     = "PANESTORE_CONFIG_DIR"
	ConfigPathEnv    = "PANESTORE_CONFIG"
	DataDirEnv       = "PANESTORE_DATA_DIR"
	NoSaveEnv        = "PANESTORE_NO_SAVE"
	ProfileEnv       = "PANESTORE_PROFILE"
	WatchDebounceEnv = "PANESTORE_WATCH_DEBOUNCE"
)

func enabledEnv(name string) bool {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// NoSave reports whether persistence is suppressed for this launch.
func NoSave() bool {
	return enabledEnv(NoSaveEnv)
}

func ConfigDir() string {
	return strings.TrimSpace(os.Getenv(ConfigDirEnv))
}

func ConfigPath() string {
	return strings.TrimSpace(os.Getenv(ConfigPathEnv))
}

func DataDir() string {
	return strings.TrimSpace(os.Getenv(DataDirEnv))
}

// Profile returns the profile override applied when resolving "default".
func Profile() string {
	return strings.TrimSpace(os.Getenv(ProfileEnv))
}

// WatchDebounce returns the quiet period the config watcher waits for before
// reloading. Accepts a Go duration or a number of milliseconds.
func WatchDebounce() time.Duration {
	const fallback = 250 * time.Millisecond
	raw := strings.TrimSpace(os.Getenv(WatchDebounceEnv))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return fallback
		}
		return d
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
