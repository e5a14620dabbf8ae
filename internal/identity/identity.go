package identity

import (
	"path/filepath"
	"strings"
)

const (
	// AppSlug names the per-user config and data directories.
	AppSlug = "panestore"
	CLIName = "panestore"

	ConfigFileYML  = "config.yml"
	ConfigFileTOML = "config.toml"
	LogFile        = "panestore.log"
)

// IsTOMLPath reports whether path selects the TOML config encoding.
func IsTOMLPath(path string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(path)), ".toml")
}
