package zellijexport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/regenrek/panestore/internal/atomicfile"
	"github.com/regenrek/panestore/internal/userpath"
)

// DefaultLayoutDir returns zellij's per-user layout directory.
func DefaultLayoutDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("ZELLIJ_CONFIG_DIR")); dir != "" {
		return filepath.Join(userpath.ExpandUser(dir), "layouts"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve zellij config dir: %w", err)
	}
	return filepath.Join(dir, "zellij", "layouts"), nil
}

// WriteLayoutFile writes content as <name>.kdl under layoutDir and returns
// the path. An empty layoutDir means DefaultLayoutDir.
func WriteLayoutFile(layoutDir, name, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("layout content is required")
	}
	if strings.TrimSpace(layoutDir) == "" {
		var err error
		layoutDir, err = DefaultLayoutDir()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(layoutDir, 0o755); err != nil {
		return "", fmt.Errorf("create zellij layout dir: %w", err)
	}
	path := filepath.Join(layoutDir, FileName(name))
	if err := atomicfile.Save(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write zellij layout: %w", err)
	}
	return path, nil
}

// FileName maps a layout name to a safe lowercase file name.
func FileName(name string) string {
	return sanitizeLayoutName(name) + ".kdl"
}

func sanitizeLayoutName(name string) string {
	var out strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out.WriteRune(r)
		default:
			out.WriteRune('-')
		}
	}
	result := strings.Trim(out.String(), "-.")
	if result == "" {
		return "layout"
	}
	return result
}
