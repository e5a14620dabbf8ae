package logging

import (
	"regexp"
	"strings"
)

var (
	sensitiveFlagPattern = regexp.MustCompile(`(?i)(--(?:token|access-token|api-key|apikey|secret|password|passwd|authorization|auth|cookie|client-secret|bearer))(=|\s+)(\S+)`)
	sensitiveEnvPattern  = regexp.MustCompile(`(?i)\b([A-Z0-9_]*?(?:TOKEN|SECRET|PASSWORD|PASS|API_KEY|APIKEY|AUTH|BEARER|COOKIE)[A-Z0-9_]*)=(\S+)`)
	bearerPattern        = regexp.MustCompile(`(?i)\bBearer\s+\S+`)
)

// SanitizeCommand redacts credentials in a terminal command before it is
// logged. The pending-rename marker is kept.
func SanitizeCommand(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	out := sensitiveFlagPattern.ReplaceAllString(value, "$1$2<redacted>")
	out = sensitiveEnvPattern.ReplaceAllString(out, "$1=<redacted>")
	return bearerPattern.ReplaceAllString(out, "Bearer <redacted>")
}
