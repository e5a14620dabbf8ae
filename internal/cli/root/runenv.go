package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/panestore/internal/runenv"
	"github.com/regenrek/panestore/internal/userpath"
)

type envSnapshot struct {
	key   string
	value string
	ok    bool
}

// applyRunEnvFromFlags exports the global store flags as their environment
// overrides for the duration of the run. The returned func restores the
// previous environment.
func applyRunEnvFromFlags(cmd *cli.Command) (func(), error) {
	if cmd == nil {
		return func() {}, nil
	}
	overrides := map[string]string{}
	if cmd.IsSet("config") {
		overrides[runenv.ConfigPathEnv] = userpath.ExpandUser(strings.TrimSpace(cmd.String("config")))
	}
	if cmd.IsSet("profile") {
		overrides[runenv.ProfileEnv] = strings.TrimSpace(cmd.String("profile"))
	}
	if cmd.Bool("no-save") {
		overrides[runenv.NoSaveEnv] = "1"
	}
	if len(overrides) == 0 {
		return func() {}, nil
	}
	original := captureEnv(runenv.ConfigPathEnv, runenv.ProfileEnv, runenv.NoSaveEnv)
	for key, value := range overrides {
		if err := os.Setenv(key, value); err != nil {
			restoreEnv(original)
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}
	return func() { restoreEnv(original) }, nil
}

func captureEnv(keys ...string) []envSnapshot {
	snaps := make([]envSnapshot, 0, len(keys))
	for _, key := range keys {
		value, ok := os.LookupEnv(key)
		snaps = append(snaps, envSnapshot{key: key, value: value, ok: ok})
	}
	return snaps
}

func restoreEnv(snaps []envSnapshot) {
	for _, snap := range snaps {
		if snap.ok {
			_ = os.Setenv(snap.key, snap.value)
		} else {
			_ = os.Unsetenv(snap.key)
		}
	}
}
