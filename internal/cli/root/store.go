package root

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/regenrek/panestore/internal/appdirs"
	"github.com/regenrek/panestore/internal/runenv"
	"github.com/regenrek/panestore/internal/store"
)

// OpenDefaultStore loads the config file selected by the environment. A
// file that cannot be parsed is reported but still yields a store with
// defaults, which refuses to overwrite it.
func OpenDefaultStore(logger *slog.Logger) (*store.Store, error) {
	path, err := appdirs.ConfigPath()
	if err != nil {
		return nil, err
	}
	st := store.New(store.Options{
		Path:    path,
		NoSave:  runenv.NoSave(),
		Profile: runenv.Profile(),
		Logger:  logger,
	})
	if err := st.Load(); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	return st, nil
}

func openStore(deps Dependencies) (*store.Store, error) {
	open := deps.OpenStore
	if open == nil {
		open = OpenDefaultStore
	}
	return open(deps.logger())
}
