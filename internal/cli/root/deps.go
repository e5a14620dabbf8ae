package root

import (
	"io"
	"log/slog"
	"os"

	"github.com/regenrek/panestore/internal/identity"
	"github.com/regenrek/panestore/internal/store"
)

// Dependencies provides external services for CLI handlers.
type Dependencies struct {
	Version string
	AppName string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// OpenStore loads the config store. Nil means OpenDefaultStore.
	OpenStore func(logger *slog.Logger) (*store.Store, error)
	Logger    *slog.Logger
}

// DefaultDependencies returns dependencies wired to the real config file.
func DefaultDependencies(version string) Dependencies {
	return Dependencies{
		Version:   version,
		AppName:   identity.CLIName,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Stdin:     os.Stdin,
		OpenStore: OpenDefaultStore,
	}
}

func (d Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
