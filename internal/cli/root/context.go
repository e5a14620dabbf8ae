package root

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/panestore/internal/cli/output"
	"github.com/regenrek/panestore/internal/cli/spec"
	"github.com/regenrek/panestore/internal/store"
)

// CommandContext is handed to every handler. Store is only set for commands
// declared with store: true.
type CommandContext struct {
	Context context.Context
	Args    []string
	Spec    spec.Command
	Cmd     *cli.Command
	Deps    Dependencies
	JSON    bool
	NoColor bool
	Out     io.Writer
	ErrOut  io.Writer
	Stdin   io.Reader
	Store   *store.Store
	Started time.Time
}

// Arg returns the trimmed value of a declared positional argument.
func (c CommandContext) Arg(name string) string {
	if c.Cmd == nil {
		return ""
	}
	return strings.TrimSpace(c.Cmd.StringArg(name))
}

// Emit writes data as this command's success envelope.
func (c CommandContext) Emit(data any) error {
	return c.invocation().Success(c.Out, data)
}

func (c CommandContext) invocation() output.Invocation {
	return output.Invocation{Command: c.Spec.ID, Version: c.Deps.Version, Started: c.Started}
}
