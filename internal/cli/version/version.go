package version

import (
	"fmt"

	"github.com/regenrek/panestore/internal/cli/output"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/store"
)

// Register registers the version handler.
func Register(reg *root.Registry) {
	reg.Register("version", run)
}

func info(ctx root.CommandContext) output.VersionInfo {
	return output.VersionInfo{
		App:            ctx.Deps.AppName,
		Version:        ctx.Deps.Version,
		ConfigSchema:   store.SchemaVersion,
		EnvelopeSchema: output.SchemaVersion,
	}
}

func run(ctx root.CommandContext) error {
	v := info(ctx)
	if ctx.JSON {
		return ctx.Emit(v)
	}
	_, err := fmt.Fprintf(ctx.Out, "%s %s (config schema %s)\n", v.App, v.Version, v.ConfigSchema)
	return err
}
