package root

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/panestore/internal/cli/spec"
)

// Runner holds a built command tree.
type Runner struct {
	specDoc *spec.Spec
	deps    Dependencies
	app     *cli.Command
}

// NewRunner builds the CLI runner.
func NewRunner(specDoc *spec.Spec, deps Dependencies, reg *Registry) (*Runner, error) {
	app, err := BuildApp(specDoc, deps, reg)
	if err != nil {
		return nil, err
	}
	return &Runner{specDoc: specDoc, deps: deps, app: app}, nil
}

// Run executes the CLI with the given arguments.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if r == nil || r.app == nil {
		return fmt.Errorf("runner is not initialized")
	}
	if len(args) > 0 {
		if name := strings.TrimSpace(filepath.Base(args[0])); name != "" && name != "." {
			r.app.Name = name
		}
	}
	return r.app.Run(ctx, args)
}
