// Package catalog binds every command handler to the embedded command tree.
package catalog

import (
	"github.com/regenrek/panestore/internal/cli/config"
	"github.com/regenrek/panestore/internal/cli/layouts"
	"github.com/regenrek/panestore/internal/cli/plugins"
	"github.com/regenrek/panestore/internal/cli/profiles"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/cli/spec"
	"github.com/regenrek/panestore/internal/cli/version"
	"github.com/regenrek/panestore/internal/cli/watch"
)

// RegisterAll registers every CLI command.
func RegisterAll(reg *root.Registry) {
	if reg == nil {
		return
	}
	config.Register(reg)
	profiles.Register(reg)
	layouts.Register(reg)
	plugins.Register(reg)
	watch.Register(reg)
	version.Register(reg)
}

// NewRunner loads the command tree and wires it to the handlers above.
func NewRunner(deps root.Dependencies) (*root.Runner, error) {
	doc, err := spec.LoadDefault()
	if err != nil {
		return nil, err
	}
	reg := root.NewRegistry()
	RegisterAll(reg)
	return root.NewRunner(doc, deps, reg)
}
