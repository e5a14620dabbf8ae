package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/panestore/internal/cli/spec"
	"github.com/regenrek/panestore/internal/store"
)

// BuildApp constructs the urfave command tree from the declared commands.
func BuildApp(specDoc *spec.Spec, deps Dependencies, reg *Registry) (*cli.Command, error) {
	if specDoc == nil {
		return nil, fmt.Errorf("spec is nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if err := reg.EnsureHandlers(specDoc); err != nil {
		return nil, err
	}
	app := &cli.Command{
		Name:        specDoc.App.Name,
		Usage:       specDoc.App.Summary,
		Description: specDoc.App.Summary,
		Commands:    []*cli.Command{},
		Writer:      deps.Stdout,
		ErrWriter:   deps.Stderr,

		// Exit codes are returned to the caller instead of exiting here.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	var runEnvCleanup func()
	app.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cmd != nil && cmd.Bool("version") {
			out := deps.Stdout
			if out == nil {
				out = io.Discard
			}
			_, _ = fmt.Fprintf(out, "%s %s\n", specDoc.App.Name, deps.Version)
			return ctx, cli.Exit("", 0)
		}
		cleanup, err := applyRunEnvFromFlags(cmd)
		if err != nil {
			return ctx, err
		}
		runEnvCleanup = cleanup
		return ctx, nil
	}
	app.After = func(ctx context.Context, cmd *cli.Command) error {
		if runEnvCleanup != nil {
			runEnvCleanup()
			runEnvCleanup = nil
		}
		return nil
	}
	globalFlags, err := buildFlags(specDoc.GlobalFlags)
	if err != nil {
		return nil, err
	}
	app.Flags = globalFlags
	for _, cmdSpec := range specDoc.Commands {
		cmd, err := buildCommand(cmdSpec, deps, reg)
		if err != nil {
			return nil, err
		}
		app.Commands = append(app.Commands, cmd)
	}
	app.Action = func(ctx context.Context, c *cli.Command) error {
		return runDefaultCommand(specDoc, deps, reg, ctx, c)
	}
	return app, nil
}

func buildCommand(cmdSpec spec.Command, deps Dependencies, reg *Registry) (*cli.Command, error) {
	cmd := &cli.Command{
		Name:        cmdSpec.Name,
		Aliases:     cmdSpec.Aliases,
		Usage:       cmdSpec.Summary,
		Description: cmdSpec.Description,
		Hidden:      cmdSpec.Hidden,
	}
	flags, err := buildFlags(cmdSpec.Flags)
	if err != nil {
		return nil, fmt.Errorf("flags for %s: %w", cmdSpec.ID, err)
	}
	cmd.Flags = flags
	cmd.ArgsUsage = argsUsage(cmdSpec.Args)
	cmd.Arguments = buildArguments(cmdSpec.Args)
	for _, child := range cmdSpec.Subcommands {
		sub, err := buildCommand(child, deps, reg)
		if err != nil {
			return nil, err
		}
		cmd.Commands = append(cmd.Commands, sub)
	}
	if handler, ok := reg.HandlerFor(cmdSpec.ID); ok {
		cmd.Action = func(ctx context.Context, cliCmd *cli.Command) error {
			return runHandler(ctx, cliCmd, cmdSpec, deps, handler)
		}
	}
	return cmd, nil
}

func runDefaultCommand(specDoc *spec.Spec, deps Dependencies, reg *Registry, ctx context.Context, app *cli.Command) error {
	defaultCmd := strings.TrimSpace(specDoc.App.DefaultCommand)
	if defaultCmd == "" {
		return cli.ShowAppHelp(app)
	}
	cmdSpec := specDoc.FindByID(defaultCmd)
	if cmdSpec == nil {
		return fmt.Errorf("default command %q not found", defaultCmd)
	}
	handler, ok := reg.HandlerFor(cmdSpec.ID)
	if !ok {
		return fmt.Errorf("default command handler missing: %s", cmdSpec.ID)
	}
	return runHandler(ctx, app, *cmdSpec, deps, handler)
}

func runHandler(ctx context.Context, cliCmd *cli.Command, cmdSpec spec.Command, deps Dependencies, handler Handler) error {
	if handler == nil {
		return nil
	}
	commandCtx := CommandContext{
		Context: ctx,
		Args:    positionalArgs(cmdSpec, cliCmd),
		Spec:    cmdSpec,
		Cmd:     cliCmd,
		Deps:    deps,
		JSON:    cliCmd.Bool("json"),
		NoColor: cliCmd.Bool("no-color"),
		Out:     deps.Stdout,
		ErrOut:  deps.Stderr,
		Stdin:   deps.Stdin,
		Started: time.Now(),
	}
	if err := checkInput(cmdSpec, cliCmd); err != nil {
		return err
	}
	if commandCtx.JSON && (cmdSpec.JSON == nil || !cmdSpec.JSON.Supported) {
		return fmt.Errorf("command %s does not support --json", cmdSpec.Name)
	}
	if err := confirmIfNeeded(commandCtx, cliCmd); err != nil {
		return err
	}
	if cmdSpec.Store {
		st, err := openStore(deps)
		if err != nil {
			return err
		}
		commandCtx.Store = st
		commandCtx.Context = store.WithContext(ctx, st)
	}
	err := handler(commandCtx)
	if err == nil && cmdSpec.SideEffects && commandCtx.Store != nil {
		err = persist(commandCtx)
	}
	if err != nil {
		if !commandCtx.JSON {
			return err
		}
		_ = commandCtx.invocation().Fail(commandCtx.Out, errorCode(err), err)
		return cli.Exit("", 1)
	}
	return nil
}

// persist writes the store after a mutating command. A read-only store is
// reported instead of silently dropping the change.
func persist(ctx CommandContext) error {
	err := ctx.Store.Persist(false)
	if errors.Is(err, store.ErrReadOnly) {
		return fmt.Errorf("%w: %s was written by a newer version or could not be parsed", err, ctx.Store.Path())
	}
	if err != nil {
		return err
	}
	ctx.Deps.logger().Debug("config saved", slog.String("command", ctx.Spec.ID), slog.String("path", ctx.Store.Path()))
	return nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrKeyNotFound), errors.Is(err, store.ErrUnknownKey):
		return "unknown_key"
	case errors.Is(err, store.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, store.ErrProfileNotFound), errors.Is(err, store.ErrLayoutNotFound):
		return "not_found"
	case errors.Is(err, store.ErrProfileExists), errors.Is(err, store.ErrLayoutExists):
		return "already_exists"
	case errors.Is(err, store.ErrReadOnly):
		return "read_only"
	case errors.Is(err, store.ErrPersist):
		return "persist_failed"
	default:
		return "command_failed"
	}
}

func argsUsage(args []spec.Arg) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		name := strings.ToUpper(arg.Name)
		if arg.Variadic {
			name += "..."
		}
		if arg.Required {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("[%s]", name))
		}
	}
	return strings.Join(parts, " ")
}

func confirmIfNeeded(ctx CommandContext, cliCmd *cli.Command) error {
	if !ctx.Spec.Confirm {
		return nil
	}
	if cliCmd.Bool("yes") {
		return nil
	}
	message := fmt.Sprintf("Confirm %s %s", ctx.Spec.ID, strings.Join(ctx.Args, " "))
	ok, err := PromptConfirm(ctx.Stdin, ctx.ErrOut, strings.TrimSpace(message))
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}
