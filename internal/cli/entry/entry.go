package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/panestore/internal/cli/catalog"
	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/identity"
	"github.com/regenrek/panestore/internal/logging"
)

// Run starts the CLI and returns the process exit code.
func Run(args []string, version string) int {
	return run(args, root.DefaultDependencies(version))
}

func run(args []string, deps root.Dependencies) int {
	appName := identity.CLIName
	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	mode := logging.ModeFromArgs(args)
	logCfg := logging.Config{}
	switch level := levelFromArgs(args); level {
	case "":
	case "off":
		none := string(logging.SinkNone)
		logCfg.Sink = &none
	default:
		logCfg = logCfg.WithLevel(level)
	}
	closeLogger, err := logging.Init(logCfg, logging.InitOptions{
		App:     identity.AppSlug,
		Version: deps.Version,
		Mode:    mode,
		Stderr:  stderr,
	})
	if err != nil {
		if mode == logging.ModeWatch {
			fmt.Fprintf(stderr, "%s: init logging: %v\n", appName, err)
			return 1
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError})))
		slog.Error("init logging failed; using stderr fallback", slog.Any("err", err))
	} else if closeLogger != nil {
		defer func() { _ = closeLogger() }()
	}

	if deps.AppName == "" {
		deps.AppName = appName
	}
	deps.Logger = slog.Default()
	runner, err := catalog.NewRunner(deps)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	if err := runner.Run(context.Background(), args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

// levelFromArgs reads --log-level ahead of flag parsing so the logger is
// ready before any command runs.
func levelFromArgs(args []string) string {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if value, ok := strings.CutPrefix(arg, "--log-level="); ok {
			return strings.TrimSpace(value)
		}
		if arg == "--log-level" && i+1 < len(args) {
			return strings.TrimSpace(args[i+1])
		}
	}
	return ""
}
