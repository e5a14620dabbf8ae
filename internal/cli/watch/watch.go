// Package watch implements the watch command.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/runenv"
)

// Register registers the watch handler.
func Register(reg *root.Registry) {
	reg.Register("watch", runWatch)
}

func runWatch(ctx root.CommandContext) error {
	st := ctx.Store
	debounce := runenv.WatchDebounce()
	if ctx.Cmd.IsSet("debounce") {
		debounce = ctx.Cmd.Duration("debounce")
	}
	if err := os.MkdirAll(filepath.Dir(st.Path()), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := ctx.Deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("watching config", slog.String("path", st.Path()), slog.Duration("debounce", debounce))
	if _, err := fmt.Fprintf(ctx.Out, "Watching %s (Ctrl-C to stop)\n", st.Path()); err != nil {
		return err
	}
	return st.Watch(sigCtx, debounce, func() {
		_, _ = fmt.Fprintf(ctx.Out, "%s reloaded: %d profiles, %d layouts\n",
			time.Now().Format(time.TimeOnly), len(st.Profiles()), len(st.Layouts()))
	})
}

