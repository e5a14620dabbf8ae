package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/regenrek/panestore/internal/logging"
)

const watchErrorInterval = 30 * time.Second

// Watch reloads the store whenever the config file changes on disk until ctx
// is cancelled. Bursts of events within debounce collapse into one reload.
// onReload, when non-nil, runs after every reload that replaced state.
func (s *Store) Watch(ctx context.Context, debounce time.Duration, onReload func()) error {
	if s.path == "" {
		return errors.New("store: watch needs a config path")
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", s.path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			s.logger.Warn("config watcher close failed", slog.Any("err", err))
		}
	}()
	// Editors and atomic writers replace the file, so watch its directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	s.logger.Info("watching config", slog.String("path", abs), slog.Duration("debounce", debounce))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev, abs) {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pending = true
			timer.Reset(debounce)
		case <-timer.C:
			pending = false
			changed, err := s.Reload()
			if err != nil {
				logging.LogEvery(ctx, s.logger, "store.reload", watchErrorInterval, slog.LevelWarn,
					"config reload failed", slog.String("path", abs), slog.Any("err", err))
				continue
			}
			if changed && onReload != nil {
				onReload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.LogEvery(ctx, s.logger, "store.watch", watchErrorInterval, slog.LevelWarn,
				"config watcher error", slog.Any("err", err))
		}
	}
}

func relevantEvent(ev fsnotify.Event, path string) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == path
}
