package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/regenrek/panestore/internal/appdirs"
	"github.com/regenrek/panestore/internal/identity"
)

type InitOptions struct {
	App     string
	Version string
	Mode    Mode
	// Stderr replaces os.Stderr for the stderr sink.
	Stderr io.Writer
}

// Init installs the process logger and returns a closer for the sink.
func Init(cfg Config, opts InitOptions) (func() error, error) {
	if opts.App == "" {
		opts.App = identity.AppSlug
	}
	if opts.Mode == 0 {
		opts.Mode = ModeCLI
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg = mergeConfig(DefaultConfig(opts.Mode), cfg).WithEnv()
	normalized, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	logger, closeFn, err := New(normalized, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closeFn, nil
}

func mergeConfig(base, over Config) Config {
	out := base
	override(&out.Level, over.Level)
	override(&out.Format, over.Format)
	override(&out.Sink, over.Sink)
	override(&out.File, over.File)
	override(&out.AddSource, over.AddSource)
	override(&out.MaxSizeMB, over.MaxSizeMB)
	override(&out.MaxBackups, over.MaxBackups)
	override(&out.MaxAgeDays, over.MaxAgeDays)
	override(&out.Compress, over.Compress)
	return out
}

func override[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// New builds a logger from a normalized config without installing it.
func New(cfg Config, opts InitOptions) (*slog.Logger, func() error, error) {
	sink := SinkStderr
	if cfg.Sink != nil {
		sink = Sink(*cfg.Sink)
	}
	format := FormatText
	if cfg.Format != nil {
		format = Format(*cfg.Format)
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	writer, closeFn, err := resolveWriter(cfg, sink, stderr)
	if err != nil {
		return nil, nil, err
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource != nil && *cfg.AddSource,
	}
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		handler = slog.NewTextHandler(writer, handlerOpts)
	}
	logger := slog.New(handler).With(
		slog.String("app", opts.App),
		slog.String("mode", opts.Mode.String()),
	)
	if opts.Version != "" {
		logger = logger.With(slog.String("version", opts.Version))
	}
	return logger, closeFn, nil
}

func parseLevel(value *string) slog.Leveler {
	if value == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(*value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveWriter(cfg Config, sink Sink, stderr io.Writer) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch sink {
	case SinkNone:
		return io.Discard, noop, nil
	case SinkStderr:
		return stderr, noop, nil
	case SinkFile:
		path, err := logFilePath(cfg)
		if err != nil {
			return nil, nil, err
		}
		rot := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    derefInt(cfg.MaxSizeMB, 10),
			MaxBackups: derefInt(cfg.MaxBackups, 3),
			MaxAge:     derefInt(cfg.MaxAgeDays, 14),
			Compress:   derefBool(cfg.Compress, true),
		}
		return rot, rot.Close, nil
	default:
		return nil, nil, fmt.Errorf("logging: unknown sink %q", sink)
	}
}

func logFilePath(cfg Config) (string, error) {
	if cfg.File != nil {
		path := filepath.Clean(strings.TrimSpace(*cfg.File))
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return "", fmt.Errorf("logging: create log dir: %w", err)
		}
		return path, nil
	}
	dir, err := appdirs.DataDir()
	if err != nil {
		return "", fmt.Errorf("logging: %w", err)
	}
	return filepath.Join(dir, identity.LogFile), nil
}

func derefInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func derefBool(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
