package logging

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Sink string

const (
	SinkStderr Sink = "stderr"
	SinkFile   Sink = "file"
	SinkNone   Sink = "none"
)

const (
	EnvLogLevel      = "PANESTORE_LOG_LEVEL"
	EnvLogFormat     = "PANESTORE_LOG_FORMAT"
	EnvLogSink       = "PANESTORE_LOG_SINK"
	EnvLogFile       = "PANESTORE_LOG_FILE"
	EnvLogAddSource  = "PANESTORE_LOG_ADD_SOURCE"
	EnvLogMaxSizeMB  = "PANESTORE_LOG_MAX_SIZE_MB"
	EnvLogMaxBackups = "PANESTORE_LOG_MAX_BACKUPS"
	EnvLogMaxAgeDays = "PANESTORE_LOG_MAX_AGE_DAYS"
	EnvLogCompress   = "PANESTORE_LOG_COMPRESS"
)

// Config holds optional overrides. Nil fields fall back to the mode defaults.
type Config struct {
	Level     *string
	Format    *string
	Sink      *string
	File      *string
	AddSource *bool

	MaxSizeMB  *int
	MaxBackups *int
	MaxAgeDays *int
	Compress   *bool
}

// DefaultConfig keeps one-shot commands quiet and makes the watcher write a
// rotating JSON log.
func DefaultConfig(mode Mode) Config {
	level := "error"
	sink := string(SinkStderr)
	format := string(FormatText)
	addSource := false

	if mode == ModeWatch {
		level = "info"
		sink = string(SinkFile)
		format = string(FormatJSON)
	}

	maxSizeMB := 10
	maxBackups := 3
	maxAgeDays := 14
	compress := true

	return Config{
		Level:      &level,
		Format:     &format,
		Sink:       &sink,
		AddSource:  &addSource,
		MaxSizeMB:  &maxSizeMB,
		MaxBackups: &maxBackups,
		MaxAgeDays: &maxAgeDays,
		Compress:   &compress,
	}
}

// WithLevel returns c with the level set, ignoring blank input.
func (c Config) WithLevel(level string) Config {
	if level = strings.TrimSpace(level); level != "" {
		c.Level = &level
	}
	return c
}

func (c Config) WithEnv() Config {
	applyString := func(dst **string, env string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = &v
		}
	}
	applyBool := func(dst **bool, env string) {
		raw := strings.TrimSpace(os.Getenv(env))
		if raw == "" {
			return
		}
		v := !isDisabledString(raw)
		*dst = &v
	}
	applyInt := func(dst **int, env string) {
		raw := strings.TrimSpace(os.Getenv(env))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return
		}
		*dst = &n
	}

	applyString(&c.Level, EnvLogLevel)
	applyString(&c.Format, EnvLogFormat)
	applyString(&c.Sink, EnvLogSink)
	applyString(&c.File, EnvLogFile)
	applyBool(&c.AddSource, EnvLogAddSource)
	applyInt(&c.MaxSizeMB, EnvLogMaxSizeMB)
	applyInt(&c.MaxBackups, EnvLogMaxBackups)
	applyInt(&c.MaxAgeDays, EnvLogMaxAgeDays)
	applyBool(&c.Compress, EnvLogCompress)
	return c
}

func (c Config) Normalize() (Config, error) {
	lower := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.ToLower(strings.TrimSpace(*s))
		if v == "" {
			return nil
		}
		return &v
	}
	nonNegative := func(n *int) *int {
		if n == nil || *n >= 0 {
			return n
		}
		zero := 0
		return &zero
	}
	c.Level = lower(c.Level)
	c.Format = lower(c.Format)
	c.Sink = lower(c.Sink)
	if c.File != nil {
		v := strings.TrimSpace(*c.File)
		if v == "" {
			c.File = nil
		} else {
			c.File = &v
		}
	}
	c.MaxSizeMB = nonNegative(c.MaxSizeMB)
	c.MaxBackups = nonNegative(c.MaxBackups)
	c.MaxAgeDays = nonNegative(c.MaxAgeDays)
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.Level != nil {
		switch *c.Level {
		case "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("logging.level: invalid %q", *c.Level)
		}
	}
	if c.Format != nil {
		switch Format(*c.Format) {
		case FormatText, FormatJSON:
		default:
			return fmt.Errorf("logging.format: invalid %q", *c.Format)
		}
	}
	if c.Sink != nil {
		switch Sink(*c.Sink) {
		case SinkStderr, SinkFile, SinkNone:
		default:
			return fmt.Errorf("logging.sink: invalid %q", *c.Sink)
		}
	}
	return nil
}

func isDisabledString(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no", "off":
		return true
	default:
		return false
	}
}
