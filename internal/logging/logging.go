// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls logger output
type Config struct {
	Level      string // trace, debug, info, warn, error, fatal
	Format     string // "json" or "text"
	File       string // optional path; logs are appended
	WithCaller bool
}

// Init replaces log.Logger according to cfg. The returned closer releases the
// log file, if one was opened.
func Init(cfg Config, stderr io.Writer) (io.Closer, error) {
	var (
		writer io.Writer
		closer io.Closer = nopCloser{}
	)

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		closer = f
		if cfg.Format == "text" {
			writer = zerolog.ConsoleWriter{Out: f, NoColor: true}
		} else {
			writer = f
		}
	} else if cfg.Format == "text" {
		writer = zerolog.ConsoleWriter{Out: stderr}
	} else {
		writer = stderr
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	if cfg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return closer, err
	}
	zerolog.SetGlobalLevel(level)

	return closer, nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
