package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
)

// Config holds the configuration for the logger
type Config struct {
	Level  string
	Output string // "stdout", "stderr", or file path
	Pretty bool
}

// Init replaces the package logger. Unknown levels fall back to info.
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}

	var l zerolog.Logger
	if cfg.Pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"})
	} else {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l = zerolog.New(output)
	}
	l = l.Level(level).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

func openOutput(out string) (io.Writer, error) {
	switch out {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", out, err)
	}
	return f, nil
}

// Get returns the logger instance
func Get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// Set swaps the package logger, mostly for tests.
func Set(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

func Debug() *zerolog.Event { return Get().Debug() }

func Info() *zerolog.Event { return Get().Info() }

func Warn() *zerolog.Event { return Get().Warn() }

func Error() *zerolog.Event { return Get().Error() }
