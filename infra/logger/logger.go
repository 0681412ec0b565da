package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	corelogger "github.com/kilianp07/powerplan/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// Supported backends.
const (
	BackendZerolog = "zerolog"
	BackendLogrus  = "logrus"
)

// Options selects the backend and minimum level used by New.
type Options struct {
	Backend string
	Level   string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Infow(string, map[string]any)  {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

var (
	mu       sync.RWMutex
	defaults = Options{Backend: BackendZerolog, Level: "info"}
)

// Configure sets the options used by subsequent calls to New.
func Configure(opts Options) error {
	if opts.Backend == "" {
		opts.Backend = BackendZerolog
	}
	if opts.Level == "" {
		opts.Level = "info"
	}
	if opts.Backend != BackendZerolog && opts.Backend != BackendLogrus {
		return fmt.Errorf("unknown log backend %q", opts.Backend)
	}
	if _, err := parseLevel(opts.Level); err != nil {
		return err
	}
	mu.Lock()
	defaults = opts
	mu.Unlock()
	return nil
}

// New returns a Logger for the given component using the configured backend.
// The console format is selected when APP_ENV=dev.
func New(component string) Logger {
	mu.RLock()
	opts := defaults
	mu.RUnlock()
	return NewWithOptions(component, opts)
}

// NewWithOptions builds a Logger without touching the package defaults.
func NewWithOptions(component string, opts Options) Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	lvl, err := parseLevel(opts.Level)
	if err != nil {
		lvl = levelInfo
	}
	if opts.Backend == BackendLogrus {
		return newLogrusLogger(component, lvl, opts.Output)
	}
	return newZerologLogger(component, lvl, opts.Output)
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) (level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return levelDebug, nil
	case "", "info":
		return levelInfo, nil
	case "warn", "warning":
		return levelWarn, nil
	case "error":
		return levelError, nil
	}
	return levelInfo, fmt.Errorf("unknown log level %q", s)
}

func devMode() bool { return strings.ToLower(os.Getenv("APP_ENV")) == "dev" }
