package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

var zerologLevels = map[level]zerolog.Level{
	levelDebug: zerolog.DebugLevel,
	levelInfo:  zerolog.InfoLevel,
	levelWarn:  zerolog.WarnLevel,
	levelError: zerolog.ErrorLevel,
}

// NewZerologLogger creates a ZerologLogger at info level writing to stdout.
func NewZerologLogger(component string) Logger {
	return NewWithOptions(component, Options{Backend: BackendZerolog})
}

func newZerologLogger(component string, lvl level, out io.Writer) *ZerologLogger {
	w := out
	if devMode() {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(zerologLevels[lvl]).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
