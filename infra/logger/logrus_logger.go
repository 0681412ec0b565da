package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Logger on top of sirupsen/logrus. It emits JSON
// unless APP_ENV=dev.
type LogrusLogger struct {
	entry *logrus.Entry
}

var logrusLevels = map[level]logrus.Level{
	levelDebug: logrus.DebugLevel,
	levelInfo:  logrus.InfoLevel,
	levelWarn:  logrus.WarnLevel,
	levelError: logrus.ErrorLevel,
}

func newLogrusLogger(component string, lvl level, out io.Writer) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrusLevels[lvl])
	if devMode() {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return &LogrusLogger{entry: l.WithField("component", component)}
}

func (l *LogrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }

func (l *LogrusLogger) Debugw(msg string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LogrusLogger) Infof(format string, args ...any) { l.entry.Infof(format, args...) }

func (l *LogrusLogger) Infow(msg string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *LogrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
