// Package logging adapts logrus to the nakama runtime.Logger interface so the
// same code logs the same way inside and outside the Nakama runtime.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// Logger implements runtime.Logger on top of a logrus entry.
type Logger struct {
	entry *logrus.Entry
}

var _ runtime.Logger = (*Logger)(nil)

// New wraps an existing logrus logger.
func New(l *logrus.Logger) *Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// NewWithConfig builds a logger writing to out with the given level
// ("debug", "info", ...) and format ("text" or "json").
func NewWithConfig(out io.Writer, level, format string) (*Logger, error) {
	l := logrus.New()
	l.SetOutput(out)

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return New(l), nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(l)
}

func (l *Logger) Debug(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *Logger) Info(format string, v ...interface{}) { l.entry.Infof(format, v...) }
func (l *Logger) Warn(format string, v ...interface{}) { l.entry.Warnf(format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

func (l *Logger) WithField(key string, v interface{}) runtime.Logger {
	return &Logger{entry: l.entry.WithField(key, v)}
}

func (l *Logger) WithFields(fields map[string]interface{}) runtime.Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.entry.Data))
	for k, v := range l.entry.Data {
		out[k] = v
	}
	return out
}
