// Package log gives every other package a narrow structured-logging
// interface instead of a shared mutable global, backed by logrus the way
// TheBitDrifter-warehouse's consumers (and the rest of the example pack)
// reach for logrus/zap rather than the standard library's log package.
package log

import "github.com/sirupsen/logrus"

// Logger is the logging surface core packages depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a Logger backed by a fresh *logrus.Logger at the given level,
// using logrus's text formatter with timestamps.
func New(level logrus.Level) Logger {
	base := logrus.New()
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusLogger{entry: logrus.NewEntry(base)}
}

// Nop returns a Logger that discards everything, for tests and callers
// that don't want logging wired in.
func Nop() Logger {
	return New(logrus.PanicLevel)
}

func (l *logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}
