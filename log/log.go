// Package log wraps logrus for the engine facade, the REPL, and the CLI.
// The VM and parser packages never import it: per the engine's no-I/O
// guarantee, nothing on the next_event path logs.
package log

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields.
type Fields = logrus.Fields

// Entry aliases logrus.Entry.
type Entry = logrus.Entry

// Logger is the subset of logrus behavior the engine, repl, and cmd
// packages use.
type Logger interface {
	Debug(...interface{})
	Debugf(string, ...interface{})
	Info(...interface{})
	Infof(string, ...interface{})
	Warn(...interface{})
	Warnf(string, ...interface{})
	Error(...interface{})
	Errorf(string, ...interface{})

	WithField(key string, value interface{}) *Entry
	WithFields(Fields) *Entry
	WithContext(context.Context) Logger

	SetLevel(string) error
	SetOutput(io.Writer)
	SetJSONFormatter()
}

type logger struct {
	entry *logrus.Entry
}

// New returns a standalone logger, independent of the package-level
// global one.
func New() Logger {
	return logger{entry: logrus.NewEntry(logrus.New())}
}

func (l logger) WithContext(ctx context.Context) Logger { return logger{l.entry.WithContext(ctx)} }
func (l logger) Debug(args ...interface{})               { l.entry.Debug(args...) }
func (l logger) Debugf(f string, args ...interface{})    { l.entry.Debugf(f, args...) }
func (l logger) Info(args ...interface{})                { l.entry.Info(args...) }
func (l logger) Infof(f string, args ...interface{})     { l.entry.Infof(f, args...) }
func (l logger) Warn(args ...interface{})                { l.entry.Warn(args...) }
func (l logger) Warnf(f string, args ...interface{})     { l.entry.Warnf(f, args...) }
func (l logger) Error(args ...interface{})               { l.entry.Error(args...) }
func (l logger) Errorf(f string, args ...interface{})    { l.entry.Errorf(f, args...) }

func (l logger) WithField(key string, value interface{}) *Entry { return l.entry.WithField(key, value) }
func (l logger) WithFields(fields Fields) *Entry                { return l.entry.WithFields(fields) }

func (l logger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(lvl)
	return nil
}

func (l logger) SetOutput(w io.Writer) { l.entry.Logger.SetOutput(w) }
func (l logger) SetJSONFormatter()     { l.entry.Logger.SetFormatter(&logrus.JSONFormatter{}) }

var global = logger{entry: logrus.NewEntry(logrus.New())}

// Global returns the process-wide default logger used by cmd/rulekit
// when no engine-scoped logger has been configured.
func Global() Logger { return global }

// WithQuery returns an Entry tagged with a query_id field.
func WithQuery(l Logger, queryID string) *Entry {
	return l.WithField("query_id", queryID)
}

// WithFunctor returns an Entry tagged with a rule functor and arity.
func WithFunctor(l Logger, name string, arity int) *Entry {
	return l.WithFields(Fields{"functor": name, "arity": arity})
}
