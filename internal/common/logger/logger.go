package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// WithRequestID stores the request id that WithContext later attaches to entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type Logger struct{ entry *logrus.Entry }

var base = newBase(os.Stdout)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return l
}

// SetLevel changes the level of every logger created by New.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
}

func New(service string) *Logger { return newLogger(base, service) }

// NewWithOutput is New writing to w at debug level.
func NewWithOutput(service string, w io.Writer) *Logger {
	l := newBase(w)
	l.SetLevel(logrus.DebugLevel)
	return newLogger(l, service)
}

func newLogger(l *logrus.Logger, service string) *Logger {
	return &Logger{entry: l.WithFields(logrus.Fields{
		"service":    service,
		"hostname":   hostname(),
		"request_id": "",
	})}
}

func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return &Logger{entry: l.entry.WithField("request_id", id)}
	}
	return l
}

func (l *Logger) log(level logrus.Level, action string, fields map[string]any, err error) {
	e := l.entry.WithField("action", action)
	if fields != nil {
		e = e.WithFields(logrus.Fields(fields))
	}
	if err != nil {
		e = e.WithField("error", map[string]any{"msg": err.Error()})
	}
	e.Log(level, action)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log(logrus.InfoLevel, action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(logrus.DebugLevel, action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any)  { l.log(logrus.WarnLevel, action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(logrus.ErrorLevel, action, fields, err)
}

func hostname() string { h, _ := os.Hostname(); return h }
