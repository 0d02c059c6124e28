// Package logger provides the engine's structured logger: a thin
// singleton wrapper around logrus with context-carried request fields
// and a distinct channel for authorization audit events.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/ncobase/nquery/config"
	"github.com/ncobase/nquery/ecode"
	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// requestIDKey carries a caller-assigned request id through contexts.
var requestIDKey = contextKey{}

// WithRequestID returns a context whose log entries carry the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Logger wraps logrus with context-aware entry construction.
type Logger struct {
	*logrus.Logger
	logFile *os.File
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StandardLogger returns the singleton logger instance.
func StandardLogger() *Logger {
	once.Do(func() {
		standardLogger = &Logger{Logger: logrus.New()}
		standardLogger.SetFormatter(&logrus.JSONFormatter{})
	})
	return standardLogger
}

// Init applies the logger configuration. The returned cleanup closes
// the log file when file output is configured.
func (l *Logger) Init(c *config.Logger) (func(), error) {
	l.SetLevel(logrus.Level(c.Level))

	switch c.Format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	switch c.Output {
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		if c.OutputFile != "" {
			f, err := os.OpenFile(c.OutputFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0666)
			if err != nil {
				return nil, err
			}
			l.logFile = f
			l.SetOutput(f)
		}
	default:
		l.SetOutput(os.Stdout)
	}

	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
		}
	}, nil
}

// entryFromContext creates a new log entry with fields from context.
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		fields["request_id"] = id
	}
	return l.WithFields(fields)
}

func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.entryFromContext(ctx).Debugf(format, args...)
}

func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.entryFromContext(ctx).Infof(format, args...)
}

func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.entryFromContext(ctx).Warnf(format, args...)
}

func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.entryFromContext(ctx).Errorf(format, args...)
}

// Audit logs an authorization refusal. TenantNotInScope and Denied stay
// distinguishable here even though the caller sees both as forbidden.
func (l *Logger) Audit(ctx context.Context, code ecode.Code, entity string) {
	l.entryFromContext(ctx).WithFields(logrus.Fields{
		"audit":  true,
		"code":   string(code),
		"entity": entity,
	}).Warn("authorization refused")
}

// Package-level helpers against the singleton.

func Init(c *config.Logger) (func(), error) { return StandardLogger().Init(c) }

func Debugf(ctx context.Context, format string, args ...any) {
	StandardLogger().Debugf(ctx, format, args...)
}
func Infof(ctx context.Context, format string, args ...any) {
	StandardLogger().Infof(ctx, format, args...)
}
func Warnf(ctx context.Context, format string, args ...any) {
	StandardLogger().Warnf(ctx, format, args...)
}
func Errorf(ctx context.Context, format string, args ...any) {
	StandardLogger().Errorf(ctx, format, args...)
}
func Audit(ctx context.Context, code ecode.Code, entity string) {
	StandardLogger().Audit(ctx, code, entity)
}
