// Package logger wraps zerolog with context-attached fields so that request
// scoped values (request id, user id) follow a call into the service layer.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the structured logger.  A nil Level means info.
type Options struct {
	ServiceName string
	Level       *zerolog.Level
	Format      string // json or console
	Output      io.Writer
}

type Logger struct {
	base *zerolog.Logger
}

type ctxKey struct{}

func New(opts Options) *Logger {
	level := zerolog.InfoLevel
	if opts.Level != nil {
		level = *opts.Level
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	l := zerolog.New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(level)
	return &Logger{base: &l}
}

// Nop returns a logger that discards everything; handy in tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{base: &l}
}

// ParseLevel maps a config value to a level, falling back to info.
func ParseLevel(value string) *zerolog.Level {
	lvl := parseLevel(value)
	return &lvl
}

func parseLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

func (l *Logger) from(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return l.base
}

// WithField returns a child context whose log lines carry key=value.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	entry := l.from(ctx).With().Interface(key, value).Logger()
	return context.WithValue(ctx, ctxKey{}, &entry)
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithUserID(ctx context.Context, userID any) context.Context {
	return l.WithField(ctx, "user_id", userID)
}

// Debug starts a debug event so callers can attach typed fields.
func (l *Logger) Debug(ctx context.Context) *zerolog.Event { return l.from(ctx).Debug() }

func (l *Logger) Info(ctx context.Context) *zerolog.Event { return l.from(ctx).Info() }

func (l *Logger) Warn(ctx context.Context) *zerolog.Event { return l.from(ctx).Warn() }

func (l *Logger) Error(ctx context.Context, err error) *zerolog.Event {
	return l.from(ctx).Error().Err(err)
}
