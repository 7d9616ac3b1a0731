// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
// Package loggers created by WithContext follow the change.
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger carrying ctx that always writes through the current root logger.
// It is meant for package level loggers declared before the root logger is configured.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

type derived struct {
	parent Logger
	child  Logger
}

type contextLogger struct {
	ctx   []any
	cache atomic.Pointer[derived]
}

func (c *contextLogger) current() Logger {
	parent := Root()
	if d := c.cache.Load(); d != nil && d.parent == parent {
		return d.child
	}
	child := parent.With(c.ctx...)
	c.cache.Store(&derived{parent, child})
	return child
}

func (c *contextLogger) With(ctx ...any) Logger {
	return WithContext(append(append([]any{}, c.ctx...), ctx...)...)
}

func (c *contextLogger) New(ctx ...any) Logger {
	return c.With(ctx...)
}

func (c *contextLogger) Log(level slog.Level, msg string, ctx ...any) {
	c.current().Write(level, msg, ctx...)
}

func (c *contextLogger) Trace(msg string, ctx ...any) { c.current().Write(LevelTrace, msg, ctx...) }
func (c *contextLogger) Debug(msg string, ctx ...any) { c.current().Write(LevelDebug, msg, ctx...) }
func (c *contextLogger) Info(msg string, ctx ...any)  { c.current().Write(LevelInfo, msg, ctx...) }
func (c *contextLogger) Warn(msg string, ctx ...any)  { c.current().Write(LevelWarn, msg, ctx...) }
func (c *contextLogger) Error(msg string, ctx ...any) { c.current().Write(LevelError, msg, ctx...) }
func (c *contextLogger) Crit(msg string, ctx ...any)  { c.current().Crit(msg, ctx...) }

func (c *contextLogger) Write(level slog.Level, msg string, attrs ...any) {
	c.current().Write(level, msg, attrs...)
}

func (c *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return c.current().Enabled(ctx, level)
}

func (c *contextLogger) Handler() slog.Handler {
	return c.current().Handler()
}

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Write(slog.LevelError, msg, ctx...)
}
