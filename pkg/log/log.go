// Copyright 2020 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is a zap backed structured logger.
//
// Log calls take a message followed by alternating keys and values:
//
//	log.Info("Encoded document", "file", name, "links", n)
package log

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

// Level of a log entry.
type Level zapcore.Level

// The log levels used by this package.
const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Setup configures the logging library with the given config. It is safe to
// call Setup multiple times, the last call wins.
func Setup(cfg Config, opts ...Option) error {
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	o := applyOptions(opts)
	return setupConsole(cfg.Console, o)
}

func setupConsole(cfg ConsoleConfig, opts options) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return serrors.Wrap("unable to parse log.console.level", err, "level", cfg.Level)
	}
	// "none" disables stack traces by raising the threshold past every level.
	stacktraceLvl := zapcore.FatalLevel + 1
	if cfg.StacktraceLevel != "none" {
		if err := stacktraceLvl.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil {
			return serrors.Wrap("unable to parse log.console.stacktrace_level", err,
				"level", cfg.StacktraceLevel)
		}
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoding := "json"
	if strings.ToLower(cfg.Format) == "human" {
		encoding = "console"
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          encoding,
		EncoderConfig:     encCfg,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: false,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	zOpts := append(opts.zapOptions(), zap.AddStacktrace(stacktraceLvl))
	l, err := zCfg.Build(zOpts...)
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	zap.ReplaceGlobals(l)
	return nil
}

// HandlePanic catches panics and logs them. The panic is re-raised after
// logging.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.ByteString("stack", debug.Stack()))
		Flush()
		panic(msg)
	}
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	if err := zap.L().Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "Unable to flush log: %v\n", err)
	}
}

// Syncing stderr on a terminal reports EINVAL or ENOTTY, both harmless.
func isIgnorableSyncError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "invalid argument") ||
		strings.Contains(s, "inappropriate ioctl for device")
}

type logger struct {
	logger *zap.Logger
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// FromZap wraps a zap logger.
func FromZap(l *zap.Logger) Logger {
	return &logger{logger: l}
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	zap.L().Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	zap.L().Info(msg, convertCtx(ctx)...)
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	zap.L().Error(msg, convertCtx(ctx)...)
}

// ConvertCtx converts alternating key value pairs to zap fields. A dangling
// key is dropped.
func ConvertCtx(ctx []any) []zap.Field {
	return convertCtx(ctx)
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}
