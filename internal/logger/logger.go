// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

// Package logger provides a thin wrapper around zerolog.Logger with the
// constructors and context-aware helpers used throughout basket-buddy.
//
// The Logger type embeds zerolog.Logger so the full zerolog API (Debug,
// Info, Warn, Error, Fatal, ...) is available directly on *Logger.
// Application code passes *Logger by pointer and obtains request-scoped
// loggers via FromContext or FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// clientLogFileName is the log sink created next to the client
// executable; the client's stdout belongs to the terminal UI, so log
// output must go elsewhere.
const clientLogFileName = "basket-buddy.log"

// Logger is a thin wrapper around zerolog.Logger. Embedding exposes the
// full zerolog API while letting the application add helpers without
// touching the upstream type.
type Logger struct {
	zerolog.Logger
}

// New constructs a *Logger for the given role label (e.g. "server",
// "client") writing JSON to os.Stdout.
//
// Every entry carries:
//   - a "role" field for filtering logs of different binaries;
//   - a "ts" timestamp;
//   - a "func" caller field recording the fully-qualified function name
//     instead of the default file:line form.
//
// level accepts any zerolog level string ("debug", "info", ...); an
// empty or unparsable value falls back to debug.
func New(role, level string) *Logger {
	return newWriterLogger(os.Stdout, role, level)
}

// NewClientLogger constructs a *Logger writing to a log file next to
// the executable. If the file cannot be opened it falls back to
// os.Stdout rather than failing client startup.
func NewClientLogger(role, level string) *Logger {
	var sink io.Writer = os.Stdout

	execPath, err := os.Executable()
	if err == nil {
		logPath := filepath.Join(filepath.Dir(execPath), clientLogFileName)
		logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			sink = logFile
		}
	}

	return newWriterLogger(sink, role, level)
}

func newWriterLogger(sink io.Writer, role, level string) *Logger {
	zerolog.SetGlobalLevel(parseLevel(level))
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(sink).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

func parseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.DebugLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.DebugLevel
	}
	return parsed
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Component returns a child *Logger carrying a "component" field, used
// to tell the engine's collaborators apart in one shared log stream.
func (l *Logger) Component(name string) *Logger {
	return &Logger{l.With().Str("component", name).Logger()}
}

// WithContext returns a copy of ctx carrying the logger, retrievable
// with FromContext further down the call chain.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromRequest extracts the zerolog.Logger stored in the request context
// by zerolog's log.Ctx helper and returns it as a *Logger. Used by
// handlers whose logging middleware attached a request-scoped logger.
func FromRequest(r *http.Request) *Logger {
	return &Logger{*log.Ctx(r.Context())}
}

// FromContext extracts the zerolog.Logger stored in ctx and returns it
// as a *Logger. If ctx carries no logger zerolog falls back to its
// global logger, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
