// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log renders cycle progress on a console and mirrors it to zerolog.
package log

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/batchcopier/pkg/operation"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 10 // Width for status text
)

// 🎯 FileOperation represents a transferred or failed file for logging
type FileOperation struct {
	Path   string // File path
	Status string // Operation status
	Failed bool   // Whether the operation failed
	Err    error  // Cause of the failure
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

var _ operation.Observer = (*Logger)(nil)

// 🏭 New creates a new logger writing colored lines to console
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	symbol := color.New(color.FgGreen).Sprint("✓")
	status := color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", statusWidth, op.Status))
	if op.Failed {
		symbol = color.New(color.FgRed).Sprint("✗")
		status = color.New(color.FgRed).Sprint(fmt.Sprintf("%-*s", statusWidth, op.Status))
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		symbol,
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		status)
	if op.Err != nil {
		line += " " + color.New(color.Faint).Sprint(op.Err.Error())
	}
	return line
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	event := l.zlog.Info()
	if op.Failed {
		event = l.zlog.Error().Err(op.Err)
	}
	event.Str("file", op.Path).Str("status", op.Status).Msg("file operation")
}

// 📝 StartCycle prints a header when a cycle found markers
func (l *Logger) StartCycle(ctx context.Context, markers int) {
	if markers == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d batch(es) ready", markers))

	l.zlog.Info().Int("markers", markers).Msg("starting cycle")
}

// 📝 FileTransferred logs a file that reached the target directory
func (l *Logger) FileTransferred(ctx context.Context, file string) {
	l.LogFileOperation(ctx, FileOperation{
		Path:   filepath.Base(file),
		Status: "moved",
	})
}

// 📝 BatchFailed logs a batch left in the input directory
func (l *Logger) BatchFailed(ctx context.Context, marker string, err error) {
	l.LogFileOperation(ctx, FileOperation{
		Path:   filepath.Base(marker),
		Status: "failed",
		Failed: true,
		Err:    err,
	})
}

// 📝 EndCycle prints a summary of a cycle that did any work
func (l *Logger) EndCycle(ctx context.Context, report operation.CycleReport) {
	switch {
	case report.Err != nil:
		l.Errorf("cycle failed: %v", report.Err)
	case report.Failed > 0:
		l.Warningf("%d file(s) in %d batch(es), %d batch(es) failed (%s)",
			report.Files, report.Batches, report.Failed, report.Duration())
	case report.Markers > 0:
		l.Successf("%d file(s) in %d batch(es) (%s)", report.Files, report.Batches, report.Duration())
	}
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("batchcopier")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
