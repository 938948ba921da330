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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	kindWidth   = 10 // Width for file kind
	statusWidth = 12 // Width for status text
)

// 🎯 FileOperation is one published file, as shown to the user
type FileOperation struct {
	Path       string // Destination path relative to the site root
	Kind       string // report, image, html, landing, sites
	Status     string // new, modified, unchanged, deleted, skipped
	IsNew      bool
	IsModified bool
	IsRemoved  bool
}

// 📦 SyncOperation describes a whole publish run
type SyncOperation struct {
	Source      string
	Destination string
	Mode        string
}

// 🎯 Logger prints user facing lines and mirrors them into zerolog
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	current    *SyncOperation
	operations []FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

type contextKey struct{}

// 🎯 FromContext gets the logger from context, a silent one when none was set
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return New(io.Discard, zerolog.Nop())
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsRemoved:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "report":
		kindColor = color.FgMagenta
	case "sites", "landing":
		kindColor = color.FgYellow
	default:
		kindColor = color.FgBlue
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogFileOperation prints one file line
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)
	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Info().
		Str("file", op.Path).
		Str("kind", op.Kind).
		Str("status", op.Status).
		Msg("file operation")
}

// 📝 StartSync prints the run header
func (l *Logger) StartSync(ctx context.Context, op SyncOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.operations = nil

	fmt.Fprintf(l.console, "[publishing %s]\n", color.New(color.FgCyan).Sprint(op.Destination))
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Source),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Mode))

	l.zlog.Info().
		Str("source", op.Source).
		Str("destination", op.Destination).
		Str("mode", op.Mode).
		Msg("starting sync")
}

// 📝 EndSync closes the current run and returns how many file lines it printed
func (l *Logger) EndSync(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return 0
	}
	n := len(l.operations)
	l.zlog.Info().
		Str("source", l.current.Source).
		Int("files", n).
		Msg("sync complete")

	l.current = nil
	l.operations = nil
	return n
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("cardsync")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📜 Block prints captured tool output under a title, indented like file lines
func (l *Logger) Block(title, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.Bold).Sprint(title))
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(l.console, "%*s%s\n", fileIndent, "", line)
	}
	l.zlog.Debug().Str("output", text).Msg(title)
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

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
