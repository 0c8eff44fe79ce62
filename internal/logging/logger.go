// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package logging is the leveled diagnostic logger used by miractl.
// Diagnostics go to stderr (and the optional log file) so command output
// on stdout stays scriptable.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/miractl/miractl/internal/syncutil"
	"github.com/miractl/miractl/pkg/mira"
)

// Level represents the logging level
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelInfo
	LevelVerbose
	LevelDebug
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelSilent:
		return "silent"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel resolves a level name as written in the config file
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off":
		return LevelSilent, nil
	case "error":
		return LevelError, nil
	case "", "info":
		return LevelInfo, nil
	case "verbose":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromFlags maps the --verbose and --debug flags onto a level,
// starting from base
func LevelFromFlags(base Level, verbose, debug bool) Level {
	switch {
	case debug:
		return LevelDebug
	case verbose && base < LevelVerbose:
		return LevelVerbose
	default:
		return base
	}
}

// Logger writes leveled messages to the console and an optional file
type Logger struct {
	mu      syncutil.Mutex
	level   Level
	file    *os.File
	fileLog *log.Logger
	console *log.Logger
}

// NewLogger creates a logger writing to stderr, and to logFile if set.
// The file receives every message at or below level, with timestamps.
func NewLogger(level Level, logFile string) (*Logger, error) {
	l := New(level, os.Stderr)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = file
		l.fileLog = log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	}

	return l, nil
}

// New creates a console-only logger writing to w
func New(level Level, w io.Writer) *Logger {
	return &Logger{
		level:   level,
		console: log.New(w, "", 0),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(LevelSilent, io.Discard)
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.fileLog = nil
		return err
	}
	return nil
}

// SetConsole redirects console output. The TUI points it at io.Discard
// while it owns the terminal.
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console.SetOutput(w)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current logging level
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, "ERROR: ", format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, "", format, v...)
}

func (l *Logger) Verbose(format string, v ...interface{}) {
	l.log(LevelVerbose, "", format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, "DEBUG: ", format, v...)
}

// LogFrame logs a frame as spaced hex at debug level. It matches the
// mira.Session trace hook.
func (l *Logger) LogFrame(label string, frame []byte) {
	if l.Level() < LevelDebug {
		return
	}
	var s strings.Builder
	for i, b := range frame {
		if i > 0 {
			s.WriteByte(' ')
		}
		fmt.Fprintf(&s, "%02x", b)
	}
	l.Debug("%s [%d]: %s", label, len(frame), s.String())
}

// LogCommand logs a submitted command and its outcome
func (l *Logger) LogCommand(cmd mira.Command, err error) {
	if err != nil {
		l.Error("%s: %v", mira.FormatCommand(cmd), err)
		return
	}
	l.Verbose("sent %s", mira.FormatCommand(cmd))
}

func (l *Logger) log(level Level, prefix, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level < level {
		return
	}
	msg := prefix + fmt.Sprintf(format, v...)
	if l.fileLog != nil {
		l.fileLog.Println(msg)
	}
	l.console.Println(msg)
}
