// Package logger writes gridview's diagnostic output to stderr.
//
// Errors are always written. Debug, info and warning messages appear only
// with --verbose, where they trace loads, reloads and view recomputation.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level orders messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu        sync.Mutex
	threshold           = LevelError
	out       io.Writer = os.Stderr
)

// SetVerbose lowers the threshold to LevelDebug, or restores it to
// LevelError.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		threshold = LevelDebug
	} else {
		threshold = LevelError
	}
}

// IsVerbose reports whether debug messages are written.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return threshold == LevelDebug
}

// SetOutput redirects messages, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < threshold {
		return
	}
	fmt.Fprintf(out, "[%s] %s\n", level, fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }

// Error is written even without --verbose: scheduled reloads and watchers
// have no caller to return their errors to.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Timed logs the start of an operation and returns a function that logs how
// long it took:
//
//	defer logger.Timed("loading %s", name)()
func Timed(format string, args ...any) func() {
	label := fmt.Sprintf(format, args...)
	Debug("%s...", label)
	start := time.Now()
	return func() {
		Debug("%s took %s", label, time.Since(start).Round(time.Microsecond))
	}
}
