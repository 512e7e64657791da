// Package logx provides leveled, component-tagged logging on stderr.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level identifies the severity of a log line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu      sync.RWMutex
	out     io.Writer = os.Stderr
	debugOn           = envDebug()
)

func envDebug() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("JEX_DEBUG"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// SetOutput redirects all loggers to w. Tests use this to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetDebug toggles debug-level output, overriding the JEX_DEBUG environment
// variable.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugOn = enabled
}

// Logger writes timestamped lines tagged with a component name.
type Logger struct {
	component string
}

// New returns a logger for the given component.
func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) Debug(format string, args ...any) {
	mu.RLock()
	enabled := debugOn
	mu.RUnlock()
	if !enabled {
		return
	}
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	message := fmt.Sprintf(format, args...)

	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(out, "[%s] [%s] %s: %s\n", timestamp, l.component, level, message)
}
