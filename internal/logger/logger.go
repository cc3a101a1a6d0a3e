// Package logger provides levelled logging for searchdash.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow index and query execution.
// Warnings and errors are always printed.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log line.
type Fields = logrus.Fields

var (
	mu      sync.RWMutex
	verbose bool
	base    = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&plainFormatter{})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.WarnLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetLevel sets the minimum level by name (debug, info, warn, error).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	base.SetLevel(lvl)
	verbose = lvl >= logrus.DebugLevel
	return nil
}

// SetFormat selects "json" output or the default plain text lines.
func SetFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	base.SetFormatter(&plainFormatter{})
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	base.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	if !base.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(base.Out, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	base.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	base.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	base.Errorf(format, args...)
}

// WithFields returns an entry that attaches fields to every line it logs.
func WithFields(fields Fields) *logrus.Entry {
	return base.WithFields(fields)
}

// plainFormatter renders "[LEVEL] message key=value" lines.
type plainFormatter struct{}

func (f *plainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(levelName(entry.Level))
	b.WriteString("] ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(l logrus.Level) string {
	switch l {
	case logrus.TraceLevel, logrus.DebugLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}
