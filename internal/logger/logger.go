package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bashhack/gitautocommit/internal/constants"
)

// Logger separates the structured run log from the lines a user reads.
//
// Debug, Info, Warning and Error go to the structured log. Debug and Warning
// are echoed to stdout in verbose mode, Error always goes to stderr.
// InfoToUser, WarningToUser, Success and StatusMessage always reach stdout.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)

	InfoToUser(format string, args ...any)
	WarningToUser(format string, args ...any)
	Success(format string, args ...any)
	StatusMessage(format string, args ...any)

	// Close flushes and closes the log file, if any.
	Close() error
}

// DefaultLogger writes the structured log with zerolog into a rotating file
// and user-facing lines to the configured writers.
type DefaultLogger struct {
	mu      sync.Mutex
	log     zerolog.Logger
	enabled bool
	logFile string
	verbose bool
	runID   string
	stdout  io.Writer
	stderr  io.Writer
	file    io.WriteCloser
}

// New creates a logger writing user lines to the process stdout and stderr
func New(enabled bool, logFile string, verbose bool) *DefaultLogger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	l := &DefaultLogger{
		log:     zerolog.Nop(),
		enabled: enabled,
		logFile: logFile,
		verbose: verbose,
		runID:   uuid.NewString(),
		stdout:  stdout,
		stderr:  stderr,
	}

	if !enabled {
		return l
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
		_, _ = fmt.Fprintf(stderr, "⚠️  Failed to create log directory: %v, using stderr instead\n", err)
		l.log = newZerolog(stderr, l.runID)
		return l
	}

	file := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
	}
	l.file = file
	l.log = newZerolog(file, l.runID)

	_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)
	l.log.Info().Str("pid", fmt.Sprint(os.Getpid())).Msg(constants.AppName + " debug logging started")

	return l
}

func newZerolog(w io.Writer, runID string) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
}

// RunID identifies this process in the structured log
func (l *DefaultLogger) RunID() string {
	return l.runID
}

// Debug logs a diagnostic message, echoed to stdout in verbose mode
func (l *DefaultLogger) Debug(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log.Debug().Msg(msg)

	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "🔍 %s\n", msg)
	}
}

// Info logs an informational message (file only)
func (l *DefaultLogger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.log.Info().Msg(fmt.Sprintf(format, args...))
}

// Warning logs a warning, echoed to stdout in verbose mode
func (l *DefaultLogger) Warning(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log.Warn().Msg(msg)

	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
	}
}

// Error logs an error and always reports it on stderr
func (l *DefaultLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log.Error().Msg(msg)

	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", msg)
}

// InfoToUser logs an informational message to both file and stdout
func (l *DefaultLogger) InfoToUser(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log.Info().Bool("user", true).Msg(msg)

	_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", msg)
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log.Warn().Bool("user", true).Msg(msg)

	_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.log.Info().Bool("user", true).Msg(msg)

	_, _ = fmt.Fprintf(l.stdout, "✅ %s\n", msg)
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close closes the rotating log file
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.log = zerolog.Nop()
	return err
}

// SetStdout sets a custom writer for user-facing stdout messages only.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
