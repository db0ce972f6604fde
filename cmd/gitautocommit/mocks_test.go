package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bashhack/gitautocommit/internal/git"
)

// MockRunner implements Runner for testing
type MockRunner struct {
	Result    *git.Result
	RunErr    error
	RunCalled bool
	Ctx       context.Context //nolint:containedctx // recorded for assertions
}

func (m *MockRunner) Run(ctx context.Context) (*git.Result, error) {
	m.RunCalled = true
	m.Ctx = ctx
	return m.Result, m.RunErr
}

// MockLocker implements Locker for testing
type MockLocker struct {
	AcquireErr    error
	ReleaseErr    error
	AcquireCalled bool
	ReleaseCount  int
}

func (m *MockLocker) Acquire() error {
	m.AcquireCalled = true
	return m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCount++
	return m.ReleaseErr
}

// MockLogger records every line by method name
type MockLogger struct {
	mu       sync.Mutex
	Lines    []string
	Closed   int
	CloseErr error
}

func (m *MockLogger) record(kind, format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines = append(m.Lines, kind+": "+fmt.Sprintf(format, args...))
}

func (m *MockLogger) Debug(format string, args ...any)   { m.record("debug", format, args...) }
func (m *MockLogger) Info(format string, args ...any)    { m.record("info", format, args...) }
func (m *MockLogger) Warning(format string, args ...any) { m.record("warning", format, args...) }
func (m *MockLogger) Error(format string, args ...any)   { m.record("error", format, args...) }

func (m *MockLogger) InfoToUser(format string, args ...any) {
	m.record("user", format, args...)
}

func (m *MockLogger) WarningToUser(format string, args ...any) {
	m.record("user-warning", format, args...)
}

func (m *MockLogger) Success(format string, args ...any) {
	m.record("success", format, args...)
}

func (m *MockLogger) StatusMessage(format string, args ...any) {
	m.record("status", format, args...)
}

func (m *MockLogger) Close() error {
	m.Closed++
	return m.CloseErr
}

// Output joins every recorded line
func (m *MockLogger) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.Lines, "\n")
}
