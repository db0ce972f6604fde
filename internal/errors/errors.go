package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotGitRepository indicates the target path is not the root of a git repository
	ErrNotGitRepository = errors.New("not a valid git repository")

	// ErrIntervalTooSmall indicates the commit interval is below the allowed minimum
	ErrIntervalTooSmall = errors.New("the defined interval can't be smaller than 10 seconds")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrReservedBranchCheckedOut indicates the reserved auto-commit branch is
	// checked out at start, which usually means a previous run crashed
	ErrReservedBranchCheckedOut = errors.New("the auto-commit branch is currently checked out")

	// ErrDetachedHead indicates HEAD does not point at a branch
	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrNoCommits indicates the current branch has no commits yet
	ErrNoCommits = errors.New("the current branch has no commits")

	// ErrBranchNotFound indicates a requested local branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates a branch that should be created already exists
	ErrBranchExists = errors.New("branch already exists")

	// ErrPullFailed indicates the source branch could not be updated from its remote
	ErrPullFailed = errors.New("failed to pull source branch")

	// ErrPushFailed indicates the finished branch could not be pushed
	ErrPushFailed = errors.New("failed to push branch")

	// ErrMissingIdentity indicates no user.name / user.email is configured
	ErrMissingIdentity = errors.New("no git user identity configured")

	// ErrEmptyCommitMessage indicates the squash commit message was empty
	ErrEmptyCommitMessage = errors.New("commit message must not be empty")

	// ErrLockAcquisitionFailure indicates a lock file could not be acquired
	ErrLockAcquisitionFailure = errors.New("failed to acquire lock")

	// ErrAlreadyRunning indicates another instance is running for this repo
	ErrAlreadyRunning = errors.New("another gitautocommit instance is already running for this repository")

	// ErrGitOperationFailed indicates a repository operation returned an error
	ErrGitOperationFailed = errors.New("git operation failed")
)

// New creates a new error with the given message.
// This is a convenience function that wraps errors.New.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
// This is a convenience function that wraps fmt.Errorf.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsValidation reports whether err is a user input error that was detected
// before anything in the repository was touched.
func IsValidation(err error) bool {
	return Is(err, ErrNotGitRepository) ||
		Is(err, ErrIntervalTooSmall) ||
		Is(err, ErrInvalidConfiguration)
}

// GitError represents an error that occurred during a repository operation.
// It records the operation, the refs or paths it acted on, and the cause.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface with a detailed, user-friendly error message.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// Is lets every GitError match ErrGitOperationFailed.
func (e *GitError) Is(target error) bool {
	return target == ErrGitOperationFailed
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, err error, output string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Output:    output,
	}
}

// LockError represents an error that occurred when interacting with file locks.
// It includes the lock file path, process ID if available, and underlying error.
type LockError struct {
	LockFile string
	PID      int
	Err      error
}

// Error implements the error interface with details about the lock file and process.
func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("lock error with file %s (PID: %d): %v", e.LockFile, e.PID, e.Err)
	}
	return fmt.Sprintf("lock error with file %s: %v", e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile string, pid int, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		PID:      pid,
		Err:      err,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     any
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value any, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}
