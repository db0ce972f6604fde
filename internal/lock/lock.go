package lock

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bashhack/gitautocommit/internal/constants"
	gacErrors "github.com/bashhack/gitautocommit/internal/errors"
)

// Locker prevents two instances from driving the same repository at once
type Locker struct {
	lockFile string
	lockFd   *os.File
	pid      int
	acquired bool
}

// New creates a Locker for the specified repository path
func New(repoPath string) (*Locker, error) {
	return NewInDir(repoPath, os.TempDir())
}

// NewInDir creates a Locker whose lock file lives in dir
func NewInDir(repoPath, dir string) (*Locker, error) {
	if runtime.GOOS == "windows" {
		return nil, gacErrors.NewLockError("", 0,
			gacErrors.Wrap(gacErrors.ErrLockAcquisitionFailure,
				"instance locking is only supported on Unix-like operating systems"))
	}

	repoHash := fmt.Sprintf("%x", sha256.Sum256([]byte(repoPath)))[:16]
	lockFile := filepath.Join(dir, fmt.Sprintf("%s-%s.lock", constants.AppName, repoHash))

	return &Locker{
		lockFile: lockFile,
		pid:      os.Getpid(),
	}, nil
}

// Path returns the lock file location
func (l *Locker) Path() string {
	return l.lockFile
}

// Acquire tries to acquire the lock
func (l *Locker) Acquire() error {
	err := l.tryCreateLock()
	if err == nil {
		return nil
	}
	if os.IsExist(err) {
		return l.tryAcquireExistingLock()
	}
	return err
}

// tryCreateLock attempts to create and lock a new lock file
func (l *Locker) tryCreateLock() error {
	var err error

	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		// Pass through the original error so os.IsExist() can detect it
		if os.IsExist(err) {
			return err
		}
		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(err, "failed to create lock file"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()
		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(err, "failed to acquire lock on newly created lock file"))
	}

	return l.finishAcquire(l.writePidToLockFile)
}

// tryAcquireExistingLock acquires a lock on an existing lock file
func (l *Locker) tryAcquireExistingLock() error {
	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_RDWR, 0o600)
	if err != nil {
		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(err, "failed to open existing lock file"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()

		// EWOULDBLOCK and EAGAIN are distinct on some older systems.
		if gacErrors.Is(err, unix.EWOULDBLOCK) || gacErrors.Is(err, unix.EAGAIN) {
			return l.handleBlockedLock()
		}

		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(err, "failed to acquire lock"))
	}

	// The previous owner exited without removing its file.
	return l.finishAcquire(l.resetAndWritePid)
}

// finishAcquire records our PID and marks the lock as held
func (l *Locker) finishAcquire(write func() error) error {
	if err := write(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return gacErrors.Wrap(err, fmt.Sprintf("failed to write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// handleBlockedLock handles locks held by another process
// and attempts to recover from stale locks
func (l *Locker) handleBlockedLock() error {
	otherPid, pidErr := l.readLockFilePid()
	if pidErr != nil {
		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(gacErrors.ErrAlreadyRunning, fmt.Sprintf("could not identify the owner's PID: %v", pidErr)))
	}

	if isProcessRunning(otherPid) {
		return gacErrors.NewLockError(l.lockFile, otherPid, gacErrors.ErrAlreadyRunning)
	}

	return l.handleStaleLock(otherPid)
}

// acquireFlock gets an exclusive non-blocking lock
func (l *Locker) acquireFlock() error {
	return unix.Flock(int(l.lockFd.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// resetAndWritePid clears the file and writes the current PID
func (l *Locker) resetAndWritePid() error {
	if err := l.lockFd.Truncate(0); err != nil {
		return gacErrors.NewLockError(l.lockFile, l.pid,
			gacErrors.Wrap(err, "failed to truncate lock file"))
	}

	return l.writePidToLockFile()
}

// writePidToLockFile writes PID to the lock file
func (l *Locker) writePidToLockFile() error {
	if _, err := l.lockFd.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		return gacErrors.NewLockError(l.lockFile, l.pid,
			gacErrors.Wrap(err, "failed to write PID to lock file"))
	}
	return nil
}

// closeFileDescriptor closes the lock file descriptor
func (l *Locker) closeFileDescriptor() {
	if l.lockFd != nil {
		_ = l.lockFd.Close()
		l.lockFd = nil
	}
}

// isProcessRunning checks if a process exists using signal 0
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// handleStaleLock removes and recreates a lock whose owner is gone
func (l *Locker) handleStaleLock(otherPid int) error {
	l.closeFileDescriptor()

	if err := os.Remove(l.lockFile); err != nil && !os.IsNotExist(err) {
		return gacErrors.NewLockError(l.lockFile, otherPid,
			gacErrors.Wrap(err, fmt.Sprintf("found stale lock file from PID %d, but failed to remove it", otherPid)))
	}

	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return gacErrors.NewLockError(l.lockFile, 0,
				gacErrors.Wrap(gacErrors.ErrAlreadyRunning, "another instance took the lock immediately after the stale lock was removed"))
		}
		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(err, "failed to open lock file after removing stale lock"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()
		return gacErrors.NewLockError(l.lockFile, 0,
			gacErrors.Wrap(err, "failed to acquire lock even after removing stale lock"))
	}

	return l.finishAcquire(l.writePidToLockFile)
}

// readLockFilePid reads and parses the PID from the lock file
func (l *Locker) readLockFilePid() (int, error) {
	data, err := os.ReadFile(l.lockFile)
	if err != nil {
		return 0, gacErrors.Wrap(err, "failed to read lock file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, gacErrors.Wrap(err, "invalid PID in lock file")
	}

	return pid, nil
}

// Release releases the lock if it was acquired
func (l *Locker) Release() error {
	if l.lockFd == nil {
		return nil
	}

	var err error

	fd := int(l.lockFd.Fd())
	var stat unix.Stat_t
	if statErr := unix.Fstat(fd, &stat); statErr != nil {
		err = gacErrors.NewLockError(l.lockFile, l.pid,
			gacErrors.Wrap(statErr, "failed to stat lock file - file descriptor is invalid"))
	} else if flockErr := unix.Flock(fd, unix.LOCK_UN); flockErr != nil {
		err = gacErrors.NewLockError(l.lockFile, l.pid,
			gacErrors.Wrap(flockErr, "failed to release lock"))
	}

	// Always close and remove, reporting only the first failure.
	if closeErr := l.lockFd.Close(); closeErr != nil && err == nil {
		err = gacErrors.NewLockError(l.lockFile, l.pid,
			gacErrors.Wrap(closeErr, "failed to close lock file"))
	}

	l.lockFd = nil
	l.acquired = false

	if removeErr := os.Remove(l.lockFile); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = gacErrors.NewLockError(l.lockFile, l.pid,
			gacErrors.Wrap(removeErr, "failed to remove lock file"))
	}

	return err
}
