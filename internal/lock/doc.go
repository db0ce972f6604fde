// Package lock keeps two gitautocommit processes from driving the same
// repository at the same time.
//
// A Locker owns one lock file in the system temporary directory, named after
// a hash of the repository's absolute path:
//
//	/tmp/gitautocommit-<repo-hash>.lock
//
// The file holds the owner's PID under an exclusive flock. A file whose owner
// is no longer alive is treated as stale, removed and recreated.
//
//	l, err := lock.New("/path/to/repo")
//	if err != nil {
//	    return err
//	}
//	if err := l.Acquire(); err != nil {
//	    return err // errors.Is(err, errors.ErrAlreadyRunning) when another instance holds it
//	}
//	defer l.Release()
//
// A Locker is not safe for concurrent use by multiple goroutines.
package lock
