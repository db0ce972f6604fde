package git

import (
	"fmt"

	"github.com/bashhack/gitautocommit/internal/constants"
	"github.com/bashhack/gitautocommit/internal/errors"
)

// Validate checks that directory is the worktree root of a repository and
// that interval is usable. It never modifies the repository.
func Validate(directory string, intervalSeconds int) error {
	if !IsRepository(directory) {
		return errors.NewConfigError("directory", directory,
			errors.Wrap(errors.ErrNotGitRepository, fmt.Sprintf("%s is not the root of a git repository", directory)))
	}

	if intervalSeconds < constants.MinIntervalSeconds {
		return errors.NewConfigError("interval", intervalSeconds, errors.ErrIntervalTooSmall)
	}

	return nil
}

// IsRepository reports whether path is the worktree root of a non-bare repository
func IsRepository(path string) bool {
	r, err := Open(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}
