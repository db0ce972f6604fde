package git

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"

	"github.com/bashhack/gitautocommit/internal/errors"
)

// changedPaths lists every path that differs between HEAD, the index and the
// worktree. Ignored files are not reported.
func (r *Repository) changedPaths() (gogit.Status, []string, error) {
	status, err := r.wt.Status()
	if err != nil {
		return nil, nil, errors.NewGitError("status", nil, err, "")
	}

	paths := make([]string, 0, len(status))
	for path, s := range status {
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return status, paths, nil
}

// StageAll stages new, modified and deleted files, like "git add -A".
// It returns the number of changed entries.
func (r *Repository) StageAll() (int, error) {
	status, paths, err := r.changedPaths()
	if err != nil {
		return 0, err
	}

	for _, path := range paths {
		switch status[path].Worktree {
		case gogit.Unmodified:
			// already staged
		case gogit.Deleted:
			if _, err := r.wt.Remove(path); err != nil {
				return 0, errors.NewGitError("rm", []string{path}, err, "")
			}
		default:
			if _, err := r.wt.Add(path); err != nil {
				return 0, errors.NewGitError("add", []string{path}, err, "")
			}
		}
	}

	return len(paths), nil
}
