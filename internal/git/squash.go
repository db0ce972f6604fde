package git

import (
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/logger"
)

// SquashMerger collapses the snapshot commits into one user-authored commit
// on the branch currently checked out
type SquashMerger struct {
	repo   *Repository
	logger logger.Logger
}

// NewSquashMerger creates a SquashMerger
func NewSquashMerger(repo *Repository, log logger.Logger) *SquashMerger {
	return &SquashMerger{repo: repo, logger: log}
}

// Squash commits tip's tree as one commit whose only parent is start, on the
// branch currently checked out. The index is loaded from tip and the branch
// moved back to start, so the commit holds exactly what the last snapshot
// captured; the worktree is never read or written. It returns
// plumbing.ZeroHash when tip == start or when the snapshots cancel each
// other out.
func (s *SquashMerger) Squash(start, tip plumbing.Hash, message string, author object.Signature) (plumbing.Hash, error) {
	if tip == start {
		return plumbing.ZeroHash, nil
	}
	if strings.TrimSpace(message) == "" {
		return plumbing.ZeroHash, errors.ErrEmptyCommitMessage
	}

	s.logger.InfoToUser("Squashing and merging auto commits")

	// Edits made after the last snapshot stay in the worktree, uncommitted.
	if err := s.reset(tip, gogit.MixedReset); err != nil {
		return plumbing.ZeroHash, err
	}
	if err := s.reset(start, gogit.SoftReset); err != nil {
		return plumbing.ZeroHash, err
	}

	s.logger.Debug("Committing changes with %s <%s>", author.Name, author.Email)
	hash, err := s.repo.wt.Commit(message, &gogit.CommitOptions{
		Author:    &author,
		Committer: &author,
	})
	if errors.Is(err, gogit.ErrEmptyCommit) {
		s.logger.InfoToUser("The auto commits cancel each other out, nothing to squash")
		return plumbing.ZeroHash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, errors.NewGitError("commit", []string{"-m", message}, err, "")
	}

	s.logger.Success("Squashed changes have been committed")
	return hash, nil
}

func (s *SquashMerger) reset(to plumbing.Hash, mode gogit.ResetMode) error {
	if err := s.repo.wt.Reset(&gogit.ResetOptions{Commit: to, Mode: mode}); err != nil {
		return errors.NewGitError("reset", []string{to.String()}, err, "")
	}
	return nil
}
