package git

import (
	"context"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/bashhack/gitautocommit/internal/clock"
	"github.com/bashhack/gitautocommit/internal/constants"
	"github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/logger"
)

// Snapshot describes one bot commit
type Snapshot struct {
	Hash    plumbing.Hash
	Changes int
}

// Committer produces a snapshot when the worktree is dirty
type Committer interface {
	CommitIfDirty(ctx context.Context) (Snapshot, bool, error)
}

// SnapshotCommitter commits the whole worktree on whatever branch is checked
// out, authored by the bot identity
type SnapshotCommitter struct {
	repo   *Repository
	clock  clock.Clock
	logger logger.Logger
}

// NewSnapshotCommitter creates a SnapshotCommitter
func NewSnapshotCommitter(repo *Repository, c clock.Clock, log logger.Logger) *SnapshotCommitter {
	return &SnapshotCommitter{repo: repo, clock: c, logger: log}
}

// CommitIfDirty stages every change and commits it. A clean worktree is a
// no-op and reports committed == false. The context is not consulted: a
// commit in progress always completes.
func (s *SnapshotCommitter) CommitIfDirty(_ context.Context) (Snapshot, bool, error) {
	_, paths, err := s.repo.changedPaths()
	if err != nil {
		return Snapshot{}, false, err
	}
	if len(paths) == 0 {
		s.logger.Debug("No changes found")
		return Snapshot{}, false, nil
	}

	changes, err := s.repo.StageAll()
	if err != nil {
		return Snapshot{}, false, err
	}

	sig := BotSignature(s.clock)
	hash, err := s.repo.wt.Commit(constants.SnapshotMessage, &gogit.CommitOptions{
		Author:    &sig,
		Committer: &sig,
	})
	if errors.Is(err, gogit.ErrEmptyCommit) {
		// Only stat-level differences: the tree matches HEAD.
		s.logger.Debug("No changes found")
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, errors.NewGitError("commit", []string{"-m", constants.SnapshotMessage}, err, "")
	}

	s.logger.InfoToUser("Auto committed %d change(s) on %s", changes, sig.When.Format("2006-01-02 15:04:05"))
	s.logger.Info("snapshot %s with %d change(s)", hash, changes)

	return Snapshot{Hash: hash, Changes: changes}, true, nil
}
