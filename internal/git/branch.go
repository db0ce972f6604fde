package git

import (
	"context"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/bashhack/gitautocommit/internal/clock"
	"github.com/bashhack/gitautocommit/internal/constants"
	"github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/logger"
)

// ReservedRef is the branch owned by a run for its snapshot commits
var ReservedRef = plumbing.NewBranchReferenceName(constants.ReservedBranch)

// BranchController moves the repository through the branch lifecycle of a
// run: it records where the user started, owns the reserved branch while
// snapshots are taken, and brings HEAD back afterwards.
type BranchController struct {
	repo   *Repository
	clock  clock.Clock
	logger logger.Logger
	auth   transport.AuthMethod

	startRef    plumbing.ReferenceName
	startCommit plumbing.Hash
}

// NewBranchController creates a BranchController. auth may be nil.
func NewBranchController(repo *Repository, c clock.Clock, log logger.Logger, auth transport.AuthMethod) *BranchController {
	return &BranchController{repo: repo, clock: c, logger: log, auth: auth}
}

// CheckStart refuses to start on the reserved branch, on a detached HEAD or
// on a branch without commits. It returns the current branch.
func (b *BranchController) CheckStart() (plumbing.ReferenceName, error) {
	name, err := b.repo.CurrentBranch()
	if errors.Is(err, errors.ErrDetachedHead) {
		return "", errors.Wrap(err, "check out the branch you want to work on first")
	}
	if err != nil {
		return "", err
	}

	if name == ReservedRef {
		b.logger.InfoToUser("You're still on a %s branch.", constants.ReservedBranch)
		b.logger.InfoToUser("This is most likely because of a previous crash or unusual program termination. Please fix your repository first.")
		return "", errors.ErrReservedBranchCheckedOut
	}

	if _, err := b.repo.BranchTip(name); errors.Is(err, errors.ErrBranchNotFound) {
		return "", errors.Wrap(errors.ErrNoCommits, name.Short())
	} else if err != nil {
		return "", err
	}

	return name, nil
}

// CheckoutSource checks out an existing local branch and fast-forwards it
// from the remote branch it tracks
func (b *BranchController) CheckoutSource(ctx context.Context, name string) error {
	ref := plumbing.NewBranchReferenceName(name)
	if exists, err := b.repo.BranchExists(ref); err != nil {
		return err
	} else if !exists {
		return errors.Wrap(errors.ErrBranchNotFound, name)
	}

	b.logger.InfoToUser("Starting on branch %s", name)
	if err := b.repo.Checkout(ref, false); err != nil {
		return err
	}

	remote, merge, err := b.upstream(name)
	if err != nil {
		return err
	}

	b.logger.Debug("Pulling %s from %s", merge.Short(), remote)
	err = b.repo.wt.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    remote,
		ReferenceName: merge,
		SingleBranch:  true,
		Auth:          b.auth,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		b.logger.Debug("%s is already up to date", name)
		return nil
	}
	if err != nil {
		return errors.NewGitError("pull", []string{remote, merge.Short()},
			errors.Wrap(errors.ErrPullFailed, err.Error()), "")
	}
	return nil
}

// upstream returns the remote and remote branch a local branch tracks
func (b *BranchController) upstream(name string) (string, plumbing.ReferenceName, error) {
	cfg, err := b.repo.repo.Branch(name)
	if err != nil || cfg.Remote == "" || cfg.Merge == "" {
		return "", "", errors.NewGitError("pull", []string{name},
			errors.Wrap(errors.ErrPullFailed, fmt.Sprintf("branch %s has no upstream configured", name)), "")
	}
	return cfg.Remote, cfg.Merge, nil
}

// CreateTarget creates a new branch at HEAD and checks it out
func (b *BranchController) CreateTarget(name string) error {
	_, tip, err := b.repo.Head()
	if err != nil {
		return err
	}

	b.logger.InfoToUser("Creating %s branch", name)
	ref := plumbing.NewBranchReferenceName(name)
	if err := b.repo.CreateBranch(ref, tip); err != nil {
		return err
	}
	return b.repo.Checkout(ref, true)
}

// CaptureStart records the branch and commit to return to and squash onto,
// after any source checkout or target branch creation
func (b *BranchController) CaptureStart() error {
	ref, tip, err := b.repo.Head()
	if err != nil {
		return err
	}
	b.startRef = ref
	b.startCommit = tip
	b.logger.Info("Start branch %s at %s", ref.Short(), tip)

	switch ref.Short() {
	case "master", "main":
		b.logger.WarningToUser("You're currently working on the %s branch!", ref.Short())
	}
	return nil
}

// StartRef returns the captured start branch
func (b *BranchController) StartRef() plumbing.ReferenceName {
	return b.startRef
}

// StartCommit returns the captured start commit
func (b *BranchController) StartCommit() plumbing.Hash {
	return b.startCommit
}

// RecoverStale renames a reserved branch left behind by an earlier run into
// the archive namespace. It returns the archive branch, or "" if there was
// nothing to recover.
func (b *BranchController) RecoverStale() (string, error) {
	tip, err := b.repo.BranchTip(ReservedRef)
	if errors.Is(err, errors.ErrBranchNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	b.logger.InfoToUser("A %s branch still exists. This is most likely because of a previous crash or unusual program termination.", constants.ReservedBranch)

	archive, err := b.archiveName()
	if err != nil {
		return "", err
	}
	archiveRef := plumbing.NewBranchReferenceName(archive)

	if err := b.repo.CreateBranch(archiveRef, tip); err != nil {
		return "", err
	}
	if err := b.repo.DeleteBranch(ReservedRef); err != nil {
		return "", err
	}

	b.logger.InfoToUser("We have automatically renamed it to %s.", archive)
	b.logger.InfoToUser("If you don't need it anymore, you can delete it by running `git branch -D %s`", archive)
	b.logger.InfoToUser("You can remove all of them at once using `git branch -D $(git branch | grep %s/)`", constants.ArchiveNamespace)

	return archive, nil
}

// archiveName picks a free name under the archive namespace
func (b *BranchController) archiveName() (string, error) {
	base := constants.ArchiveNamespace + "/" + b.clock.Now().Format(constants.ArchiveTimeLayout)
	name := base
	for i := 1; ; i++ {
		exists, err := b.repo.BranchExists(plumbing.NewBranchReferenceName(name))
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

// AcquireReserved creates the reserved branch at HEAD and checks it out,
// keeping uncommitted edits in place
func (b *BranchController) AcquireReserved() error {
	_, tip, err := b.repo.Head()
	if err != nil {
		return err
	}

	b.logger.Debug("Creating auto commit branch")
	if err := b.repo.CreateBranch(ReservedRef, tip); err != nil {
		return err
	}

	b.logger.Debug("Checking out auto commit branch")
	return b.repo.Checkout(ReservedRef, true)
}

// ReservedTip returns the last snapshot on the reserved branch
func (b *BranchController) ReservedTip() (plumbing.Hash, error) {
	return b.repo.BranchTip(ReservedRef)
}

// Return checks out the start branch, leaving the index and worktree as the
// last snapshot left them
func (b *BranchController) Return() error {
	b.logger.InfoToUser("Checking out %s", b.startRef.Short())
	return b.repo.Checkout(b.startRef, true)
}

// Release deletes the reserved branch
func (b *BranchController) Release() error {
	b.logger.Debug("Removing auto commit branch")
	return b.repo.DeleteBranch(ReservedRef)
}
