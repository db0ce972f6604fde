package git

import (
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/bashhack/gitautocommit/internal/errors"
)

// Repository is the run's exclusive handle on one repository and its worktree.
// It must be released with Close.
type Repository struct {
	path string
	repo *gogit.Repository
	wt   *gogit.Worktree
}

// Open opens the repository whose worktree root is path.
// No upward discovery is done: a subdirectory of a repository is rejected.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, errors.NewGitError("open", []string{path},
			errors.Wrap(errors.ErrNotGitRepository, err.Error()), "")
	}

	wt, err := repo.Worktree()
	if err != nil {
		_ = closeStorer(repo)
		return nil, errors.NewGitError("open", []string{path},
			errors.Wrap(errors.ErrNotGitRepository, err.Error()), "")
	}

	return &Repository{path: path, repo: repo, wt: wt}, nil
}

// Close releases the object storage held by the handle
func (r *Repository) Close() error {
	if r == nil || r.repo == nil {
		return nil
	}
	err := closeStorer(r.repo)
	r.repo = nil
	r.wt = nil
	return err
}

func closeStorer(repo *gogit.Repository) error {
	if c, ok := repo.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Path returns the worktree root
func (r *Repository) Path() string {
	return r.path
}

// CurrentBranch returns the branch HEAD points at, without resolving it.
// A detached HEAD returns ErrDetachedHead.
func (r *Repository) CurrentBranch() (plumbing.ReferenceName, error) {
	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", errors.NewGitError("rev-parse", []string{"HEAD"}, err, "")
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", errors.ErrDetachedHead
	}
	return head.Target(), nil
}

// Head returns the branch HEAD points at and the commit it resolves to.
// An unborn branch returns ErrNoCommits.
func (r *Repository) Head() (plumbing.ReferenceName, plumbing.Hash, error) {
	name, err := r.CurrentBranch()
	if err != nil {
		return "", plumbing.ZeroHash, err
	}

	hash, err := r.BranchTip(name)
	if errors.Is(err, errors.ErrBranchNotFound) {
		return name, plumbing.ZeroHash, errors.ErrNoCommits
	}
	return name, hash, err
}

// BranchTip returns the commit a local branch points at
func (r *Repository) BranchTip(name plumbing.ReferenceName) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, errors.Wrap(errors.ErrBranchNotFound, name.Short())
	}
	if err != nil {
		return plumbing.ZeroHash, errors.NewGitError("rev-parse", []string{name.String()}, err, "")
	}
	return ref.Hash(), nil
}

// BranchExists reports whether a local branch exists
func (r *Repository) BranchExists(name plumbing.ReferenceName) (bool, error) {
	_, err := r.BranchTip(name)
	if errors.Is(err, errors.ErrBranchNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateBranch points a new local branch at hash
func (r *Repository) CreateBranch(name plumbing.ReferenceName, hash plumbing.Hash) error {
	exists, err := r.BranchExists(name)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrap(errors.ErrBranchExists, name.Short())
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return errors.NewGitError("branch", []string{name.Short(), hash.String()}, err, "")
	}
	return nil
}

// DeleteBranch removes a local branch reference
func (r *Repository) DeleteBranch(name plumbing.ReferenceName) error {
	if err := r.repo.Storer.RemoveReference(name); err != nil {
		return errors.NewGitError("branch", []string{"-D", name.Short()}, err, "")
	}
	return nil
}

// Checkout switches HEAD to a local branch. With keep, the index and
// worktree are left exactly as they are; otherwise they are updated to the
// branch tip and local modifications make the checkout fail.
func (r *Repository) Checkout(name plumbing.ReferenceName, keep bool) error {
	err := r.wt.Checkout(&gogit.CheckoutOptions{
		Branch: name,
		Keep:   keep,
	})
	if err != nil {
		return errors.NewGitError("checkout", []string{name.Short()}, err, "")
	}
	return nil
}
