package git

import (
	"context"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/bashhack/gitautocommit/internal/constants"
	"github.com/bashhack/gitautocommit/internal/errors"
	"github.com/bashhack/gitautocommit/internal/logger"
)

// TokenAuth returns HTTP basic auth carrying token, or nil when token is empty
func TokenAuth(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: constants.AppName, Password: token}
}

// RemotePusher publishes a branch to a remote and records it as upstream
type RemotePusher struct {
	repo   *Repository
	logger logger.Logger
	auth   transport.AuthMethod
}

// NewRemotePusher creates a RemotePusher. auth may be nil.
func NewRemotePusher(repo *Repository, log logger.Logger, auth transport.AuthMethod) *RemotePusher {
	return &RemotePusher{repo: repo, logger: log, auth: auth}
}

// Push pushes branch to remote ("origin" when empty). Failures are logged and
// returned wrapped in ErrPushFailed; callers treat them as non-fatal.
func (p *RemotePusher) Push(ctx context.Context, branch plumbing.ReferenceName, remote string) error {
	if remote == "" {
		remote = constants.DefaultRemote
	}

	err := p.push(ctx, branch, remote)
	if err != nil {
		p.logger.InfoToUser("Failed to push to %s: %v", remote, err)
		return errors.NewGitError("push", []string{remote, branch.Short()},
			errors.Wrap(errors.ErrPushFailed, err.Error()), "")
	}

	p.logger.Success("Pushed %s to %s", branch.Short(), remote)
	return nil
}

func (p *RemotePusher) push(ctx context.Context, branch plumbing.ReferenceName, remote string) error {
	if _, err := p.repo.repo.Remote(remote); err != nil {
		return err
	}

	if err := p.setUpstream(branch, remote); err != nil {
		return err
	}

	p.logger.Debug("Pushing to %s", remote)
	spec := config.RefSpec(fmt.Sprintf("%s:%s", branch, branch))
	err := p.repo.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       p.auth,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// setUpstream writes branch.<name>.remote and branch.<name>.merge
func (p *RemotePusher) setUpstream(branch plumbing.ReferenceName, remote string) error {
	cfg, err := p.repo.repo.Config()
	if err != nil {
		return err
	}

	if cfg.Branches == nil {
		cfg.Branches = make(map[string]*config.Branch)
	}
	cfg.Branches[branch.Short()] = &config.Branch{
		Name:   branch.Short(),
		Remote: remote,
		Merge:  branch,
	}
	return p.repo.repo.SetConfig(cfg)
}
