package git

import (
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bashhack/gitautocommit/internal/clock"
	"github.com/bashhack/gitautocommit/internal/constants"
	"github.com/bashhack/gitautocommit/internal/errors"
)

// BotSignature is the identity stamped on snapshot commits, dated now
func BotSignature(c clock.Clock) object.Signature {
	return object.Signature{
		Name:  constants.BotName,
		Email: constants.BotEmail,
		When:  c.Now(),
	}
}

// UserSignature reads user.name and user.email from the repository, global
// and system configuration, in that order, and dates the result now.
func (r *Repository) UserSignature(c clock.Clock) (object.Signature, error) {
	scopes := make([]*config.Config, 0, 3)

	local, err := r.repo.Config()
	if err != nil {
		return object.Signature{}, errors.NewGitError("config", []string{"user.name"}, err, "")
	}
	scopes = append(scopes, local)

	for _, scope := range []config.Scope{config.GlobalScope, config.SystemScope} {
		if cfg, err := config.LoadConfig(scope); err == nil {
			scopes = append(scopes, cfg)
		}
	}

	return signatureFrom(c, scopes...)
}

// signatureFrom takes the first non-empty name and email across cfgs
func signatureFrom(c clock.Clock, cfgs ...*config.Config) (object.Signature, error) {
	sig := object.Signature{When: c.Now()}
	for _, cfg := range cfgs {
		if cfg == nil {
			continue
		}
		if sig.Name == "" {
			sig.Name = cfg.User.Name
		}
		if sig.Email == "" {
			sig.Email = cfg.User.Email
		}
	}

	if sig.Name == "" || sig.Email == "" {
		return object.Signature{}, errors.Wrap(errors.ErrMissingIdentity,
			`set it with "git config user.name" and "git config user.email"`)
	}
	return sig, nil
}
