package git

import (
	"testing"

	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitautocommit/internal/errors"
)

func identity(name, email string) *config.Config {
	cfg := config.NewConfig()
	cfg.User.Name = name
	cfg.User.Email = email
	return cfg
}

func TestBotSignature(t *testing.T) {
	sig := BotSignature(fixedClock())

	assert.Equal(t, "GitAutocommit", sig.Name)
	assert.Equal(t, "@GitAutocommit", sig.Email)
	assert.True(t, sig.When.Equal(testTime))
}

func TestSignatureFrom(t *testing.T) {
	t.Run("first scope wins", func(t *testing.T) {
		sig, err := signatureFrom(fixedClock(), identity("Local", "local@x"), identity("Global", "global@x"))
		require.NoError(t, err)
		assert.Equal(t, "Local", sig.Name)
		assert.Equal(t, "local@x", sig.Email)
		assert.True(t, sig.When.Equal(testTime))
	})

	t.Run("fields fall through independently", func(t *testing.T) {
		sig, err := signatureFrom(fixedClock(), identity("Local", ""), nil, identity("", "system@x"))
		require.NoError(t, err)
		assert.Equal(t, "Local", sig.Name)
		assert.Equal(t, "system@x", sig.Email)
	})

	t.Run("missing identity", func(t *testing.T) {
		_, err := signatureFrom(fixedClock(), identity("", ""), identity("Only Name", ""))
		assert.ErrorIs(t, err, errors.ErrMissingIdentity)
	})
}

func TestUserSignatureFromRepository(t *testing.T) {
	tr := newTestRepo(t)
	r := openRepository(t, tr.dir)

	sig, err := r.UserSignature(fixedClock())
	require.NoError(t, err)
	assert.Equal(t, testUserName, sig.Name)
	assert.Equal(t, testUserEmail, sig.Email)
}
