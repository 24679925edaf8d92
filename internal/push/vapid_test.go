package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condo-portal/internal/repositories"
)

type vapidRepoStub struct {
	public, private string
	loadErr         error
	saveErr         error
	saved           int
}

func (s *vapidRepoStub) Load(ctx context.Context) (string, string, error) {
	return s.public, s.private, s.loadErr
}

func (s *vapidRepoStub) Save(ctx context.Context, publicKey, privateKey string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved++
	s.public, s.private = publicKey, privateKey
	return nil
}

func TestLoadOrGenerateKeysUsesStoredPair(t *testing.T) {
	repo := &vapidRepoStub{public: "stored-pub", private: "stored-priv"}

	keys, err := LoadOrGenerateKeys(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, "stored-pub", keys.Public)
	assert.Equal(t, "stored-priv", keys.Private)
	assert.Zero(t, repo.saved)
}

func TestLoadOrGenerateKeysPersistsFirstPair(t *testing.T) {
	repo := &vapidRepoStub{loadErr: repositories.ErrNoVapidKeys}

	keys, err := LoadOrGenerateKeys(context.Background(), repo)
	require.NoError(t, err)
	assert.NotEmpty(t, keys.Public)
	assert.NotEmpty(t, keys.Private)
	assert.Equal(t, 1, repo.saved)
	assert.Equal(t, keys.Public, repo.public)
}

func TestLoadOrGenerateKeysFallsBackEphemeral(t *testing.T) {
	repo := &vapidRepoStub{loadErr: repositories.ErrNoVapidKeys, saveErr: assert.AnError}

	keys, err := LoadOrGenerateKeys(context.Background(), repo)
	require.NoError(t, err)
	assert.NotEmpty(t, keys.Public)
	assert.Zero(t, repo.saved)
}

func TestLoadOrGenerateKeysStoreUnavailable(t *testing.T) {
	repo := &vapidRepoStub{loadErr: assert.AnError}

	keys, err := LoadOrGenerateKeys(context.Background(), repo)
	require.NoError(t, err)
	assert.NotEmpty(t, keys.Public)
	assert.Zero(t, repo.saved)
}
