package application_test

import (
	"context"
	"testing"

	"github.com/ericfisherdev/pulldeck/internal/application"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentialStore struct {
	token     string
	readCalls int
	saveErr   error
}

func (f *fakeCredentialStore) Read(_ context.Context) (string, error) {
	f.readCalls++
	return f.token, nil
}

func (f *fakeCredentialStore) Save(_ context.Context, token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	return nil
}

func (f *fakeCredentialStore) Delete(_ context.Context) error {
	f.token = ""
	return nil
}

func (f *fakeCredentialStore) Has(_ context.Context) (bool, error) {
	return f.token != "", nil
}

var _ driven.CredentialStore = (*fakeCredentialStore)(nil)

func TestCredentialCache_TokenCachesRead(t *testing.T) {
	store := &fakeCredentialStore{token: "ghp_abc"}
	cache := application.NewCredentialCache(store)

	for range 3 {
		token, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ghp_abc", token)
	}

	assert.Equal(t, 1, store.readCalls)
}

func TestCredentialCache_MissingTokenNotCached(t *testing.T) {
	store := &fakeCredentialStore{}
	cache := application.NewCredentialCache(store)

	_, err := cache.Token(context.Background())
	assert.ErrorIs(t, err, driven.ErrMissingToken)

	store.token = "ghp_late"
	token, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_late", token)
}

func TestCredentialCache_SaveUpdatesCache(t *testing.T) {
	store := &fakeCredentialStore{}
	cache := application.NewCredentialCache(store)

	require.NoError(t, cache.Save(context.Background(), "ghp_new"))

	token, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_new", token)
	assert.Equal(t, 0, store.readCalls)
}

func TestCredentialCache_DeleteInvalidates(t *testing.T) {
	store := &fakeCredentialStore{token: "ghp_abc"}
	cache := application.NewCredentialCache(store)

	_, err := cache.Token(context.Background())
	require.NoError(t, err)

	require.NoError(t, cache.Delete(context.Background()))

	_, err = cache.Token(context.Background())
	assert.ErrorIs(t, err, driven.ErrMissingToken)
}

func TestCredentialCache_InvalidateForcesReread(t *testing.T) {
	store := &fakeCredentialStore{token: "ghp_v1"}
	cache := application.NewCredentialCache(store)

	_, err := cache.Token(context.Background())
	require.NoError(t, err)

	store.token = "ghp_v2"
	cache.Invalidate()

	token, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_v2", token)
}
