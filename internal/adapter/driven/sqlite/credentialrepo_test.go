package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestCredentialRepo_SaveReadRoundTrip(t *testing.T) {
	repo := NewCredentialRepo(setupTestDB(t), testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "ghp_secret_token"))

	token, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret_token", token)

	has, err := repo.Has(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCredentialRepo_ReadMissing(t *testing.T) {
	repo := NewCredentialRepo(setupTestDB(t), testKey)

	token, err := repo.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	has, err := repo.Has(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCredentialRepo_SaveReplaces(t *testing.T) {
	repo := NewCredentialRepo(setupTestDB(t), testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "first"))
	require.NoError(t, repo.Save(ctx, "second"))

	token, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestCredentialRepo_Delete(t *testing.T) {
	repo := NewCredentialRepo(setupTestDB(t), testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "tok"))
	require.NoError(t, repo.Delete(ctx))
	// Deleting again is not an error.
	require.NoError(t, repo.Delete(ctx))

	token, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCredentialRepo_ValueEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "ghp_secret_token"))

	var stored string
	err := db.Reader.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = 'github_token'`).Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "ghp_secret_token")
}

func TestCredentialRepo_NoKey(t *testing.T) {
	repo := NewCredentialRepo(setupTestDB(t), nil)

	_, err := repo.Read(context.Background())
	assert.ErrorIs(t, err, ErrEncryptionKeyNotSet)

	err = repo.Save(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrEncryptionKeyNotSet)
}
