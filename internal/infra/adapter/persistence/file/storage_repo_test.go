package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"einvoice-news/internal/repository"
)

func TestStorageRepo_RoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	first := NewStorageRepo(path)
	require.NoError(t, first.Set(ctx, repository.KeyGitHubToken, "ghp_secret"))
	require.NoError(t, first.Set(ctx, repository.KeySessionToken, "abc"))

	second := NewStorageRepo(path)
	v, ok, err := second.Get(ctx, repository.KeyGitHubToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_secret", v)

	require.NoError(t, second.Delete(ctx, repository.KeyGitHubToken))
	_, ok, err = first.Get(ctx, repository.KeyGitHubToken)
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStorageRepo_MissingFile(t *testing.T) {
	repo := NewStorageRepo(filepath.Join(t.TempDir(), "absent.json"))
	_, ok, err := repo.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorageRepo_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo := NewStorageRepo(path)
	_, _, err := repo.Get(context.Background(), "k")
	assert.Error(t, err)
}
