package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, ok, err := storage.LatestIndex(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	keys := validators(t, 2)
	sc, err := Sign(testCheckpoint(originDomain, 4), keys...)
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(sc))

	older, err := Sign(testCheckpoint(originDomain, 2), keys[0])
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(older))

	latest, ok, err := storage.LatestIndex(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(4), latest)

	fetched, err := storage.FetchCheckpoint(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, &sc, fetched)

	fetched, err = storage.FetchCheckpoint(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, &older, fetched)

	missing, err := storage.FetchCheckpoint(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLocalStorageCorruptFileIsPermanent(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.json"), []byte("{"), 0o644))

	_, err = storage.FetchCheckpoint(context.Background(), 7)
	assert.Error(t, err)
}
