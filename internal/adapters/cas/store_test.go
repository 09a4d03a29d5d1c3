package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/adapters/cas"
	"go.trai.ch/exportmap/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store := cas.NewStore()

	rec := domain.RunRecord{
		Scenario:    "esbuild-node-cjs",
		Fingerprint: "0123456789abcdef",
		Passed:      true,
		Observed: domain.Report{
			"index": {Filename: "index.mjs", ResolvedFrom: "exports['.'].import"},
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Put(root, rec))

	got, err := store.Get(root, "esbuild-node-cjs")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	// Overwrite keeps a single file.
	rec.Passed = false
	require.NoError(t, store.Put(root, rec))
	entries, err := os.ReadDir(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	got, err = store.Get(root, "esbuild-node-cjs")
	require.NoError(t, err)
	assert.False(t, got.Passed)
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	got, err := cas.NewStore().Get(t.TempDir(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store := cas.NewStore()

	require.NoError(t, store.Put(root, domain.RunRecord{Scenario: "bun-ts"}))

	dir := filepath.Join(root, domain.DefaultStorePath())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{ invalid json"), domain.PrivateFilePerm))

	_, err = store.Get(root, "bun-ts")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}
