package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoragePutDeleteURL(t *testing.T) {
	root := t.TempDir()
	st, err := NewDiskStorage(root, "http://localhost:3000")
	require.NoError(t, err)

	ctx := context.Background()
	path, err := st.Put(ctx, "tracks", "Demo Song.MP3", strings.NewReader("audio bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "tracks/"), "stored under the collection, got %q", path)
	assert.True(t, strings.HasSuffix(path, ".mp3"), "extension lowercased, got %q", path)
	assert.NotContains(t, path, "Demo Song", "original filename not reused")

	onDisk := filepath.Join(root, path)
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))

	assert.Equal(t, "http://localhost:3000/storage/"+path, st.URL(path))

	require.NoError(t, st.Delete(ctx, path))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, st.Delete(ctx, path))
}

func TestDiskStorageDeleteRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	st, err := NewDiskStorage(root, "http://localhost:3000")
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, st.Delete(ctx, "../outside.txt"))
	assert.Error(t, st.Delete(ctx, "/etc/passwd"))
}

func TestDiskStorageDistinctNamesForSameFilename(t *testing.T) {
	root := t.TempDir()
	st, err := NewDiskStorage(root, "http://localhost:3000")
	require.NoError(t, err)

	ctx := context.Background()
	a, err := st.Put(ctx, "covers", "cover.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	b, err := st.Put(ctx, "covers", "cover.jpg", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
