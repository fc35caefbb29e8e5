package storage

import (
	"context"
	"testing"

	"starchart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	link, err := s.Put(ctx, "20240101/cmp.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Contains(t, link, "cmp.csv")

	got, err := s.Get(ctx, "20240101/cmp.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))

	_, err = s.Put(ctx, "20240101/cmp.csv", []byte("c,d\n"))
	require.NoError(t, err)
	got, err = s.Get(ctx, "20240101/cmp.csv")
	require.NoError(t, err)
	assert.Equal(t, "c,d\n", string(got))
}

func TestFileStoreNotFound(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, err := s.Get(context.Background(), "20240101/group.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, key := range []string{"../x.csv", "/etc/passwd", ""} {
		_, err := s.Put(context.Background(), key, []byte("x"))
		assert.Error(t, err, key)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, config.Storage{StorageBackend: "file", DataDir: dir})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, s)
	assert.Equal(t, dir, s.(*FileStore).Root)

	_, err = Open(ctx, config.Storage{StorageBackend: "s3"})
	assert.Error(t, err)
	_, err = Open(ctx, config.Storage{StorageBackend: "ftp"})
	assert.Error(t, err)
}
