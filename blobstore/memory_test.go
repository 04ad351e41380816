package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "a/one", data))
	data[0] = 'X' // store keeps its own copy

	w, err := store.Create(ctx, "a/two")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one"}, names, "blob is invisible before Close")

	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	assert.Error(t, w.Close())

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two"}, names)

	blob, err := store.Open(ctx, "a/one")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 8)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "89", string(buf[:n]))

	r, err := blob.ReadRange(ctx, 2, 3)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "234", string(got))

	_, err = blob.ReadRange(ctx, 10, 1)
	assert.ErrorIs(t, err, io.EOF)

	all, err := ReadAll(ctx, store, "a/two")
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(all))

	require.NoError(t, store.Delete(ctx, "a/one"))
	_, err = store.Open(ctx, "a/one")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadAll_Empty(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "empty", nil))

	got, err := ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}
