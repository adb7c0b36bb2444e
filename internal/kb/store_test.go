package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiexing/askhub/internal/config"
	"github.com/xiexing/askhub/internal/filestore"
)

func newTestFileStore(t *testing.T) Store {
	t.Helper()
	fs, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	return NewFileStore(fs, "kb_")
}

func TestFileStoreRoundtrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	saved := testSnapshot()
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, saved.Model, loaded.Model)
	require.Equal(t, saved.Vectors, loaded.Vectors)
	require.Equal(t, saved.Chunks, loaded.Chunks)
}

func TestFileStoreLoadEmpty(t *testing.T) {
	store := newTestFileStore(t)
	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestFileStoreSaveReplaces(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSnapshot()))
	second := &Snapshot{
		Model:   "test-embed",
		Vectors: [][]float32{{0.5}},
		Chunks:  testSnapshot().Chunks[:1],
	}
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Chunks, 1)
	require.Equal(t, second.Vectors, loaded.Vectors)
}
