package kb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiexing/askhub/internal/model"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Model: "test-embed",
		Vectors: [][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0.9, 0.1, 0},
		},
		Chunks: []model.DocumentChunk{
			{Text: "chunk-0", SourceOrder: 0},
			{Text: "chunk-1", SourceOrder: 1},
			{Text: "chunk-2", SourceOrder: 2},
		},
	}
}

func TestIndexSearchOrdering(t *testing.T) {
	idx := NewIndex()
	idx.Replace(testSnapshot())

	got := idx.Search([]float32{1, 0, 0}, 3)
	require.Len(t, got, 3)
	require.Equal(t, "chunk-0", got[0].Text)
	require.Equal(t, "chunk-2", got[1].Text)
	require.Equal(t, "chunk-1", got[2].Text)
	require.Greater(t, got[0].Score, got[1].Score)
}

func TestIndexSearchTieBreaksBySourceOrder(t *testing.T) {
	idx := NewIndex()
	idx.Replace(&Snapshot{
		Model: "test-embed",
		Vectors: [][]float32{
			{0, 1},
			{0, 2}, // same direction, same cosine
		},
		Chunks: []model.DocumentChunk{
			{Text: "first", SourceOrder: 0},
			{Text: "second", SourceOrder: 1},
		},
	})
	got := idx.Search([]float32{0, 1}, 2)
	require.Len(t, got, 2)
	require.Equal(t, got[0].Score, got[1].Score)
	require.Equal(t, "first", got[0].Text)
}

func TestIndexSearchUnloaded(t *testing.T) {
	idx := NewIndex()
	require.Nil(t, idx.Search([]float32{1, 0}, 3))
	require.False(t, idx.Loaded())
	require.Equal(t, 0, idx.Size())
}

func TestIndexSearchClampsK(t *testing.T) {
	idx := NewIndex()
	idx.Replace(testSnapshot())
	require.Len(t, idx.Search([]float32{1, 0, 0}, 10), 3)
	require.Nil(t, idx.Search([]float32{1, 0, 0}, 0))
}

func TestIndexReplaceSwapsWholesale(t *testing.T) {
	idx := NewIndex()
	idx.Replace(testSnapshot())
	require.Equal(t, 3, idx.Size())

	idx.Replace(&Snapshot{
		Model:   "test-embed",
		Vectors: [][]float32{{1}},
		Chunks:  []model.DocumentChunk{{Text: "only", SourceOrder: 0}},
	})
	require.Equal(t, 1, idx.Size())
	got := idx.Search([]float32{1}, 5)
	require.Len(t, got, 1)
	require.Equal(t, "only", got[0].Text)
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	require.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	require.Equal(t, float32(0), cosineSimilarity([]float32{1}, []float32{1, 2}))
	require.Equal(t, float32(0), cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
