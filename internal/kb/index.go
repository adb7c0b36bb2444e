package kb

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/xiexing/askhub/internal/model"
)

// Snapshot is one immutable generation of the knowledge base: the embedding
// vectors and their chunks in source order. A rebuild always produces a
// fresh snapshot; nothing mutates a published one.
type Snapshot struct {
	Model   string
	Vectors [][]float32
	Chunks  []model.DocumentChunk
}

// Index holds the active snapshot behind an atomic pointer. Searches running
// concurrently with a rebuild see either the old or the new generation,
// never a partially written one.
type Index struct {
	snap atomic.Pointer[Snapshot]
}

func NewIndex() *Index {
	return &Index{}
}

func (i *Index) Replace(s *Snapshot) {
	i.snap.Store(s)
}

func (i *Index) Loaded() bool {
	s := i.snap.Load()
	return s != nil && len(s.Chunks) > 0
}

func (i *Index) Size() int {
	s := i.snap.Load()
	if s == nil {
		return 0
	}
	return len(s.Chunks)
}

// Search returns the top-k chunks by cosine similarity to queryVec,
// descending, ties broken by source order. An unloaded index yields nil.
func (i *Index) Search(queryVec []float32, k int) []model.ScoredChunk {
	s := i.snap.Load()
	if s == nil || len(s.Chunks) == 0 || k <= 0 {
		return nil
	}
	matches := make([]model.ScoredChunk, 0, len(s.Chunks))
	for idx, chunk := range s.Chunks {
		matches = append(matches, model.ScoredChunk{
			DocumentChunk: chunk,
			Score:         cosineSimilarity(queryVec, s.Vectors[idx]),
		})
	}
	sort.Slice(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].SourceOrder < matches[b].SourceOrder
	})
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
