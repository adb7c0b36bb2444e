package model

// DocumentChunk is the unit of embedding and retrieval: a bounded slice of
// the uploaded document. SourceOrder is the chunk's position in the split
// output and doubles as the similarity tie-breaker during search.
type DocumentChunk struct {
	Text        string `json:"text"`
	SourceOrder int    `json:"source_order"`
}

// ScoredChunk is a retrieval hit with its cosine similarity score.
type ScoredChunk struct {
	DocumentChunk
	Score float32 `json:"score"`
}
