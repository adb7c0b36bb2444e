package kb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xiexing/askhub/internal/filestore"
	"github.com/xiexing/askhub/internal/model"
)

// ErrNoSnapshot is returned by Load when nothing has been persisted yet.
var ErrNoSnapshot = errors.New("no knowledge base snapshot")

// Store persists index snapshots wholesale. Save must not leave a mixed
// generation readable: a failed save keeps the previous snapshot loadable.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

type fileIndex struct {
	Model   string      `json:"model"`
	Vectors [][]float32 `json:"vectors"`
}

// fileStore writes the index to one object and the chunk texts to a sidecar
// listing in index order, so the raw retrieval units stay auditable without
// decoding vectors.
type fileStore struct {
	store  filestore.Store
	prefix string
}

func NewFileStore(store filestore.Store, prefix string) Store {
	return &fileStore{store: store, prefix: prefix}
}

func (f *fileStore) indexKey() string  { return f.prefix + "index.json" }
func (f *fileStore) chunksKey() string { return f.prefix + "chunks.json" }

func (f *fileStore) Save(ctx context.Context, snap *Snapshot) error {
	texts := make([]string, 0, len(snap.Chunks))
	for _, chunk := range snap.Chunks {
		texts = append(texts, chunk.Text)
	}
	chunksData, err := json.Marshal(texts)
	if err != nil {
		return err
	}
	indexData, err := json.Marshal(fileIndex{Model: snap.Model, Vectors: snap.Vectors})
	if err != nil {
		return err
	}
	// sidecar first: a crash between writes leaves index.json pointing at
	// chunks from the same or newer generation, never a missing one
	if err := f.store.Put(ctx, f.chunksKey(), chunksData); err != nil {
		return fmt.Errorf("write chunk sidecar: %w", err)
	}
	if err := f.store.Put(ctx, f.indexKey(), indexData); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func (f *fileStore) Load(ctx context.Context) (*Snapshot, error) {
	indexData, err := f.store.Get(ctx, f.indexKey())
	if errors.Is(err, filestore.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	chunksData, err := f.store.Get(ctx, f.chunksKey())
	if errors.Is(err, filestore.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var idx fileIndex
	if err := json.Unmarshal(indexData, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	var texts []string
	if err := json.Unmarshal(chunksData, &texts); err != nil {
		return nil, fmt.Errorf("decode chunk sidecar: %w", err)
	}
	if len(texts) != len(idx.Vectors) {
		return nil, fmt.Errorf("index/sidecar mismatch: %d vectors, %d chunks", len(idx.Vectors), len(texts))
	}
	chunks := make([]model.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, model.DocumentChunk{Text: text, SourceOrder: i})
	}
	return &Snapshot{Model: idx.Model, Vectors: idx.Vectors, Chunks: chunks}, nil
}
