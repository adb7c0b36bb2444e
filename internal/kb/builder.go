package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/ai"
	"github.com/xiexing/askhub/internal/model"
)

// ErrEmptyDocument rejects a build with no usable text. An upload of an
// empty document fails cleanly instead of replacing the index with nothing.
var ErrEmptyDocument = errors.New("document is empty")

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// Builder owns the knowledge base lifecycle: build replaces the index
// wholesale (persist first, then swap the in-memory snapshot), search embeds
// the query and runs nearest-neighbour over the active snapshot.
type Builder struct {
	splitter *Splitter
	embedder ai.IEmbedder
	index    *Index
	store    Store
}

func NewBuilder(splitter *Splitter, embedder ai.IEmbedder, index *Index, store Store) *Builder {
	return &Builder{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

// Build chunks and embeds the document (plus any image-derived text blocks),
// persists the new snapshot and only then publishes it. On any failure the
// previous snapshot stays active and persisted.
func (b *Builder) Build(ctx context.Context, text string, images []string) error {
	logger := logutil.GetLogger(ctx)
	all := text
	for _, img := range images {
		all += "\n" + img
	}
	if strings.TrimSpace(all) == "" {
		return ErrEmptyDocument
	}

	pieces := b.splitter.Split(all)
	logger.Info("document split", zap.Int("chunks", len(pieces)))

	snap := &Snapshot{Model: b.embedder.ModelName()}
	for i, piece := range pieces {
		vec, err := b.embedder.Embed(ctx, piece.Text, taskTypeDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		snap.Vectors = append(snap.Vectors, vec)
		snap.Chunks = append(snap.Chunks, model.DocumentChunk{Text: piece.Text, SourceOrder: i})
	}

	if err := b.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist knowledge base: %w", err)
	}
	b.index.Replace(snap)
	logger.Info("knowledge base rebuilt", zap.Int("chunks", len(snap.Chunks)), zap.String("model", snap.Model))
	return nil
}

// Search embeds the query and returns the top-k chunks by similarity. An
// unloaded index returns an empty result, which is the valid steady state
// before the first upload.
func (b *Builder) Search(ctx context.Context, query string, k int) ([]model.ScoredChunk, error) {
	if !b.index.Loaded() {
		logutil.GetLogger(ctx).Debug("knowledge base not loaded, skipping retrieval")
		return nil, nil
	}
	vec, err := b.embedder.Embed(ctx, query, taskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return b.index.Search(vec, k), nil
}

// Restore loads the last persisted snapshot at startup. A missing snapshot
// is not an error.
func (b *Builder) Restore(ctx context.Context) error {
	snap, err := b.store.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		logutil.GetLogger(ctx).Info("no persisted knowledge base")
		return nil
	}
	if err != nil {
		return err
	}
	b.index.Replace(snap)
	logutil.GetLogger(ctx).Info("knowledge base restored", zap.Int("chunks", len(snap.Chunks)))
	return nil
}

func (b *Builder) Size() int {
	return b.index.Size()
}
