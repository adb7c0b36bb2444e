package kb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubEmbedder maps rune statistics onto a small vector so that texts
// sharing characters land close together.
type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) Embed(_ context.Context, text string, _ string) ([]float32, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("embed backend down")
	}
	vec := make([]float32, 8)
	for _, r := range text {
		vec[int(r)%len(vec)]++
	}
	return vec, nil
}

func (s *stubEmbedder) ModelName() string {
	return "stub-embed"
}

type failingStore struct{}

func (failingStore) Save(context.Context, *Snapshot) error   { return fmt.Errorf("disk full") }
func (failingStore) Load(context.Context) (*Snapshot, error) { return nil, ErrNoSnapshot }

func newTestBuilder(t *testing.T, store Store) (*Builder, *stubEmbedder) {
	t.Helper()
	if store == nil {
		store = newTestFileStore(t)
	}
	embedder := &stubEmbedder{}
	builder := NewBuilder(defaultSplitter(), embedder, NewIndex(), store)
	return builder, embedder
}

func TestBuilderBuildAndSearch(t *testing.T) {
	builder, _ := newTestBuilder(t, nil)
	ctx := context.Background()

	require.NoError(t, builder.Build(ctx, sampleDoc(), nil))
	require.Greater(t, builder.Size(), 0)

	got, err := builder.Search(ctx, "项目经历", 3)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.LessOrEqual(t, len(got), 3)
}

func TestBuilderBuildEmptyDocument(t *testing.T) {
	builder, _ := newTestBuilder(t, nil)
	err := builder.Build(context.Background(), "   \n\t ", nil)
	require.ErrorIs(t, err, ErrEmptyDocument)
	require.Equal(t, 0, builder.Size())
}

func TestBuilderBuildAppendsImageText(t *testing.T) {
	builder, _ := newTestBuilder(t, nil)
	err := builder.Build(context.Background(), "", []string{"图片里的证书文字"})
	require.NoError(t, err)
	require.Greater(t, builder.Size(), 0)
}

func TestBuilderSearchUnloaded(t *testing.T) {
	builder, embedder := newTestBuilder(t, nil)
	got, err := builder.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	require.Nil(t, got)
	// retrieval over an unloaded index must not spend an embedding call
	require.Equal(t, 0, embedder.calls)
}

func TestBuilderPersistFailureKeepsIndexUnchanged(t *testing.T) {
	builder, _ := newTestBuilder(t, failingStore{})
	err := builder.Build(context.Background(), sampleDoc(), nil)
	require.Error(t, err)
	require.Equal(t, 0, builder.Size())
}

func TestBuilderRestore(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	first, _ := newTestBuilder(t, store)
	require.NoError(t, first.Build(ctx, sampleDoc(), nil))
	want := first.Size()

	second, _ := newTestBuilder(t, store)
	require.NoError(t, second.Restore(ctx))
	require.Equal(t, want, second.Size())

	got, err := second.Search(ctx, "技术栈", 2)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, chunk := range got {
		require.True(t, strings.TrimSpace(chunk.Text) != "")
	}
}

func TestBuilderRestoreNothingPersisted(t *testing.T) {
	builder, _ := newTestBuilder(t, nil)
	require.NoError(t, builder.Restore(context.Background()))
	require.Equal(t, 0, builder.Size())
}
