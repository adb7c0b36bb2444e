package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeGen struct {
	resp string
	err  error
	opts GenOptions
}

func (f *fakeGen) Generate(_ context.Context, _ []PromptMessage, opts GenOptions) (string, error) {
	f.opts = opts
	return f.resp, f.err
}

func TestManagerGenerateTrimsResponse(t *testing.T) {
	gen := &fakeGen{resp: "  回答内容 \n"}
	m := NewManager(gen, nil, ManagerConfig{})
	got, err := m.Generate(context.Background(), GenerateRequest{Mode: ModeGeneral, Query: "问题"})
	require.NoError(t, err)
	require.Equal(t, "回答内容", got)
}

func TestManagerGenerateEmptyResponse(t *testing.T) {
	gen := &fakeGen{resp: "   "}
	m := NewManager(gen, nil, ManagerConfig{})
	_, err := m.Generate(context.Background(), GenerateRequest{Mode: ModeGeneral, Query: "问题"})
	require.Error(t, err)
}

func TestManagerGeneratePropagatesError(t *testing.T) {
	gen := &fakeGen{err: fmt.Errorf("timeout")}
	m := NewManager(gen, nil, ManagerConfig{})
	_, err := m.Generate(context.Background(), GenerateRequest{Mode: ModeGeneral, Query: "问题"})
	require.ErrorContains(t, err, "timeout")
}

func TestManagerGenerateNilGenerator(t *testing.T) {
	m := NewManager(nil, nil, ManagerConfig{})
	_, err := m.Generate(context.Background(), GenerateRequest{Mode: ModeGeneral, Query: "问题"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestManagerModeOptions(t *testing.T) {
	gen := &fakeGen{resp: "ok"}
	m := NewManager(gen, nil, ManagerConfig{Temperature: 0.7, TopP: 0.8, MaxTokens: 1024})

	_, err := m.Generate(context.Background(), GenerateRequest{Mode: ModeGeneral, Query: "q"})
	require.NoError(t, err)
	require.InDelta(t, 0.7, gen.opts.Temperature, 1e-6)
	require.Equal(t, 1024, gen.opts.MaxTokens)

	_, err = m.Generate(context.Background(), GenerateRequest{Mode: ModeRAG, Query: "q", Context: "c"})
	require.NoError(t, err)
	require.InDelta(t, 0.1, gen.opts.Temperature, 1e-6)
	require.Equal(t, float32(0), gen.opts.TopP)

	_, err = m.Generate(context.Background(), GenerateRequest{Mode: ModeTip, Query: "q"})
	require.NoError(t, err)
	require.Equal(t, 50, gen.opts.MaxTokens)

	_, err = m.Generate(context.Background(), GenerateRequest{Mode: ModeGeneral, Query: "q", MaxTokens: 16})
	require.NoError(t, err)
	require.Equal(t, 16, gen.opts.MaxTokens)
}

func TestManagerEmbedNilEmbedder(t *testing.T) {
	m := NewManager(nil, nil, ManagerConfig{})
	_, err := m.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, "", m.EmbeddingModelName())
}
