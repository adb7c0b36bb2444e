package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type flakyGen struct {
	fail  bool
	calls int
}

func (f *flakyGen) Generate(context.Context, []PromptMessage, GenOptions) (string, error) {
	f.calls++
	if f.fail {
		return "", fmt.Errorf("backend down")
	}
	return "ok", nil
}

type flakyEmbed struct {
	fail bool
	name string
}

func (f *flakyEmbed) Embed(context.Context, string, string) ([]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("backend down")
	}
	return []float32{1}, nil
}

func (f *flakyEmbed) ModelName() string { return f.name }

func TestGroupGeneratorFailover(t *testing.T) {
	primary := &flakyGen{fail: true}
	backup := &flakyGen{}
	g := NewGroupGenerator([]GeneratorEntry{
		{Name: "primary", Generator: primary},
		{Name: "backup", Generator: backup},
	})

	got, err := g.Generate(context.Background(), nil, GenOptions{})
	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, backup.calls)
}

func TestGroupGeneratorAllFail(t *testing.T) {
	g := NewGroupGenerator([]GeneratorEntry{
		{Name: "a", Generator: &flakyGen{fail: true}},
		{Name: "b", Generator: &flakyGen{fail: true}},
	})
	_, err := g.Generate(context.Background(), nil, GenOptions{})
	require.ErrorContains(t, err, "backend down")
}

func TestGroupGeneratorSkipsFirstSuccess(t *testing.T) {
	primary := &flakyGen{}
	backup := &flakyGen{}
	g := NewGroupGenerator([]GeneratorEntry{
		{Name: "primary", Generator: primary},
		{Name: "backup", Generator: backup},
	})
	_, err := g.Generate(context.Background(), nil, GenOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, backup.calls)
}

func TestGroupGeneratorEmpty(t *testing.T) {
	require.Nil(t, NewGroupGenerator(nil))
}

func TestGroupEmbedderFailover(t *testing.T) {
	g := NewGroupEmbedder([]EmbedderEntry{
		{Name: "primary", Embedder: &flakyEmbed{fail: true, name: "embed-a"}},
		{Name: "backup", Embedder: &flakyEmbed{name: "embed-b"}},
	})
	got, err := g.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{1}, got)
	require.Equal(t, "embed-a", g.ModelName())
}
