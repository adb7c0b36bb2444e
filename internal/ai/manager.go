package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xiexing/askhub/internal/model"
)

type ManagerConfig struct {
	Timeout     int
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Manager is the generation client: it owns prompt assembly, per-mode
// sampling policy and the request timeout so no caller can block on a hung
// model indefinitely.
type Manager struct {
	generator IGenerator
	embedder  IEmbedder
	cfg       ManagerConfig
}

func NewManager(generator IGenerator, embedder IEmbedder, cfg ManagerConfig) *Manager {
	return &Manager{generator: generator, embedder: embedder, cfg: cfg}
}

type GenerateRequest struct {
	Mode    Mode
	Query   string
	History []model.Message
	Context string
	// MaxTokens overrides the configured cap when > 0.
	MaxTokens int
}

func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if m.generator == nil {
		return "", ErrUnavailable
	}
	opts := m.options(req)
	msgs := BuildMessages(req.Mode, req.Query, req.History, req.Context)
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := m.generator.Generate(ctx, msgs, opts)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func (m *Manager) options(req GenerateRequest) GenOptions {
	opts := GenOptions{
		Temperature: float32(m.cfg.Temperature),
		TopP:        float32(m.cfg.TopP),
		MaxTokens:   m.cfg.MaxTokens,
	}
	switch req.Mode {
	case ModeRAG:
		// near-deterministic decoding over retrieved context
		opts.Temperature = 0.1
		opts.TopP = 0
	case ModeTip:
		opts.MaxTokens = 50
	}
	if req.MaxTokens > 0 {
		opts.MaxTokens = req.MaxTokens
	}
	return opts
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, ErrUnavailable
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	return m.embedder.Embed(ctx, text, taskType)
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}
