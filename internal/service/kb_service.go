package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/kb"
)

// UploadResult reports the outcome of a knowledge-base rebuild.
type UploadResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ChunkCount int    `json:"chunk_count"`
}

// KBService rebuilds the knowledge base from an uploaded document. Uploads
// replace the whole corpus, there is no incremental update.
type KBService struct {
	kb *kb.Builder
}

func NewKBService(builder *kb.Builder) *KBService {
	return &KBService{kb: builder}
}

func (s *KBService) Upload(ctx context.Context, text string, images []string) UploadResult {
	if err := s.kb.Build(ctx, text, images); err != nil {
		if errors.Is(err, kb.ErrEmptyDocument) {
			return UploadResult{Success: false, Message: "上传内容为空，知识库未更新"}
		}
		logutil.GetLogger(ctx).Error("knowledge base rebuild failed", zap.Error(err))
		return UploadResult{Success: false, Message: fmt.Sprintf("知识库构建失败: %v", err)}
	}
	n := s.kb.Size()
	logutil.GetLogger(ctx).Info("knowledge base rebuilt", zap.Int("chunks", n))
	return UploadResult{
		Success:    true,
		Message:    fmt.Sprintf("知识库构建成功，共 %d 个片段", n),
		ChunkCount: n,
	}
}

// Status reports the current index state.
func (s *KBService) Status() (loaded bool, chunks int) {
	n := s.kb.Size()
	return n > 0, n
}
