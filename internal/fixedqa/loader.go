package fixedqa

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/model"
)

type fixedQAFile struct {
	FixedAnswers []model.FixedQAEntry `json:"fixed_answers"`
}

// LoadEntries reads the curated answers file. A missing file is non-fatal
// and yields an empty list; a malformed file is an error.
func LoadEntries(ctx context.Context, path string) ([]model.FixedQAEntry, error) {
	logger := logutil.GetLogger(ctx)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Warn("fixed qa file not found", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixed qa file: %w", err)
	}
	var file fixedQAFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode fixed qa file: %w", err)
	}
	logger.Info("fixed qa entries loaded", zap.String("path", path), zap.Int("entries", len(file.FixedAnswers)))
	return file.FixedAnswers, nil
}
