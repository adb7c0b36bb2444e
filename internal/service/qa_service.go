package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/fixedqa"
	"github.com/xiexing/askhub/internal/kb"
	"github.com/xiexing/askhub/internal/model"
	"github.com/xiexing/askhub/internal/router"
)

const (
	defaultTopK = 3

	answerCacheSize = 256
	answerCacheTTL  = 10 * time.Minute
)

// ProcessRequest is one query turn. History carries the prior turns of the
// conversation, oldest first, without the in-flight query.
type ProcessRequest struct {
	Query   string
	History []model.Message
	UseRAG  bool
	TopK    int
}

// QAService answers user queries. Every turn runs retrieval first when the
// caller asked for it, then the curated fixed-answer list, then hands the
// query to the router. A failure in any collaborator degrades to an
// error-kind result instead of propagating.
type QAService struct {
	kb      *kb.Builder
	matcher *fixedqa.Matcher
	router  *router.Router

	answers *expirable.LRU[string, model.QueryResult]
}

func NewQAService(builder *kb.Builder, matcher *fixedqa.Matcher, rt *router.Router) *QAService {
	return &QAService{
		kb:      builder,
		matcher: matcher,
		router:  rt,
		answers: expirable.NewLRU[string, model.QueryResult](answerCacheSize, nil, answerCacheTTL),
	}
}

func (s *QAService) Process(ctx context.Context, req ProcessRequest) (res model.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			logutil.GetLogger(ctx).Error("query processing panic", zap.Any("panic", r))
			res = errorResult(fmt.Errorf("internal error: %v", r))
		}
	}()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return errorResult(fmt.Errorf("empty query"))
	}
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	// curated answers and retrieval belong to the RAG path only; without it
	// the query goes straight to the router
	var chunks []model.ScoredChunk
	if req.UseRAG {
		var err error
		chunks, err = s.kb.Search(ctx, query, topK)
		if err != nil {
			logutil.GetLogger(ctx).Error("knowledge retrieval failed", zap.Error(err))
			return errorResult(fmt.Errorf("检索知识库失败: %w", err))
		}
		if match, ok := s.matcher.Match(query); ok {
			logutil.GetLogger(ctx).Info("fixed answer hit",
				zap.String("question", match.Question), zap.Float64("score", match.Score))
			return model.QueryResult{Text: match.Answer, Evidence: formatEvidence(chunks), Kind: model.KindFixed}
		}
	}
	evidence := formatEvidence(chunks)
	ragContext := joinChunks(chunks)

	if cached, ok := s.cachedAnswer(req, ragContext); ok {
		return cached
	}

	cls := s.router.Route(ctx, query, req.History, ragContext)
	res = model.QueryResult{
		Text: cls.DisplayText(),
		Kind: cls.ResultKind(),
	}
	if cls.Kind == model.ClassAnswer && ragContext != "" {
		res.Kind = model.KindRAG
		res.Evidence = evidence
	}
	s.storeAnswer(req, ragContext, res)
	return res
}

// cachedAnswer returns a prior result for the same standalone query. Turns
// with history are never cached, their answers depend on the conversation.
func (s *QAService) cachedAnswer(req ProcessRequest, ragContext string) (model.QueryResult, bool) {
	if len(req.History) > 0 {
		return model.QueryResult{}, false
	}
	return s.answers.Get(answerCacheKey(req.Query, ragContext))
}

func (s *QAService) storeAnswer(req ProcessRequest, ragContext string, res model.QueryResult) {
	if len(req.History) > 0 {
		return
	}
	switch res.Kind {
	case model.KindRAG, model.KindGeneral:
		s.answers.Add(answerCacheKey(req.Query, ragContext), res)
	}
}

func answerCacheKey(query string, ragContext string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s:%s", len(query), query, ragContext)
	return hex.EncodeToString(h.Sum(nil))
}

func errorResult(err error) model.QueryResult {
	return model.QueryResult{
		Text: fmt.Sprintf("处理您的请求时出现错误: %v", err),
		Kind: model.KindError,
	}
}

func joinChunks(chunks []model.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n\n")
}

// formatEvidence renders retrieved chunks for user-facing verification.
func formatEvidence(chunks []model.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "找到 %d 条相关内容:\n", len(chunks))
	for i, c := range chunks {
		fmt.Fprintf(&sb, "%d. [相似度 %.2f] %s\n", i+1, c.Score, c.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
