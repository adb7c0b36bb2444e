package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/ai"
	"github.com/xiexing/askhub/internal/model"
	"github.com/xiexing/askhub/internal/tool"
)

const needRAGMessage = "这个问题可能需要查询知识库获取准确信息，请尝试在简历问答模式下提问。"

// ragKeywords flag experience/work/project questions that should be answered
// from the knowledge base rather than free generation.
var ragKeywords = []string{
	"经历", "经验", "项目", "工作", "职业", "技能", "能力", "学习", "教育",
	"做过", "参与", "负责", "开发", "设计", "实现", "完成", "成果",
}

var weatherKeywords = []string{
	"天气", "气温", "温度", "下雨", "下雪", "热", "冷", "出门", "宅家", "防晒", "保暖",
}

// Router decides which strategy answers a query. The decision is recomputed
// per call and holds no state between queries.
type Router struct {
	manager *ai.Manager
	tools   *tool.Registry
}

func New(manager *ai.Manager, tools *tool.Registry) *Router {
	return &Router{manager: manager, tools: tools}
}

// Route runs the decision ladder:
//  1. supplied RAG context always wins: answer from it, skip classification;
//  2. general generation, honoring a JSON tool/need_rag directive if the
//     model emits one;
//  3. experience keyword fallback -> needs_rag;
//  4. weather keyword fallback -> weather tool flow;
//  5. otherwise the general answer stands.
//
// Steps 3 and 4 are defense in depth against the model's own classification
// missing an intent.
func (r *Router) Route(ctx context.Context, query string, history []model.Message, ragContext string) model.Classification {
	logger := logutil.GetLogger(ctx)
	if ragContext != "" {
		logger.Debug("rag context present, skipping classification")
		text, err := r.manager.Generate(ctx, ai.GenerateRequest{
			Mode:    ai.ModeRAG,
			Query:   query,
			History: history,
			Context: ragContext,
		})
		if err != nil {
			return generationError(ctx, err)
		}
		return model.Classification{Kind: model.ClassAnswer, Text: text}
	}

	text, err := r.manager.Generate(ctx, ai.GenerateRequest{
		Mode:    ai.ModeGeneral,
		Query:   query,
		History: history,
	})
	if err != nil {
		return generationError(ctx, err)
	}

	if directive, ok := parseDirective(text); ok {
		logger.Info("model emitted directive", zap.String("function", directive.Function))
		switch directive.Function {
		case tool.WeatherToolName:
			return r.weatherFlow(ctx, query, directive.Data)
		case "need_rag":
			return model.Classification{Kind: model.ClassNeedsRAG, Message: needRAGMessage}
		}
	}

	if containsAny(query, ragKeywords) {
		logger.Info("rag keyword fallback hit")
		return model.Classification{Kind: model.ClassNeedsRAG, Message: needRAGMessage}
	}

	if containsAny(query, weatherKeywords) {
		logger.Info("weather keyword fallback hit")
		return r.weatherFlow(ctx, query, nil)
	}

	return model.Classification{Kind: model.ClassAnswer, Text: text}
}

func containsAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func generationError(ctx context.Context, err error) model.Classification {
	logutil.GetLogger(ctx).Error("generation failed", zap.Error(err))
	return model.Classification{
		Kind:    model.ClassError,
		Message: fmt.Sprintf("处理您的请求时出现错误: %v", err),
	}
}
