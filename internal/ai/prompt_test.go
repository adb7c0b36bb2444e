package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiexing/askhub/internal/model"
)

func TestBuildMessagesGeneral(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: "第一个问题"},
		{Role: model.RoleAssistant, Content: "第一个回答"},
	}
	msgs := BuildMessages(ModeGeneral, "第二个问题", history, "")
	require.Len(t, msgs, 4)
	require.Equal(t, RoleSystem, msgs[0].Role)
	require.Contains(t, msgs[0].Content, "get_weather")
	require.Equal(t, RoleUser, msgs[1].Role)
	require.Equal(t, "第一个问题", msgs[1].Content)
	require.Equal(t, RoleAssistant, msgs[2].Role)
	require.Equal(t, RoleUser, msgs[3].Role)
	require.Equal(t, "第二个问题", msgs[3].Content)
}

func TestBuildMessagesRAGInlinesContext(t *testing.T) {
	msgs := BuildMessages(ModeRAG, "做过什么项目", nil, "问答系统项目，负责检索模块。")
	require.Len(t, msgs, 2)
	require.Contains(t, msgs[0].Content, "谢兴")
	user := msgs[1]
	require.Equal(t, RoleUser, user.Role)
	require.Contains(t, user.Content, "参考资料")
	require.Contains(t, user.Content, "问答系统项目，负责检索模块。")
	require.Contains(t, user.Content, "用户问题: 做过什么项目")
}

func TestBuildMessagesRAGWithoutContext(t *testing.T) {
	msgs := BuildMessages(ModeRAG, "做过什么项目", nil, "")
	require.Len(t, msgs, 2)
	require.Equal(t, "做过什么项目", msgs[1].Content)
}

func TestBuildMessagesTipSkipsHistory(t *testing.T) {
	history := []model.Message{{Role: model.RoleUser, Content: "先前的对话"}}
	msgs := BuildMessages(ModeTip, "生成提示", history, "")
	require.Len(t, msgs, 2)
	require.Contains(t, msgs[0].Content, "温馨提示")
	require.Equal(t, "生成提示", msgs[1].Content)
}

func TestBuildToolSummary(t *testing.T) {
	got := BuildToolSummary("北京天气如何", "get_weather", "北京天气：晴，温度25~13℃")
	require.Contains(t, got, "get_weather")
	require.Contains(t, got, "北京天气：晴，温度25~13℃")
	require.Contains(t, got, "北京天气如何")
}

func TestBuildMessagesToolSummarySkipsHistory(t *testing.T) {
	history := []model.Message{{Role: model.RoleUser, Content: "早些的问题"}}
	msgs := BuildMessages(ModeToolSummary, "请总结工具结果", history, "")
	require.Len(t, msgs, 2)
	require.Equal(t, systemPromptToolSummary, msgs[0].Content)
	require.Equal(t, "请总结工具结果", msgs[1].Content)
}
