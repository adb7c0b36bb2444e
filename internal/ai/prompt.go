package ai

import (
	"fmt"

	"github.com/xiexing/askhub/internal/model"
)

// Mode selects the system instruction and the sampling policy for one
// generation call.
type Mode string

const (
	// ModeGeneral answers free-form questions and doubles as the intent
	// classifier: its instruction asks the model to flag weather and
	// knowledge-base questions instead of guessing.
	ModeGeneral Mode = "general"
	// ModeRAG answers strictly from retrieved context with near-deterministic
	// decoding to keep hallucination down.
	ModeRAG Mode = "rag"
	// ModeTip produces a one-line weather tip with a tight output cap.
	ModeTip Mode = "tip"
	// ModeToolSummary rephrases a raw tool result as an answer to the
	// original question.
	ModeToolSummary Mode = "tool_summary"
)

const systemPromptGeneral = `你是一个有用的中文助手，能够回答各种问题并提供天气查询等功能。
对于用户的问题，你需要判断：
1. 如果是天气相关查询，请输出 JSON 指令 {"function":"get_weather","data":{"location":"城市","date":"today|tomorrow|after_tomorrow"}}
2. 如果是关于个人经历、工作经验、项目经验等问题，请输出 JSON 指令 {"function":"need_rag"}
3. 对于其他一般性问题，你可以直接回答`

const systemPromptRAG = `**你必须严格遵守以下规则：**
1. 你叫谢兴，是成都大学大三计算机学院的一名学生。
2. 你必须根据获取到的资料信息来回答我的问题，绝不能乱编造，尽量详尽，字数尽可能多，可以自己扩充但不能有虚假信息。
3. 你的回答应该详尽，比如当我问到你做过什么项目时，你不能只回答"我参与了项目A"，而是应该回答"我参与了项目A，负责用户登录模块开发"。
4. 如果我询问你关于"工作"有关的任何问题，都需要从资料中的项目和技术栈出发进行阐述，不能胡编乱造。
5. 可以直接引用资料原文，可以使用emoji表情进行回复。
6. 请务必使用markdown格式进行输出！！`

const systemPromptToolSummary = `你是一个有用的中文助手。用户的问题已经通过工具调用得到了原始结果，请基于该结果用自然的中文回答用户的问题。要求：
1. 不要编造结果中没有的信息。
2. 务必使用markdown格式输出！`

const systemPromptTip = `你是一个友好的天气助手。请根据提供的天气状况，生成一句温馨提示。要求：
1. 简短自然，不超过20字，契合天气状况，15度以下比较冷需要提示保暖，15~25度比较温暖需要提示增减衣物，25度以上较热提示防晒，30度以上提示多喝水，少户外活动。
2. 使用emoji表情让提示更亲切。
3. 不要重复已知的天气信息
4. 务必使用markdown格式输出！`

func systemPrompt(mode Mode) string {
	switch mode {
	case ModeRAG:
		return systemPromptRAG
	case ModeTip:
		return systemPromptTip
	case ModeToolSummary:
		return systemPromptToolSummary
	default:
		return systemPromptGeneral
	}
}

// BuildMessages assembles the role-structured prompt for one call: system
// instruction, the history window in chronological order, then the user turn.
// In RAG mode the retrieved context is inlined into the user turn; tip and
// tool-summary modes send the query as-is without history.
func BuildMessages(mode Mode, query string, history []model.Message, context string) []PromptMessage {
	msgs := []PromptMessage{{Role: RoleSystem, Content: systemPrompt(mode)}}
	if mode != ModeTip && mode != ModeToolSummary {
		for _, m := range history {
			role := RoleUser
			if m.Role == model.RoleAssistant {
				role = RoleAssistant
			}
			msgs = append(msgs, PromptMessage{Role: role, Content: m.Content})
		}
	}
	user := query
	if mode == ModeRAG && context != "" {
		user = fmt.Sprintf("参考资料:\n---\n%s\n---\n\n用户问题: %s\n\n请严格按照系统提示的规则回答问题。", context, query)
	}
	msgs = append(msgs, PromptMessage{Role: RoleUser, Content: user})
	return msgs
}

// BuildToolSummary wraps a raw tool result so the model answers the original
// question from it.
func BuildToolSummary(query, toolName, toolResult string) string {
	return fmt.Sprintf("你刚刚调用了工具 '%s'，得到结果如下：\n---\n%s\n---\n现在请根据这个结果回答用户最初的问题：'%s'", toolName, toolResult, query)
}
