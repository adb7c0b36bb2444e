package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiexing/askhub/internal/model"
	"github.com/xiexing/askhub/internal/pkg/errcode"
	"github.com/xiexing/askhub/internal/pkg/response"
	"github.com/xiexing/askhub/internal/service"
	"github.com/xiexing/askhub/internal/session"
)

type QAHandler struct {
	qa       *service.QAService
	sessions *session.Store
}

func NewQAHandler(qa *service.QAService, sessions *session.Store) *QAHandler {
	return &QAHandler{qa: qa, sessions: sessions}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	UseRAG    *bool  `json:"use_rag"`
	TopK      int    `json:"top_k"`
}

type queryResponse struct {
	Text      string `json:"text"`
	Evidence  string `json:"evidence,omitempty"`
	Kind      string `json:"kind"`
	SessionID string `json:"session_id,omitempty"`
}

func (h *QAHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	var history []model.Message
	if req.SessionID != "" {
		history = h.sessions.Window(req.SessionID)
	}
	result := h.qa.Process(c.Request.Context(), service.ProcessRequest{
		Query:   req.Query,
		History: history,
		UseRAG:  useRAG,
		TopK:    req.TopK,
	})
	if req.SessionID != "" && result.Kind != model.KindError {
		h.sessions.Append(req.SessionID,
			model.Message{Role: model.RoleUser, Content: req.Query},
			model.Message{Role: model.RoleAssistant, Content: result.Text},
		)
	}
	response.Success(c, queryResponse{
		Text:      result.Text,
		Evidence:  result.Evidence,
		Kind:      string(result.Kind),
		SessionID: req.SessionID,
	})
}

func (h *QAHandler) ClearSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, errcode.ErrInvalid, "session id is required")
		return
	}
	h.sessions.Clear(id)
	response.Success(c, gin.H{"cleared": true})
}
