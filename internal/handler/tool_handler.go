package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiexing/askhub/internal/pkg/response"
	"github.com/xiexing/askhub/internal/tool"
)

type ToolHandler struct {
	tools *tool.Registry
}

func NewToolHandler(tools *tool.Registry) *ToolHandler {
	return &ToolHandler{tools: tools}
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ToolHandler) List(c *gin.Context) {
	names := h.tools.Names()
	infos := make([]toolInfo, 0, len(names))
	for _, name := range names {
		t, ok := h.tools.Find(name)
		if !ok {
			continue
		}
		infos = append(infos, toolInfo{Name: t.Name(), Description: t.Description()})
	}
	response.Success(c, gin.H{"tools": infos})
}
