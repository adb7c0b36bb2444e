package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiexing/askhub/internal/pkg/errcode"
	"github.com/xiexing/askhub/internal/pkg/response"
	"github.com/xiexing/askhub/internal/service"
)

// 8MB is plenty for a markdown knowledge base.
const maxUploadBytes = 8 << 20

type KBHandler struct {
	kb *service.KBService
}

func NewKBHandler(kb *service.KBService) *KBHandler {
	return &KBHandler{kb: kb}
}

type kbUploadRequest struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// Upload replaces the knowledge base. The document arrives either as a
// multipart "file" field or as a JSON body with the raw text.
func (h *KBHandler) Upload(c *gin.Context) {
	text, images, ok := h.readUpload(c)
	if !ok {
		return
	}
	result := h.kb.Upload(c.Request.Context(), text, images)
	if !result.Success {
		response.Error(c, errcode.ErrKBBuildFailed, result.Message)
		return
	}
	response.Success(c, result)
}

func (h *KBHandler) readUpload(c *gin.Context) (string, []string, bool) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "file is required")
			return "", nil, false
		}
		if fh.Size > maxUploadBytes {
			response.Error(c, errcode.ErrInvalid, "file too large")
			return "", nil, false
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "cannot read file")
			return "", nil, false
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		if err != nil || len(data) > maxUploadBytes {
			response.Error(c, errcode.ErrInvalid, "cannot read file")
			return "", nil, false
		}
		return string(data), c.PostFormArray("images"), true
	}
	var req kbUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return "", nil, false
	}
	return req.Text, req.Images, true
}

func (h *KBHandler) Status(c *gin.Context) {
	loaded, chunks := h.kb.Status()
	response.Success(c, gin.H{
		"loaded":      loaded,
		"chunk_count": chunks,
	})
}
