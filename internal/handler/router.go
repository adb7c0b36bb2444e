package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiexing/askhub/internal/middleware"
)

type RouterDeps struct {
	QA        *QAHandler
	KB        *KBHandler
	Tools     *ToolHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/qa/query", deps.QA.Query)
	api.POST("/qa/sessions/:id/clear", deps.QA.ClearSession)
	api.GET("/kb/status", deps.KB.Status)
	api.GET("/tools", deps.Tools.List)

	adminGroup := api.Group("")
	adminGroup.Use(middleware.AdminAuth(deps.JWTSecret))
	adminGroup.Use(middleware.RateLimit(2 * time.Second))
	adminGroup.POST("/kb/upload", deps.KB.Upload)
}
