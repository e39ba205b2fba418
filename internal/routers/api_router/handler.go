// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/middleware"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind 绑定并校验请求参数，失败时直接写出 ErrorInvalidParams
func (h *Handler) bind(c *gin.Context, obj any, method string) bool {
	valid, errs := h.App.Validator.BindAndValid(c, obj)
	if !valid {
		h.App.Logger().Warn(method+".BindAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...).WithData(errs.MapsToString()))
		return false
	}
	return true
}

// logError 带 Trace ID 记录业务错误
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
		zap.Error(err))
}
