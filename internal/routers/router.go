package routers

import (
	"net/http"
	"strings"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/middleware"
	"github.com/dejay09121/Noteapp/internal/routers/api_router"
	"github.com/dejay09121/Noteapp/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
)

// NewRouter 创建对外 API 路由
// tracer 为 nil 时不记录 span
func NewRouter(appContainer *app.App, tracer opentracing.Tracer) *gin.Engine {
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		if cfg.Tracer.Enabled {
			api.Use(middleware.TraceMiddleware(cfg.Tracer.Header)) // Trace ID 中间件
		}
		if tracer != nil {
			api.Use(middleware.Tracing(tracer))
		}
		if cfg.RateLimit.Enabled {
			api.Use(middleware.RateLimiter(middleware.NewIPLimiter(cfg.GetRateLimitInterval(), cfg.RateLimit.Capacity)))
		}
		api.Use(middleware.Lang())
		api.Use(middleware.AccessLog(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		// 变更通知通道为长连接，不设请求超时；认证在连接建立后的首帧完成
		api.GET(trimAPI(cfg.Realtime.Path), appContainer.Hub.Run())

		timed := api.Group("", middleware.ContextTimeout(cfg.GetContextTimeout()))
		timed.GET("/version", versionHandler.ServerVersion)
		timed.GET("/health", healthHandler.Check)

		auth := timed.Group("", middleware.UserAuthToken(appContainer.TokenManager))
		auth.GET("/notes", noteHandler.List)
		auth.POST("/note", noteHandler.Create)
		auth.PUT("/note/:id", noteHandler.Update)
		auth.DELETE("/notes", noteHandler.Delete)
		auth.GET("/health/system", healthHandler.SystemInfo)
	}

	if cfg.Storage.IsEnabled && cfg.Storage.Type == storage.LOCAL && cfg.Storage.SavePath != "" {
		r.StaticFS("/media", http.Dir(cfg.Storage.SavePath))
	}
	r.NoRoute(middleware.NoFound())
	api_router.PublishStats(appContainer)

	return r
}

// trimAPI 去掉 /api 前缀，得到分组内的相对路径
func trimAPI(path string) string {
	if path == "" {
		return "/notes/ws"
	}
	return strings.TrimPrefix(path, "/api")
}
