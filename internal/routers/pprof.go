package routers

import (
	"net/http/pprof"

	"github.com/dejay09121/Noteapp/internal/middleware"
	"github.com/dejay09121/Noteapp/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultPrefix pprof 路由前缀
const DefaultPrefix = "/debug/pprof"

// profiles runtime/pprof 内置的 profile 名称
var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouter 私有路由，只应监听内网地址
// 提供 prometheus 指标与 expvar，debug 模式下额外开放 pprof
func NewPrivateRouter(runMode string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))

	r.GET("/debug/vars", api_router.Expvar)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if runMode != gin.DebugMode {
		return r
	}
	p := r.Group(DefaultPrefix)
	p.GET("/", gin.WrapF(pprof.Index))
	p.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	p.GET("/profile", gin.WrapF(pprof.Profile))
	p.GET("/symbol", gin.WrapF(pprof.Symbol))
	p.POST("/symbol", gin.WrapF(pprof.Symbol))
	p.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range profiles {
		p.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
	return r
}
