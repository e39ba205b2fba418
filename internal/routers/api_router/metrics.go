package api_router

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/dejay09121/Noteapp/internal/app"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

type statsHolder struct {
	app *app.App
}

var (
	publishOnce  sync.Once
	currentStats atomic.Pointer[statsHolder]
)

// PublishStats 将服务状态挂到 expvar 的 "noteapp" 键下
// 配置热重载会重复调用，仅替换数据来源
func PublishStats(a *app.App) {
	currentStats.Store(&statsHolder{app: a})
	publishOnce.Do(func() {
		expvar.Publish("noteapp", expvar.Func(func() any {
			h := currentStats.Load()
			if h == nil || h.app == nil {
				return nil
			}
			out := map[string]any{
				"version":     h.app.Version().Version,
				"writeQueues": h.app.WriteQueueCount(),
			}
			if h.app.Hub != nil {
				out["online"] = h.app.Hub.Total()
			}
			return out
		}))
	})
}

// Expvar 以 JSON 输出 expvar 导出的运行时指标
func Expvar(c *gin.Context) {
	vars := make(map[string]json.RawMessage)
	expvar.Do(func(kv expvar.KeyValue) {
		vars[kv.Key] = json.RawMessage(kv.Value.String())
	})
	body, err := sonic.ConfigStd.MarshalIndent(vars, "", "  ")
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
