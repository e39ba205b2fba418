package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 捕获 panic，记录堆栈并返回统一错误响应
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				var errorMsg string
				fields := []zap.Field{
					zap.String("router", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("query", c.Request.URL.RawQuery),
					zap.String("ip", c.ClientIP()),
					zap.String("stack", string(debug.Stack())),
				}
				switch e := err.(type) {
				case error:
					errorMsg = e.Error()
					logger.Error("Recovered from panic", append(fields, zap.Error(e))...)
				default:
					errorMsg = fmt.Sprintf("%v", e)
					logger.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", errorMsg))...)
				}

				app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
				c.Abort()
			}
		}()

		c.Next()
	}
}
