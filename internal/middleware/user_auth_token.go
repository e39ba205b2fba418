package middleware

import (
	"github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserAuthToken 用户 Token 认证中间件
// Token 取自 token 请求头、token 查询参数或 Authorization: Bearer
func UserAuthToken(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := app.TokenFromRequest(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := tm.Parse(token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		app.SetUser(c, user)
		c.Next()
	}
}
