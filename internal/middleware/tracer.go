package middleware

import (
	"context"

	"github.com/dejay09121/Noteapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
const DefaultTraceIDHeader = "X-Trace-ID"

type traceIDKey struct{}

// TraceMiddleware 从请求头读取或生成 Trace ID，写入 gin.Context、request.Context 与响应头
func TraceMiddleware(header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		traceID := c.GetHeader(header)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(logger.FieldTraceID, traceID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), traceIDKey{}, traceID))
		c.Header(header, traceID)

		c.Next()
	}
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(logger.FieldTraceID)
}

// Tracing 为每个请求开启一个 opentracing span，数据库查询 span 挂在其下
func Tracing(tracer opentracing.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent, _ := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header))
		operation := c.FullPath()
		if operation == "" {
			operation = c.Request.URL.Path
		}
		span := tracer.StartSpan(c.Request.Method+" "+operation, ext.RPCServerOption(parent))
		defer span.Finish()

		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.String())
		if traceID := GetTraceIDFromGin(c); traceID != "" {
			span.SetTag(logger.FieldTraceID, traceID)
		}

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		status := c.Writer.Status()
		ext.HTTPStatusCode.Set(span, uint16(status))
		if status >= 500 {
			ext.Error.Set(span, true)
		}
	}
}
