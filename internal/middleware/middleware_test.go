package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(""))
	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(DefaultTraceIDHeader))
	assert.Equal(t, "abc", fromCtx)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(DefaultTraceIDHeader))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(NewIPLimiter(time.Hour, 2)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestNegotiateLang(t *testing.T) {
	assert.Equal(t, "zh_cn", NegotiateLang("", "", "zh-CN,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", NegotiateLang("en-US"))
	assert.Equal(t, "en", NegotiateLang("", "", ""))
	assert.Equal(t, "zh_cn", NegotiateLang("zh", "en"))
}

func TestUserAuthToken(t *testing.T) {
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "k"})
	r := gin.New()
	r.Use(UserAuthToken(tm))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, app.GetUID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, code.ErrorNotUserAuthToken.StatusCode(), w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("token", "bogus")
	assert.Equal(t, code.ErrorInvalidUserAuthToken.StatusCode(), serve(r, req).Code)

	token, err := tm.Generate("u1", "alice")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestTracing(t *testing.T) {
	tracer := mocktracer.New()
	r := gin.New()
	r.Use(Tracing(tracer))
	r.GET("/api/notes", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/notes", spans[0].OperationName)
	assert.Equal(t, uint16(http.StatusTeapot), spans[0].Tag("http.status_code"))
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "408")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
