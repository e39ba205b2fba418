package middleware

import (
	"sync"
	"time"

	"github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// IPLimiter 每个客户端 IP 一个令牌桶
type IPLimiter struct {
	fillInterval time.Duration
	capacity     int64

	mu      sync.Mutex
	buckets map[string]*ratelimit.Bucket
}

// NewIPLimiter 每 fillInterval 补充一个令牌，桶容量为 capacity
func NewIPLimiter(fillInterval time.Duration, capacity int64) *IPLimiter {
	return &IPLimiter{
		fillInterval: fillInterval,
		capacity:     capacity,
		buckets:      make(map[string]*ratelimit.Bucket),
	}
}

// Bucket 获取或创建 key 对应的令牌桶
func (l *IPLimiter) Bucket(key string) *ratelimit.Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = ratelimit.NewBucket(l.fillInterval, l.capacity)
		l.buckets[key] = b
	}
	return b
}

// RateLimiter 令牌耗尽时返回 429
func RateLimiter(l *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Bucket(c.ClientIP()).TakeAvailable(1) == 0 {
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
