package mapnav

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
			"client_ip", c.ClientIP(),
			"request_id", c.GetString("request_id"),
		}
		if status >= http.StatusInternalServerError {
			logger.Errorw("http_request", fields...)
		} else {
			logger.Infow("http_request", fields...)
		}
	}
}

// IPRateLimiter keeps one token bucket per client IP. A nil limiter or a
// non-positive rate lets every request through.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	logger   *zap.SugaredLogger
}

func NewIPRateLimiter(perMinute int, logger *zap.SugaredLogger) *IPRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		rate:   rate.Limit(float64(perMinute) / 60),
		burst:  burst,
		logger: logger,
	}
}

func (i *IPRateLimiter) limiter(ip string) *rate.Limiter {
	if l, ok := i.limiters.Load(ip); ok {
		return l.(*rate.Limiter)
	}
	l, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return l.(*rate.Limiter)
}

func (i *IPRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if i == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !i.limiter(ip).Allow() {
			if i.logger != nil {
				i.logger.Warnw("rate_limit_exceeded", "client_ip", ip, "path", c.Request.URL.Path)
			}
			c.Header("Retry-After", "1")
			c.String(http.StatusTooManyRequests, "Too many navigation requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
