package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "go-gin-order-service/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		tooMany(c)
	}
}

// 空闲超过 ipIdleTTL 的 IP 桶在下一次清扫时回收
const ipIdleTTL = 10 * time.Minute

// RateLimitPerIP 每 IP 限速
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	ips := newIPLimiters(rps, burst, ipIdleTTL, time.Now)
	return func(c *gin.Context) {
		if ips.allow(c.ClientIP()) {
			c.Next()
			return
		}
		tooMany(c)
	}
}

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	buckets   map[string]*ipBucket
	lastSweep time.Time
}

func newIPLimiters(rps rate.Limit, burst int, idle time.Duration, now func() time.Time) *ipLimiters {
	return &ipLimiters{
		rps: rps, burst: burst, idle: idle, now: now,
		buckets:   make(map[string]*ipBucket),
		lastSweep: now(),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// sweep 需持有 mu
func (l *ipLimiters) sweep(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func tooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error(resp.CodeTooManyRequests, "too many requests"))
}
