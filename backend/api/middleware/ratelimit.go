package middleware

import (
	"net/http"
	"sync"
	"time"

	"files-manager/backend/common"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const MsgTooManyRequests = "Too many requests"

// ipLimiters keeps one token bucket per client IP. Buckets idle for longer
// than ttl are dropped on the next sweep.
type ipLimiters struct {
	mutex     sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if now.Sub(l.lastSweep) > l.ttl {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > l.ttl {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimit allows perMinute requests per client IP on the routes it guards.
// A non-positive perMinute disables the limit.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := &ipLimiters{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		ttl:       10 * time.Minute,
		lastSweep: time.Now(),
	}
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			common.RespErrorStr(c, http.StatusTooManyRequests, MsgTooManyRequests)
			return
		}
		c.Next()
	}
}
