package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/ems-api/internal/errors"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows each client IP perMinute requests per minute with the
// given burst. Idle visitors are forgotten after idleTTL.
func RateLimiter(perMinute, burst int) gin.HandlerFunc {
	const idleTTL = 10 * time.Minute

	limit := rate.Every(time.Minute / time.Duration(max(perMinute, 1)))
	visitors := make(map[string]*visitor)
	var mu sync.Mutex
	lastSweep := time.Now()

	getVisitor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > idleTTL {
			for key, v := range visitors {
				if now.Sub(v.lastSeen) > idleTTL {
					delete(visitors, key)
				}
			}
			lastSweep = now
		}

		v, exists := visitors[ip]
		if !exists {
			v = &visitor{limiter: rate.NewLimiter(limit, burst)}
			visitors[ip] = v
		}
		v.lastSeen = now
		return v.limiter
	}

	return func(c *gin.Context) {
		if !getVisitor(c.ClientIP()).Allow() {
			apierrors.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
