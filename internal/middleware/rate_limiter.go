package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// ipLimiter is a per-IP fixed-window counter. Expired entries are purged
// lazily once per window.
type ipLimiter struct {
	limit     int
	window    time.Duration
	mu        sync.Mutex
	entries   map[string]*rateEntry
	nextPurge time.Time
}

func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextPurge) {
		l.purge(now)
		l.nextPurge = now.Add(l.window)
	}

	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *ipLimiter) purge(now time.Time) {
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter entries purged")
	}
}

// RateLimiter limits each client IP to limit requests per window.
// Stock runs are expensive upstream, so routes that trigger them get a
// tighter limiter of their own.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := &ipLimiter{limit: limit, window: window, entries: make(map[string]*rateEntry)}
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
