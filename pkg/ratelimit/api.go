package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"golang-maintenance-work-order/internal/config"
	"golang-maintenance-work-order/internal/utils"
)

type clientLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// APIRateLimiter throttles mutating endpoints with a global limiter plus a
// per-client limiter keyed by remote address. Idle client entries are swept
// by a background cleanup loop.
type APIRateLimiter struct {
	cfg            *config.RateLimitConfig
	log            *logrus.Logger
	globalLimiter  *rate.Limiter
	clientLimiters map[string]*clientLimiterEntry
	mu             sync.Mutex
	wg             sync.WaitGroup
}

func NewAPIRateLimiter(cfg *config.RateLimitConfig, log *logrus.Logger) *APIRateLimiter {
	return &APIRateLimiter{
		cfg:            cfg,
		log:            log,
		globalLimiter:  rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		clientLimiters: make(map[string]*clientLimiterEntry),
	}
}

// Middleware rejects requests over the limit with 429 instead of queueing
// them; a throttled transition request must fail fast, not pile up.
func (r *APIRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.globalLimiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}

		clientLimiter := r.getClientLimiter(c.ClientIP())
		if !clientLimiter.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests from this client",
			})
			return
		}

		c.Next()
	}
}

func (r *APIRateLimiter) getClientLimiter(clientIP string) *clientLimiterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, exists := r.clientLimiters[clientIP]; exists {
		limiter.lastAccess = time.Now()
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(r.cfg.MaxClientRequestPerSecond), r.cfg.MaxClientRequestPerSecond)
	r.clientLimiters[clientIP] = &clientLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return r.clientLimiters[clientIP]
}

func (r *APIRateLimiter) StartCleanupExpired(ctx context.Context) {
	r.wg.Add(1)
	utils.SafeGo(func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Info("Received signal to stop API rate limiter cleanup")
				return
			case <-ticker.C:
				r.mu.Lock()
				now := time.Now()
				for clientIP, entry := range r.clientLimiters {
					if now.Sub(entry.lastAccess) > r.cfg.ExpireDuration {
						delete(r.clientLimiters, clientIP)
					}
				}
				r.mu.Unlock()
			}
		}
	})
}

func (r *APIRateLimiter) StopCleanupExpired() {
	r.wg.Wait()
	r.log.Info("API rate limiter stopped")
}
