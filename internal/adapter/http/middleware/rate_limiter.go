package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

// RateLimiter is a fixed-window limiter keyed by route and client. Windows
// live in an in-process go-cache and expire on their own.
type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		cache: cache.New(5*time.Minute, 10*time.Minute),
		config: map[string]RateLimitEndpointConfig{
			"default": {
				Requests: cfg.Requests,
				Window:   cfg.Window,
				KeyFunc:  helper.GetClientIP,
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path
		endpoint := rl.endpointConfig(methodPath)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, endpoint.KeyFunc(c))

		allowed, remaining, resetTime := rl.checkRateLimit(key, endpoint)

		c.Header("X-RateLimit-Limit", strconv.Itoa(endpoint.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", endpoint.Requests),
				zap.Duration("window", endpoint.Window))

			retryAfter := int(time.Until(resetTime).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			helper.SendTooManyRequestsError(c,
				fmt.Sprintf("Too many requests. Limit: %d per %v", endpoint.Requests, endpoint.Window),
				retryAfter)
			c.Abort()
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path)
		}

		c.Next()
	}
}

func (rl *RateLimiter) endpointConfig(methodPath string) RateLimitEndpointConfig {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if endpoint, exists := rl.config[methodPath]; exists {
		return endpoint
	}

	return rl.config["default"]
}

func (rl *RateLimiter) checkRateLimit(key string, endpoint RateLimitEndpointConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if item, found := rl.cache.Get(key); found {
		entry := item.(RateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= endpoint.Requests {
				return false, 0, entry.ResetTime
			}

			entry.Count++
			rl.cache.Set(key, entry, entry.ResetTime.Sub(now))

			return true, endpoint.Requests - entry.Count, entry.ResetTime
		}
	}

	resetTime := now.Add(endpoint.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, endpoint.Window)

	return true, endpoint.Requests - 1, resetTime
}

// SetConfig overrides the budget for one "METHOD /route" pair.
func (rl *RateLimiter) SetConfig(methodPath string, endpoint RateLimitEndpointConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if endpoint.KeyFunc == nil {
		endpoint.KeyFunc = helper.GetClientIP
	}

	rl.config[methodPath] = endpoint
}

func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	return map[string]interface{}{
		"active_entries": rl.cache.ItemCount(),
		"configs":        len(rl.config),
	}
}
