package middleware

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func newTestRateLimiter(requests int, window time.Duration) (*RateLimiter, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(registry)

	return NewRateLimiter(config.RateLimitConfig{Requests: requests, Window: window}, zap.NewNop(), metrics), registry
}

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/todos", func(c *gin.Context) {
		c.JSON(http.StatusOK, []any{})
	})

	router.PUT("/todo/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	return router
}

func TestNewRateLimiter(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(10, time.Minute)

	Expect(rl).ToNot(BeNil())
	Expect(rl.cache).ToNot(BeNil())
	Expect(rl.config).To(HaveKey("default"))
	Expect(rl.metrics).ToNot(BeNil())
}

func TestRateLimitMiddleware_AllowedRequests(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(10, time.Minute)
	router := rateLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
		Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("10"))
		Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal(strconv.Itoa(9 - i)))
	}
}

func TestRateLimitMiddleware_ExceedLimit(t *testing.T) {
	RegisterTestingT(t)

	rl, registry := newTestRateLimiter(3, time.Minute)
	router := rateLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		router.ServeHTTP(w, req)

		if i < 3 {
			Expect(w.Code).To(Equal(200))
		} else {
			Expect(w.Code).To(Equal(429))
			Expect(w.Body.String()).To(ContainSubstring(`"code":"RATE_LIMITED"`))
			Expect(w.Header().Get("Retry-After")).ToNot(BeEmpty())
		}
	}

	Expect(testutil.GatherAndCount(registry, "rate_limit_hits_total")).To(Equal(1))
}

func TestRateLimitMiddleware_RoutesHaveSeparateBudgets(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(1, time.Minute)
	router := rateLimitedRouter(rl)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/todos", nil)
	router.ServeHTTP(w, req)
	Expect(w.Code).To(Equal(200))

	// same route template, different id
	for _, path := range []string{"/todo/1", "/todo/2"} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("PUT", path, nil)
		router.ServeHTTP(w, req)

		if path == "/todo/1" {
			Expect(w.Code).To(Equal(200))
		} else {
			Expect(w.Code).To(Equal(429))
		}
	}
}

func TestRateLimitMiddleware_ClientsHaveSeparateBudgets(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(1, time.Minute)
	router := rateLimitedRouter(rl)

	for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
	}
}

func TestRateLimitMiddleware_WindowReset(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(1, 50*time.Millisecond)
	router := rateLimitedRouter(rl)

	serve := func() int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		router.ServeHTTP(w, req)
		return w.Code
	}

	Expect(serve()).To(Equal(200))
	Expect(serve()).To(Equal(429))

	time.Sleep(100 * time.Millisecond)

	Expect(serve()).To(Equal(200))
}

func TestRateLimiterSetConfig(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(100, time.Minute)
	rl.SetConfig("PUT /todo/:id", RateLimitEndpointConfig{Requests: 1, Window: time.Minute})

	router := rateLimitedRouter(rl)

	codes := []int{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/todo/1", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	Expect(codes).To(Equal([]int{200, 429}))
	Expect(rl.GetStats()).To(HaveKeyWithValue("configs", 2))
}

func TestRateLimitMiddleware_NoDoubleCounting(t *testing.T) {
	RegisterTestingT(t)

	rl, _ := newTestRateLimiter(20, time.Minute)
	router := rateLimitedRouter(rl)

	numRequests := 10
	results := make([]int, numRequests)
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)

		go func(index int) {
			defer wg.Done()

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/todos", nil)
			router.ServeHTTP(w, req)

			remaining, _ := strconv.Atoi(w.Header().Get("X-RateLimit-Remaining"))
			results[index] = remaining
		}(i)
	}

	wg.Wait()

	sort.Ints(results)

	Expect(results).To(Equal([]int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}))
}
