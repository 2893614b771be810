package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
	. "todoapi/pkg/test"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newHandlers(t *testing.T) HandlersConfig {
	db := InitTestDB()
	t.Cleanup(func() { db.Close() })

	logger := config.NewNopLogger()
	svc := service.NewTodoService(repository.NewTodoRepository(db, nil), nil)

	return HandlersConfig{
		TodoHandler:   handler.NewTodoHandler(svc, logger),
		HealthHandler: handler.NewHealthHandler(db, logger),
	}
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	return w
}

func TestSetupRouterWithConfig_ServesTodoRoutes(t *testing.T) {
	RegisterTestingT(t)

	cfg := config.GetDefaultConfig()
	cfg.GinMode = gin.TestMode

	registry := prometheus.NewRegistry()
	router := SetupRouterWithConfig(newHandlers(t), telemetry.NewAppMetrics(registry), config.NewNopLogger(), cfg)

	w := serve(router, "POST", "/todo", `{"title":"Buy milk"}`)
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Header().Get("X-Request-ID")).ToNot(BeEmpty())
	Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("600"))

	w = serve(router, "GET", "/todos", "")
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(MatchJSON(`[{"id":1,"title":"Buy milk","description":null,"done":false}]`))

	w = serve(router, "GET", "/health", "")
	Expect(w.Code).To(Equal(http.StatusOK))

	Expect(testutil.GatherAndCount(registry, "http_requests_total")).To(Equal(3))
}

func TestSetupRouterWithConfig_RateLimits(t *testing.T) {
	RegisterTestingT(t)

	cfg := config.GetDefaultConfig()
	cfg.GinMode = gin.TestMode
	cfg.RateLimit = config.RateLimitConfig{Requests: 2, Window: time.Minute}

	router := SetupRouterWithConfig(newHandlers(t), telemetry.NewAppMetrics(prometheus.NewRegistry()), config.NewNopLogger(), cfg)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(router, "GET", "/todos", "").Code)
	}

	Expect(codes).To(Equal([]int{200, 200, 429}))
}

func TestSetupRouterWithConfig_RateLimitDisabled(t *testing.T) {
	RegisterTestingT(t)

	cfg := config.GetDefaultConfig()
	cfg.GinMode = gin.TestMode
	cfg.RateLimitEnabled = false
	cfg.RateLimit = config.RateLimitConfig{Requests: 1, Window: time.Minute}

	router := SetupRouterWithConfig(newHandlers(t), nil, config.NewNopLogger(), cfg)

	for i := 0; i < 3; i++ {
		w := serve(router, "GET", "/todos", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-RateLimit-Limit")).To(BeEmpty())
	}
}

func TestSetupRouterForTests_UnknownRoutes(t *testing.T) {
	RegisterTestingT(t)

	router := SetupRouterForTests(newHandlers(t))

	for _, tc := range []struct{ method, path string }{
		{"GET", "/todo"},
		{"PUT", "/todos/1"},
		{"PATCH", "/todo/1"},
		{"DELETE", "/todo"},
	} {
		w := serve(router, tc.method, tc.path, "")

		Expect(w.Code).To(Equal(http.StatusNotFound), tc.method+" "+tc.path)
		Expect(w.Body.String()).To(ContainSubstring(`"code":"NOT_FOUND"`))
	}
}
