package handler

import (
	"context"
	"net/http"
	"time"

	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	store  port.HealthChecker
	Logger *config.Logger
}

func NewHealthHandler(store port.HealthChecker, logger *config.Logger) *HealthHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &HealthHandler{
		store:  store,
		Logger: logger,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.PingContext(ctx); err != nil {
		h.Logger.WarnWithTrace(ctx, "Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable"})
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}
