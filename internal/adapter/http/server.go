package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func NewServer(container *Container, metrics *telemetry.AppMetrics, logger *config.Logger, cfg *config.AppConfig) *http.Server {
	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		TodoHandler:   container.TodoHandler,
		HealthHandler: container.HealthHandler,
	}, metrics, logger, cfg)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Serve runs srv until ctx is canceled, then drains in-flight requests.
func Serve(ctx context.Context, srv *http.Server, logger *config.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
