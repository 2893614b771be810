package http

import (
	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/pkg/config"
)

type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService

	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

func NewContainer(store *database.Store, probe port.Telemetry, logger *config.Logger, cfg *config.AppConfig) *Container {
	todoSvc := service.NewTodoService(store.TodoRepo, probe, service.WithStrictWrites(cfg.StrictWrites))

	return &Container{
		TodoRepo:      store.TodoRepo,
		TodoService:   todoSvc,
		TodoHandler:   handler.NewTodoHandler(todoSvc, logger),
		HealthHandler: handler.NewHealthHandler(store.Health, logger),
	}
}
