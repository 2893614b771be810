package port

import (
	"context"

	"todoapi/internal/core/domain"
)

// TodoRepository is the data-access layer over the todos table. Write
// operations report the number of affected rows so callers can tell a
// missing id apart from a successful write.
type TodoRepository interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetByID(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (int64, error)
	UpdateByID(ctx context.Context, id int64, todo domain.Todo) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
}

// TodoService runs the todo use cases. Unless StrictWrites reports true,
// Create and UpdateByID echo the submitted todo instead of the stored row.
type TodoService interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	UpdateByID(ctx context.Context, id int64, todo domain.Todo) (domain.Todo, error)
	DeleteByID(ctx context.Context, id int64) error
	StrictWrites() bool
}

type HealthChecker interface {
	PingContext(ctx context.Context) error
}
