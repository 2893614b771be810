package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const serviceName = "todo"

type TodoService struct {
	repo         port.TodoRepository
	telemetry    port.Telemetry
	strictWrites bool
}

type Option func(*TodoService)

// WithStrictWrites makes writes return the stored row and turns update or
// delete of a missing id into domain.ErrTodoNotFound. Without it, writes echo
// the submitted todo and a missing id is reported as success.
func WithStrictWrites(enabled bool) Option {
	return func(ts *TodoService) {
		ts.strictWrites = enabled
	}
}

func NewTodoService(repo port.TodoRepository, telemetry port.Telemetry, opts ...Option) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	ts := &TodoService{
		repo:      repo,
		telemetry: telemetry,
	}

	for _, opt := range opts {
		opt(ts)
	}

	return ts
}

func (ts *TodoService) StrictWrites() bool {
	return ts.strictWrites
}

func (ts *TodoService) observe(ctx context.Context, operation string, attrs map[string]interface{}, fn func(context.Context) error) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, operation, attrs)
	defer span.End()

	startTime := time.Now()
	err := fn(ctx)

	ts.telemetry.RecordServiceOperation(ctx, serviceName, operation, time.Since(startTime), err)

	return err
}

func (ts *TodoService) GetAll(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo

	err := ts.observe(ctx, "GetAll", nil, func(ctx context.Context) error {
		rows, err := ts.repo.GetAll(ctx)

		if err != nil {
			return err
		}

		todos = rows
		return nil
	})

	if err != nil {
		return []domain.Todo{}, err
	}

	return todos, nil
}

func (ts *TodoService) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	result := todo

	err := ts.observe(ctx, "Create", map[string]interface{}{"strict": ts.strictWrites}, func(ctx context.Context) error {
		id, err := ts.repo.Create(ctx, todo)

		if err != nil {
			return err
		}

		ts.telemetry.RecordBusinessEvent(ctx, "created", "todo", strconv.FormatInt(id, 10), map[string]interface{}{
			"done":            todo.Done,
			"has_description": todo.HasDescription(),
		})

		if !ts.strictWrites {
			return nil
		}

		saved, err := ts.repo.GetByID(ctx, id)

		if err != nil {
			return fmt.Errorf("reload todo %d: %w", id, err)
		}

		result = saved
		return nil
	})

	if err != nil {
		return domain.Todo{}, err
	}

	return result, nil
}

func (ts *TodoService) UpdateByID(ctx context.Context, id int64, todo domain.Todo) (domain.Todo, error) {
	result := todo

	err := ts.observe(ctx, "UpdateByID", map[string]interface{}{"todo.id": id, "strict": ts.strictWrites}, func(ctx context.Context) error {
		affected, err := ts.repo.UpdateByID(ctx, id, todo)

		if err != nil {
			return err
		}

		if affected == 0 {
			if ts.strictWrites {
				return fmt.Errorf("update todo %d: %w", id, domain.ErrTodoNotFound)
			}

			ts.telemetry.RecordError(ctx, "UpdateByID", domain.ErrTodoNotFound, map[string]interface{}{"todo.id": id})
			return nil
		}

		ts.telemetry.RecordBusinessEvent(ctx, "updated", "todo", strconv.FormatInt(id, 10), map[string]interface{}{
			"done": todo.Done,
		})

		if !ts.strictWrites {
			return nil
		}

		saved, err := ts.repo.GetByID(ctx, id)

		if err != nil {
			return fmt.Errorf("reload todo %d: %w", id, err)
		}

		result = saved
		return nil
	})

	if err != nil {
		return domain.Todo{}, err
	}

	return result, nil
}

func (ts *TodoService) DeleteByID(ctx context.Context, id int64) error {
	return ts.observe(ctx, "DeleteByID", map[string]interface{}{"todo.id": id, "strict": ts.strictWrites}, func(ctx context.Context) error {
		affected, err := ts.repo.DeleteByID(ctx, id)

		if err != nil {
			return err
		}

		if affected == 0 {
			if ts.strictWrites {
				return fmt.Errorf("delete todo %d: %w", id, domain.ErrTodoNotFound)
			}

			ts.telemetry.RecordError(ctx, "DeleteByID", domain.ErrTodoNotFound, map[string]interface{}{"todo.id": id})
			return nil
		}

		ts.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", strconv.FormatInt(id, 10), nil)

		return nil
	})
}
