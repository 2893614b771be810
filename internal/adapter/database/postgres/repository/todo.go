package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/adapter/database/postgres"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/tracing"
)

var todoColumns = []string{"id", "title", "description", "done"}

type TodoRepository struct {
	db *postgres.DB
}

func NewTodoRepository(db *postgres.DB) port.TodoRepository {
	return &TodoRepository{db: db}
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var todo domain.Todo

	err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Done)

	return todo, err
}

func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.GetAll", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return []domain.Todo{}, err
	}

	rows, err := tr.db.Query(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return []domain.Todo{}, err
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			tracing.AddSpanError(span, err)
			return []domain.Todo{}, err
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		tracing.AddSpanError(span, err)
		return []domain.Todo{}, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(todos)))

	return todos, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.GetByID", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
		attribute.Int64("todo.id", id),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, err
	}

	todo, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, err
	}

	return todo, nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (int64, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Create", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "INSERT"),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("title", "description", "done").
		Values(todo.Title, todo.Description, todo.Done).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return 0, err
	}

	var id int64

	if err := tr.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		tracing.AddSpanError(span, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("todo.id", id))

	return id, nil
}

func (tr *TodoRepository) UpdateByID(ctx context.Context, id int64, todo domain.Todo) (int64, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.UpdateByID", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int64("todo.id", id),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(todo.ToMap()).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return 0, err
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))

	return tag.RowsAffected(), nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.DeleteByID", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int64("todo.id", id),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return 0, err
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))

	return tag.RowsAffected(), nil
}
