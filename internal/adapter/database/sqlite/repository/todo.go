package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

var todoColumns = []string{"id", "title", "description", "done"}

type TodoRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var todo domain.Todo

	err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Done)

	return todo, err
}

func (tr *TodoRepository) startSpan(ctx context.Context, operation, statement string, attrs map[string]interface{}) (context.Context, port.Span) {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}

	attrs["db.system"] = "sqlite"
	attrs["db.table"] = "todos"
	attrs["db.operation"] = statement

	return tr.telemetry.StartRepositorySpan(ctx, operation, "todo", attrs)
}

func (tr *TodoRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	span.SetStatus("error", err.Error())
	span.RecordError(err)
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	return err
}

func (tr *TodoRepository) succeed(ctx context.Context, span port.Span, operation string, startTime time.Time) {
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), nil)
}

func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "GetAll", "SELECT", nil)
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return []domain.Todo{}, tr.fail(ctx, span, "GetAll", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetAll", "todo", query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return []domain.Todo{}, tr.fail(ctx, span, "GetAll", startTime, err)
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			return []domain.Todo{}, tr.fail(ctx, span, "GetAll", startTime, err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return []domain.Todo{}, tr.fail(ctx, span, "GetAll", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(todos)})
	tr.succeed(ctx, span, "GetAll", startTime)

	return todos, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "GetByID", "SELECT", map[string]interface{}{"todo.id": id})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "GetByID", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetByID", "todo", query, args)

	todo, err := scanTodo(tr.db.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, tr.fail(ctx, span, "GetByID", startTime, fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound))
	}

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "GetByID", startTime, err)
	}

	tr.succeed(ctx, span, "GetByID", startTime)

	return todo, nil
}

// Create inserts the todo and returns the id assigned by the store. Any id
// carried by the todo is ignored.
func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (int64, error) {
	ctx, span := tr.startSpan(ctx, "Create", "INSERT", nil)
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("title", "description", "done").
		Values(todo.Title, todo.Description, todo.Done).
		ToSql()

	if err != nil {
		return 0, tr.fail(ctx, span, "Create", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, tr.fail(ctx, span, "Create", startTime, err)
	}

	id, err := result.LastInsertId()

	if err != nil {
		return 0, tr.fail(ctx, span, "Create", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{"todo.id": id})
	tr.succeed(ctx, span, "Create", startTime)

	return id, nil
}

// UpdateByID overwrites every mutable column of row id and returns the
// number of rows matched.
func (tr *TodoRepository) UpdateByID(ctx context.Context, id int64, todo domain.Todo) (int64, error) {
	ctx, span := tr.startSpan(ctx, "UpdateByID", "UPDATE", map[string]interface{}{"todo.id": id})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		SetMap(todo.ToMap()).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return 0, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "UpdateByID", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return 0, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{"db.rows_affected": affected})
	tr.succeed(ctx, span, "UpdateByID", startTime)

	return affected, nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ctx, span := tr.startSpan(ctx, "DeleteByID", "DELETE", map[string]interface{}{"todo.id": id})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return 0, tr.fail(ctx, span, "DeleteByID", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, tr.fail(ctx, span, "DeleteByID", startTime, err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return 0, tr.fail(ctx, span, "DeleteByID", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{"db.rows_affected": affected})
	tr.succeed(ctx, span, "DeleteByID", startTime)

	return affected, nil
}
