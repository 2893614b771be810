package handler

import (
	"errors"
	"net/http"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"
	. "todoapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgCreateFailed = "Error creating todo"
	msgLoadFailed   = "Error loading todos"
	msgUpdateFailed = "Error updating todo"
	msgDeleteFailed = "Error deleting todo"
	msgDeleted      = "Todo deleted"
	msgNotFound     = "Todo not found"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *config.Logger
}

func NewTodoHandler(todoService port.TodoService, logger *config.Logger) *TodoHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TodoHandler{
		svc:    todoService,
		Logger: logger,
	}
}

func spanAttributes(c *gin.Context, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	}
}

// writeResponse renders the result of a create or update. Echoed writes
// return the submitted id as sent, including an explicit 0 or no id at all.
func (t *TodoHandler) writeResponse(todo domain.Todo, params request.TodoRequest) response.TodoResponse {
	resp := response.NewTodoResponse(todo)

	if !t.svc.StrictWrites() {
		resp.ID = params.ID
	}

	return resp
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", spanAttributes(c, "GetAllTodos"))
	defer span.End()

	todos, err := t.svc.GetAll(ctx)

	if err != nil {
		AddSpanError(span, err)
		t.Logger.ErrorWithTrace(ctx, "Failed to load todos", zap.Error(err))

		SendText(c, http.StatusInternalServerError, msgLoadFailed)
		return
	}

	span.SetAttributes(
		attribute.Int("http.status_code", http.StatusOK),
		attribute.Int("todo.count", len(todos)),
	)

	SendTodos(c, response.NewTodoListResponse(todos))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", spanAttributes(c, "CreateTodo"))
	defer span.End()

	params, ok := BindJSON[request.TodoRequest](c)

	if !ok {
		return
	}

	todo, err := t.svc.Create(ctx, params.ToDomain())

	if err != nil {
		AddSpanError(span, err)
		t.Logger.ErrorWithTrace(ctx, "Failed to create todo", zap.Error(err))

		SendText(c, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	span.SetAttributes(
		attribute.Int("http.status_code", http.StatusOK),
		attribute.Int64("todo.id", todo.ID),
	)

	SendTodo(c, t.writeResponse(todo, params))
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.UpdateTodo", spanAttributes(c, "UpdateTodo"))
	defer span.End()

	id, ok := ParamID(c)

	if !ok {
		SendNotFoundError(c, "No route matches "+c.Request.URL.Path)
		return
	}

	span.SetAttributes(attribute.Int64("todo.id", id))

	params, ok := BindJSON[request.TodoRequest](c)

	if !ok {
		return
	}

	todo, err := t.svc.UpdateByID(ctx, id, params.ToDomain())

	if errors.Is(err, domain.ErrTodoNotFound) {
		SendText(c, http.StatusNotFound, msgNotFound)
		return
	}

	if err != nil {
		AddSpanError(span, err)
		t.Logger.ErrorWithTrace(ctx, "Failed to update todo", zap.Error(err), zap.Int64("todo_id", id))

		SendText(c, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	SendTodo(c, t.writeResponse(todo, params))
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteTodo", spanAttributes(c, "DeleteTodo"))
	defer span.End()

	id, ok := ParamID(c)

	if !ok {
		SendNotFoundError(c, "No route matches "+c.Request.URL.Path)
		return
	}

	span.SetAttributes(attribute.Int64("todo.id", id))

	err := t.svc.DeleteByID(ctx, id)

	if errors.Is(err, domain.ErrTodoNotFound) {
		SendText(c, http.StatusNotFound, msgNotFound)
		return
	}

	if err != nil {
		AddSpanError(span, err)
		t.Logger.ErrorWithTrace(ctx, "Failed to delete todo", zap.Error(err), zap.Int64("todo_id", id))

		SendText(c, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	SendText(c, http.StatusOK, msgDeleted)
}
