package response

import "todoapi/internal/core/domain"

type TodoResponse struct {
	ID          *int64  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Done        bool    `json:"done"`
}

// NewTodoResponse maps a todo to its wire shape. A zero id means the store
// never assigned one and is rendered as null.
func NewTodoResponse(todo domain.Todo) TodoResponse {
	resp := TodoResponse{
		Title:       todo.Title,
		Description: todo.Description,
		Done:        todo.Done,
	}

	if todo.ID != 0 {
		id := todo.ID
		resp.ID = &id
	}

	return resp
}

func NewTodoListResponse(todos []domain.Todo) []TodoResponse {
	data := make([]TodoResponse, 0, len(todos))

	for _, todo := range todos {
		data = append(data, NewTodoResponse(todo))
	}

	return data
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
