package request

import "todoapi/internal/core/domain"

// TodoRequest is the body of POST /todo and PUT /todo/:id. The id field is
// accepted for shape compatibility but never used to address a row.
type TodoRequest struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description"`
	Done        bool    `json:"done"`
}

func (r TodoRequest) ToDomain() domain.Todo {
	todo := domain.Todo{
		Description: r.Description,
		Done:        r.Done,
	}

	if r.ID != nil {
		todo.ID = *r.ID
	}

	if r.Title != nil {
		todo.Title = *r.Title
	}

	return todo
}
