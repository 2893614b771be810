package domain

import "errors"

var ErrTodoNotFound = errors.New("todo not found")

type Todo struct {
	ID          int64
	Title       string
	Description *string
	Done        bool
}

func (t *Todo) HasDescription() bool {
	return t.Description != nil
}

func (t *Todo) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"done":        t.Done,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTodoNotFound)
}
