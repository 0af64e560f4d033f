package dto

import (
	"time"

	"saaskit_backend/internal/models"
)

type CreateTodoRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"omitempty,max=4000"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1,max=40"`
}

type UpdateTodoRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Done        *bool    `json:"done"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1,max=40"`
}

type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	Tags        []string  `json:"tags"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTodoResponse(todo *models.Todo) *TodoResponse {
	if todo == nil {
		return nil
	}
	return &TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Done:        todo.Done,
		Tags:        todo.Tags,
		CreatedByID: todo.CreatedByID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
	Total int64          `json:"total"`
}
