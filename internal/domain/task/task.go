package task

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("task not found")

type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Description string `json:"description" binding:"required"`
	Completed   bool   `json:"completed"`
}

func (r *CreateTaskRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
}

type UpdateTaskRequest struct {
	Description *string `json:"description" binding:"omitnil,min=1"`
	Completed   *bool   `json:"completed"`
}

var UpdatableFields = []string{"description", "completed"}

func (r *UpdateTaskRequest) Normalize() {
	if r.Description != nil {
		v := strings.TrimSpace(*r.Description)
		r.Description = &v
	}
}

func (r UpdateTaskRequest) Changes() Changes {
	return Changes{Description: r.Description, Completed: r.Completed}
}

type Changes struct {
	Description *string
	Completed   *bool
}

// Repository is implemented by every store backend. Every lookup except
// Create and DeleteByOwner is scoped to an owner id.
type Repository interface {
	Create(ctx context.Context, t Task) (Task, error)
	List(ctx context.Context, owner string, q ListQuery) ([]Task, error)
	GetOwned(ctx context.Context, id, owner string) (Task, error)
	UpdateOwned(ctx context.Context, id, owner string, changes Changes) (Task, error)
	DeleteOwned(ctx context.Context, id, owner string) (Task, error)
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
}
