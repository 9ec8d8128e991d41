package task

import "time"

// NewFromCreateRequest builds a task owned by owner. The id is assigned by
// the store.
func NewFromCreateRequest(owner string, req CreateTaskRequest) Task {
	now := time.Now().UTC()

	return Task{
		Description: req.Description,
		Completed:   req.Completed,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
