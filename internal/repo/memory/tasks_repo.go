package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/google/uuid"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
	order []string // insertion order, the natural order of an unsorted list
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	r.mu.Lock()
	r.items[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) List(_ context.Context, owner string, q task.ListQuery) ([]task.Task, error) {
	r.mu.RLock()
	out := make([]task.Task, 0)
	for _, id := range r.order {
		t := r.items[id]
		if t.Owner != owner {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		out = append(out, t)
	}
	r.mu.RUnlock()

	if q.SortField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareTasks(out[i], out[j], q.SortField)
			if q.SortDesc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []task.Task{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}

	return out, nil
}

func (r *TasksRepo) GetOwned(_ context.Context, id, owner string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || t.Owner != owner {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (r *TasksRepo) UpdateOwned(_ context.Context, id, owner string, changes task.Changes) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.Owner != owner {
		return task.Task{}, task.ErrNotFound
	}

	if changes.Description != nil {
		t.Description = *changes.Description
	}
	if changes.Completed != nil {
		t.Completed = *changes.Completed
	}
	t.UpdatedAt = time.Now().UTC()

	r.items[id] = t
	return t, nil
}

func (r *TasksRepo) DeleteOwned(_ context.Context, id, owner string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.Owner != owner {
		return task.Task{}, task.ErrNotFound
	}

	r.remove(id)
	return t, nil
}

func (r *TasksRepo) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.items {
		if t.Owner == owner {
			r.remove(id)
			n++
		}
	}
	return n, nil
}

// remove expects r.mu to be held for writing.
func (r *TasksRepo) remove(id string) {
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func compareTasks(a, b task.Task, field string) int {
	switch field {
	case task.SortDescription:
		switch {
		case a.Description < b.Description:
			return -1
		case a.Description > b.Description:
			return 1
		}
	case task.SortCompleted:
		switch {
		case !a.Completed && b.Completed:
			return -1
		case a.Completed && !b.Completed:
			return 1
		}
	case task.SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case task.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
