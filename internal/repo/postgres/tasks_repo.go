package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, description, completed, owner_id, created_at, updated_at`

// sortable API fields mapped to columns
var taskSortColumns = map[string]string{
	task.SortDescription: "description",
	task.SortCompleted:   "completed",
	task.SortCreatedAt:   "created_at",
	task.SortUpdatedAt:   "updated_at",
}

type TasksRepo struct {
	pool *pgxpool.Pool
	obs  observability.DBObserver
}

func NewTasksRepo(pool *pgxpool.Pool, obs observability.DBObserver) *TasksRepo {
	if obs == nil {
		obs = observability.NopDB{}
	}
	return &TasksRepo{pool: pool, obs: obs}
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt

	err := r.obs.ObserveDB("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks(id, description, completed, owner_id, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6)`,
			t.ID, t.Description, t.Completed, t.Owner, t.CreatedAt, t.UpdatedAt)
		return err
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, owner string, q task.ListQuery) ([]task.Task, error) {
	out := make([]task.Task, 0)
	if !validID(owner) {
		return out, nil
	}

	conds := []string{"owner_id = $1"}
	args := []any{owner}

	if q.Completed != nil {
		args = append(args, *q.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(conds, " AND ")

	// without sortBy the order is insertion order
	order := "seq ASC"
	if col, ok := taskSortColumns[q.SortField]; ok {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		order = col + " " + dir + ", seq ASC"
	}
	query += " ORDER BY " + order

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	err := r.obs.ObserveDB("tasks.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t task.Task
			if err := rows.Scan(&t.ID, &t.Description, &t.Completed, &t.Owner, &t.CreatedAt, &t.UpdatedAt); err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (r *TasksRepo) GetOwned(ctx context.Context, id, owner string) (task.Task, error) {
	return r.queryOwned(ctx, "tasks.get",
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`, id, owner)
}

func (r *TasksRepo) UpdateOwned(ctx context.Context, id, owner string, changes task.Changes) (task.Task, error) {
	sets := []string{"updated_at = $3"}
	args := []any{id, owner, time.Now().UTC()}

	if changes.Description != nil {
		args = append(args, *changes.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if changes.Completed != nil {
		args = append(args, *changes.Completed)
		sets = append(sets, fmt.Sprintf("completed = $%d", len(args)))
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND owner_id = $2 RETURNING ` + taskColumns

	return r.queryOwned(ctx, "tasks.update", query, args...)
}

func (r *TasksRepo) DeleteOwned(ctx context.Context, id, owner string) (task.Task, error) {
	return r.queryOwned(ctx, "tasks.delete",
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING `+taskColumns, id, owner)
}

func (r *TasksRepo) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	if !validID(owner) {
		return 0, nil
	}

	var n int64
	err := r.obs.ObserveDB("tasks.delete_by_owner", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1`, owner)
		n = tag.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete owner tasks: %w", err)
	}
	return n, nil
}

// queryOwned expects the task id and owner id as the first two arguments.
func (r *TasksRepo) queryOwned(ctx context.Context, op, query string, args ...any) (task.Task, error) {
	if !validID(args[0].(string)) || !validID(args[1].(string)) {
		return task.Task{}, task.ErrNotFound
	}

	var t task.Task
	err := r.obs.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(
			&t.ID, &t.Description, &t.Completed, &t.Owner, &t.CreatedAt, &t.UpdatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}
