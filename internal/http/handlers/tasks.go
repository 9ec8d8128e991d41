package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// TaskStore is what the task routes need from a repository. Every call is
// scoped to the caller; a task owned by someone else looks like a missing
// one.
type TaskStore interface {
	Create(ctx context.Context, t task.Task) (task.Task, error)
	List(ctx context.Context, owner string, q task.ListQuery) ([]task.Task, error)
	GetOwned(ctx context.Context, id, owner string) (task.Task, error)
	UpdateOwned(ctx context.Context, id, owner string, changes task.Changes) (task.Task, error)
	DeleteOwned(ctx context.Context, id, owner string) (task.Task, error)
}

type TasksHandler struct {
	repo TaskStore
}

func NewTasksHandler(repo TaskStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	var req task.CreateTaskRequest
	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.repo.Create(ctx.Request.Context(), task.NewFromCreateRequest(u.ID, req))
	if err != nil {
		h.internal(ctx, "tasks.create", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// ListTasks serves GET /tasks?completed=true&sortBy=createdAt_desc&limit=10&skip=20.
// Unusable parameters are ignored rather than rejected.
func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	q := task.ParseListQuery(
		ctx.Query("completed"),
		ctx.Query("sortBy"),
		ctx.Query("limit"),
		ctx.Query("skip"),
	)

	items, err := h.repo.List(ctx.Request.Context(), u.ID, q)
	if err != nil {
		h.internal(ctx, "tasks.list", err)
		return
	}
	if items == nil {
		items = []task.Task{}
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *TasksHandler) GetTask(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	t, err := h.repo.GetOwned(ctx.Request.Context(), ctx.Param("id"), u.ID)
	if err != nil {
		h.fail(ctx, "tasks.get", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, t)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	var req task.UpdateTaskRequest
	if !BindPatch(ctx, task.UpdatableFields, &req) {
		return
	}

	updated, err := h.repo.UpdateOwned(ctx.Request.Context(), ctx.Param("id"), u.ID, req.Changes())
	if err != nil {
		h.fail(ctx, "tasks.update", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	u, _ := middlewares.CurrentUser(ctx)

	deleted, err := h.repo.DeleteOwned(ctx.Request.Context(), ctx.Param("id"), u.ID)
	if err != nil {
		h.fail(ctx, "tasks.delete", err)
		return
	}

	ctx.JSON(http.StatusOK, deleted)
}

func (h *TasksHandler) fail(ctx *gin.Context, op string, err error) {
	if errors.Is(err, task.ErrNotFound) {
		RespondEmpty(ctx, http.StatusNotFound)
		return
	}
	h.internal(ctx, op, err)
}

func (h *TasksHandler) internal(ctx *gin.Context, op string, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), op+" failed", "err", err)
	RespondEmpty(ctx, http.StatusInternalServerError)
}
