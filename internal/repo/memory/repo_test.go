package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_EmailIsUnique(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	_, err := r.Create(ctx, user.User{Name: "Mike", Email: "mike@example.com"})
	require.NoError(t, err)

	_, err = r.Create(ctx, user.User{Name: "Other", Email: "mike@example.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestUsersRepo_UpdateRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	mike, err := r.Create(ctx, user.User{Name: "Mike", Email: "mike@example.com"})
	require.NoError(t, err)
	_, err = r.Create(ctx, user.User{Name: "Al", Email: "al@example.com"})
	require.NoError(t, err)

	taken := "al@example.com"
	_, err = r.Update(ctx, mike.ID, user.Changes{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	same := "mike@example.com"
	_, err = r.Update(ctx, mike.ID, user.Changes{Email: &same})
	assert.NoError(t, err)
}

func TestUsersRepo_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Mike", Email: "mike@example.com"})
	require.NoError(t, err)

	require.NoError(t, r.PushToken(ctx, u.ID, "t1"))
	require.NoError(t, r.PushToken(ctx, u.ID, "t2"))

	got, err := r.GetByToken(ctx, u.ID, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.Tokens)

	require.NoError(t, r.PullToken(ctx, u.ID, "t1"))
	_, err = r.GetByToken(ctx, u.ID, "t1")
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = r.GetByToken(ctx, u.ID, "t2")
	assert.NoError(t, err)

	require.NoError(t, r.ClearTokens(ctx, u.ID))
	got, err = r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tokens)
}

func TestUsersRepo_ReturnedUsersDoNotAliasStorage(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Mike", Email: "mike@example.com"})
	require.NoError(t, err)
	require.NoError(t, r.PushToken(ctx, u.ID, "t1"))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Tokens[0] = "mutated"

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "t1", again.Tokens[0])
}

func TestUsersRepo_Avatar(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Mike", Email: "mike@example.com"})
	require.NoError(t, err)

	require.NoError(t, r.SetAvatar(ctx, u.ID, []byte{1, 2, 3}))
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.Avatar)

	require.NoError(t, r.SetAvatar(ctx, u.ID, nil))
	got, err = r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Avatar)

	assert.ErrorIs(t, r.SetAvatar(ctx, "missing", nil), user.ErrNotFound)
}

func seedTasks(t *testing.T, r *TasksRepo) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, tk := range []task.Task{
		{Description: "b first", Completed: false, Owner: "u1"},
		{Description: "a second", Completed: true, Owner: "u1"},
		{Description: "c third", Completed: true, Owner: "u2"},
		{Description: "d fourth", Completed: true, Owner: "u1"},
	} {
		tk.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := r.Create(ctx, tk)
		require.NoError(t, err)
	}
}

func TestTasksRepo_ListScopesToOwnerAndFilters(t *testing.T) {
	ctx := context.Background()
	r := NewTasksRepo()
	seedTasks(t, r)

	all, err := r.List(ctx, "u1", task.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done := true
	completed, err := r.List(ctx, "u1", task.ListQuery{Completed: &done})
	require.NoError(t, err)
	require.Len(t, completed, 2)
	for _, tk := range completed {
		assert.True(t, tk.Completed)
		assert.Equal(t, "u1", tk.Owner)
	}

	none, err := r.List(ctx, "nobody", task.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTasksRepo_ListSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	r := NewTasksRepo()
	seedTasks(t, r)

	desc, err := r.List(ctx, "u1", task.ListQuery{SortField: task.SortCreatedAt, SortDesc: true})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, "d fourth", desc[0].Description)
	assert.Equal(t, "b first", desc[2].Description)

	byName, err := r.List(ctx, "u1", task.ListQuery{SortField: task.SortDescription})
	require.NoError(t, err)
	assert.Equal(t, "a second", byName[0].Description)

	page, err := r.List(ctx, "u1", task.ListQuery{SortField: task.SortDescription, Limit: 1, Skip: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b first", page[0].Description)

	past, err := r.List(ctx, "u1", task.ListQuery{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestTasksRepo_OwnershipIsEnforced(t *testing.T) {
	ctx := context.Background()
	r := NewTasksRepo()

	tk, err := r.Create(ctx, task.Task{Description: "mine", Owner: "u1"})
	require.NoError(t, err)

	_, err = r.GetOwned(ctx, tk.ID, "u2")
	assert.ErrorIs(t, err, task.ErrNotFound)

	done := true
	_, err = r.UpdateOwned(ctx, tk.ID, "u2", task.Changes{Completed: &done})
	assert.ErrorIs(t, err, task.ErrNotFound)

	_, err = r.DeleteOwned(ctx, tk.ID, "u2")
	assert.ErrorIs(t, err, task.ErrNotFound)

	updated, err := r.UpdateOwned(ctx, tk.ID, "u1", task.Changes{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	deleted, err := r.DeleteOwned(ctx, tk.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, tk.ID, deleted.ID)
}

func TestTasksRepo_DeleteByOwner(t *testing.T) {
	ctx := context.Background()
	r := NewTasksRepo()
	seedTasks(t, r)

	n, err := r.DeleteByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	left, err := r.List(ctx, "u1", task.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, left)

	other, err := r.List(ctx, "u2", task.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
