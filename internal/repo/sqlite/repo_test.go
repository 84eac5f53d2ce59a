package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) (*UsersRepo, *TasksRepo) {
	t.Helper()

	sqlDB, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.MigrateSQLite(context.Background(), sqlDB))

	return NewUsersRepo(sqlDB, nil), NewTasksRepo(sqlDB, nil)
}

func TestUsersRepo(t *testing.T) {
	users, _ := newRepos(t)
	ctx := context.Background()

	name := "Ada"
	u, err := users.Create(ctx, user.NewUser{Email: "a@b.com", PasswordHash: "hash", Name: &name})
	require.NoError(t, err)

	_, err = users.Create(ctx, user.NewUser{Email: "a@b.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	got, err := users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Ada", *got.Name)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)

	require.NoError(t, users.UpdatePasswordHash(ctx, u.ID, "new-hash"))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, users.UpdatePasswordHash(ctx, "missing", "x"), user.ErrNotFound)
}

func TestUsersRepo_NullName(t *testing.T) {
	users, _ := newRepos(t)
	ctx := context.Background()

	u, err := users.Create(ctx, user.NewUser{Email: "noname@b.com", PasswordHash: "hash"})
	require.NoError(t, err)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Name)
}

func TestTasksRepo_Scoping(t *testing.T) {
	users, tasks := newRepos(t)
	ctx := context.Background()

	alice, err := users.Create(ctx, user.NewUser{Email: "alice@b.com", PasswordHash: "h"})
	require.NoError(t, err)
	bob, err := users.Create(ctx, user.NewUser{Email: "bob@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	created, err := tasks.Create(ctx, alice.ID, task.NewTask{Title: "abc", Description: "", Status: task.StatusToDo})
	require.NoError(t, err)

	_, err = tasks.GetByID(ctx, bob.ID, created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	title := "hijack"
	_, err = tasks.Update(ctx, bob.ID, created.ID, task.Patch{Title: &title})
	assert.ErrorIs(t, err, task.ErrNotFound)

	assert.ErrorIs(t, tasks.Delete(ctx, bob.ID, created.ID), task.ErrNotFound)

	list, err := tasks.List(ctx, bob.ID, task.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := tasks.GetByID(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Title)
	assert.Equal(t, task.StatusToDo, got.Status)
	assert.Equal(t, alice.ID, got.UserID)
}

func TestTasksRepo_UpdateListDelete(t *testing.T) {
	users, tasks := newRepos(t)
	ctx := context.Background()

	owner, err := users.Create(ctx, user.NewUser{Email: "owner@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	first, err := tasks.Create(ctx, owner.ID, task.NewTask{Title: "first", Description: "one", Status: task.StatusToDo})
	require.NoError(t, err)
	second, err := tasks.Create(ctx, owner.ID, task.NewTask{Title: "second", Status: task.StatusDone})
	require.NoError(t, err)

	all, err := tasks.List(ctx, owner.ID, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done := task.StatusDone
	filtered, err := tasks.List(ctx, owner.ID, task.ListFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	status := task.StatusInProgress
	updated, err := tasks.Update(ctx, owner.ID, first.ID, task.Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)
	assert.Equal(t, "first", updated.Title)
	assert.Equal(t, "one", updated.Description)
	assert.False(t, updated.UpdatedAt.Before(first.UpdatedAt))

	_, err = tasks.Update(ctx, owner.ID, first.ID, task.Patch{})
	assert.True(t, errors.Is(err, task.ErrEmptyUpdate))

	require.NoError(t, tasks.Delete(ctx, owner.ID, first.ID))
	assert.ErrorIs(t, tasks.Delete(ctx, owner.ID, first.ID), task.ErrNotFound)
}
