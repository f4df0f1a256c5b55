// Package repotest содержит общие проверки хранилищ: каждая реализация
// (inmemory, local, postgres) должна вести себя одинаково.
package repotest

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/models/reset"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TaskRepoFactory создаёт пустое хранилище задач. owners - владельцы, которые
// должны существовать заранее там, где есть внешние ключи на пользователей.
type TaskRepoFactory func(t *testing.T, owners ...string) service.TaskRepository

type UserRepoFactory func(t *testing.T) service.UserRepository

// ResetRepoFactory создаёт пустое хранилище токенов; emails - зарегистрированные пользователи
type ResetRepoFactory func(t *testing.T, emails ...string) service.ResetTokenRepository

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

// секунды без дробной части: postgres хранит время с точностью до микросекунд
var base = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

func newTask(id int64, owner, title string) *task.Task {
	return &task.Task{
		ID:        id,
		Owner:     owner,
		Title:     title,
		Category:  task.DefaultCategory,
		Priority:  task.PriorityMedium,
		Start:     base,
		End:       base.Add(time.Hour),
		CreatedAt: base,
	}
}

func ids(tasks []*task.Task) []int64 {
	res := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

func TaskRepository(t *testing.T, newRepo TaskRepoFactory) {
	ctx := context.Background()

	t.Run("success - create and list in insertion order", func(t *testing.T) {
		r := newRepo(t, alice)

		for _, id := range []int64{30, 10, 20} {
			require.NoError(t, r.Create(ctx, newTask(id, alice, "task")))
		}

		tasks, err := r.ListByOwner(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []int64{30, 10, 20}, ids(tasks))
		for _, tk := range tasks {
			assert.Equal(t, 1, tk.Version)
			assert.True(t, base.Equal(tk.Start))
			assert.True(t, base.Add(time.Hour).Equal(tk.End))
		}
	})

	t.Run("success - empty owner has no tasks", func(t *testing.T) {
		r := newRepo(t, alice)

		tasks, err := r.ListByOwner(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("success - owners are isolated", func(t *testing.T) {
		r := newRepo(t, alice, bob)
		require.NoError(t, r.Create(ctx, newTask(1, alice, "alice")))
		require.NoError(t, r.Create(ctx, newTask(2, bob, "bob")))

		tasks, err := r.ListByOwner(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, ids(tasks))

		_, err = r.GetByID(ctx, bob, 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = r.Delete(ctx, bob, 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		stolen := newTask(1, bob, "stolen")
		stolen.Version = 1
		err = r.Update(ctx, stolen)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		found, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Title)
	})

	t.Run("success - update bumps version", func(t *testing.T) {
		r := newRepo(t, alice)
		require.NoError(t, r.Create(ctx, newTask(1, alice, "essay")))

		found, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)

		updatedAt := base.Add(time.Minute)
		found.Completed = true
		found.Title = "final essay"
		found.UpdatedAt = &updatedAt
		require.NoError(t, r.Update(ctx, found))
		assert.Equal(t, 2, found.Version)

		stored, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)
		assert.True(t, stored.Completed)
		assert.Equal(t, "final essay", stored.Title)
		assert.Equal(t, 2, stored.Version)
		require.NotNil(t, stored.UpdatedAt)
		assert.True(t, updatedAt.Equal(*stored.UpdatedAt))
	})

	t.Run("error - stale version", func(t *testing.T) {
		r := newRepo(t, alice)
		require.NoError(t, r.Create(ctx, newTask(1, alice, "essay")))

		first, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)
		second, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)

		first.Completed = true
		require.NoError(t, r.Update(ctx, first))

		second.Title = "lost update"
		err = r.Update(ctx, second)
		assert.ErrorIs(t, err, repository.ErrVersionConflict)

		stored, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)
		assert.Equal(t, "essay", stored.Title)
		assert.True(t, stored.Completed)
	})

	t.Run("error - update missing task", func(t *testing.T) {
		r := newRepo(t, alice)
		missing := newTask(99, alice, "missing")
		missing.Version = 1

		err := r.Update(ctx, missing)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("success - delete keeps order of the rest", func(t *testing.T) {
		r := newRepo(t, alice)
		for _, id := range []int64{1, 2, 3} {
			require.NoError(t, r.Create(ctx, newTask(id, alice, "task")))
		}

		require.NoError(t, r.Delete(ctx, alice, 2))

		tasks, err := r.ListByOwner(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, ids(tasks))

		err = r.Delete(ctx, alice, 2)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("success - returned tasks are copies", func(t *testing.T) {
		r := newRepo(t, alice)
		created := newTask(1, alice, "essay")
		require.NoError(t, r.Create(ctx, created))
		created.Title = "changed after create"

		found, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)
		found.Title = "changed after get"

		stored, err := r.GetByID(ctx, alice, 1)
		require.NoError(t, err)
		assert.Equal(t, "essay", stored.Title)
	})
}

func UserRepository(t *testing.T, newRepo UserRepoFactory) {
	ctx := context.Background()

	newUser := func(id int64, email string) *user.User {
		return &user.User{ID: id, Name: "Alice", Email: email, PasswordHash: "hash-1", CreatedAt: base}
	}

	t.Run("success - create and get by normalized email", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Create(ctx, newUser(1, alice)))

		found, err := r.GetByEmail(ctx, "  ALICE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, int64(1), found.ID)
		assert.Equal(t, alice, found.Email)
		assert.Equal(t, "hash-1", found.PasswordHash)
	})

	t.Run("error - duplicate email", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Create(ctx, newUser(1, alice)))

		err := r.Create(ctx, newUser(2, alice))
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("error - unknown email", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.GetByEmail(ctx, bob)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("success - update password", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Create(ctx, newUser(1, alice)))

		require.NoError(t, r.UpdatePassword(ctx, alice, "hash-2"))

		found, err := r.GetByEmail(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "hash-2", found.PasswordHash)

		err = r.UpdatePassword(ctx, bob, "hash-3")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func ResetTokenRepository(t *testing.T, newRepo ResetRepoFactory) {
	ctx := context.Background()

	newToken := func(value string, ttl time.Duration) *reset.Token {
		return &reset.Token{Token: value, Email: alice, CreatedAt: base, ExpiresAt: base.Add(ttl)}
	}

	t.Run("success - consume once", func(t *testing.T) {
		r := newRepo(t, alice)
		require.NoError(t, r.Save(ctx, newToken("tok-1", time.Hour)))

		consumed, err := r.Consume(ctx, "tok-1", base.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, alice, consumed.Email)
		require.NotNil(t, consumed.UsedAt)
		assert.True(t, base.Add(time.Minute).Equal(*consumed.UsedAt))

		_, err = r.Consume(ctx, "tok-1", base.Add(2*time.Minute))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("error - expired or unknown token", func(t *testing.T) {
		r := newRepo(t, alice)
		require.NoError(t, r.Save(ctx, newToken("tok-1", time.Hour)))

		_, err := r.Consume(ctx, "tok-1", base.Add(time.Hour))
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = r.Consume(ctx, "missing", base)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("error - duplicate token", func(t *testing.T) {
		r := newRepo(t, alice)
		require.NoError(t, r.Save(ctx, newToken("tok-1", time.Hour)))

		err := r.Save(ctx, newToken("tok-1", time.Hour))
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("success - purge expired and used", func(t *testing.T) {
		r := newRepo(t, alice)
		require.NoError(t, r.Save(ctx, newToken("short", time.Minute)))
		require.NoError(t, r.Save(ctx, newToken("used", time.Hour)))
		require.NoError(t, r.Save(ctx, newToken("live", time.Hour)))

		_, err := r.Consume(ctx, "used", base)
		require.NoError(t, err)

		removed, err := r.PurgeExpired(ctx, base.Add(10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		_, err = r.Consume(ctx, "live", base.Add(10*time.Minute))
		assert.NoError(t, err)
	})
}
