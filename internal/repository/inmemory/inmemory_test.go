package inmemory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/repotest"
	"taskManager/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStorage(t *testing.T) {
	repotest.TaskRepository(t, func(t *testing.T, owners ...string) service.TaskRepository {
		return inmemory.NewTaskStorage()
	})
}

func TestUserStorage(t *testing.T) {
	repotest.UserRepository(t, func(t *testing.T) service.UserRepository {
		return inmemory.NewUserStorage()
	})
}

func TestResetTokenStorage(t *testing.T) {
	repotest.ResetTokenRepository(t, func(t *testing.T, emails ...string) service.ResetTokenRepository {
		return inmemory.NewResetTokenStorage()
	})
}

// TestTaskStorage_ConcurrentUpdates тестирует, что из параллельных обновлений одной версии проходит одно
func TestTaskStorage_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	start := time.Now()
	require.NoError(t, storage.Create(ctx, &task.Task{
		ID:       1,
		Owner:    "alice@example.com",
		Title:    "essay",
		Priority: task.PriorityMedium,
		Start:    start,
		End:      start.Add(time.Hour),
	}))

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := storage.GetByID(ctx, "alice@example.com", 1)
			if err != nil {
				return
			}
			// все обновляют от версии 1
			found.Version = 1
			found.Completed = !found.Completed
			if storage.Update(ctx, found) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)

	stored, err := storage.GetByID(ctx, "alice@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
}

func TestStorage_HealthCheck(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, inmemory.NewTaskStorage().HealthCheck(ctx))
	assert.NoError(t, inmemory.NewUserStorage().HealthCheck(ctx))
}
