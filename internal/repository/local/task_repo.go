package local

import (
	"context"
	"time"

	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"
)

// TaskStorage держит задачи всех владельцев одним документом: email -> задачи в порядке добавления.
// Любая запись перезаписывает документ целиком.
type TaskStorage struct {
	store *Store
}

func NewTaskStorage(store *Store) *TaskStorage {
	return &TaskStorage{store: store}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

func (s *TaskStorage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	var all map[string][]*task.Task
	if err := s.store.read(ctx, KeyTasks, &all); err != nil {
		return nil, err
	}
	tasks := all[owner]
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *TaskStorage) GetByID(ctx context.Context, owner string, id int64) (*task.Task, error) {
	tasks, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	var all map[string][]*task.Task
	return s.store.mutate(ctx, KeyTasks, &all, func() error {
		if all == nil {
			all = make(map[string][]*task.Task)
		}
		if taskToCreate.CreatedAt.IsZero() {
			taskToCreate.CreatedAt = time.Now()
		}
		taskToCreate.Version = 1
		all[taskToCreate.Owner] = append(all[taskToCreate.Owner], taskToCreate.Clone())
		return nil
	})
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	var all map[string][]*task.Task
	return s.store.mutate(ctx, KeyTasks, &all, func() error {
		tasks := all[taskToUpdate.Owner]
		for ind, t := range tasks {
			if t.ID != taskToUpdate.ID {
				continue
			}
			if t.Version != taskToUpdate.Version {
				return repo.ErrVersionConflict
			}
			if taskToUpdate.UpdatedAt == nil {
				now := time.Now()
				taskToUpdate.UpdatedAt = &now
			}
			taskToUpdate.Version++
			tasks[ind] = taskToUpdate.Clone()
			return nil
		}
		return repo.ErrNotFound
	})
}

func (s *TaskStorage) Delete(ctx context.Context, owner string, id int64) error {
	var all map[string][]*task.Task
	return s.store.mutate(ctx, KeyTasks, &all, func() error {
		tasks := all[owner]
		for ind, t := range tasks {
			if t.ID == id {
				all[owner] = append(tasks[:ind:ind], tasks[ind+1:]...)
				return nil
			}
		}
		return repo.ErrNotFound
	})
}
