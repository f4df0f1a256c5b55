package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"
)

// TaskStorage хранит задачи по владельцам; порядок внутри владельца - порядок добавления
type TaskStorage struct {
	storage map[string][]*task.Task
	mtx     *sync.RWMutex
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[string][]*task.Task),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	taskToCreate.Version = 1

	s.storage[taskToCreate.Owner] = append(s.storage[taskToCreate.Owner], taskToCreate.Clone())
	return nil
}

// Update применяет изменения, только если версия совпадает с сохранённой
func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks := s.storage[taskToUpdate.Owner]
	ind := indexOf(tasks, taskToUpdate.ID)
	if ind < 0 {
		return repo.ErrNotFound
	}
	if tasks[ind].Version != taskToUpdate.Version {
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

func (s *TaskStorage) GetByID(ctx context.Context, owner string, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := s.storage[owner]
	ind := indexOf(tasks, id)
	if ind < 0 {
		return nil, repo.ErrNotFound
	}
	return tasks[ind].Clone(), nil
}

func (s *TaskStorage) Delete(ctx context.Context, owner string, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks := s.storage[owner]
	ind := indexOf(tasks, id)
	if ind < 0 {
		return repo.ErrNotFound
	}
	s.storage[owner] = append(tasks[:ind:ind], tasks[ind+1:]...)
	return nil
}

func (s *TaskStorage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := s.storage[owner]
	res := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.Clone())
	}
	return res, nil
}

func indexOf(tasks []*task.Task, id int64) int {
	for ind, t := range tasks {
		if t.ID == id {
			return ind
		}
	}
	return -1
}
