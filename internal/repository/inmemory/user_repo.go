package inmemory

import (
	"context"
	"sync"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

// UserStorage - пользователи по нормализованному email
type UserStorage struct {
	storage map[string]*user.User
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[string]*user.User),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	email := user.NormalizeEmail(userToCreate.Email)
	if _, ok := s.storage[email]; ok {
		return repo.ErrDuplicate
	}

	stored := *userToCreate
	stored.Email = email
	s.storage[email] = &stored
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	found, ok := s.storage[user.NormalizeEmail(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *UserStorage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	found, ok := s.storage[user.NormalizeEmail(email)]
	if !ok {
		return repo.ErrNotFound
	}
	found.PasswordHash = passwordHash
	return nil
}
