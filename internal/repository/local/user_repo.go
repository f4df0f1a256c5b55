package local

import (
	"context"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

// UserStorage держит всех пользователей одним списком под ключом KeyUsers
type UserStorage struct {
	store *Store
}

func NewUserStorage(store *Store) *UserStorage {
	return &UserStorage{store: store}
}

func (s *UserStorage) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	var users []*user.User
	return s.store.mutate(ctx, KeyUsers, &users, func() error {
		email := user.NormalizeEmail(userToCreate.Email)
		for _, u := range users {
			if u.Email == email {
				return repo.ErrDuplicate
			}
		}
		stored := *userToCreate
		stored.Email = email
		users = append(users, &stored)
		return nil
	})
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var users []*user.User
	if err := s.store.read(ctx, KeyUsers, &users); err != nil {
		return nil, err
	}

	email = user.NormalizeEmail(email)
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *UserStorage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	var users []*user.User
	return s.store.mutate(ctx, KeyUsers, &users, func() error {
		email = user.NormalizeEmail(email)
		for _, u := range users {
			if u.Email == email {
				u.PasswordHash = passwordHash
				return nil
			}
		}
		return repo.ErrNotFound
	})
}
