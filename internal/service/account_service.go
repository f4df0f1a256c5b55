package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength считается в символах, а не в байтах
const MinPasswordLength = 6

// bcrypt не принимает пароли длиннее 72 байт
const MaxPasswordLength = 72

// AccountService регистрирует и аутентифицирует пользователей.
// Пароли хранятся только в виде bcrypt-хеша.
type AccountService struct {
	repo       UserRepository
	ids        *IDSource
	bcryptCost int
	now        func() time.Time
	// dummyHash проверяется вместо хеша пользователя, когда email не найден
	dummyHash  []byte
}

func NewAccountService(repo UserRepository, ids *IDSource, bcryptCost int) *AccountService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if ids == nil {
		ids = NewIDSource(nil)
	}
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("taskManager-dummy-password"), bcryptCost)

	return &AccountService{
		repo:       repo,
		ids:        ids,
		bcryptCost: bcryptCost,
		now:        time.Now,
		dummyHash:  dummyHash,
	}
}

func (s *AccountService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// Register создаёт пользователя. Пустой confirmPassword означает, что подтверждение не передавалось.
func (s *AccountService) Register(ctx context.Context, name, email, password, confirmPassword string) (*user.User, error) {
	name = strings.TrimSpace(name)
	email = user.NormalizeEmail(email)

	if name == "" {
		return nil, NewValidationError("name", "обязательное поле")
	}
	if email == "" {
		return nil, NewValidationError("email", "обязательное поле")
	}
	if err := validatePassword(password, confirmPassword); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, NewDuplicateAccount(email)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &user.User{
		ID:           s.ids.Next(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewDuplicateAccount(email)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}
	return newUser, nil
}

// Authenticate не сообщает, что именно неверно - email или пароль
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)

	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, NewInvalidCredentials()
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return nil, NewInvalidCredentials()
	}
	return found, nil
}

func (s *AccountService) Exists(ctx context.Context, email string) (bool, error) {
	email = user.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("поиск пользователя: %w", err)
	}
}

// changePassword используется только подтверждённым сбросом пароля
func (s *AccountService) changePassword(ctx context.Context, email, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("пользователь", email)
		}
		return fmt.Errorf("обновление пароля: %w", err)
	}
	return nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}
	return string(hash), nil
}

func validatePassword(password, confirmPassword string) error {
	if password == "" {
		return NewValidationError("password", "обязательное поле")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("минимум %d символов", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", fmt.Sprintf("максимум %d байт", MaxPasswordLength))
	}
	if confirmPassword != "" && password != confirmPassword {
		return NewValidationError("confirm_password", "пароли не совпадают")
	}
	return nil
}
