package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccountService() *service.AccountService {
	return service.NewAccountService(inmemory.NewUserStorage(), nil, testBcryptCost)
}

func TestAccountService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockUserRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockUserRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockUserRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := service.NewAccountService(mockRepo, nil, testBcryptCost)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "проверка здоровья сервиса")
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestAccountService_Register тестирует регистрацию
func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		email         string
		password      string
		confirm       string
		expectedCode  string
		expectedField string
	}{
		{
			name:     "success - register",
			userName: "Alice",
			email:    "alice@example.com",
			password: "secret1",
			confirm:  "secret1",
		},
		{
			name:     "success - confirmation omitted",
			userName: "Alice",
			email:    "alice@example.com",
			password: "secret1",
		},
		{
			name:     "success - multibyte password counted in characters",
			userName: "Alice",
			email:    "alice@example.com",
			password: "пароль",
			confirm:  "пароль",
		},
		{
			name:          "error - empty name",
			userName:      "   ",
			email:         "alice@example.com",
			password:      "secret1",
			expectedCode:  service.CodeValidation,
			expectedField: "name",
		},
		{
			name:          "error - empty email",
			userName:      "Alice",
			password:      "secret1",
			expectedCode:  service.CodeValidation,
			expectedField: "email",
		},
		{
			name:          "error - empty password",
			userName:      "Alice",
			email:         "alice@example.com",
			expectedCode:  service.CodeValidation,
			expectedField: "password",
		},
		{
			name:          "error - short password",
			userName:      "Alice",
			email:         "alice@example.com",
			password:      "12345",
			expectedCode:  service.CodeValidation,
			expectedField: "password",
		},
		{
			name:          "error - short multibyte password",
			userName:      "Alice",
			email:         "alice@example.com",
			password:      "абв",
			confirm:       "абв",
			expectedCode:  service.CodeValidation,
			expectedField: "password",
		},
		{
			name:          "error - password longer than bcrypt accepts",
			userName:      "Alice",
			email:         "alice@example.com",
			password:      strings.Repeat("x", service.MaxPasswordLength+1),
			expectedCode:  service.CodeValidation,
			expectedField: "password",
		},
		{
			name:          "error - confirmation mismatch",
			userName:      "Alice",
			email:         "alice@example.com",
			password:      "secret1",
			confirm:       "secret2",
			expectedCode:  service.CodeValidation,
			expectedField: "confirm_password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAccountService()

			created, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password, tt.confirm)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.True(t, service.IsCode(err, tt.expectedCode))

				var busErr *service.BusinessError
				require.ErrorAs(t, err, &busErr)
				assert.Equal(t, tt.expectedField, busErr.Details["field"])
				assert.Nil(t, created)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, created.ID)
			assert.Equal(t, tt.email, created.Email)
			assert.NotEqual(t, tt.password, created.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(tt.password)))
		})
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "")
	require.NoError(t, err)

	t.Run("error - same email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "alice@example.com", "secret2", "")
		assert.True(t, service.IsCode(err, service.CodeDuplicateAccount))
	})

	t.Run("error - email differs only by case and spaces", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "  ALICE@example.com ", "secret2", "")
		assert.True(t, service.IsCode(err, service.CodeDuplicateAccount))
	})
}

func TestAccountService_Register_RepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("error - lookup fails", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errors.New("db down"))

		svc := service.NewAccountService(mockRepo, nil, testBcryptCost)
		_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "поиск пользователя")
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - concurrent insert reported as duplicate", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, repository.ErrNotFound)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(repository.ErrDuplicate)

		svc := service.NewAccountService(mockRepo, nil, testBcryptCost)
		_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "")

		assert.True(t, service.IsCode(err, service.CodeDuplicateAccount))
		mockRepo.AssertExpectations(t)
	})
}

// TestAccountService_Authenticate тестирует вход
func TestAccountService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "secret1")
	require.NoError(t, err)

	t.Run("success - correct credentials", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "Alice@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, user.Identity{ID: u.ID, Name: "Alice", Email: "alice@example.com"}, u.Identity())
	})

	t.Run("error - unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, unknownErr := svc.Authenticate(ctx, "bob@example.com", "secret1")
		_, wrongErr := svc.Authenticate(ctx, "alice@example.com", "wrong-password")

		assert.True(t, service.IsCode(unknownErr, service.CodeInvalidCredentials))
		assert.True(t, service.IsCode(wrongErr, service.CodeInvalidCredentials))
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("error - unknown email still compares a hash of the same cost", func(t *testing.T) {
		cost, err := bcrypt.Cost(svc.DummyHash())
		require.NoError(t, err)
		assert.Equal(t, testBcryptCost, cost)

		_, err = svc.Authenticate(ctx, "nobody@example.com", "taskManager-dummy-password")
		assert.True(t, service.IsCode(err, service.CodeInvalidCredentials))
	})
}

func TestAccountService_Exists(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "")
	require.NoError(t, err)

	exists, err := svc.Exists(ctx, " ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.Exists(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = svc.Exists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)
}
