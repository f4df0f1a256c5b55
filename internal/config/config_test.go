package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskManager/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// chdir уводит тест в пустой каталог, чтобы не подхватить чужие config.yml и .env
func chdir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), *cfg)
	assert.Equal(t, ":8080", cfg.GetServerAddr())
}

// TestLoad_FileAndEnv тестирует порядок источников: файл, затем окружение
func TestLoad_FileAndEnv(t *testing.T) {
	chdir(t)

	path := writeConfig(t, `
server:
  port: "9090"
  read_timeout: 5s
repository:
  type: local
local:
  path: data/tasks.db
auth:
  bcrypt_cost: 12
  session_idle_timeout: 1h
`)
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, config.RepositoryLocal, cfg.Repository.Type)
	assert.Equal(t, "data/tasks.db", cfg.Local.Path)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, time.Hour, cfg.Auth.SessionIdleTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.True(t, cfg.Logging.Development)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	chdir(t)

	path := writeConfig(t, "server:\n  port: \"7070\"\n")
	t.Setenv("TASKMANAGER_CONFIG", path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoad_DotEnv(t *testing.T) {
	chdir(t)
	require.NoError(t, os.WriteFile(".env", []byte("SERVER_PORT=6060\n"), 0o600))
	// godotenv не перезаписывает уже заданные переменные; t.Setenv восстановит значение после теста
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.Unsetenv("SERVER_PORT"))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{
			name:    "error - broken yaml",
			content: "server: [",
		},
		{
			name:    "error - unknown repository",
			content: "repository:\n  type: mongo\n",
		},
		{
			name:    "error - postgres without url",
			content: "repository:\n  type: postgres\n",
		},
		{
			name:    "error - bcrypt cost out of range",
			content: "auth:\n  bcrypt_cost: 2\n",
		},
		{
			name: "error - bad LOG_DEVELOPMENT",
			env:  map[string]string{"LOG_DEVELOPMENT": "maybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())

	cfg.Repository.Type = config.RepositoryLocal
	cfg.Local.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Repository.Type = config.RepositoryPostgres
	cfg.Database.URL = "postgres://localhost/db"
	assert.NoError(t, cfg.Validate())
}
