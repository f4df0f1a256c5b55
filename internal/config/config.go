// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	RepositoryInMemory = "inmemory"
	RepositoryLocal    = "local"
	RepositoryPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	CORS       CORSConfig       `yaml:"cors"`
	Database   DatabaseConfig   `yaml:"database"`
	Local      LocalConfig      `yaml:"local"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Auth       AuthConfig       `yaml:"auth"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit"` // запросов в минуту с одного IP
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LocalConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres", "local" или "inmemory"
}

type AuthConfig struct {
	BcryptCost         int           `yaml:"bcrypt_cost"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl"`
	SweepInterval      time.Duration `yaml:"sweep_interval"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       100,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Local:      LocalConfig{Path: "task_manager.db"},
		Repository: RepositoryConfig{Type: RepositoryInMemory},
		Auth: AuthConfig{
			BcryptCost:         10,
			SessionIdleTimeout: 30 * time.Minute,
			ResetTokenTTL:      15 * time.Minute,
			SweepInterval:      time.Minute,
		},
	}
}

// Load собирает конфиг: значения по умолчанию, затем config.yml, затем .env и переменные окружения.
// Отсутствие файла конфига не ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TASKMANAGER_CONFIG")
	}
	if path == "" {
		path = "config.yml"
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("загрузка .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("SERVER_HOST")); v != "" {
		c.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVER_PORT")); v != "" {
		c.Server.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOSITORY_TYPE")); v != "" {
		c.Repository.Type = v
	}
	if v := strings.TrimSpace(os.Getenv("LOCAL_PATH")); v != "" {
		c.Local.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_DEVELOPMENT")); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("неверное значение LOG_DEVELOPMENT: %w", err)
		}
		c.Logging.Development = dev
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory:
	case RepositoryLocal:
		if c.Local.Path == "" {
			return fmt.Errorf("для репозитория local нужен local.path")
		}
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("для репозитория postgres нужен database.url")
		}
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", c.Repository.Type)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost вне диапазона 4..31: %d", c.Auth.BcryptCost)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
