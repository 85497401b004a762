package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const EnvDevelopment = "development"

type AppConfig struct {
	Name     string `koanf:"name" yaml:"name" validate:"required"`
	Env      string `koanf:"env" yaml:"env" validate:"required"`
	Port     string `koanf:"port" yaml:"port" validate:"required,numeric"`
	LogLevel string `koanf:"log_level" yaml:"log_level" validate:"required,oneof=trace debug info warn error fatal panic disabled"`
}

type HTTPConfig struct {
	ReadTimeout        time.Duration `koanf:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins string        `koanf:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	StaticDir          string        `koanf:"static_dir" yaml:"static_dir"`
	DocsEnabled        bool          `koanf:"docs_enabled" yaml:"docs_enabled"`
}

type PostgresConfig struct {
	Host            string        `koanf:"host" yaml:"host" validate:"required"`
	Port            string        `koanf:"port" yaml:"port" validate:"required,numeric"`
	User            string        `koanf:"user" yaml:"user" validate:"required"`
	Password        string        `koanf:"password" yaml:"password"`
	DBName          string        `koanf:"dbname" yaml:"dbname" validate:"required"`
	SSLMode         string        `koanf:"sslmode" yaml:"sslmode" validate:"required"`
	MaxConns        int32         `koanf:"max_conns" yaml:"max_conns" validate:"gte=1"`
	MinConns        int32         `koanf:"min_conns" yaml:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime" yaml:"max_conn_lifetime"`
	MigrationsPath  string        `koanf:"migrations_path" yaml:"migrations_path"`
}

type Config struct {
	App      AppConfig      `koanf:"app" yaml:"app"`
	HTTP     HTTPConfig     `koanf:"http" yaml:"http"`
	Postgres PostgresConfig `koanf:"postgres" yaml:"postgres"`
}

// envKeys maps the supported environment variables onto config paths.
// Anything not listed here is ignored.
var envKeys = map[string]string{
	"APP_NAME":  "app.name",
	"APP_ENV":   "app.env",
	"APP_PORT":  "app.port",
	"LOG_LEVEL": "app.log_level",

	"HTTP_READ_TIMEOUT":     "http.read_timeout",
	"HTTP_WRITE_TIMEOUT":    "http.write_timeout",
	"HTTP_IDLE_TIMEOUT":     "http.idle_timeout",
	"HTTP_SHUTDOWN_TIMEOUT": "http.shutdown_timeout",
	"CORS_ALLOWED_ORIGINS":  "http.cors_allowed_origins",
	"STATIC_DIR":            "http.static_dir",
	"DOCS_ENABLED":          "http.docs_enabled",

	"DB_HOST":              "postgres.host",
	"DB_PORT":              "postgres.port",
	"DB_USER":              "postgres.user",
	"DB_PASSWORD":          "postgres.password",
	"DB_NAME":              "postgres.dbname",
	"DB_SSLMODE":           "postgres.sslmode",
	"DB_MAX_CONNS":         "postgres.max_conns",
	"DB_MIN_CONNS":         "postgres.min_conns",
	"DB_MAX_CONN_LIFETIME": "postgres.max_conn_lifetime",
	"DB_MIGRATIONS_PATH":   "postgres.migrations_path",
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "users-api",
			Env:      EnvDevelopment,
			Port:     "3000",
			LogLevel: "info",
		},
		HTTP: HTTPConfig{
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			IdleTimeout:        120 * time.Second,
			ShutdownTimeout:    15 * time.Second,
			CORSAllowedOrigins: "*",
			StaticDir:          "static",
			DocsEnabled:        true,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			DBName:          "users",
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MigrationsPath:  "migrations",
		},
	}
}

// NewConfig loads the configuration from the file named by CONFIG_FILE (if any),
// a local .env file (if present) and the process environment.
func NewConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load builds the configuration in layers: defaults, then the optional YAML file at path,
// then environment variables. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")
	err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return nil
}

// IsDevelopment reports whether the service runs in the local development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// CORSOrigins returns the allowed origins as a slice.
func (h HTTPConfig) CORSOrigins() []string {
	parts := strings.Split(h.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// DSN returns a postgres:// connection URL understood by both pgx and lib/pq.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}
