package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type ProgressBackend string

const (
	PostgresBackend ProgressBackend = "postgres"
	SQLiteBackend   ProgressBackend = "sqlite"
	MemoryBackend   ProgressBackend = "memory"
)

var DEFAULT_COMPLETION_MODELS = []string{
	"meta-llama/llama-3.3-70b-instruct:free",
	"mistralai/mistral-small-3.1-24b-instruct:free",
	"google/gemma-3-27b-it:free",
}

type rawConfig struct {
	Environment            string   `env:"RIGVEDA_ENVIRONMENT"`
	Port                   string   `env:"PORT"                 envDefault:"8123"`
	ProgressBackend        string   `env:"PROGRESS_BACKEND"`
	SQLitePath             string   `env:"SQLITE_PATH"          envDefault:"rigveda.db"`
	CloudSQLUnixSocketPath string   `env:"CLOUDSQL_UNIX_SOCKET"`
	DBUsername             string   `env:"DB_USERNAME"`
	DBPassword             string   `env:"DB_PASSWORD"`
	SentryDSN              string   `env:"SENTRY_DSN"`
	CompletionAPIKey       string   `env:"COMPLETION_API_KEY"`
	CompletionBaseURL      string   `env:"COMPLETION_BASE_URL"`
	CompletionModels       []string `env:"COMPLETION_MODELS"    envSeparator:","`
	GoogleCloudProject     string   `env:"GOOGLE_CLOUD_PROJECT"`
	OTelEnabled            bool     `env:"OTEL_ENABLED"`
	StoryPath              string   `env:"STORY_PATH"`
	AllowedOriginSuffixes  []string `env:"ALLOWED_ORIGIN_SUFFIXES" envSeparator:","`
}

type Config struct {
	port                   string
	progressBackend        ProgressBackend
	sqlitePath             string
	cloudSQLUnixSocketPath string
	dBPassword             string
	dBUsername             string
	sentryDSN              string
	completionAPIKey       string
	completionBaseURL      string
	completionModels       []string
	googleCloudProject     string
	otelEnabled            bool
	storyPath              string
	allowedOriginSuffixes  []string
	env                    environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) ProgressBackend() ProgressBackend {
	return c.progressBackend
}

func (c *Config) SQLitePath() string {
	return c.sqlitePath
}

func (c *Config) CloudSQLUnixSocketPath() string {
	return c.cloudSQLUnixSocketPath
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

// CompletionAPIKey may be empty, in which case the assistant always falls back
func (c *Config) CompletionAPIKey() string {
	return c.completionAPIKey
}

// CompletionBaseURL is empty when the provider default should be used
func (c *Config) CompletionBaseURL() string {
	return c.completionBaseURL
}

func (c *Config) CompletionModels() []string {
	return append([]string(nil), c.completionModels...)
}

func (c *Config) GoogleCloudProject() string {
	return c.googleCloudProject
}

func (c *Config) OTelEnabled() bool {
	return c.otelEnabled
}

// StoryPath is empty when the embedded story should be used
func (c *Config) StoryPath() string {
	return c.storyPath
}

// AllowedOriginSuffixes are domains whose https origins may call the API from a browser
func (c *Config) AllowedOriginSuffixes() []string {
	return append([]string(nil), c.allowedOriginSuffixes...)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, backend: %s, port: %s, models: %d, otel: %t, ...}",
		string(c.env), string(c.progressBackend), c.port, len(c.completionModels), c.otelEnabled,
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var raw rawConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	var env environment
	switch raw.Environment {
	case "":
		return missingKey("RIGVEDA_ENVIRONMENT")
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: RIGVEDA_ENVIRONMENT (%s)", ErrInvalidValue, raw.Environment)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	var backend ProgressBackend
	switch raw.ProgressBackend {
	case "":
		// Deployed environments share Postgres, local runs keep a single file
		backend = SQLiteBackend
		if env != development {
			backend = PostgresBackend
		}
	case string(PostgresBackend), string(SQLiteBackend), string(MemoryBackend):
		backend = ProgressBackend(raw.ProgressBackend)
	default:
		return Config{}, fmt.Errorf("%w: PROGRESS_BACKEND (%s)", ErrInvalidValue, raw.ProgressBackend)
	}

	models := make([]string, 0, len(raw.CompletionModels))
	for _, model := range raw.CompletionModels {
		model = strings.TrimSpace(model)
		if model != "" {
			models = append(models, model)
		}
	}
	if len(models) == 0 {
		models = append(models, DEFAULT_COMPLETION_MODELS...)
	}

	originSuffixes := make([]string, 0, len(raw.AllowedOriginSuffixes))
	for _, suffix := range raw.AllowedOriginSuffixes {
		suffix = strings.TrimSpace(suffix)
		if suffix != "" {
			originSuffixes = append(originSuffixes, suffix)
		}
	}

	if backend == SQLiteBackend && raw.SQLitePath == "" {
		return missingKey("SQLITE_PATH")
	}

	if env == production || env == staging {
		if backend == PostgresBackend {
			if raw.CloudSQLUnixSocketPath == "" {
				return missingKey("CLOUDSQL_UNIX_SOCKET")
			}
			if raw.DBUsername == "" {
				return missingKey("DB_USERNAME")
			}
			if raw.DBPassword == "" {
				return missingKey("DB_PASSWORD")
			}
		}
		if raw.SentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		port:                   raw.Port,
		progressBackend:        backend,
		sqlitePath:             raw.SQLitePath,
		cloudSQLUnixSocketPath: raw.CloudSQLUnixSocketPath,
		dBPassword:             raw.DBPassword,
		dBUsername:             raw.DBUsername,
		sentryDSN:              raw.SentryDSN,
		completionAPIKey:       raw.CompletionAPIKey,
		completionBaseURL:      raw.CompletionBaseURL,
		completionModels:       models,
		googleCloudProject:     raw.GoogleCloudProject,
		otelEnabled:            raw.OTelEnabled,
		storyPath:              raw.StoryPath,
		allowedOriginSuffixes:  originSuffixes,
		env:                    env,
	}, nil
}
