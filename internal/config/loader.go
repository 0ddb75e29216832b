package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader fills a Config from layered sources. From lowest to highest
// priority:
//  1. Defaults (in code)
//  2. base.yaml (or base.json) in the config directory
//  3. {environment}.yaml
//  4. the .env file, read into the process environment without overriding
//     variables that are already set
//  5. Environment variables
type Loader struct {
	basePath    string
	envFile     string
	environment Environment
	sources     []string
	fileLoaders []FileLoader
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// NewLoader creates a loader reading from basePath ("config" when empty).
// An empty environment is taken from the ENVIRONMENT variable after the
// .env file has been read.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		envFile:     ".env",
		environment: env,
		fileLoaders: []FileLoader{&YAMLLoader{}, &JSONLoader{}},
	}
}

// WithEnvFile changes the dotenv file path. An empty path disables it.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// BasePath returns the directory configuration files are read from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load builds and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	l.sources = l.sources[:0]

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err == nil {
			l.sources = append(l.sources, l.envFile)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", l.envFile, err)
		}
	}

	env := l.environment
	if env == "" {
		env = Environment(strings.ToLower(os.Getenv("ENVIRONMENT")))
	}
	cfg := Defaults(env)
	sources := append([]string{"defaults"}, l.sources...)
	l.sources = sources

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}
	if err := l.loadFile(string(cfg.Environment), cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", cfg.Environment, err)
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = append([]string(nil), l.sources...)
	if cfg.Tracing.Environment == "" {
		cfg.Tracing.Environment = string(cfg.Environment)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		err = loader.Load(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		l.sources = append(l.sources, path)
		return nil
	}
	return fs.ErrNotExist
}

// loadEnvironmentVariables overlays environment variables on the configuration.
func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	// Server
	setInt(&cfg.Server.Port, "PORT")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Host, "SERVER_HOST")

	// Auth
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.Issuer, "JWT_ISSUER")
	setString(&cfg.Auth.Audience, "JWT_AUDIENCE")
	setBool(&cfg.Auth.Enabled, "ENABLE_AUTH")

	// Client
	setString(&cfg.Client.BaseURL, "API_BASE_URL")
	setString(&cfg.Client.UserID, "MINDMAP_USER_ID")
	setString(&cfg.Client.Token, "MINDMAP_TOKEN")
	setDuration(&cfg.Client.Timeout, "CLIENT_TIMEOUT")

	// Store
	setString(&cfg.Store.Provider, "STORE_PROVIDER")
	setString(&cfg.Store.DynamoDB.TableName, "TABLE_NAME")
	setString(&cfg.Store.DynamoDB.Region, "AWS_REGION")
	setString(&cfg.Store.DynamoDB.Endpoint, "DYNAMODB_ENDPOINT")
	setString(&cfg.Store.Supabase.URL, "SUPABASE_URL")
	setString(&cfg.Store.Supabase.Key, "SUPABASE_KEY")
	setString(&cfg.Store.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Store.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Store.Redis.DB, "REDIS_DB")
	setString(&cfg.Store.SQLite.Path, "SQLITE_PATH")

	// LLM
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.Model, "LLM_MODEL")

	// Events
	setString(&cfg.Events.Provider, "EVENTS_PROVIDER")
	setString(&cfg.Events.EventBusName, "EVENT_BUS_NAME")

	// Observability
	setBool(&cfg.Metrics.Enabled, "ENABLE_METRICS")
	setString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	if cfg.Tracing.Endpoint != "" {
		cfg.Tracing.Enabled = true
	}
	setBool(&cfg.Tracing.Enabled, "ENABLE_TRACING")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	// Layout
	setString(&cfg.Layout.Direction, "LAYOUT_DIRECTION")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// ============================================================================
// FILE LOADERS
// ============================================================================

// YAMLLoader loads YAML configuration files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (y *YAMLLoader) Extension() string { return "yaml" }

// JSONLoader loads JSON configuration files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	return json.NewDecoder(reader).Decode(target)
}

func (j *JSONLoader) Extension() string { return "json" }
