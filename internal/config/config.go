// Package config holds the typed configuration shared by the resource
// service, the remote clients and the terminal editor, and the layered
// loader that fills it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/layout"
)

// Environment represents the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// DevelopmentJWTSecret is the signing secret used when none is configured.
// It is refused outside development.
const DevelopmentJWTSecret = "hackverse-development-secret-change-me"

// Config is the complete application configuration.
type Config struct {
	Environment    Environment                 `yaml:"environment" json:"environment" validate:"required,oneof=development staging production"`
	Server         Server                      `yaml:"server" json:"server"`
	Auth           Auth                        `yaml:"auth" json:"auth"`
	Client         Client                      `yaml:"client" json:"client"`
	Store          Store                       `yaml:"store" json:"store"`
	LLM            LLM                         `yaml:"llm" json:"llm"`
	Events         Events                      `yaml:"events" json:"events"`
	Metrics        Metrics                     `yaml:"metrics" json:"metrics"`
	Tracing        observability.TracingConfig `yaml:"tracing" json:"tracing"`
	Logging        Logging                     `yaml:"logging" json:"logging"`
	Layout         Layout                      `yaml:"layout" json:"layout"`
	CircuitBreaker CircuitBreaker              `yaml:"circuit_breaker" json:"circuit_breaker"`
	CORS           CORS                        `yaml:"cors" json:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server configures the resource service HTTP listener.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// Addr returns host:port.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Auth configures bearer token validation and development signing.
type Auth struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	JWTSecret string        `yaml:"jwt_secret" json:"-" validate:"required_if=Enabled true"`
	Issuer    string        `yaml:"issuer" json:"issuer"`
	Audience  string        `yaml:"audience" json:"audience"`
	TokenTTL  time.Duration `yaml:"token_ttl" json:"token_ttl"`
}

// Client configures the generation and persistence clients.
type Client struct {
	BaseURL string        `yaml:"base_url" json:"base_url" validate:"required,url"`
	UserID  string        `yaml:"user_id" json:"user_id"`
	Token   string        `yaml:"token" json:"-"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Store selects and configures the resource store.
type Store struct {
	Provider string         `yaml:"provider" json:"provider" validate:"oneof=memory dynamodb supabase redis sqlite"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb" json:"dynamodb"`
	Supabase SupabaseConfig `yaml:"supabase" json:"supabase"`
	Redis    RedisConfig    `yaml:"redis" json:"redis"`
	SQLite   SQLiteConfig   `yaml:"sqlite" json:"sqlite"`
	Timeout  time.Duration  `yaml:"timeout" json:"timeout"`
}

type DynamoDBConfig struct {
	TableName string `yaml:"table_name" json:"table_name"`
	Region    string `yaml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
}

type SupabaseConfig struct {
	URL   string `yaml:"url" json:"url"`
	Key   string `yaml:"key" json:"-"`
	Table string `yaml:"table" json:"table"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LLM configures the mind-map generator.
type LLM struct {
	Provider    string        `yaml:"provider" json:"provider" validate:"oneof=mock openai"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	APIKey      string        `yaml:"api_key" json:"-"`
	Model       string        `yaml:"model" json:"model"`
	Temperature float64       `yaml:"temperature" json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// Events configures domain event publishing.
type Events struct {
	Provider     string `yaml:"provider" json:"provider" validate:"oneof=none log eventbridge"`
	EventBusName string `yaml:"event_bus_name" json:"event_bus_name"`
	Source       string `yaml:"source" json:"source"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Path      string `yaml:"path" json:"path"`
}

type Logging struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=json console"`
}

// Layout configures the canvas layout engine.
type Layout struct {
	Direction      string `yaml:"direction" json:"direction" validate:"omitempty,oneof=TB LR BT RL tb lr bt rl"`
	layout.Options `yaml:",inline" json:",inline"`
}

// CircuitBreaker configures the breakers around generation, both in the
// client and in front of the server route.
type CircuitBreaker struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests" json:"max_requests"`
	Interval     time.Duration `yaml:"interval" json:"interval"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	FailureRatio float64       `yaml:"failure_ratio" json:"failure_ratio" validate:"gte=0,lte=1"`
	MinRequests  uint32        `yaml:"min_requests" json:"min_requests"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// Defaults returns a configuration that runs without any file or
// environment variable.
func Defaults(env Environment) *Config {
	if env == "" {
		env = Development
	}
	return &Config{
		Environment: env,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Auth: Auth{
			Enabled:   true,
			JWTSecret: DevelopmentJWTSecret,
			Issuer:    "hackverse",
			Audience:  "hackverse-api",
			TokenTTL:  24 * time.Hour,
		},
		Client: Client{
			BaseURL: "http://localhost:8000",
			Timeout: 60 * time.Second,
		},
		Store: Store{
			Provider: "memory",
			DynamoDB: DynamoDBConfig{TableName: "hackverse-resources", Region: "us-east-1"},
			Supabase: SupabaseConfig{Table: "resources"},
			Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "hackverse"},
			SQLite:   SQLiteConfig{Path: "hackverse.db"},
			Timeout:  10 * time.Second,
		},
		LLM: LLM{
			Provider:    "mock",
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   2000,
			Timeout:     45 * time.Second,
		},
		Events: Events{
			Provider:     "log",
			EventBusName: "default",
			Source:       "hackverse.mindmap",
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "hackverse",
			Path:      "/metrics",
		},
		Tracing: observability.TracingConfig{
			ServiceName: "hackverse-mindmap",
			Environment: string(env),
			SampleRate:  1,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Layout: Layout{
			Direction: string(layout.TopBottom),
			Options:   layout.DefaultOptions(),
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     60 * time.Second,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  5,
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Environment == Production && c.Auth.Enabled && c.Auth.JWTSecret == DevelopmentJWTSecret {
		return fmt.Errorf("invalid configuration: the development JWT secret cannot be used in production")
	}
	switch c.Store.Provider {
	case "supabase":
		if c.Store.Supabase.URL == "" || c.Store.Supabase.Key == "" {
			return fmt.Errorf("invalid configuration: supabase store needs url and key")
		}
	case "dynamodb":
		if c.Store.DynamoDB.TableName == "" {
			return fmt.Errorf("invalid configuration: dynamodb store needs a table name")
		}
	}
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		return fmt.Errorf("invalid configuration: openai provider needs an api key")
	}
	if c.Events.Provider == "eventbridge" && c.Events.EventBusName == "" {
		return fmt.Errorf("invalid configuration: eventbridge publisher needs an event bus name")
	}
	return nil
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// LayoutDirection parses Layout.Direction.
func (c *Config) LayoutDirection() layout.Direction {
	dir, err := layout.ParseDirection(c.Layout.Direction)
	if err != nil {
		return layout.TopBottom
	}
	return dir
}
