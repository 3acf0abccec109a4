// Package config provides configuration loading for the orbit services.
// Values come from an optional YAML file with environment variables taking
// precedence, so containerized deployments can run file-less.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/orbitflows/orbit/pkg/engine"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort        = 9090
	DefaultLogLevel    = "info"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Config is the shared configuration for the API server, the batch runner,
// and the CLI runner.
type Config struct {
	// Port the API server listens on.
	Port int `yaml:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// DatabaseURL selects the persistence backend by scheme: postgres://
	// for PostgreSQL, file:// (or a bare path) for the JSON file store.
	DatabaseURL string `yaml:"database_url"`

	// RedisAddr, when set, switches the credit ledger to Redis.
	RedisAddr string `yaml:"redis_addr"`

	// GeminiAPIKey authenticates the AI agent handler. Empty disables it.
	GeminiAPIKey string `yaml:"gemini_api_key"`

	// GeminiModel overrides the default generation model.
	GeminiModel string `yaml:"gemini_model"`

	// CronSecret is the bearer token the batch endpoint requires. Empty
	// leaves the endpoint open, which is only acceptable in development.
	CronSecret string `yaml:"cron_secret"`

	Engine engine.Config `yaml:"engine"`
}

// Load reads a YAML config file and applies environment overrides. A missing
// file is not an error; the environment alone can fully configure a service.
func Load(filepath string) (*Config, error) {
	config := &Config{
		Port:        DefaultPort,
		LogLevel:    DefaultLogLevel,
		GeminiModel: DefaultGeminiModel,
	}

	if filepath != "" {
		data, err := os.ReadFile(filepath)

		switch {
		case os.IsNotExist(err):
			// Environment-only configuration.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}

	config.applyEnv()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.LogLevel, "LOG_LEVEL")
	overrideString(&c.DatabaseURL, "DATABASE_URL")
	overrideString(&c.RedisAddr, "REDIS_ADDR")
	overrideString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	overrideString(&c.GeminiModel, "GEMINI_MODEL")
	overrideString(&c.CronSecret, "CRON_SECRET")
	overrideInt(&c.Port, "PORT")
	overrideInt(&c.Engine.MaxSteps, "ENGINE_MAX_STEPS")
	overrideBool(&c.Engine.GateAutomatedRuns, "ENGINE_GATE_AUTOMATED_RUNS")
	overrideBool(&c.Engine.DeductBeforePersist, "ENGINE_DEDUCT_BEFORE_PERSIST")
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}

	return nil
}

func overrideString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func overrideInt(target *int, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return
	}

	*target = parsed
}

func overrideBool(target *bool, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return
	}

	*target = parsed
}
