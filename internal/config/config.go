// Package config loads mathdrill settings from a YAML file, an optional
// .env file and MATHDRILL_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/logging"
)

type Config struct {
	DB       string `yaml:"db"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Events struct {
		Driver        string   `yaml:"driver"`
		KafkaBrokers  []string `yaml:"kafka_brokers"`
		ConsumerGroup string   `yaml:"consumer_group"`
	} `yaml:"events"`

	Auth struct {
		Secret   string `yaml:"secret"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"auth"`

	Explain struct {
		Timeout   string `yaml:"timeout"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"explain"`

	LLM llm.Config `yaml:"llm"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	var cfg Config
	cfg.LogLevel = logging.DefaultLevel
	cfg.Server.Addr = ":8080"
	cfg.Events.Driver = events.DriverGoChannel
	cfg.Auth.TokenTTL = "72h"
	cfg.Explain.Timeout = "30s"
	cfg.Explain.MaxTokens = 400
	cfg.LLM = llm.DefaultConfig()
	return cfg
}

// Load reads YAML config from path on top of Default. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv applies MATHDRILL_* overrides to cfg.
func FromEnv(cfg *Config) error {
	setString(&cfg.DB, "MATHDRILL_DB")
	setString(&cfg.LogLevel, "MATHDRILL_LOG_LEVEL")
	setString(&cfg.LogFile, "MATHDRILL_LOG_FILE")

	setString(&cfg.Server.Addr, "MATHDRILL_ADDR")
	setList(&cfg.Server.AllowedOrigins, "MATHDRILL_ALLOWED_ORIGINS")

	setString(&cfg.Redis.Addr, "MATHDRILL_REDIS_ADDR")
	setString(&cfg.Redis.Password, "MATHDRILL_REDIS_PASSWORD")
	if v := os.Getenv("MATHDRILL_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MATHDRILL_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	setString(&cfg.Events.Driver, "MATHDRILL_EVENTS_DRIVER")
	setList(&cfg.Events.KafkaBrokers, "MATHDRILL_KAFKA_BROKERS")
	setString(&cfg.Events.ConsumerGroup, "MATHDRILL_KAFKA_CONSUMER_GROUP")

	setString(&cfg.Auth.Secret, "MATHDRILL_JWT_SECRET")
	setString(&cfg.Auth.TokenTTL, "MATHDRILL_TOKEN_TTL")

	setString(&cfg.Explain.Timeout, "MATHDRILL_EXPLAIN_TIMEOUT")

	setString(&cfg.LLM.Provider, "MATHDRILL_LLM_PROVIDER")
	setString(&cfg.LLM.Anthropic.APIKey, "MATHDRILL_ANTHROPIC_API_KEY")
	setString(&cfg.LLM.Anthropic.Model, "MATHDRILL_ANTHROPIC_MODEL")
	setString(&cfg.LLM.OpenAI.APIKey, "MATHDRILL_OPENAI_API_KEY")
	setString(&cfg.LLM.OpenAI.Model, "MATHDRILL_OPENAI_MODEL")
	setString(&cfg.LLM.OpenAI.BaseURL, "MATHDRILL_OPENAI_BASE_URL")
	setString(&cfg.LLM.Gemini.APIKey, "MATHDRILL_GEMINI_API_KEY")
	setString(&cfg.LLM.Gemini.Model, "MATHDRILL_GEMINI_MODEL")
	return nil
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// TokenTTL is the lifetime of issued principal tokens.
func (c Config) TokenTTL() time.Duration {
	return Duration(c.Auth.TokenTTL, 72*time.Hour)
}

// ExplainTimeout bounds one explanation request.
func (c Config) ExplainTimeout() time.Duration {
	return Duration(c.Explain.Timeout, 30*time.Second)
}

// EventsConfig converts the events section for events.NewPublisher.
func (c Config) EventsConfig() events.Config {
	return events.Config{
		Driver:        c.Events.Driver,
		KafkaBrokers:  c.Events.KafkaBrokers,
		ConsumerGroup: c.Events.ConsumerGroup,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
