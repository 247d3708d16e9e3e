package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Engine   EngineConfig   `yaml:"engine"`
	Insights InsightsConfig `yaml:"insights"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the conversation cache settings
type RedisConfig struct {
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	ConversationTTLMin int    `yaml:"conversation_ttl_minutes"`
}

// OracleConfig holds settings for the external NL model clients.
// Provider selects the backend: "openai" or "bedrock".
type OracleConfig struct {
	Provider       string `yaml:"provider"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	BedrockModelID string `yaml:"bedrock_model_id"`
	BedrockRegion  string `yaml:"bedrock_region"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the oracle call timeout as a duration.
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// EngineConfig holds recommendation engine knobs
type EngineConfig struct {
	// CandidateCap bounds the pool handed to the ranking oracle.
	// Clamped to a floor of 3 so the fallback can always fill the
	// minimum result count.
	CandidateCap int `yaml:"candidate_cap"`
}

// InsightsConfig holds purchase summary settings
type InsightsConfig struct {
	DefaultWindowDays int `yaml:"default_window_days"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.ConversationTTLMin == 0 {
		c.Redis.ConversationTTLMin = 60
	}
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = "openai"
	}
	if c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = "https://api.openai.com/v1"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gpt-4o-mini"
	}
	if c.Oracle.BedrockModelID == "" {
		c.Oracle.BedrockModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if c.Oracle.BedrockRegion == "" {
		c.Oracle.BedrockRegion = "us-east-1"
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = 30
	}
	if c.Engine.CandidateCap < 3 {
		if c.Engine.CandidateCap != 0 {
			c.Engine.CandidateCap = 3
		} else {
			c.Engine.CandidateCap = 30
		}
	}
	if c.Insights.DefaultWindowDays == 0 {
		c.Insights.DefaultWindowDays = 30
	}
}

// LoadFromEnv loads config from a YAML file, then overrides with environment
// variables. A .env file in the working directory is honored if present.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Oracle.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.Oracle.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Oracle.Model = model
	}
	if provider := os.Getenv("ORACLE_PROVIDER"); provider != "" {
		cfg.Oracle.Provider = provider
	}
	if modelID := os.Getenv("BEDROCK_MODEL_ID"); modelID != "" {
		cfg.Oracle.BedrockModelID = modelID
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.Oracle.BedrockRegion = region
	}

	return cfg, nil
}
