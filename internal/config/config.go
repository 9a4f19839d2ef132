// Package config loads application configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the analytics server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Engine   EngineConfig   `yaml:"engine"`
	Audience AudienceConfig `yaml:"audience"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AllowedOrigins feed the CORS middleware; the dashboard frontend is
	// served from a separate origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig holds snapshot persistence settings. Local JSON storage is
// always active; S3/DynamoDB mirroring is enabled by setting a bucket and
// table.
type StorageConfig struct {
	LocalPath     string `yaml:"local_path"`
	S3Bucket      string `yaml:"s3_bucket"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // empty uses the default credential chain
}

// AWSEnabled reports whether cloud mirroring is configured.
func (c StorageConfig) AWSEnabled() bool {
	return c.S3Bucket != "" && c.DynamoDBTable != ""
}

// DatabaseConfig holds the optional Postgres import log.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the optional query-result cache.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// EngineConfig holds analysis policy knobs. Defaults match the documented
// engine behavior; deployments rarely change these.
type EngineConfig struct {
	DailyMaxDays  int `yaml:"daily_max_days"`
	WeeklyMaxDays int `yaml:"weekly_max_days"`
}

// AudienceConfig holds segmentation policy windows.
type AudienceConfig struct {
	StaleProfileDays int `yaml:"stale_profile_days"`
	DormantDays      int `yaml:"dormant_days"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads and parses the configuration file, then applies defaults and
// environment overrides. A missing file is not an error: the defaults are
// a fully working local setup.
func Load(path string) (*Config, error) {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "./data"
	}
	if c.Storage.AWSRegion == "" {
		c.Storage.AWSRegion = "us-east-1"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 300
	}
	if c.Engine.DailyMaxDays == 0 {
		c.Engine.DailyMaxDays = 60
	}
	if c.Engine.WeeklyMaxDays == 0 {
		c.Engine.WeeklyMaxDays = 180
	}
	if c.Audience.StaleProfileDays == 0 {
		c.Audience.StaleProfileDays = 30
	}
	if c.Audience.DormantDays == 0 {
		c.Audience.DormantDays = 90
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("SNAPSHOT_S3_BUCKET"); v != "" {
		c.Storage.S3Bucket = v
	}
	if v := os.Getenv("SNAPSHOT_DYNAMODB_TABLE"); v != "" {
		c.Storage.DynamoDBTable = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Storage.AWSRegion = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Engine.DailyMaxDays >= c.Engine.WeeklyMaxDays {
		return fmt.Errorf("granularity cutoffs must be increasing: daily %d >= weekly %d",
			c.Engine.DailyMaxDays, c.Engine.WeeklyMaxDays)
	}
	if c.Audience.StaleProfileDays <= 0 || c.Audience.DormantDays <= 0 {
		return fmt.Errorf("audience windows must be positive")
	}
	return nil
}
