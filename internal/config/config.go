// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

// Duration parses "30s"-style strings or bare integer seconds from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Port            int      `yaml:"port"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type UploadConfig struct {
	Dir          string   `yaml:"dir"`
	MaxFileSize  int64    `yaml:"max_file_size"` // bytes
	AllowedTypes []string `yaml:"allowed_types"` // MIME allow-list
}

type QueueConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type InternalConfig struct {
	APIKey string `yaml:"api_key"` // shared secret for the worker webhook
}

type StatusConfig struct {
	GracePeriod Duration `yaml:"grace_period"` // connection retention after close
}

type RateLimitConfig struct {
	Limit  int      `yaml:"limit"` // uploads per window per client
	Window Duration `yaml:"window"`
}

type RedisConfig struct {
	URL       string          `yaml:"url"` // empty disables redis entirely
	Password  string          `yaml:"password"`
	DB        int             `yaml:"db"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Upload   UploadConfig   `yaml:"upload"`
	Queue    QueueConfig    `yaml:"queue"`
	Internal InternalConfig `yaml:"internal"`
	Status   StatusConfig   `yaml:"status"`
	Redis    RedisConfig    `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if strings.TrimSpace(cfg.Internal.APIKey) == "" {
		return nil, errors.New("internal.api_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "uploads"
	}
	if cfg.Upload.MaxFileSize <= 0 {
		cfg.Upload.MaxFileSize = 50 << 20 // 50 MiB
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{"application/pdf"}
	}
	if cfg.Queue.URL == "" {
		cfg.Queue.URL = "amqp://localhost:5672"
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "document_processing"
	}
	if cfg.Status.GracePeriod <= 0 {
		cfg.Status.GracePeriod = Duration(time.Minute)
	}
	if cfg.Redis.RateLimit.Limit <= 0 {
		cfg.Redis.RateLimit.Limit = 30
	}
	if cfg.Redis.RateLimit.Window <= 0 {
		cfg.Redis.RateLimit.Window = Duration(time.Minute)
	}
}
