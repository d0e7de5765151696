package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	RedisURL   string `yaml:"redis_url"`
	HTTPPort   int    `yaml:"http_port"`
	UploadDir  string `yaml:"upload_dir"`
	ResultsDir string `yaml:"results_dir"`
	ModelPath  string `yaml:"model_path"`
	QueueName  string `yaml:"queue_name"`

	// StatusTTL bounds how long final status records live in Redis.
	// Zero means no expiry.
	StatusTTL time.Duration `yaml:"status_ttl"`

	// StreamPollTimeout bounds each wait on the notification bus so
	// client disconnects are noticed promptly.
	StreamPollTimeout time.Duration `yaml:"stream_poll_timeout"`
}

// Load builds the configuration from defaults, an optional YAML file
// pointed to by CONFIG_FILE, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		RedisURL:          "redis://localhost:6379/0",
		HTTPPort:          8000,
		UploadDir:         "uploads",
		ResultsDir:        "results",
		ModelPath:         "model/pipeline.json",
		QueueName:         "predictions",
		StatusTTL:         0,
		StreamPollTimeout: time.Second,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.UploadDir = getEnv("UPLOAD_DIR", cfg.UploadDir)
	cfg.ResultsDir = getEnv("RESULTS_DIR", cfg.ResultsDir)
	cfg.ModelPath = getEnv("MODEL_PATH", cfg.ModelPath)
	cfg.QueueName = getEnv("QUEUE_NAME", cfg.QueueName)
	cfg.StatusTTL = getEnvDuration("STATUS_TTL", cfg.StatusTTL)
	cfg.StreamPollTimeout = getEnvDuration("STREAM_POLL_TIMEOUT", cfg.StreamPollTimeout)

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
