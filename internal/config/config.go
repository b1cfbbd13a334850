package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the immutable configuration record shared by the API server and
// the worker daemons. It is loaded once at startup and passed to
// constructors; nothing mutates it afterwards.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Pool      PoolConfig      `yaml:"pool"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Workers   WorkerConfig    `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
	Run       RunConfig       `yaml:"run"`
	Retention RetentionConfig `yaml:"retention"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type PoolConfig struct {
	MinConnections        int     `yaml:"min_connections"`
	MaxOverflow           int     `yaml:"max_overflow"`
	AcquireTimeoutSeconds float64 `yaml:"acquire_timeout_seconds"`
}

func (p PoolConfig) AcquireTimeout() time.Duration {
	return time.Duration(p.AcquireTimeoutSeconds * float64(time.Second))
}

type HTTPConfig struct {
	BindHost              string   `yaml:"bind_host"`
	BindPort              int      `yaml:"bind_port"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds float64  `yaml:"request_timeout_seconds"`
}

func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.BindHost, h.BindPort)
}

func (h HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(h.RequestTimeoutSeconds * float64(time.Second))
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig enables API rate limiting when Addr is set.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Rate          int    `yaml:"rate"`
	WindowSeconds int    `yaml:"window_seconds"`
}

// NATSConfig enables lifecycle notifications when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type WorkerConfig struct {
	BatchSize              int     `yaml:"batch_size"`
	QuiescenceSeconds      int     `yaml:"quiescence_seconds"`
	ReclaimHorizonSeconds  int     `yaml:"reclaim_horizon_seconds"`
	PollIdleSeconds        float64 `yaml:"poll_idle_seconds"`
	PollIdleMaxSeconds     float64 `yaml:"poll_idle_max_seconds"`
	PerEventTimeoutSeconds int     `yaml:"per_event_timeout_seconds"`
	AIEndpointURL          string  `yaml:"ai_endpoint_url"`
	AIVisionModel          string  `yaml:"ai_vision_model"`
	AITextModel            string  `yaml:"ai_text_model"`
	AIRetryBudget          int     `yaml:"ai_retry_budget"`
	FFmpegPath             string  `yaml:"ffmpeg_path"`
	FFprobePath            string  `yaml:"ffprobe_path"`
	RetainH264             bool    `yaml:"retain_h264"`
}

func (w WorkerConfig) Quiescence() time.Duration {
	return time.Duration(w.QuiescenceSeconds) * time.Second
}

func (w WorkerConfig) ReclaimHorizon() time.Duration {
	return time.Duration(w.ReclaimHorizonSeconds) * time.Second
}

func (w WorkerConfig) PollIdle() time.Duration {
	return time.Duration(w.PollIdleSeconds * float64(time.Second))
}

func (w WorkerConfig) PollIdleMax() time.Duration {
	return time.Duration(w.PollIdleMaxSeconds * float64(time.Second))
}

func (w WorkerConfig) PerEventTimeout() time.Duration {
	return time.Duration(w.PerEventTimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Dir string `yaml:"dir"`
}

type RunConfig struct {
	Dir string `yaml:"dir"`
}

type RetentionConfig struct {
	MaxDays int `yaml:"max_days"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. A missing file is not an error when
// the environment provides the database settings.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "security_cameras",
			User:    "securitycam",
			SSLMode: "disable",
		},
		Pool: PoolConfig{
			MinConnections:        5,
			MaxOverflow:           10,
			AcquireTimeoutSeconds: 5,
		},
		HTTP: HTTPConfig{
			BindHost:              "0.0.0.0",
			BindPort:              8000,
			RequestTimeoutSeconds: 30,
		},
		Storage: StorageConfig{Path: "/mnt/security_footage"},
		Redis:   RedisConfig{Rate: 120, WindowSeconds: 60},
		NATS:    NATSConfig{SubjectPrefix: "central.events"},
		Workers: WorkerConfig{
			BatchSize:              2,
			QuiescenceSeconds:      3,
			ReclaimHorizonSeconds:  300,
			PollIdleSeconds:        0.5,
			PollIdleMaxSeconds:     7,
			PerEventTimeoutSeconds: 300,
			AIVisionModel:          "moondream:latest",
			AITextModel:            "deepseek-r1:8b",
			AIRetryBudget:          3,
			FFmpegPath:             "ffmpeg",
			FFprobePath:            "ffprobe",
		},
		Logging: LoggingConfig{Dir: "logs"},
		Run:     RunConfig{Dir: "run"},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Storage.Path, "STORAGE_ROOT")
	setString(&cfg.Workers.AIEndpointURL, "AI_ENDPOINT_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
		return fmt.Errorf("database host, name and user are required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database port %d out of range", c.Database.Port)
	}
	if c.Pool.MinConnections < 1 {
		return fmt.Errorf("pool min_connections must be >= 1")
	}
	if c.Pool.MaxOverflow < 0 {
		return fmt.Errorf("pool max_overflow must be >= 0")
	}
	if c.HTTP.BindPort <= 0 || c.HTTP.BindPort > 65535 {
		return fmt.Errorf("http bind_port %d out of range", c.HTTP.BindPort)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Workers.BatchSize < 1 {
		return fmt.Errorf("workers batch_size must be >= 1")
	}
	if c.Workers.QuiescenceSeconds < 0 {
		return fmt.Errorf("workers quiescence_seconds must be >= 0")
	}
	if c.Workers.ReclaimHorizonSeconds < 1 {
		return fmt.Errorf("workers reclaim_horizon_seconds must be >= 1")
	}
	if c.Retention.MaxDays < 0 {
		return fmt.Errorf("retention max_days must be >= 0")
	}
	return nil
}
