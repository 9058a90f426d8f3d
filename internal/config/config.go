package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Bot      BotConfig      `yaml:"bot"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Storage  StorageConfig  `yaml:"storage"`
	Sessions SessionsConfig `yaml:"sessions"`
	Vision   VisionConfig   `yaml:"vision"`
	AWS      AWSConfig      `yaml:"aws"`
	Push     PushConfig     `yaml:"push"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" env:"PORT"`
	Host           string   `yaml:"host" env:"HOST"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// BotConfig holds chat transport configuration
type BotConfig struct {
	Token         string `yaml:"token" env:"BOT_TOKEN"`
	OwnerID       int64  `yaml:"owner_id" env:"OWNER_ID"`
	Mode          string `yaml:"mode" env:"BOT_MODE"` // polling or webhook
	WebhookURL    string `yaml:"webhook_url" env:"BOT_WEBHOOK_URL"`
	WebhookSecret string `yaml:"webhook_secret" env:"BOT_WEBHOOK_SECRET"`
	Debug         bool   `yaml:"debug" env:"BOT_DEBUG"`
}

// ExchangeConfig holds the visitor flow limits
type ExchangeConfig struct {
	RequiredPhotos int `yaml:"required_photos" env:"REQUIRED_PHOTOS"`
	MinAboutLength int `yaml:"min_about_length" env:"MIN_ABOUT_LENGTH"`
	MediaGroupSize int `yaml:"media_group_size" env:"MEDIA_GROUP_SIZE"`
}

// StorageConfig selects and configures the durable store
type StorageConfig struct {
	Driver     string         `yaml:"driver" env:"STORAGE_DRIVER"` // sqlite or postgres
	SQLitePath string         `yaml:"sqlite_path" env:"SQLITE_PATH"`
	Database   DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DATABASE_HOST"`
	Port     int    `yaml:"port" env:"DATABASE_PORT"`
	User     string `yaml:"user" env:"DATABASE_USER"`
	Password string `yaml:"password" env:"DATABASE_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DATABASE_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DATABASE_SSLMODE"`
}

// SessionsConfig selects where visitor sessions live
type SessionsConfig struct {
	Backend  string        `yaml:"backend" env:"SESSIONS_BACKEND"` // memory or redis
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"SESSIONS_TTL"`
}

// DefaultCascadeURL is where the face cascade is fetched from when
// cascade_path does not exist yet
const DefaultCascadeURL = "https://raw.githubusercontent.com/esimov/pigo/master/cascade/facefinder"

// VisionConfig tunes the face detector
type VisionConfig struct {
	CascadePath      string  `yaml:"cascade_path" env:"VISION_CASCADE_PATH"`
	CascadeURL       string  `yaml:"cascade_url" env:"VISION_CASCADE_URL"`
	MinSize          int     `yaml:"min_size"`
	MaxSize          int     `yaml:"max_size"`
	ShiftFactor      float64 `yaml:"shift_factor"`
	ScaleFactor      float64 `yaml:"scale_factor"`
	IoUThreshold     float64 `yaml:"iou_threshold"`
	QualityThreshold float32 `yaml:"quality_threshold"`
}

// AWSConfig holds S3 archive configuration
type AWSConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ARCHIVE_ENABLED"`
	Region    string `yaml:"region" env:"AWS_REGION"`
	S3Bucket  string `yaml:"s3_bucket" env:"AWS_S3_BUCKET"`
	AccessKey string `yaml:"access_key" env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `yaml:"secret_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint  string `yaml:"endpoint" env:"AWS_S3_ENDPOINT"` // S3-compatible providers
}

// PushConfig holds APNs configuration for owner alerts
type PushConfig struct {
	Enabled     bool   `yaml:"enabled" env:"PUSH_ENABLED"`
	CertPath    string `yaml:"cert_path" env:"PUSH_CERT_PATH"`
	CertPass    string `yaml:"cert_password" env:"PUSH_CERT_PASSWORD"`
	Topic       string `yaml:"topic" env:"PUSH_TOPIC"`
	DeviceToken string `yaml:"device_token" env:"PUSH_DEVICE_TOKEN"`
	Production  bool   `yaml:"production" env:"PUSH_PRODUCTION"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides and defaults. A missing file is allowed when the environment
// carries everything required.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Bot.Mode == "" {
		c.Bot.Mode = "polling"
	}
	if c.Exchange.RequiredPhotos == 0 {
		c.Exchange.RequiredPhotos = 2
	}
	if c.Exchange.MinAboutLength == 0 {
		c.Exchange.MinAboutLength = 50
	}
	if c.Exchange.MediaGroupSize == 0 {
		c.Exchange.MediaGroupSize = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "bot_data.db"
	}
	if c.Storage.Database.Port == 0 {
		c.Storage.Database.Port = 5432
	}
	if c.Storage.Database.SSLMode == "" {
		c.Storage.Database.SSLMode = "disable"
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = "memory"
	}
	if c.Sessions.TTL == 0 {
		c.Sessions.TTL = 30 * 24 * time.Hour
	}
	if c.Vision.CascadePath == "" {
		c.Vision.CascadePath = "cascade/facefinder"
	}
	if c.Vision.CascadeURL == "" {
		c.Vision.CascadeURL = DefaultCascadeURL
	}
	if c.Vision.MinSize == 0 {
		c.Vision.MinSize = 20
	}
	if c.Vision.MaxSize == 0 {
		c.Vision.MaxSize = 2000
	}
	if c.Vision.ShiftFactor == 0 {
		c.Vision.ShiftFactor = 0.1
	}
	if c.Vision.ScaleFactor == 0 {
		c.Vision.ScaleFactor = 1.1
	}
	if c.Vision.IoUThreshold == 0 {
		c.Vision.IoUThreshold = 0.2
	}
	if c.Vision.QualityThreshold == 0 {
		c.Vision.QualityThreshold = 5.0
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration can start the bot
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	if c.Bot.OwnerID == 0 {
		return fmt.Errorf("owner id is required")
	}
	if c.Bot.Mode != "polling" && c.Bot.Mode != "webhook" {
		return fmt.Errorf("unknown bot mode %q", c.Bot.Mode)
	}
	if c.Bot.Mode == "webhook" && c.Bot.WebhookURL == "" {
		return fmt.Errorf("webhook url is required in webhook mode")
	}
	if c.Exchange.RequiredPhotos < 1 || c.Exchange.MinAboutLength < 1 {
		return fmt.Errorf("exchange limits must be positive")
	}
	if c.Exchange.MediaGroupSize < 2 || c.Exchange.MediaGroupSize > 10 {
		return fmt.Errorf("media group size must be between 2 and 10")
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Sessions.Backend {
	case "memory":
	case "redis":
		if c.Sessions.RedisURL == "" {
			return fmt.Errorf("redis url is required for redis sessions")
		}
	default:
		return fmt.Errorf("unknown sessions backend %q", c.Sessions.Backend)
	}
	if c.AWS.Enabled && c.AWS.S3Bucket == "" {
		return fmt.Errorf("s3 bucket is required when archiving is enabled")
	}
	if c.Push.Enabled && (c.Push.CertPath == "" || c.Push.DeviceToken == "" || c.Push.Topic == "") {
		return fmt.Errorf("push requires cert_path, topic and device_token")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
