package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Port      string `env:"PORT" env-default:"5000"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	Database DatabaseConfig
	Uploads  UploadsConfig
	S3       S3Config
	SMTP     SMTPConfig
	Redis    RedisConfig
	Codes    CodesConfig
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" env-default:"sqlite"`
	DSN    string `env:"DATABASE_DSN" env-default:"problems_solutions.db"`
}

type UploadsConfig struct {
	Storage  string `env:"PHOTO_STORAGE" env-default:"local"`
	Dir      string `env:"UPLOADS_DIR" env-default:"uploads"`
	MaxBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"5242880"`
}

type S3Config struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" env-default:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Prefix    string `env:"S3_PREFIX" env-default:"profile-photos/"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"FROM_EMAIL"`
}

// RedisConfig is optional. Verification attempts are not limited when Addr
// is empty.
type RedisConfig struct {
	Addr              string `env:"REDIS_ADDR"`
	Password          string `env:"REDIS_PASSWORD"`
	MaxAttempts       int    `env:"VERIFY_MAX_ATTEMPTS" env-default:"5"`
	AttemptWindowMins int    `env:"VERIFY_ATTEMPT_WINDOW_MIN" env-default:"15"`
}

type CodesConfig struct {
	TTLMins           int `env:"CODE_TTL_MIN" env-default:"15"`
	PurgeIntervalMins int `env:"CODE_PURGE_INTERVAL_MIN" env-default:"60"`
}

// Load reads an optional .env file into the process environment and then
// fills Config from it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	switch c.Uploads.Storage {
	case StorageLocal:
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when PHOTO_STORAGE=s3")
		}
	default:
		return fmt.Errorf("unsupported PHOTO_STORAGE %q", c.Uploads.Storage)
	}

	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Uploads.MaxBytes)
	}
	if c.Codes.TTLMins <= 0 {
		return fmt.Errorf("CODE_TTL_MIN must be positive, got %d", c.Codes.TTLMins)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c CodesConfig) TTL() time.Duration {
	return time.Duration(c.TTLMins) * time.Minute
}

func (c CodesConfig) PurgeInterval() time.Duration {
	return time.Duration(c.PurgeIntervalMins) * time.Minute
}

func (c RedisConfig) AttemptWindow() time.Duration {
	return time.Duration(c.AttemptWindowMins) * time.Minute
}
