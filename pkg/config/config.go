package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	StorageFS     = "fs"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

type Config struct {
	// HTTP listen address, e.g. ":8080"
	Address string `env:"ADDRESS" envDefault:":8080"`

	Log     Log
	OpenAI  OpenAI
	Storage Storage

	// Hard ceiling for a single uploaded file.
	UploadMaxBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

type OpenAI struct {
	APIKey       string        `env:"OPENAI_API_KEY"`
	BaseURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ImageModel   string        `env:"OPENAI_IMAGE_MODEL" envDefault:"gpt-image-1"`
	ChatModel    string        `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o-mini"`
	VerifyModels bool          `env:"OPENAI_VERIFY_MODELS" envDefault:"true"`
	Timeout      time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"2m"`
}

type Storage struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"fs"`
	ResultsDir string `env:"RESULTS_DIR" envDefault:"public/results"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"public/uploads"`

	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint string `env:"S3_ENDPOINT"`
}

// Load loads .env (if present) and parses environment variables into Config.
func Load() (Config, error) {
	// Load .env if available; ignore error if file does not exist
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case StorageFS, StorageMemory:
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// RequireAPIKey reports a missing provider credential. Only the server needs it.
func (c Config) RequireAPIKey() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is empty")
	}
	return nil
}
