package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StagingDisk = "disk"
	StagingS3   = "s3"

	QuotaMemory = "memory"
	QuotaSQLite = "sqlite"
	QuotaRedis  = "redis"
)

type Config struct {
	Port     string
	LogLevel string

	// CORS
	AllowedOrigins []string

	// Uploads
	MaxFileSize    int64
	UploadDir      string
	StagingBackend string

	// S3
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Quota store
	QuotaBackend string
	DatabaseURL  string
	RedisURL     string

	// LLM
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string
	LLMMaxTokens     int
	LLMTemperature   float64
	LLMMaxRetries    int
	LLMMaxInputChars int
	AnalysisTimeout  time.Duration

	// Events
	AMQPURL      string
	AMQPExchange string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("STAGING_BACKEND", StagingDisk)
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_BUCKET_NAME", "resume-uploads")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("QUOTA_BACKEND", QuotaMemory)
	v.SetDefault("DATABASE_URL", "data/quota.db")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("LLM_MODEL", "openai/gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 1500)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_RETRIES", 1)
	v.SetDefault("LLM_MAX_INPUT_CHARS", 12000)
	v.SetDefault("ANALYSIS_TIMEOUT", "45s")
	v.SetDefault("AMQP_EXCHANGE", "resume_analysis")
}

// Load reads configuration from the environment. A .env file is loaded first
// when present; envFile overrides the default location.
func Load(envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	analysisTimeout, err := parseSeconds(v.GetString("ANALYSIS_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		AllowedOrigins:    splitList(firstNonEmpty(v.GetString("FRONTEND_URL"), v.GetString("ALLOWED_ORIGINS"))),
		MaxFileSize:       v.GetInt64("MAX_FILE_SIZE"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		StagingBackend:    strings.ToLower(v.GetString("STAGING_BACKEND")),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		S3BucketName:      v.GetString("S3_BUCKET_NAME"),
		S3UseSSL:          v.GetBool("S3_USE_SSL"),
		QuotaBackend:      strings.ToLower(v.GetString("QUOTA_BACKEND")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		RedisURL:          v.GetString("REDIS_URL"),
		LLMAPIKey:         firstNonEmpty(v.GetString("OPENROUTER_API_KEY"), v.GetString("OPENAI_API_KEY")),
		LLMBaseURL:        strings.TrimRight(v.GetString("LLM_BASE_URL"), "/"),
		LLMModel:          v.GetString("LLM_MODEL"),
		LLMMaxTokens:      v.GetInt("LLM_MAX_TOKENS"),
		LLMTemperature:    v.GetFloat64("LLM_TEMPERATURE"),
		LLMMaxRetries:     v.GetInt("LLM_MAX_RETRIES"),
		LLMMaxInputChars:  v.GetInt("LLM_MAX_INPUT_CHARS"),
		AnalysisTimeout:   analysisTimeout,
		AMQPURL:           v.GetString("AMQP_URL"),
		AMQPExchange:      v.GetString("AMQP_EXCHANGE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive, got %s", c.AnalysisTimeout)
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative, got %d", c.LLMMaxRetries)
	}

	switch c.StagingBackend {
	case StagingDisk, StagingS3:
	default:
		return fmt.Errorf("unknown STAGING_BACKEND %q (want %s or %s)", c.StagingBackend, StagingDisk, StagingS3)
	}

	switch c.QuotaBackend {
	case QuotaMemory, QuotaSQLite, QuotaRedis:
	default:
		return fmt.Errorf("unknown QUOTA_BACKEND %q (want %s, %s or %s)", c.QuotaBackend, QuotaMemory, QuotaSQLite, QuotaRedis)
	}

	return nil
}

func loadDotEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// parseSeconds reads a Go duration ("90s", "2m"). A bare integer counts as
// seconds.
func parseSeconds(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
