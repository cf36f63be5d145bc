package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	STT     STTConfig
	Augment AugmentConfig
	Limits  LimitsConfig
	Redis   RedisConfig
	CORS    CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	Dir         string
	MaxFileSize int64         // bytes
	Retention   time.Duration // age after which orphaned uploads are collected
}

type STTConfig struct {
	BaseURL string // whisper.cpp server or OpenAI-compatible endpoint
	Model   string
	APIKey  string // empty for a local server
}

type AugmentConfig struct {
	Backend         string // "deepseek" or "anthropic"
	DeepSeekKey     string
	DeepSeekBaseURL string
	DeepSeekModel   string
	AnthropicKey    string
	AnthropicModel  string
	Timeout         time.Duration
}

type LimitsConfig struct {
	RequestsPerMinute int
}

type RedisConfig struct {
	Addr     string // empty: in-memory rate limiting
	Password string
	DB       int
}

type CORSConfig struct {
	Origins []string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxFileMB, err := getEnvInt("MAX_FILE_SIZE_MB", 25)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE_MB: %w", err)
	}

	retentionMin, err := getEnvInt("STORE_RETENTION_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_RETENTION_MINUTES: %w", err)
	}

	rpm, err := getEnvInt("RATE_LIMIT_RPM", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPM: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	augTimeout, err := getEnvInt("AUGMENT_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid AUGMENT_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Store: StoreConfig{
			Dir:         getEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "voicescribe-uploads")),
			MaxFileSize: int64(maxFileMB) << 20,
			Retention:   time.Duration(retentionMin) * time.Minute,
		},
		STT: STTConfig{
			BaseURL: getEnv("STT_BASE_URL", "http://localhost:8178"),
			Model:   getEnv("STT_MODEL", "base"),
			APIKey:  getEnv("STT_API_KEY", ""),
		},
		Augment: AugmentConfig{
			Backend:         getEnv("AUGMENT_BACKEND", "deepseek"),
			DeepSeekKey:     getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
			DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			Timeout:         time.Duration(augTimeout) * time.Second,
		},
		Limits: LimitsConfig{
			RequestsPerMinute: rpm,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
