// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 各コンポーネントには必要な値だけを明示的に渡す。
type Config struct {
	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// Database
	// sqlite3://path または postgres://... を指定する。
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite3://fashion_ai.db"`

	// Completion
	// APIキーが未設定でも起動は失敗しない。生成系エンドポイントが案内文を返す。
	CompletionAPIKey        string        `env:"GROQ_API_KEY"`
	CompletionBaseURL       string        `env:"COMPLETION_BASE_URL" envDefault:"https://api.groq.com/openai/v1/"`
	CompletionTextModel     string        `env:"COMPLETION_TEXT_MODEL" envDefault:"llama-3.3-70b-versatile"`
	CompletionVisionModel   string        `env:"COMPLETION_VISION_MODEL" envDefault:"meta-llama/llama-4-scout-17b-16e-instruct"`
	CompletionTextTimeout   time.Duration `env:"COMPLETION_TEXT_TIMEOUT" envDefault:"45s"`
	CompletionVisionTimeout time.Duration `env:"COMPLETION_VISION_TIMEOUT" envDefault:"90s"`

	// Upload
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"static/uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"16777216"`

	// Session
	SessionSecret string `env:"SESSION_SECRET"`
	SessionMaxAge int    `env:"SESSION_MAX_AGE" envDefault:"86400"`

	// Cookie
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5000,http://127.0.0.1:5000" envSeparator:","`

	// Rate Limit（req/min/IP、/signup と /login のみ）
	RateLimitAuth int `env:"RATE_LIMIT_AUTH" envDefault:"20"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load は.envファイル（存在する場合）と環境変数からConfigを読み込む。
// 値の形式が不正な場合はエラーを返す。
func Load() (*Config, error) {
	// .envが無い場合のエラーは無視する
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasCompletionKey は外部LLMのAPIキーが設定されているかを返す。
func (c *Config) HasCompletionKey() bool {
	return c.CompletionAPIKey != ""
}

func (c *Config) validate() error {
	var invalid []string

	if c.MaxUploadBytes <= 0 {
		invalid = append(invalid, "MAX_UPLOAD_BYTES")
	}
	if c.SessionMaxAge <= 0 {
		invalid = append(invalid, "SESSION_MAX_AGE")
	}
	if c.CompletionTextTimeout <= 0 {
		invalid = append(invalid, "COMPLETION_TEXT_TIMEOUT")
	}
	if c.CompletionVisionTimeout <= 0 {
		invalid = append(invalid, "COMPLETION_VISION_TIMEOUT")
	}
	if c.RateLimitAuth <= 0 {
		invalid = append(invalid, "RATE_LIMIT_AUTH")
	}
	if !strings.Contains(c.DatabaseURL, "://") {
		invalid = append(invalid, "DATABASE_URL")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variables: %v", invalid)
	}
	return nil
}
