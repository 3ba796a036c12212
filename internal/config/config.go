package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// 外部IdP（WorkOS互換API）
	WorkOSAPIKey         string
	WorkOSClientID       string
	WorkOSCookiePassword string
	WorkOSBaseURL        string
	WorkOSProvider       string
	WorkOSRedirectURI    string

	// セッション検証
	VerifyTimeout time.Duration

	// Session Cookie
	SessionCookieMaxAge int
	CookieSecure        bool
	CookieDomain        string

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitWrite   int

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返し、プロセスは起動しない。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.WorkOSAPIKey = os.Getenv("WORKOS_API_KEY")
	if cfg.WorkOSAPIKey == "" {
		missing = append(missing, "WORKOS_API_KEY")
	}

	cfg.WorkOSClientID = os.Getenv("WORKOS_CLIENT_ID")
	if cfg.WorkOSClientID == "" {
		missing = append(missing, "WORKOS_CLIENT_ID")
	}

	cfg.WorkOSCookiePassword = os.Getenv("WORKOS_COOKIE_PASSWORD")
	if cfg.WorkOSCookiePassword == "" {
		missing = append(missing, "WORKOS_COOKIE_PASSWORD")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.WorkOSBaseURL = getEnvString("WORKOS_BASE_URL", "https://api.workos.com")
	cfg.WorkOSProvider = getEnvString("WORKOS_PROVIDER", "authkit")
	cfg.WorkOSRedirectURI = getEnvString("WORKOS_REDIRECT_URI", strings.TrimSuffix(cfg.BaseURL, "/")+"/callback")
	cfg.VerifyTimeout = getEnvDuration("VERIFY_TIMEOUT", 10*time.Second)
	cfg.SessionCookieMaxAge = getEnvInt("SESSION_COOKIE_MAX_AGE", 86400)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitWrite = getEnvInt("RATE_LIMIT_WRITE", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	// Secure属性はBASE_URLがhttpsかどうかから導出し、COOKIE_SECUREで明示的に上書きできる
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", strings.HasPrefix(cfg.BaseURL, "https://"))
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
