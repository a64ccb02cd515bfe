package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// スロットのバックエンド種別。
const (
	SlotBackendMemory   = "memory"
	SlotBackendFile     = "file"
	SlotBackendPostgres = "postgres"
	SlotBackendRedis    = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Slot
	SlotBackend string
	SlotDir     string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int

	// SlotConnectAttempts はpostgres/redisへの起動時接続の試行回数。
	SlotConnectAttempts int

	// Profile
	ProfileMaxAge int

	// Session Store
	StoreIdleTTL time.Duration

	// Delay
	LoginDelay    time.Duration
	RegisterDelay time.Duration
	ProfileDelay  time.Duration
	PasswordDelay time.Duration
	TicketDelay   time.Duration
	ContactDelay  time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitAuth    int

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	cfg.SlotBackend = getEnvString("SLOT_BACKEND", SlotBackendFile)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	switch cfg.SlotBackend {
	case SlotBackendMemory, SlotBackendFile:
	case SlotBackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case SlotBackendRedis:
		if cfg.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unknown SLOT_BACKEND %q: want memory, file, postgres or redis", cfg.SlotBackend)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SlotDir = getEnvString("SLOT_DIR", "./data/slots")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.SlotConnectAttempts = getEnvInt("SLOT_CONNECT_ATTEMPTS", 5)
	cfg.ProfileMaxAge = getEnvInt("PROFILE_MAX_AGE", 365*24*60*60)
	cfg.StoreIdleTTL = getEnvDuration("STORE_IDLE_TTL", 30*time.Minute)
	cfg.LoginDelay = getEnvDuration("LOGIN_DELAY", 800*time.Millisecond)
	cfg.RegisterDelay = getEnvDuration("REGISTER_DELAY", 1000*time.Millisecond)
	cfg.ProfileDelay = getEnvDuration("PROFILE_DELAY", 800*time.Millisecond)
	cfg.PasswordDelay = getEnvDuration("PASSWORD_DELAY", 800*time.Millisecond)
	cfg.TicketDelay = getEnvDuration("TICKET_DELAY", 1000*time.Millisecond)
	cfg.ContactDelay = getEnvDuration("CONTACT_DELAY", 1000*time.Millisecond)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 20)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
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
