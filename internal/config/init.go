package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds every setting read from the environment.
type Config struct {
	AppPort        string
	APIBaseURL     string
	PageSize       int
	UserID         int
	HTTPTimeout    time.Duration
	FormValidation string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	SweepInterval time.Duration

	DBDriver        string
	DBDSN           string
	SeedPosts       int
	PlaceholderPort string
}

// Load reads .env (when present) and the process environment. Invalid
// values fall back to their defaults with a warning.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger().Info("No .env file found, using system environment variables")
	}

	return Config{
		AppPort:        str("APP_PORT", "8080"),
		APIBaseURL:     str("API_BASE_URL", "https://jsonplaceholder.typicode.com"),
		PageSize:       positiveInt("PAGE_SIZE", 9),
		UserID:         positiveInt("USER_ID", 1),
		HTTPTimeout:    duration("HTTP_TIMEOUT", 10*time.Second),
		FormValidation: str("FORM_VALIDATION", "strict"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       nonNegativeInt("REDIS_DB", 0),
		SessionTTL:    duration("SESSION_TTL", 24*time.Hour),
		SweepInterval: duration("SWEEP_INTERVAL", 10*time.Minute),

		DBDriver:        str("DB_DRIVER", "mysql"),
		DBDSN:           os.Getenv("DB_DSN"),
		SeedPosts:       nonNegativeInt("SEED_POSTS", 100),
		PlaceholderPort: str("PLACEHOLDER_PORT", "3000"),
	}
}

func logger() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) int {
	n, ok := parseInt(key)
	if !ok || n <= 0 {
		if ok {
			logger().Warn("ignoring non-positive value", zap.String("key", key), zap.Int("default", def))
		}
		return def
	}
	return n
}

func nonNegativeInt(key string, def int) int {
	n, ok := parseInt(key)
	if !ok || n < 0 {
		return def
	}
	return n
}

func parseInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger().Warn("invalid integer setting", zap.String("key", key), zap.String("value", raw))
		return 0, false
	}
	return n, true
}

func duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger().Warn("invalid duration setting", zap.String("key", key), zap.String("value", raw), zap.Duration("default", def))
		return def
	}
	return d
}
