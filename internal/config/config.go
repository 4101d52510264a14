package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	LogDebug  bool

	// Recursion defaults
	DefaultTimeUnits string
	Workers          int // 并行扫描的地点数，<2 为顺序扫描
	LogIncrement     int // 访问日志每次扩容的条数

	// Rate limiting
	RateLimit  int
	RateWindow time.Duration
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", ":8080"),
		DBPath:           getEnv("DB_PATH", "./data/recurse/recurse.db"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		LogDebug:         getEnvBool("LOG_DEBUG", false),
		DefaultTimeUnits: getEnv("RECURSE_DEFAULT_TIMEUNITS", "hours"),
		Workers:          getEnvInt("RECURSE_WORKERS", 1),
		LogIncrement:     getEnvInt("RECURSE_LOG_INCREMENT", 10),
		RateLimit:        getEnvInt("RATE_LIMIT", 120),
		RateWindow:       getEnvDuration("RATE_WINDOW", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
