package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DatabaseURL    string
	DBMaxIdleConns int
	DBMaxOpenConns int

	// Redis
	EnableCache bool
	RedisURL    string
	CacheTTL    time.Duration

	// JWT
	JWTSecret string
	JWTTTL    time.Duration

	// Server
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	// CORS
	CORSOrigins []string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	// Comments
	CommentMaxLength     int
	CommentRatePerMinute int

	// Listing
	DefaultPageSize int
	MaxPageSize     int

	// Features
	EnableMetrics bool

	// Seed
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string
}

func New() *Config {
	c := &Config{
		// Database
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "bloguser"),
		DBPassword:     getEnv("DB_PASSWORD", "blogpassword"),
		DBName:         getEnv("DB_NAME", "blogmodapk"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		// Redis
		EnableCache: getEnvAsBool("ENABLE_CACHE", false),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 10*time.Minute),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", 72*time.Hour),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		// CORS
		CORSOrigins: splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 20),

		// Comments
		CommentMaxLength:     getEnvAsInt("COMMENT_MAX_LENGTH", 5000),
		CommentRatePerMinute: getEnvAsInt("COMMENT_RATE_PER_MINUTE", 5),

		// Listing
		DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 12),
		MaxPageSize:     getEnvAsInt("MAX_PAGE_SIZE", 100),

		// Features
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		// Seed
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@blogmodapk.com"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "Admin@123"),
		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Super Admin"),
	}

	// Build DSN
	c.DatabaseURL = getEnv("DATABASE_URL", fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	))

	if c.JWTSecret == "" && !c.IsProduction() {
		c.JWTSecret = "dev-only-jwt-secret-change-me"
	}

	return c
}

// Validate reports configuration that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) must not be below DEFAULT_PAGE_SIZE (%d)", c.MaxPageSize, c.DefaultPageSize)
	}
	if c.RateLimitRequests < 1 || c.RateLimitWindow < 1 {
		return errors.New("rate limit requests and window must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
