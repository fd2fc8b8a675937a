// file: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Cache       CacheConfig
	Cloudinary  CloudinaryConfig
	Leaderboard LeaderboardConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
	BCryptCost    int
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider        string // "memory" or "redis"
	RedisURL        string
	DefaultTTL      time.Duration
	LeaderboardTTL  time.Duration
	StatsTTL        time.Duration
	CleanupInterval time.Duration
	MaxKeys         int
}

// CloudinaryConfig holds avatar upload configuration
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// LeaderboardConfig controls the windowed "trending" leaderboard view.
// The trending ranking groups by recipient over kudos sent by the
// requesting user within TrendingWindow; either axis can be switched off.
type LeaderboardConfig struct {
	Limit            int
	TrendingWindow   time.Duration
	TrendingPersonal bool
}

// Load reads configuration from the environment, falling back to .env
// files outside production.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:      loadServerConfig(env),
		Database:    loadDatabaseConfig(),
		Auth:        loadAuthConfig(env),
		Cache:       loadCacheConfig(),
		Cloudinary:  loadCloudinaryConfig(),
		Leaderboard: loadLeaderboardConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Host:            getEnv("HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		CORSOrigins:     []string{getEnv("CORS_ORIGIN", "*")},
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:                getEnv("DATABASE_URL", "postgres://localhost:5432/kudospot?sslmode=disable"),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadAuthConfig(env string) AuthConfig {
	cost := getIntEnv("BCRYPT_COST", 10)
	if env == "production" && cost < 12 {
		cost = 12
	}
	return AuthConfig{
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
		BCryptCost:    cost,
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:        getEnv("CACHE_PROVIDER", "memory"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DefaultTTL:      getDurationEnv("CACHE_DEFAULT_TTL", 15*time.Minute),
		LeaderboardTTL:  getDurationEnv("CACHE_LEADERBOARD_TTL", 5*time.Minute),
		StatsTTL:        getDurationEnv("CACHE_STATS_TTL", time.Minute),
		CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Folder:    getEnv("CLOUDINARY_FOLDER", "kudospot/avatars"),
	}
}

func loadLeaderboardConfig() LeaderboardConfig {
	return LeaderboardConfig{
		Limit:            getIntEnv("LEADERBOARD_LIMIT", 10),
		TrendingWindow:   getDurationEnv("LEADERBOARD_TRENDING_WINDOW", 7*24*time.Hour),
		TrendingPersonal: getBoolEnv("LEADERBOARD_TRENDING_PERSONAL", true),
	}
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.Leaderboard.Validate(); err != nil {
		return fmt.Errorf("leaderboard config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}
	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}
	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}
	return nil
}

func (a *AuthConfig) Validate(env string) error {
	if env == "production" && a.JWTSecret == "dev-secret-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set for production")
	}
	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}
	if a.JWTExpiration <= 0 {
		return fmt.Errorf("JWTExpiration must be positive")
	}
	return nil
}

func (l *LeaderboardConfig) Validate() error {
	if l.Limit <= 0 {
		return fmt.Errorf("Limit must be positive")
	}
	if l.TrendingWindow < 0 {
		return fmt.Errorf("TrendingWindow cannot be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
