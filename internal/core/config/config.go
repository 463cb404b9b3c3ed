package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppHost        string        `mapstructure:"APP_HOST"`
	GraphQLURL     string        `mapstructure:"GRAPHQL_URL"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSOrigins    []string      `mapstructure:"-"`
	MigrationsDir  string        `mapstructure:"MIGRATIONS_DIR"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LoginLimit     int           `mapstructure:"LOGIN_RATE_LIMIT"`
	LoginWindow    time.Duration `mapstructure:"LOGIN_RATE_WINDOW"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
}

var keys = []string{
	"APP_HOST", "GRAPHQL_URL", "DATABASE_URL", "REDIS_ADDR", "REDIS_DB",
	"JWT_SECRET", "SESSION_TTL", "REQUEST_TIMEOUT", "CORS_ORIGINS",
	"MIGRATIONS_DIR", "LOG_LEVEL", "LOGIN_RATE_LIMIT", "LOGIN_RATE_WINDOW",
	"IDEMPOTENCY_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "localhost:8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", 12*time.Hour)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)
}

// Load reads .env without overriding the process environment, then binds
// every key through viper.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return &cfg, nil
}

// Validate checks what the HTTP server cannot start without. DATABASE_URL and
// REDIS_ADDR stay optional.
func (c *Config) Validate() error {
	if c.GraphQLURL == "" {
		return fmt.Errorf("GRAPHQL_URL is required")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
