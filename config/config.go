package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Not for production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config holds every setting the server reads from the environment.
type Config struct {
	Port          string
	Env           string
	DBDriver      string
	DBDSN         string
	JWTSecret     []byte
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          get("PORT", "5001"),
		Env:           get("APP_ENV", "development"),
		DBDriver:      strings.ToLower(get("DB_DRIVER", "sqlite")),
		DBDSN:         get("DB_DSN", "database.sqlite"),
		AdminUsername: get("ADMIN_USERNAME", "admin"),
		AdminPassword: get("ADMIN_PASSWORD", "123"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl)
	}
	cfg.TokenTTL = ttl

	secret := getenv("JWT_SECRET")
	if secret == "" {
		if cfg.Production() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		log.Println("JWT_SECRET not set, using the development default")
		secret = DefaultJWTSecret
	}
	cfg.JWTSecret = []byte(secret)

	for _, origin := range strings.Split(get("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
