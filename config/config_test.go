package config

import (
	"bytes"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "5001" || cfg.Addr() != ":5001" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBDSN != "database.sqlite" {
		t.Fatalf("unexpected db settings: %s %s", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h TTL, got %s", cfg.TokenTTL)
	}
	if !bytes.Equal(cfg.JWTSecret, []byte(DefaultJWTSecret)) {
		t.Fatalf("expected default secret")
	}
	if cfg.AdminUsername != "admin" || cfg.AdminPassword != "123" {
		t.Fatalf("unexpected admin credentials: %s/%s", cfg.AdminUsername, cfg.AdminPassword)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":         "8080",
		"DB_DRIVER":    "Postgres",
		"DB_DSN":       "postgres://localhost/tasks",
		"JWT_SECRET":   "s3cret",
		"TOKEN_TTL":    "90m",
		"CORS_ORIGINS": "https://a.example, https://b.example,",
		"APP_ENV":      "production",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("driver should be lower-cased, got %q", cfg.DBDriver)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("unexpected TTL: %s", cfg.TokenTTL)
	}
	if string(cfg.JWTSecret) != "s3cret" {
		t.Fatalf("unexpected secret: %s", cfg.JWTSecret)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if !cfg.Production() {
		t.Fatalf("expected production mode")
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port":              {"PORT": "http"},
		"driver":            {"DB_DRIVER": "oracle"},
		"ttl":               {"TOKEN_TTL": "forever"},
		"negative ttl":      {"TOKEN_TTL": "-1h"},
		"production secret": {"APP_ENV": "production"},
	}
	for name, env := range cases {
		if _, err := FromEnv(envMap(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
