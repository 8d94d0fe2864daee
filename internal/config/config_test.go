package config

import (
	"testing"
	"time"
)

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("PGPC_API_URL", "")
	t.Setenv("PGPC_API_TIMEOUT", "")
	t.Setenv("PGPC_PASSWORD_MIN_LENGTH", "")
	t.Setenv("PGPC_TOAST_DELAY_MS", "")

	cfg := LoadClient()
	if cfg.APIBaseURL != DefaultAPIURL {
		t.Errorf("Expected default API URL, got %q", cfg.APIBaseURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %s", cfg.Timeout)
	}
	if cfg.PasswordMinLength != DefaultPasswordMinLength {
		t.Errorf("Expected min length %d, got %d", DefaultPasswordMinLength, cfg.PasswordMinLength)
	}
	if cfg.ToastDelay != 4*time.Second {
		t.Errorf("Expected 4s toast delay, got %s", cfg.ToastDelay)
	}
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("PGPC_API_URL", "http://localhost:8080/api/")
	t.Setenv("PGPC_API_TIMEOUT", "3")
	t.Setenv("PGPC_PASSWORD_MIN_LENGTH", "8")
	t.Setenv("PGPC_STATE_DIR", "/tmp/pgpc")

	cfg := LoadClient()
	if cfg.APIBaseURL != "http://localhost:8080/api/" {
		t.Errorf("Unexpected API URL %q", cfg.APIBaseURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Expected 3s timeout, got %s", cfg.Timeout)
	}
	if cfg.PasswordMinLength != 8 {
		t.Errorf("Expected min length 8, got %d", cfg.PasswordMinLength)
	}
	if cfg.StateDir != "/tmp/pgpc" {
		t.Errorf("Unexpected state dir %q", cfg.StateDir)
	}
}

func TestLoadServerInvalidValues(t *testing.T) {
	t.Setenv("JWT_TTL", "nope")
	t.Setenv("PGPC_PASSWORD_MIN_LENGTH", "-4")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("ENV", "production")

	cfg := LoadServer()
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("Invalid JWT_TTL should keep default, got %s", cfg.JWTTTL)
	}
	if cfg.StoreDriver != "mysql" {
		t.Errorf("Expected lowercased driver, got %q", cfg.StoreDriver)
	}
	if !cfg.IsProduction() {
		t.Error("Expected production env")
	}
	if getIntEnv("PGPC_PASSWORD_MIN_LENGTH", 12) != 12 {
		t.Error("Negative ints should fall back to default")
	}
}

func TestServerValidate(t *testing.T) {
	cfg := Server{Env: "development", StoreDriver: "memory"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(cfg.JWTSecret) < MinJWTSecretLength {
		t.Errorf("Expected dev secret, got %q", cfg.JWTSecret)
	}

	prod := Server{Env: "production", StoreDriver: "memory"}
	if err := prod.Validate(); err == nil {
		t.Error("Expected error for missing secret in production")
	}

	short := Server{Env: "development", StoreDriver: "memory", JWTSecret: "corto"}
	if err := short.Validate(); err == nil {
		t.Error("Expected error for short secret")
	}

	driver := Server{Env: "development", StoreDriver: "postgres"}
	if err := driver.Validate(); err == nil {
		t.Error("Expected error for unknown driver")
	}
}
