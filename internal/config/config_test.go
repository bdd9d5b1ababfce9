package config

import "testing"

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("default port = %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("default env should be development, got %q", cfg.Env)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool defaults = %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.DefaultTenant != "default" {
		t.Errorf("default tenant = %q", cfg.DefaultTenant)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "production")
	t.Setenv("DEFAULT_TENANT", "clinic_01")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("port = %q", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Errorf("env = %q", cfg.Env)
	}
	if cfg.DefaultTenant != "clinic_01" {
		t.Errorf("tenant = %q", cfg.DefaultTenant)
	}
}

func TestValidate_ProductionNeedsAuth(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error without auth configuration")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error with JWT_SECRET set: %v", err)
	}

	cfg = &Config{Env: "production", AuthIssuer: "https://idp.example.com"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error with AUTH_ISSUER set: %v", err)
	}
}

func TestValidate_DevIsPermissive(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("dev mode should not require auth config: %v", err)
	}
}
