package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/content-platform-api/internal/config"
)

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("Expected 7 day token TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Store != config.StorePostgres {
		t.Errorf("Expected postgres store, got %s", cfg.Store)
	}
}

func TestLoad_FileThenFlags(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: "7000"
  request_timeout: 3s
store: memory
log:
  level: debug
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("port", "8080", "")
	flags.String("log-level", "info", "")
	if err := flags.Parse([]string{"--port", "7100"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := config.Load(path, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "7100" {
		t.Errorf("Expected flag to override port, got %s", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected unchanged flag to keep file value, got %s", cfg.Log.Level)
	}
	if cfg.Server.RequestTimeout != 3*time.Second {
		t.Errorf("Expected 3s request timeout, got %s", cfg.Server.RequestTimeout)
	}
	if cfg.Store != config.StoreMemory {
		t.Errorf("Expected memory store, got %s", cfg.Store)
	}
	if cfg.Database.Port != "5432" {
		t.Errorf("Expected env default db port to survive, got %s", cfg.Database.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "missing secret", mutate: func(c *config.Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "non-positive ttl", mutate: func(c *config.Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
		{name: "unknown store", mutate: func(c *config.Config) { c.Store = "redis" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *config.Config) { c.Database.Host = "" }, wantErr: true},
		{name: "memory without host", mutate: func(c *config.Config) {
			c.Store = config.StoreMemory
			c.Database.Host = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.FromEnv()
			cfg.Auth.JWTSecret = "secret"
			cfg.Store = config.StorePostgres
			cfg.Database.Host = "localhost"
			cfg.Database.Name = "content"
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	db := config.DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}

	want := "host=db port=5433 user=u password=p dbname=n sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
