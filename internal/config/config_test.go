package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullYAML = `
server:
  port: 9090

database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  user: kasichat
  password: hunter2
  database: kasichat_prod

auth:
  secret: file-secret
  token_ttl: 12h

listings:
  base_url: http://listings.internal:8000

reconcile:
  schedule: "0 3 * * *"
`

const minimalYAML = `
database:
  driver: sqlite
auth:
  secret: s3cret
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Database.Host = %q, want 10.0.0.5", cfg.Database.Host)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Database.Port = %d, want 3307", cfg.Database.Port)
	}
	if cfg.Database.User != "kasichat" {
		t.Errorf("Database.User = %q, want kasichat", cfg.Database.User)
	}
	if cfg.Database.Database != "kasichat_prod" {
		t.Errorf("Database.Database = %q, want kasichat_prod", cfg.Database.Database)
	}
	if cfg.Auth.Secret != "file-secret" {
		t.Errorf("Auth.Secret = %q, want file-secret", cfg.Auth.Secret)
	}
	if time.Duration(cfg.Auth.TokenTTL) != 12*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 12h", time.Duration(cfg.Auth.TokenTTL))
	}
	if cfg.Listings.BaseURL != "http://listings.internal:8000" {
		t.Errorf("Listings.BaseURL = %q, want http://listings.internal:8000", cfg.Listings.BaseURL)
	}
	if cfg.Reconcile.Schedule != "0 3 * * *" {
		t.Errorf("Reconcile.Schedule = %q, want 0 3 * * *", cfg.Reconcile.Schedule)
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Database.Path != "kasichat.db" {
		t.Errorf("Database.Path = %q, want kasichat.db (default)", cfg.Database.Path)
	}
	if time.Duration(cfg.Auth.TokenTTL) != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h (default)", time.Duration(cfg.Auth.TokenTTL))
	}
	if cfg.Reconcile.Schedule != "*/15 * * * *" {
		t.Errorf("Reconcile.Schedule = %q, want */15 * * * * (default)", cfg.Reconcile.Schedule)
	}
}

func TestParse_MysqlDefaults(t *testing.T) {
	yaml := `
database:
  user: kasichat
auth:
  secret: s3cret
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want mysql (default)", cfg.Database.Driver)
	}
	if cfg.Database.Host != "127.0.0.1" {
		t.Errorf("Database.Host = %q, want 127.0.0.1 (default)", cfg.Database.Host)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, want 3306 (default)", cfg.Database.Port)
	}
	if cfg.Database.Database != "kasichat" {
		t.Errorf("Database.Database = %q, want kasichat (default)", cfg.Database.Database)
	}
}

func TestParse_SecretFromEnv(t *testing.T) {
	t.Setenv("KASICHAT_AUTH_SECRET", "env-secret")
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("Auth.Secret = %q, want env-secret (env overrides file)", cfg.Auth.Secret)
	}
}

func TestParse_MissingSecret(t *testing.T) {
	t.Setenv("KASICHAT_AUTH_SECRET", "")
	yaml := `
database:
  driver: sqlite
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for missing secret")
	}
	if !strings.Contains(err.Error(), "auth.secret is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "auth.secret is required")
	}
}

func TestParse_UnknownDriver(t *testing.T) {
	yaml := `
database:
  driver: postgres
auth:
  secret: s3cret
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "not mysql or sqlite") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "not mysql or sqlite")
	}
}

func TestParse_MysqlRequiresUser(t *testing.T) {
	yaml := `
database:
  driver: mysql
auth:
  secret: s3cret
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for mysql without user")
	}
	if !strings.Contains(err.Error(), "database.user is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "database.user is required")
	}
}

func TestParse_MultipleValidationErrors(t *testing.T) {
	t.Setenv("KASICHAT_AUTH_SECRET", "")
	yaml := `
database:
  driver: oracle
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "not mysql or sqlite") {
		t.Errorf("error missing driver complaint: %s", msg)
	}
	if !strings.Contains(msg, "auth.secret is required") {
		t.Errorf("error missing 'auth.secret is required': %s", msg)
	}
}

func TestParse_BadDuration(t *testing.T) {
	yaml := `
database:
  driver: sqlite
auth:
  secret: s3cret
  token_ttl: soon
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for unparseable duration")
	}
	if !strings.Contains(err.Error(), "parse duration") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "parse duration")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(":::invalid"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}

func TestLoad_FullFixture(t *testing.T) {
	cfg, err := Load("testdata/valid_full.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Database.Host = %q, want 10.0.0.5", cfg.Database.Host)
	}
}

func TestLoad_InvalidYAMLFixture(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}
