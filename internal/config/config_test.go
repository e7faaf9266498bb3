package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "postgres://localhost/seedkit_test")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generate.Rows != 10 {
		t.Errorf("expected default rows 10, got %d", cfg.Generate.Rows)
	}
	if cfg.Generate.Seed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.Generate.Seed)
	}
	if cfg.Generate.Format != "sql" {
		t.Errorf("expected default format sql, got %s", cfg.Generate.Format)
	}
	if cfg.Database.URL != "postgres://localhost/seedkit_test" {
		t.Errorf("expected database.url from DATABASE_URL env, got %s", cfg.Database.URL)
	}
}

func TestLoadJSONConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "seedkit.config.json", `{
		"database": {"url": "postgres://localhost/from_json"},
		"generate": {"rows": 25, "format": "csv"},
		"tables": {"users": {"rows": 100}}
	}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/from_json" {
		t.Errorf("expected database.url from config file, got %s", cfg.Database.URL)
	}
	if cfg.Generate.Rows != 25 {
		t.Errorf("expected generate.rows 25, got %d", cfg.Generate.Rows)
	}
	if cfg.RowsFor("users") != 100 {
		t.Errorf("expected tables.users.rows to win over generate.rows, got %d", cfg.RowsFor("users"))
	}
	if cfg.RowsFor("orders") != 25 {
		t.Errorf("expected generate.rows fallback for a table with no override, got %d", cfg.RowsFor("orders"))
	}
}

func TestLoadYAMLConfigFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "seedkit.config.yaml", "database:\n  url: postgres://localhost/from_yaml\ngenerate:\n  rows: 30\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/from_yaml" {
		t.Errorf("expected database.url from yaml fallback, got %s", cfg.Database.URL)
	}
	if cfg.Generate.Rows != 30 {
		t.Errorf("expected generate.rows 30 from yaml, got %d", cfg.Generate.Rows)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "seedkit.config.json", `{"generate": {"rows": 25}}`)
	t.Setenv("SEEDKIT_GENERATE_ROWS", "99")
	t.Setenv("DATABASE_URL", "postgres://localhost/env_wins")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generate.Rows != 99 {
		t.Errorf("expected SEEDKIT_GENERATE_ROWS to override the config file value, got %d", cfg.Generate.Rows)
	}
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "DATABASE_URL=postgres://localhost/from_dotenv\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/from_dotenv" {
		t.Errorf("expected database.url populated from .env file, got %s", cfg.Database.URL)
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{URL: "postgres://x"}, Generate: GenerateConfig{Format: "xml"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unsupported generate.format")
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := &Config{Generate: GenerateConfig{Format: "sql"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when database.url is empty")
	}
}
