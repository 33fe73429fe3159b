package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "SemesterDesk" {
		t.Errorf("App.Name = %q, want SemesterDesk", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "semesterdesk" {
		t.Errorf("Database.Name = %q, want semesterdesk", cfg.Database.Name)
	}
	if cfg.Anthropic.BaseURL != "https://api.anthropic.com" {
		t.Errorf("Anthropic.BaseURL = %q", cfg.Anthropic.BaseURL)
	}
	if cfg.Anthropic.MaxTokens != 2000 {
		t.Errorf("Anthropic.MaxTokens = %d, want 2000", cfg.Anthropic.MaxTokens)
	}
	if cfg.Anthropic.Timeout != 60*time.Second {
		t.Errorf("Anthropic.Timeout = %v, want 60s", cfg.Anthropic.Timeout)
	}
	if cfg.Semester.TimeZone != "America/New_York" {
		t.Errorf("Semester.TimeZone = %q", cfg.Semester.TimeZone)
	}
	if cfg.Digest.Schedule != "0 7 * * MON" {
		t.Errorf("Digest.Schedule = %q", cfg.Digest.Schedule)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DB_NAME", "semesterdesk_test")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEMESTER_TIME_ZONE", "America/Chicago")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Name != "semesterdesk_test" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}
	if cfg.Anthropic.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Anthropic.Model = %q", cfg.Anthropic.Model)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q", cfg.Logger.Level)
	}
	if cfg.Semester.TimeZone != "America/Chicago" {
		t.Errorf("Semester.TimeZone = %q", cfg.Semester.TimeZone)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without ANTHROPIC_API_KEY, want error")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "desk",
		Password: "secret",
		Name:     "semesterdesk",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=desk password=secret dbname=semesterdesk sslmode=require"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
