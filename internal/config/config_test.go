package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("SMTP_USERNAME", "sender@example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr: got %q", cfg.ListenAddr)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("StoreDriver: got %q", cfg.StoreDriver)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("RateLimitWindow: got %v", cfg.RateLimitWindow)
	}
	if cfg.RateLimitPerIP != 3 || cfg.RateLimitPerEmail != 2 {
		t.Errorf("rate limits: got ip=%d email=%d", cfg.RateLimitPerIP, cfg.RateLimitPerEmail)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL: got %v", cfg.TokenTTL)
	}
	if cfg.MailMaxAttempts != 3 {
		t.Errorf("MailMaxAttempts: got %d", cfg.MailMaxAttempts)
	}
	if cfg.SMTP.From != "sender@example.com" {
		t.Errorf("SMTP.From should fall back to SMTP_USERNAME, got %q", cfg.SMTP.From)
	}
}

func TestLoad_OwnerEmailRequired(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "")
	os.Unsetenv("OWNER_EMAIL")
	t.Setenv("MAIL_FROM", "sender@example.com")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error when OWNER_EMAIL is missing")
	}
}

func TestLoad_FromDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := strings.Join([]string{
		"OWNER_EMAIL=coach@example.com",
		"MAIL_FROM=noreply@example.com",
		"RATE_LIMIT_PER_IP=5",
		"TOKEN_TTL=2h",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"OWNER_EMAIL", "MAIL_FROM", "RATE_LIMIT_PER_IP", "TOKEN_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OwnerEmail != "coach@example.com" {
		t.Errorf("OwnerEmail: got %q", cfg.OwnerEmail)
	}
	if cfg.RateLimitPerIP != 5 {
		t.Errorf("RateLimitPerIP: got %d", cfg.RateLimitPerIP)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL: got %v", cfg.TokenTTL)
	}
}

func TestLoad_InvalidAttempts(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("MAIL_FROM", "sender@example.com")
	t.Setenv("MAIL_MAX_ATTEMPTS", "0")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for MAIL_MAX_ATTEMPTS=0")
	}
}
