package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.ShutdownGrace.Duration() != 10*time.Second {
		t.Errorf("ShutdownGrace = %s, want 10s", cfg.ShutdownGrace.Duration())
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
port: 9100
allowed_origins:
  - https://app.example.com
  - https://admin.example.com
shutdown_grace: 30s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.ShutdownGrace.Duration() != 30*time.Second {
		t.Errorf("ShutdownGrace = %s, want 30s", cfg.ShutdownGrace.Duration())
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", `port: [`, "failed to parse YAML"},
		{"port too large", `port: 99999`, "port must be"},
		{"negative port", `port: -1`, "port must be"},
		{"bad duration", `shutdown_grace: soon`, "invalid duration"},
		{"empty origin", "allowed_origins:\n  - \"\"", "origin cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uplink.yaml")
	if err := os.WriteFile(path, []byte("port: 8443\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8443 {
		t.Errorf("Port = %d, want 8443", cfg.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("UPLINK_USER_JWT_SECRET", "us")
	t.Setenv("UPLINK_CONTRIBUTOR_JWT_SECRET", "")
	t.Setenv("UPLINK_OPERATOR_JWT_SECRET", "os")

	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets() error = %v", err)
	}

	if s.UserJWTSecret != "us" || s.OperatorJWTSecret != "os" {
		t.Errorf("Secrets = %+v", s)
	}
	if s.ConfiguredDomains() != 2 {
		t.Errorf("ConfiguredDomains() = %d, want 2", s.ConfiguredDomains())
	}
}

func TestLoadSecrets_NoneConfigured(t *testing.T) {
	t.Setenv("UPLINK_USER_JWT_SECRET", "")
	t.Setenv("UPLINK_CONTRIBUTOR_JWT_SECRET", "")
	t.Setenv("UPLINK_OPERATOR_JWT_SECRET", "")

	_, err := LoadSecrets()
	if err == nil {
		t.Fatal("LoadSecrets() error = nil, want error when no secret is set")
	}
}
