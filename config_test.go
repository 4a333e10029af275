package netatmo

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
client_id: cid
client_secret: cs
username: u@example.com
password: secret
scopes:
  - read_station
  - read_thermostat
user_prefix: syncapi/v1
token_file: /tmp/tokens.json
timeout_seconds: 10
`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.ClientID != "cid" || cfg.Username != "u@example.com" {
		t.Errorf("Config = %+v", cfg)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[1] != ScopeReadThermostat {
		t.Errorf("Scopes = %v", cfg.Scopes)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d", cfg.TimeoutSeconds)
	}

	creds := cfg.Credentials()
	if creds.ClientID != "cid" || creds.Password != "secret" {
		t.Errorf("Credentials = %+v", creds)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
client_id: cid
client_secret: cs
refresh_token: rt
`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != ScopeReadStation {
		t.Errorf("Scopes = %v, want default read_station", cfg.Scopes)
	}
	if cfg.TimeoutSeconds != int(DefaultTimeout/time.Second) {
		t.Errorf("TimeoutSeconds = %d", cfg.TimeoutSeconds)
	}
}

func TestParseConfigEnvExpansion(t *testing.T) {
	t.Setenv("NETATMO_TEST_SECRET", "from-env")
	cfg, err := ParseConfig([]byte(`
client_id: cid
client_secret: ${NETATMO_TEST_SECRET}
refresh_token: rt
`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.ClientSecret != "from-env" {
		t.Errorf("ClientSecret = %q, want the expanded env value", cfg.ClientSecret)
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing client id", "client_secret: cs\nrefresh_token: rt\n"},
		{"missing client secret", "client_id: cid\nrefresh_token: rt\n"},
		{"no grant material", "client_id: cid\nclient_secret: cs\n"},
		{"password without username", "client_id: cid\nclient_secret: cs\npassword: p\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.yaml)); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestParseConfigBadYAML(t *testing.T) {
	if _, err := ParseConfig([]byte("client_id: [unclosed")); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "client_id: cid\nclient_secret: cs\nrefresh_token: rt\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.RefreshToken != "rt" {
		t.Errorf("RefreshToken = %q", cfg.RefreshToken)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
