package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
bridge:
  address: "192.168.1.10"
  application_key: "test-key"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "127.0.0.1"
  port: 8421
history:
  enabled: true
  retention_days: 7
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.Address != "192.168.1.10" {
		t.Errorf("Bridge.Address = %q, want %q", cfg.Bridge.Address, "192.168.1.10")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("History.RetentionDays = %d, want 7", cfg.History.RetentionDays)
	}

	// Unspecified values keep their defaults
	if cfg.Bridge.MinSWVersion != MinimumSWVersion {
		t.Errorf("Bridge.MinSWVersion = %d, want default %d", cfg.Bridge.MinSWVersion, MinimumSWVersion)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
bridge:
  address: "192.168.1.10"
  application_key: "file-key"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("HUELINK_BRIDGE_ADDRESS", "10.0.0.2")
	t.Setenv("HUELINK_BRIDGE_APPLICATION_KEY", "env-key")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.Address != "10.0.0.2" {
		t.Errorf("Bridge.Address = %q, want env override %q", cfg.Bridge.Address, "10.0.0.2")
	}
	if cfg.Bridge.ApplicationKey != "env-key" {
		t.Errorf("Bridge.ApplicationKey = %q, want env override %q", cfg.Bridge.ApplicationKey, "env-key")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Bridge.Address = "192.168.1.10"
		cfg.Bridge.ApplicationKey = "test-key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing bridge address",
			mutate:  func(c *Config) { c.Bridge.Address = "" },
			wantErr: "bridge.address",
		},
		{
			name:    "missing application key",
			mutate:  func(c *Config) { c.Bridge.ApplicationKey = "" },
			wantErr: "bridge.application_key",
		},
		{
			name:    "zero minimum version",
			mutate:  func(c *Config) { c.Bridge.MinSWVersion = 0 },
			wantErr: "bridge.min_swversion",
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "history enabled without database path",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name: "jwt enabled without secret",
			mutate: func(c *Config) {
				c.Security.JWT.Enabled = true
				c.Security.JWT.Secret = ""
			},
			wantErr: "security.jwt.secret",
		},
		{
			name: "jwt secret too short",
			mutate: func(c *Config) {
				c.Security.JWT.Enabled = true
				c.Security.JWT.Secret = "short"
			},
			wantErr: "32 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DurationGetters(t *testing.T) {
	cfg := &Config{
		Bridge: BridgeConfig{
			HTTPTimeout:      10,
			ResyncRetryDelay: 5,
			StreamRetryDelay: 2,
		},
		History: HistoryConfig{RetentionDays: 30},
	}

	if got := cfg.GetHTTPTimeout(); got != 10*time.Second {
		t.Errorf("GetHTTPTimeout() = %v, want 10s", got)
	}
	if got := cfg.GetResyncRetryDelay(); got != 5*time.Second {
		t.Errorf("GetResyncRetryDelay() = %v, want 5s", got)
	}
	if got := cfg.GetStreamRetryDelay(); got != 2*time.Second {
		t.Errorf("GetStreamRetryDelay() = %v, want 2s", got)
	}
	if got := cfg.GetHistoryRetention(); got != 30*24*time.Hour {
		t.Errorf("GetHistoryRetention() = %v, want 720h", got)
	}
}
