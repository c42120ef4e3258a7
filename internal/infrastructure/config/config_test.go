package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
service:
  id: "test-mdm"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8000
commands:
  reboot_delay_seconds: 2
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

	if cfg.Service.ID != "test-mdm" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-mdm")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.Commands.RebootDelaySeconds != 2 {
		t.Errorf("Commands.RebootDelaySeconds = %d, want 2", cfg.Commands.RebootDelaySeconds)
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

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
database:
  path: ""
api:
  port: 8000
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty database.path, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 8000},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			config: &Config{
				Database: DatabaseConfig{Path: ""},
				API:      APIConfig{Port: 8000},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "negative reboot delay",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 8000},
				Commands: CommandsConfig{RebootDelaySeconds: -1},
			},
			wantErr: true,
		},
		{
			name: "mqtt enabled without host",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 8000},
				MQTT:     MQTTConfig{Enabled: true, QoS: 1},
			},
			wantErr: true,
		},
		{
			name: "mqtt enabled with invalid qos",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 8000},
				MQTT: MQTTConfig{
					Enabled: true,
					Broker:  MQTTBrokerConfig{Host: "localhost"},
					QoS:     3,
				},
			},
			wantErr: true,
		},
		{
			name: "mqtt disabled skips mqtt validation",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 8000},
				MQTT:     MQTTConfig{Enabled: false, QoS: 9},
			},
			wantErr: false,
		},
		{
			name: "influxdb enabled without url",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/mdm.db"},
				API:      APIConfig{Port: 8000},
				InfluxDB: InfluxDBConfig{Enabled: true, Bucket: "events"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestConfig_GetRebootDelay(t *testing.T) {
	cfg := &Config{Commands: CommandsConfig{RebootDelaySeconds: 5}}

	if got := cfg.GetRebootDelay(); got != 5*time.Second {
		t.Errorf("GetRebootDelay() = %v, want 5s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("MDM_DATABASE_PATH", "/custom/path.db")
	t.Setenv("MDM_API_HOST", "192.168.1.1")
	t.Setenv("MDM_API_PORT", "9000")
	t.Setenv("MDM_MQTT_HOST", "mqtt.example.com")
	t.Setenv("MDM_MQTT_USERNAME", "testuser")
	t.Setenv("MDM_MQTT_PASSWORD", "testpass")
	t.Setenv("MDM_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Service.ID == "" {
		t.Error("defaultConfig should have non-empty Service.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.API.Port != 8000 {
		t.Errorf("defaultConfig API.Port = %d, want 8000", cfg.API.Port)
	}

	if cfg.Commands.RebootDelaySeconds != 5 {
		t.Errorf("defaultConfig Commands.RebootDelaySeconds = %d, want 5", cfg.Commands.RebootDelaySeconds)
	}
}
