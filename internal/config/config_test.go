package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pool_api_code: abc123\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url: got %q", cfg.BaseURL)
	}
	if cfg.ScanInterval != DefaultScanIntervalSeconds {
		t.Errorf("scan interval: got %d", cfg.ScanInterval)
	}
	if !cfg.Wait() {
		t.Errorf("wait_for_execution should default to true")
	}
	if cfg.MQTT.Port != DefaultMQTTPort || cfg.MQTT.TopicPrefix != DefaultTopicPrefix {
		t.Errorf("mqtt defaults: %+v", cfg.MQTT)
	}
	if cfg.SettleDelay() != time.Second {
		t.Errorf("settle delay: got %s", cfg.SettleDelay())
	}
	if cfg.CycleAttempts != DefaultCycleAttempts {
		t.Errorf("cycle attempts: got %d", cfg.CycleAttempts)
	}
}

func TestLoadClampsScanInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pool_api_code: abc123\nscan_interval_seconds: 15\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScanInterval != MinScanIntervalSeconds {
		t.Fatalf("expected clamp to %d, got %d", MinScanIntervalSeconds, cfg.ScanInterval)
	}
}

func TestLoadRequiresPoolAPICode(t *testing.T) {
	_, err := Load(writeConfig(t, "base_url: https://example.invalid\n"))
	if err == nil || !strings.Contains(err.Error(), "pool_api_code") {
		t.Fatalf("expected pool_api_code error, got %v", err)
	}
}

func TestValidateRejectsBadScale(t *testing.T) {
	_, err := Load(writeConfig(t, "pool_api_code: abc123\ntemperature_scale: 2\n"))
	if err == nil || !strings.Contains(err.Error(), "temperature_scale") {
		t.Fatalf("expected temperature_scale error, got %v", err)
	}
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
pool_api_code: abc123
base_url: https://pool.example.test
temperature_scale: 1
scan_interval_seconds: 120
wait_for_execution: false
settle_seconds: 1.5
cycle_attempts: 8
http_addr: 127.0.0.1:9090
log_level: debug
mqtt:
  host: broker.local
  port: 8883
  tls: true
  username: gopool
  password: secret
  topic_prefix: pool
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TemperatureScale != 1 || cfg.ScanInterval != 120 || cfg.Wait() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MQTT.Host != "broker.local" || cfg.MQTT.Port != 8883 || !cfg.MQTT.TLS {
		t.Fatalf("unexpected mqtt config: %+v", cfg.MQTT)
	}
	if cfg.SettleDelay() != 1500*time.Millisecond {
		t.Fatalf("settle delay: got %s", cfg.SettleDelay())
	}
}
