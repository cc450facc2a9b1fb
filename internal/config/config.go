// Package config loads and validates the gopoold YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "/etc/gopool/config.yaml"

	DefaultBaseURL = "https://www.connectmypool.com.au"

	// The cloud throttles reads to roughly one per minute, so polling
	// faster than this only burns the fast-poll budget.
	MinScanIntervalSeconds     = 60
	DefaultScanIntervalSeconds = 60

	DefaultHTTPAddr      = "0.0.0.0:8080"
	DefaultMQTTPort      = 1883
	DefaultTopicPrefix   = "gopool"
	DefaultSettleSeconds = 1.0
	DefaultCycleAttempts = 6
)

// Config is the full daemon configuration.
type Config struct {
	PoolAPICode      string  `yaml:"pool_api_code"`
	BaseURL          string  `yaml:"base_url"`
	TemperatureScale int     `yaml:"temperature_scale"`
	ScanInterval     int     `yaml:"scan_interval_seconds"`
	WaitForExecution *bool   `yaml:"wait_for_execution"`
	SettleSeconds    float64 `yaml:"settle_seconds"`
	CycleAttempts    int     `yaml:"cycle_attempts"`

	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig describes the broker connection. An empty host disables the
// bridge; the daemon still polls and serves metrics.
type MQTTConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	TLS         bool   `yaml:"tls"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// Load parses the YAML config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = DefaultScanIntervalSeconds
	}
	if cfg.ScanInterval < MinScanIntervalSeconds {
		cfg.ScanInterval = MinScanIntervalSeconds
	}
	if cfg.WaitForExecution == nil {
		// Waiting avoids optimistic UI flips when the controller is slow.
		wait := true
		cfg.WaitForExecution = &wait
	}
	if cfg.SettleSeconds <= 0 {
		cfg.SettleSeconds = DefaultSettleSeconds
	}
	if cfg.CycleAttempts <= 0 {
		cfg.CycleAttempts = DefaultCycleAttempts
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.MQTT.Port == 0 {
		cfg.MQTT.Port = DefaultMQTTPort
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}
}

// Validate enforces required invariants beyond YAML typing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if strings.TrimSpace(cfg.PoolAPICode) == "" {
		return fmt.Errorf("pool_api_code is required")
	}
	if cfg.TemperatureScale != 0 && cfg.TemperatureScale != 1 {
		return fmt.Errorf("temperature_scale must be 0 (celsius) or 1 (fahrenheit)")
	}
	if cfg.ScanInterval < MinScanIntervalSeconds {
		return fmt.Errorf("scan_interval_seconds must be at least %d", MinScanIntervalSeconds)
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL")
	}
	return nil
}

// ScanIntervalDuration returns the poll interval as a duration.
func (c *Config) ScanIntervalDuration() time.Duration {
	return time.Duration(c.ScanInterval) * time.Second
}

// SettleDelay returns the post-action settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleSeconds * float64(time.Second))
}

// Wait reports the wait_for_execution setting with its default applied.
func (c *Config) Wait() bool {
	return c.WaitForExecution == nil || *c.WaitForExecution
}
