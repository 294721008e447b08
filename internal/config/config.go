package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CaptureConfig holds the settings for the live frame source.
type CaptureConfig struct {
	// Interface is the device to capture on. Empty selects the first
	// device reported by the system.
	Interface string `yaml:"interface"`
}

// SinkConfig holds the settings for the append-only alert log.
type SinkConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig holds the settings for the optional NATS alert publisher.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the settings for the optional ClickHouse alert writer.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIConfig holds the settings for the optional read-only HTTP stats API.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
// Detection thresholds and the suspicious-port set are fixed at compile time
// and deliberately absent here.
type Config struct {
	Capture    CaptureConfig    `yaml:"capture"`
	Sink       SinkConfig       `yaml:"sink"`
	NATS       NATSConfig       `yaml:"nats"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	API        APIConfig        `yaml:"api"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Sink: SinkConfig{Path: "alerts.json"},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if cfg.Sink.Path == "" {
		cfg.Sink.Path = "alerts.json"
	}

	return cfg, nil
}
