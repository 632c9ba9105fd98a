/*
config.go - Serve-mode configuration

PURPOSE:
  Loads the YAML configuration for the long-running ingestion server. The
  one-shot `process` command needs nothing beyond flags; `serve` wires
  HTTP and optionally Kafka, and those settings live here.

PRECEDENCE:
  defaults < config.yaml < environment

  Environment variables (PORT, REPORT_DB, KAFKA_BROKERS, KAFKA_TOPIC,
  KAFKA_GROUP_ID) override file values, so a .env file or container
  environment wins without editing YAML.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Port for the HTTP ingestion listener.
	Port int `yaml:"port"`

	// Buffer is the ingestion channel depth.
	Buffer int `yaml:"buffer"`

	// ReportDB, when set, receives the final snapshot as a SQLite export.
	ReportDB string `yaml:"report_db"`

	Kafka Kafka `yaml:"kafka"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Port:   8080,
		Buffer: 256,
		Kafka: Kafka{
			Topic:   "transactions",
			GroupID: "transaction-system",
		},
	}
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Buffer < 0 {
		cfg.Buffer = 0
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("REPORT_DB"); v != "" {
		cfg.ReportDB = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Enabled = true
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.Kafka.GroupID = v
	}
}
