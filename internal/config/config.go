// Package config loads service configuration from the environment, with an
// optional YAML file overriding the defaults.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config defines the message hub configuration.
type Config struct {
	DatabaseURL     string   `yaml:"database_url"`
	HTTPAddr        string   `yaml:"http_addr"`
	JWTSecret       string   `yaml:"jwt_secret"`
	NATSURL         string   `yaml:"nats_url"`
	SenderNumber    string   `yaml:"sender_number"`
	SegmentInterval Duration `yaml:"segment_interval"`
	SegmentBatch    int      `yaml:"segment_batch"`
}

// Load builds the configuration, env first, then the YAML file named by
// EDI_CONFIG when set.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		NATSURL:         os.Getenv("NATS_URL"),
		SenderNumber:    getenvDefault("SENDER_NUMBER", "5790001330552"),
		SegmentInterval: Duration(getenvDuration("SEGMENT_INTERVAL", 30*time.Second)),
		SegmentBatch:    getenvIntDefault("SEGMENT_BATCH", 500),
	}

	if path := os.Getenv("EDI_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: AUTH_JWT_SECRET is required")
	}
	if cfg.SegmentBatch <= 0 {
		cfg.SegmentBatch = 500
	}
	if cfg.SegmentInterval <= 0 {
		cfg.SegmentInterval = Duration(30 * time.Second)
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
