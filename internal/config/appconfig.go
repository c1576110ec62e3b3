// Package config loads gamayun's process-wide application configuration:
// document-store connection, listen addresses, tracing, and the optional
// email notification sink.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/gamayun-daemon/gamayun/internal/env"
	"github.com/gamayun-daemon/gamayun/internal/notify"
)

// Defaults for optional AppConfig fields.
const (
	DefaultMongoDBName = "gamayun"
	DefaultGRPCAddr    = "[::1]:16656"
	DefaultHTTPHost    = "0.0.0.0"
	DefaultHTTPPort    = "8080"
)

// AppConfig is gamayun's process-wide configuration. Required fields are
// enforced by Validate: ConfigurationRoot and MongoURI must be set by
// either the TOML file or the environment by the time Load returns.
type AppConfig struct {
	ConfigurationRoot  string             `toml:"configuration_root" env:"GAMAYUN_CONFIGURATION_ROOT"`
	MongoURI           string             `toml:"mongo_uri" env:"MONGO_URI"`
	MongoDBName        string             `toml:"mongo_db_name" env:"GAMAYUN_MONGO_DB_NAME"`
	GRPCAddr           string             `toml:"grpc_addr" env:"GAMAYUN_GRPC_ADDR"`
	HTTPHost           string             `toml:"http_host" env:"GAMAYUN_HTTP_HOST"`
	HTTPPort           string             `toml:"http_port" env:"GAMAYUN_HTTP_PORT"`
	OTelTracesEndpoint string             `toml:"otel_traces_endpoint" env:"OTEL_TRACES_ENDPOINT"`
	SendGrid           notify.EmailConfig `toml:"sendgrid_config"`
}

func (c *AppConfig) applyDefaults() {
	if c.MongoDBName == "" {
		c.MongoDBName = DefaultMongoDBName
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = DefaultGRPCAddr
	}
	if c.HTTPHost == "" {
		c.HTTPHost = DefaultHTTPHost
	}
	if c.HTTPPort == "" {
		c.HTTPPort = DefaultHTTPPort
	}
}

// Validate implements env.Validator.
func (c *AppConfig) Validate() error {
	if c.ConfigurationRoot == "" {
		return fmt.Errorf("GAMAYUN_CONFIGURATION_ROOT is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	return nil
}

// Load builds an AppConfig: defaults, then an optional TOML file at path
// (skipped entirely when path is empty), then environment variables — the
// environment always wins over the file.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	cfg.applyDefaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parsing app config %s: %w", path, err)
		}
	}

	if err := env.Load(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("loading app config from environment: %w", err)
	}

	return cfg, nil
}
