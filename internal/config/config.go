// Package config loads the broker's static startup configuration:
// listen address, cluster metadata log path, and log level. It is
// read once at startup — there is no live reload.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the broker's full startup configuration.
type Config struct {
	ListenAddr  string `toml:"listen_addr"`
	MetadataLog string `toml:"metadata_log"`
	LogLevel    string `toml:"log_level"`
}

// Default returns the configuration the broker runs with when no file
// and no flags override it.
func Default() *Config {
	return &Config{
		ListenAddr:  "0.0.0.0:9092",
		MetadataLog: "/tmp/kraft-combined-logs/__cluster_metadata-0/00000000000000000000.log",
		LogLevel:    "info",
	}
}

// LoadFile reads a TOML config file and overlays it onto Default. A
// missing field in the file keeps its default value.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", path)
	}
	return cfg, nil
}
