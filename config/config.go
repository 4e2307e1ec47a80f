// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the YAML configuration of an issuance
// instance and builds its logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of one issuance instance.
type Config struct {
	DataDir  string `yaml:"datadir"`
	Network  string `yaml:"network"`
	LogLevel string `yaml:"loglevel"`
	LogFile  string `yaml:"logfile,omitempty"`

	// Owner is the privileged address used when the instance is first created.
	Owner string `yaml:"owner,omitempty"`
	// Address is the instance's own address.
	Address string `yaml:"address,omitempty"`
	// Treasury receives swept funds.
	Treasury string `yaml:"treasury,omitempty"`

	LedgerScope string `yaml:"ledger_scope"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		Network:     "localhost",
		LogLevel:    "info",
		LedgerScope: "event",
	}
}

// DefaultDataDir returns ~/.issuance, or .issuance in the working directory
// when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".issuance"
	}
	return filepath.Join(home, ".issuance")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig reads the YAML file at path. Keys absent from the file keep
// their DefaultConfig values; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	data = append([]byte("# Issuance configuration\n"), data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvNetwork  = "ISSUANCE_NETWORK"
	EnvOwner    = "ISSUANCE_OWNER"
	EnvAddress  = "ISSUANCE_ADDRESS"
	EnvTreasury = "ISSUANCE_TREASURY"
	EnvLogLevel = "ISSUANCE_LOGLEVEL"
)

// ApplyEnv overrides fields of cfg with any non-empty environment variables.
// issuance.Open calls it on the config it is given.
func ApplyEnv(cfg *Config) {
	for _, o := range []struct {
		env string
		dst *string
	}{
		{EnvNetwork, &cfg.Network},
		{EnvOwner, &cfg.Owner},
		{EnvAddress, &cfg.Address},
		{EnvTreasury, &cfg.Treasury},
		{EnvLogLevel, &cfg.LogLevel},
	} {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}
