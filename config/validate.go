// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/sale"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validNetworks maps each accepted network name to its chain ID.
var validNetworks = map[string]uint64{
	"hardhat":   1337,
	"localhost": 1337,
	"ropsten":   3,
	"homestead": 1,
}

// ChainID returns the chain ID of network, or 0 if unknown.
func ChainID(network string) uint64 {
	return validNetworks[network]
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
// Addresses are optional here; when set they must parse.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, ok := validNetworks[cfg.Network]; !ok {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	for _, f := range []struct {
		name, value string
	}{
		{"owner", cfg.Owner},
		{"address", cfg.Address},
		{"treasury", cfg.Treasury},
	} {
		if f.value == "" {
			continue
		}
		if _, err := address.Parse(f.value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidAddress, f.name, err)
		}
	}

	if _, err := sale.ParseLedgerScope(cfg.LedgerScope); err != nil {
		return ErrInvalidLedgerScope
	}

	return nil
}
