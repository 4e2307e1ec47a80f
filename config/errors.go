// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"hardhat\", \"localhost\", \"ropsten\", or \"homestead\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidAddress indicates an owner, instance or treasury address does not parse.
	ErrInvalidAddress = errors.New("config: invalid address")

	// ErrInvalidLedgerScope indicates the ledger scope is neither "event" nor "global".
	ErrInvalidLedgerScope = errors.New("config: invalid ledger scope (must be \"event\" or \"global\")")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfig indicates the configuration file is not valid YAML.
	ErrInvalidConfig = errors.New("config: invalid configuration file")
)
