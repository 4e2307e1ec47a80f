package issuance

import (
	"fmt"
	"path/filepath"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/config"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
)

// DBFile is the bolt database name inside the data directory.
const DBFile = "issuance.db"

// Open validates cfg and returns an instance persisted in cfg.DataDir.
// Non-empty ISSUANCE_* environment variables override cfg (see
// config.ApplyEnv) before validation. Settings derived from cfg are applied
// first, so opts may override them. Close releases the database and flushes
// the logger.
func Open(cfg config.Config, opts ...Option) (*Issuance, error) {
	config.ApplyEnv(&cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: address is required", config.ErrInvalidAddress)
	}
	self, err := address.Parse(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: address: %w", config.ErrInvalidAddress, err)
	}

	// Both were checked by ValidateConfig.
	var owner, treasury address.Address
	if cfg.Owner != "" {
		owner = address.MustParse(cfg.Owner)
	}
	if cfg.Treasury != "" {
		treasury = address.MustParse(cfg.Treasury)
	}
	scope, _ := sale.ParseLedgerScope(cfg.LedgerScope)

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.OpenBoltStore(filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("issuance: open store: %w", err)
	}

	base := []Option{
		WithLogger(logger),
		WithLedgerScope(scope),
		WithTreasury(treasury),
	}
	is, err := New(s, self, owner, append(base, opts...)...)
	if err != nil {
		_ = s.Close()
		_ = logger.Sync()
		return nil, err
	}
	is.closeFns = append(is.closeFns, func() error {
		_ = logger.Sync()
		return nil
	})
	return is, nil
}
