package token

import (
	"context"

	"github.com/aeternalism/issuance/address"
)

// MockMinter is a test double for Minter.
// MintFn must be set before Mint is called.
type MockMinter struct {
	MintFn func(ctx context.Context, minter, to address.Address, amount uint64) error
}

func (m *MockMinter) Mint(ctx context.Context, minter, to address.Address, amount uint64) error {
	return m.MintFn(ctx, minter, to, amount)
}
