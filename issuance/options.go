package issuance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/token"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f().
func (f ClockFunc) Now() time.Time { return f() }

// Payout moves held native currency out of the instance.
type Payout interface {
	// Transfer sends amount base units from the instance at `from` to `to`.
	Transfer(ctx context.Context, from, to address.Address, amount uint64) error
}

// PayoutFunc adapts a function to Payout.
type PayoutFunc func(ctx context.Context, from, to address.Address, amount uint64) error

// Transfer calls f(ctx, from, to, amount).
func (f PayoutFunc) Transfer(ctx context.Context, from, to address.Address, amount uint64) error {
	return f(ctx, from, to, amount)
}

// Option configures an Issuance.
type Option func(*Issuance)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(is *Issuance) {
		if logger != nil {
			is.logger = logger
		}
	}
}

// WithClock sets the time source used to validate deadlines and stamp records.
func WithClock(c Clock) Option {
	return func(is *Issuance) {
		if c != nil {
			is.clock = c
		}
	}
}

// WithTokenResolver sets how issuance token addresses map to minters.
func WithTokenResolver(r token.Resolver) Option {
	return func(is *Issuance) {
		is.resolver = r
	}
}

// WithPayout sets the collaborator used by TransferFund.
func WithPayout(p Payout) Option {
	return func(is *Issuance) {
		is.payout = p
	}
}

// WithLedgerScope selects the ledger keying for a new instance. An existing
// instance keeps the scope it was created with; a conflicting option fails New.
func WithLedgerScope(s sale.LedgerScope) Option {
	return func(is *Issuance) {
		is.scope = s
		is.scopeSet = true
	}
}

// WithTreasury sets the destination used by Sweep.
func WithTreasury(addr address.Address) Option {
	return func(is *Issuance) {
		is.treasury = addr
	}
}
