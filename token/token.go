// Package token provides the issuance-token side of settlement: the Minter
// capability the ledger calls during withdrawal, a Resolver that binds token
// addresses to minters, and an in-memory mintable token.
package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/amount"
)

// Minter credits newly issued tokens to an account.
type Minter interface {
	// Mint credits amount base units to `to`. minter is the address of the
	// issuance instance requesting the mint.
	Mint(ctx context.Context, minter, to address.Address, amount uint64) error
}

// Resolver binds a token address to the Minter that serves it.
type Resolver interface {
	ResolveToken(ref address.Address) (Minter, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ref address.Address) (Minter, error)

// ResolveToken calls f(ref).
func (f ResolverFunc) ResolveToken(ref address.Address) (Minter, error) { return f(ref) }

// Ledger is an in-memory mintable token. Only the owner may bind the
// issuance instance, and only that instance may mint.
type Ledger struct {
	mu       sync.RWMutex
	addr     address.Address
	owner    address.Address
	issuance address.Address
	name     string
	symbol   string
	supply   uint64
	balances map[address.Address]uint64
}

// Compile-time interface check.
var _ Minter = (*Ledger)(nil)

// NewLedger creates an empty token at addr owned by owner.
func NewLedger(addr, owner address.Address, name, symbol string) *Ledger {
	return &Ledger{
		addr:     addr,
		owner:    owner,
		name:     name,
		symbol:   symbol,
		balances: make(map[address.Address]uint64),
	}
}

// Address returns the token's own address.
func (l *Ledger) Address() address.Address { return l.addr }

// Name returns the token name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// SetIssuance binds the issuance instance allowed to mint.
func (l *Ledger) SetIssuance(caller, issuance address.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrNotOwner
	}
	if issuance.IsZero() {
		return fmt.Errorf("%w: issuance", ErrZeroAddress)
	}
	l.issuance = issuance
	return nil
}

// Issuance returns the bound issuance instance.
func (l *Ledger) Issuance() address.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.issuance
}

// Mint credits amount to `to` if minter is the bound issuance.
func (l *Ledger) Mint(ctx context.Context, minter, to address.Address, amt uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.issuance.IsZero() || minter != l.issuance {
		return ErrNotIssuance
	}
	if to.IsZero() {
		return fmt.Errorf("%w: recipient", ErrZeroAddress)
	}
	supply, err := amount.Add(l.supply, amt)
	if err != nil {
		return ErrSupplyOverflow
	}
	l.supply = supply
	l.balances[to] += amt
	return nil
}

// BalanceOf returns the token balance of a.
func (l *Ledger) BalanceOf(a address.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[a]
}

// TotalSupply returns the total minted amount.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Registry maps token addresses to their minters.
type Registry struct {
	mu     sync.RWMutex
	tokens map[address.Address]Minter
}

// Compile-time interface check.
var _ Resolver = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[address.Address]Minter)}
}

// Register makes m resolvable at ref.
func (r *Registry) Register(ref address.Address, m Minter) error {
	if ref.IsZero() {
		return fmt.Errorf("%w: token", ErrZeroAddress)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[ref]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, ref)
	}
	r.tokens[ref] = m
	return nil
}

// ResolveToken returns the minter registered at ref.
func (r *Registry) ResolveToken(ref address.Address) (Minter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.tokens[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, ref)
	}
	return m, nil
}
