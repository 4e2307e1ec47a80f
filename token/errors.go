package token

import "errors"

var (
	// ErrNotOwner indicates a privileged token call from a non-owner.
	ErrNotOwner = errors.New("token: caller is not the owner")

	// ErrNotIssuance indicates a mint from an address other than the bound issuance.
	ErrNotIssuance = errors.New("token: caller is not the issuance")

	// ErrZeroAddress indicates a zero address where a real one is required.
	ErrZeroAddress = errors.New("token: zero address")

	// ErrSupplyOverflow indicates a mint would overflow total supply.
	ErrSupplyOverflow = errors.New("token: supply overflow")

	// ErrUnknownToken indicates no token is registered at the address.
	ErrUnknownToken = errors.New("token: unknown token address")

	// ErrDuplicateToken indicates a token is already registered at the address.
	ErrDuplicateToken = errors.New("token: token already registered")
)
