package issuance

import (
	"errors"

	"github.com/aeternalism/issuance/sale"
)

// Domain failures. Each unwraps to its sale.Err* kind.
var (
	ErrNotOwner = sale.NewError(sale.ErrAuth, "caller is not the owner")

	ErrNotAllowed         = sale.NewError(sale.ErrStage, "Not allow at this stage")
	ErrTransitionNotFound = sale.NewError(sale.ErrStage, "Transition not found")

	ErrBelowMinimum   = sale.NewError(sale.ErrValidation, "Deposited less than minimum amount")
	ErrAboveMaximum   = sale.NewError(sale.ErrValidation, "Deposited larger than maximum amount")
	ErrGoalReached    = sale.NewError(sale.ErrValidation, "Goal reached, see you next time")
	ErrTransferToZero = sale.NewError(sale.ErrValidation, "Transfer to 0x0 address")
	ErrIssuanceZero   = sale.NewError(sale.ErrValidation, "Issuance is 0x0")
	ErrNewOwnerZero   = sale.NewError(sale.ErrValidation, "new owner is the zero address")

	ErrAlreadyWithdrawn = sale.NewError(sale.ErrState, "Already withdrawn")
	ErrTokenNotSet      = sale.NewError(sale.ErrState, "Issuance token not set")
	ErrNoEventSelected  = sale.NewError(sale.ErrState, "No event selected")
	ErrPayoutNotSet     = sale.NewError(sale.ErrState, "Payout not configured")
)

// Construction failures.
var (
	ErrNilStore      = errors.New("issuance: store is nil")
	ErrZeroSelf      = errors.New("issuance: instance address is zero")
	ErrZeroOwner     = errors.New("issuance: owner is zero")
	ErrSelfMismatch  = errors.New("issuance: instance address does not match stored state")
	ErrOwnerMismatch = errors.New("issuance: owner does not match stored state")
	ErrScopeMismatch = errors.New("issuance: ledger scope does not match stored state")
	ErrNoTreasury    = errors.New("issuance: no treasury configured")
)
