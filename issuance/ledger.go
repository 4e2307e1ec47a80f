package issuance

import (
	"context"
	"fmt"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/amount"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
	"github.com/aeternalism/issuance/token"
)

// Invest records a deposit of amt base units by caller into the open event.
// Bounds apply to the single deposit; the goal applies to the event total.
// The funds are held by the instance.
func (is *Issuance) Invest(caller address.Address, amt uint64) (*sale.Investment, error) {
	var inv *sale.Investment
	err := is.update(sale.OpInvest, caller, func(o *op) error {
		if o.state.Stage != sale.StageOpen {
			return ErrNotAllowed
		}
		ev, err := currentEvent(o.tx, o.state)
		if err != nil {
			return err
		}

		if amt < ev.MinDeposit {
			return ErrBelowMinimum
		}
		if amt > ev.MaxDeposit {
			return ErrAboveMaximum
		}
		raised, err := amount.Add(ev.TotalRaised, amt)
		if err != nil {
			return sale.ErrAmountOverflow
		}
		if raised > ev.FundGoal {
			return ErrGoalReached
		}

		inv, err = loadInvestment(o.tx, is.scope.Key(ev, caller))
		if err != nil {
			return err
		}
		// A settled entry would never be paid out again.
		if inv.Withdrawn {
			return ErrAlreadyWithdrawn
		}
		deposited, err := amount.Add(inv.Deposited, amt)
		if err != nil {
			return sale.ErrAmountOverflow
		}
		balance, err := amount.Add(o.state.Balance, amt)
		if err != nil {
			return sale.ErrAmountOverflow
		}

		ev.TotalRaised = raised
		inv.Deposited = deposited
		o.state.Balance = balance

		if err := o.tx.PutEvent(ev); err != nil {
			return fmt.Errorf("issuance: save event: %w", err)
		}
		if err := o.tx.PutInvestment(inv); err != nil {
			return fmt.Errorf("issuance: save investment: %w", err)
		}
		o.record.Amount = amt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Withdraw settles caller's entry for the current event: it mints
// deposited × IssuancePrice tokens to caller and marks the entry withdrawn.
// Native currency is never returned. A caller without an entry settles a
// zero credit.
func (is *Issuance) Withdraw(ctx context.Context, caller address.Address) (*sale.Investment, error) {
	var inv *sale.Investment
	err := is.update(sale.OpWithdraw, caller, func(o *op) error {
		if o.state.Stage != sale.StageWithdraw {
			return ErrNotAllowed
		}
		ev, err := currentEvent(o.tx, o.state)
		if err != nil {
			return err
		}
		inv, err = loadInvestment(o.tx, is.scope.Key(ev, caller))
		if err != nil {
			return err
		}
		if inv.Withdrawn {
			return ErrAlreadyWithdrawn
		}
		tokenRef := o.state.IssuanceToken
		if tokenRef.IsZero() {
			return ErrTokenNotSet
		}

		credit, err := amount.Mul(inv.Deposited, ev.IssuancePrice)
		if err != nil {
			return sale.ErrAmountOverflow
		}
		inv.Withdrawn = true
		inv.Credited = credit
		if err := o.tx.PutInvestment(inv); err != nil {
			return fmt.Errorf("issuance: save investment: %w", err)
		}
		o.record.Amount = credit
		o.record.Counterparty = tokenRef

		if credit == 0 {
			return nil
		}
		self := o.state.Self
		o.effect = func() error {
			if is.resolver == nil {
				return fmt.Errorf("issuance: resolve token %s: %w", tokenRef, token.ErrUnknownToken)
			}
			minter, err := is.resolver.ResolveToken(tokenRef)
			if err != nil {
				return fmt.Errorf("issuance: resolve token %s: %w", tokenRef, err)
			}
			if err := minter.Mint(ctx, self, caller, credit); err != nil {
				return fmt.Errorf("issuance: mint: %w", err)
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// TransferFund sends the whole held balance to destination through the
// payout collaborator and returns the amount sent. It is owner-only and not
// restricted by stage. A zero balance succeeds without a payout.
func (is *Issuance) TransferFund(ctx context.Context, caller, destination address.Address) (uint64, error) {
	var sent uint64
	err := is.update(sale.OpTransferFund, caller, func(o *op) error {
		if err := requireOwner(o.state, caller); err != nil {
			return err
		}
		if destination.IsZero() {
			return ErrTransferToZero
		}

		sent = o.state.Balance
		o.record.Amount = sent
		o.record.Counterparty = destination
		if sent == 0 {
			return nil
		}
		if is.payout == nil {
			return ErrPayoutNotSet
		}
		o.state.Balance = 0

		self := o.state.Self
		o.effect = func() error {
			if err := is.payout.Transfer(ctx, self, destination, sent); err != nil {
				return fmt.Errorf("issuance: payout: %w", err)
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sent, nil
}

// Sweep transfers the held balance to the configured treasury.
func (is *Issuance) Sweep(ctx context.Context, caller address.Address) (uint64, error) {
	if is.treasury.IsZero() {
		return 0, ErrNoTreasury
	}
	return is.TransferFund(ctx, caller, is.treasury)
}

// SetIssuanceToken binds the token minted on withdrawal. Any non-zero ref
// is accepted; it is resolved on each Withdraw. Not restricted by stage.
func (is *Issuance) SetIssuanceToken(caller, ref address.Address) error {
	return is.update(sale.OpSetIssuanceToken, caller, func(o *op) error {
		if err := requireOwner(o.state, caller); err != nil {
			return err
		}
		if ref.IsZero() {
			return ErrIssuanceZero
		}
		o.state.IssuanceToken = ref
		o.record.Counterparty = ref
		return nil
	})
}

// investmentsFor lists the ledger entries visible under ev.
func (is *Issuance) investmentsFor(tx store.Tx, ev *sale.Event) ([]*sale.Investment, error) {
	if is.scope == sale.LedgerGlobal || ev == nil {
		return tx.Investments("", 0)
	}
	return tx.Investments(ev.Label, ev.Round)
}
