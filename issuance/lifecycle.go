package issuance

import (
	"errors"
	"fmt"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
)

// SetupEvent creates or overwrites the config for label. It is owner-only and
// allowed only while the stage is SETUP. Overwriting starts a new round with
// TotalRaised reset to zero.
func (is *Issuance) SetupEvent(caller address.Address, label sale.Label, p sale.EventParams) (*sale.Event, error) {
	var ev *sale.Event
	err := is.update(sale.OpSetupEvent, caller, func(o *op) error {
		if err := requireOwner(o.state, caller); err != nil {
			return err
		}
		if o.state.Stage != sale.StageSetup {
			return ErrNotAllowed
		}
		if err := label.Validate(); err != nil {
			return err
		}

		prev, err := o.tx.Event(label)
		switch {
		case errors.Is(err, store.ErrEventNotFound):
			prev = nil
		case err != nil:
			return fmt.Errorf("issuance: load event: %w", err)
		}

		ev, err = sale.NewEvent(label, p, prev, o.now)
		if err != nil {
			return err
		}
		if err := o.tx.PutEvent(ev); err != nil {
			return fmt.Errorf("issuance: save event: %w", err)
		}
		o.record.Label = label
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// SetEvent selects label as the current event. From SETUP the stage stays
// SETUP; from OPEN the new event is open immediately (rollover) and the
// previous event's funds stay in the shared balance.
func (is *Issuance) SetEvent(caller address.Address, label sale.Label) error {
	return is.update(sale.OpSetEvent, caller, func(o *op) error {
		if err := requireOwner(o.state, caller); err != nil {
			return err
		}
		if !o.state.Stage.AllowsEventSelection() {
			return ErrNotAllowed
		}
		if _, err := loadEvent(o.tx, label); err != nil {
			return err
		}
		o.state.CurrentEvent = label
		return nil
	})
}

// StartEvent opens the selected event for deposits.
func (is *Issuance) StartEvent(caller address.Address) error {
	return is.transition(sale.OpStartEvent, caller, sale.StageSetup, func(st *sale.State) error {
		if !st.HasEvent() {
			return ErrNoEventSelected
		}
		return nil
	})
}

// CloseEvent stops deposits.
func (is *Issuance) CloseEvent(caller address.Address) error {
	return is.transition(sale.OpCloseEvent, caller, sale.StageOpen, nil)
}

// WithdrawEvent opens settlement.
func (is *Issuance) WithdrawEvent(caller address.Address) error {
	return is.transition(sale.OpWithdrawEvent, caller, sale.StageClose, nil)
}

// ReSetupEvent returns to SETUP so events can be reconfigured.
func (is *Issuance) ReSetupEvent(caller address.Address) error {
	return is.transition(sale.OpReSetupEvent, caller, sale.StageWithdraw, nil)
}

// transition advances the stage from `from` to its successor. check, if set,
// runs after the stage gate.
func (is *Issuance) transition(name string, caller address.Address, from sale.Stage, check func(*sale.State) error) error {
	return is.update(name, caller, func(o *op) error {
		if err := requireOwner(o.state, caller); err != nil {
			return err
		}
		if o.state.Stage != from {
			return ErrTransitionNotFound
		}
		if check != nil {
			if err := check(o.state); err != nil {
				return err
			}
		}
		o.state.Stage = from.Next()
		return nil
	})
}

// TransferOwnership hands the owner role to newOwner.
func (is *Issuance) TransferOwnership(caller, newOwner address.Address) error {
	return is.update(sale.OpTransferOwnership, caller, func(o *op) error {
		if err := requireOwner(o.state, caller); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return ErrNewOwnerZero
		}
		o.state.Owner = newOwner
		o.record.Counterparty = newOwner
		return nil
	})
}
