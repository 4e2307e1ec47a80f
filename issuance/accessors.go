package issuance

import (
	"fmt"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
)

// State returns a copy of the process-wide record.
func (is *Issuance) State() (*sale.State, error) {
	var out *sale.State
	err := is.view(func(_ store.Tx, st *sale.State) error {
		out = st
		return nil
	})
	return out, err
}

// CurrentEvent returns the selected label, or "" if none.
func (is *Issuance) CurrentEvent() (sale.Label, error) {
	st, err := is.State()
	if err != nil {
		return "", err
	}
	return st.CurrentEvent, nil
}

// CurrentStage returns the lifecycle stage.
func (is *Issuance) CurrentStage() (sale.Stage, error) {
	st, err := is.State()
	if err != nil {
		return 0, err
	}
	return st.Stage, nil
}

// Owner returns the privileged address.
func (is *Issuance) Owner() (address.Address, error) {
	st, err := is.State()
	if err != nil {
		return address.Zero, err
	}
	return st.Owner, nil
}

// IssuanceToken returns the bound token address, zero if unset.
func (is *Issuance) IssuanceToken() (address.Address, error) {
	st, err := is.State()
	if err != nil {
		return address.Zero, err
	}
	return st.IssuanceToken, nil
}

// Balance returns the held native currency.
func (is *Issuance) Balance() (uint64, error) {
	st, err := is.State()
	if err != nil {
		return 0, err
	}
	return st.Balance, nil
}

// Event returns the config for label or sale.ErrEventNotFound.
func (is *Issuance) Event(label sale.Label) (*sale.Event, error) {
	var ev *sale.Event
	err := is.view(func(tx store.Tx, _ *sale.State) error {
		var err error
		ev, err = loadEvent(tx, label)
		return err
	})
	return ev, err
}

// Events lists every configured event ordered by label.
func (is *Issuance) Events() ([]*sale.Event, error) {
	var out []*sale.Event
	err := is.view(func(tx store.Tx, _ *sale.State) error {
		var err error
		out, err = tx.Events()
		if err != nil {
			return fmt.Errorf("issuance: list events: %w", err)
		}
		return nil
	})
	return out, err
}

// Investment returns investor's entry for the current event. An investor
// who never deposited gets a zero entry. With no event selected the per-event
// ledger has nothing to show and a zero entry is returned.
func (is *Issuance) Investment(investor address.Address) (*sale.Investment, error) {
	var inv *sale.Investment
	err := is.view(func(tx store.Tx, st *sale.State) error {
		ev, err := selectedEvent(tx, st)
		if err != nil {
			return err
		}
		if ev == nil && is.scope == sale.LedgerPerEvent {
			inv = &sale.Investment{Key: sale.LedgerKey{Investor: investor}}
			return nil
		}
		inv, err = loadInvestment(tx, is.scope.Key(ev, investor))
		return err
	})
	return inv, err
}

// Deposit returns investor's cumulative deposit for the current event.
func (is *Issuance) Deposit(investor address.Address) (uint64, error) {
	inv, err := is.Investment(investor)
	if err != nil {
		return 0, err
	}
	return inv.Deposited, nil
}

// Investments lists the ledger entries of the current event, or of the
// global ledger under LedgerGlobal.
func (is *Issuance) Investments() ([]*sale.Investment, error) {
	var out []*sale.Investment
	err := is.view(func(tx store.Tx, st *sale.State) error {
		ev, err := selectedEvent(tx, st)
		if err != nil {
			return err
		}
		if ev == nil && is.scope == sale.LedgerPerEvent {
			return nil
		}
		out, err = is.investmentsFor(tx, ev)
		if err != nil {
			return fmt.Errorf("issuance: list investments: %w", err)
		}
		return nil
	})
	return out, err
}

// History returns the audit trail in commit order.
func (is *Issuance) History() ([]*sale.AuditRecord, error) {
	var out []*sale.AuditRecord
	err := is.view(func(tx store.Tx, _ *sale.State) error {
		var err error
		out, err = tx.Audit()
		if err != nil {
			return fmt.Errorf("issuance: read audit: %w", err)
		}
		return nil
	})
	return out, err
}

// selectedEvent is currentEvent that reports "no selection" as nil.
func selectedEvent(tx store.Tx, st *sale.State) (*sale.Event, error) {
	if !st.HasEvent() {
		return nil, nil
	}
	return loadEvent(tx, st.CurrentEvent)
}
