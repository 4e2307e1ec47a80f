// Package store persists issuance state. Every Update is all-or-nothing: if
// the callback returns an error, none of its writes become visible.
package store

import (
	"github.com/aeternalism/issuance/sale"
)

// Store is a transactional container for one issuance instance.
type Store interface {
	// View runs fn against a read-only snapshot.
	View(fn func(Tx) error) error

	// Update runs fn in a read-write transaction that commits only if fn
	// returns nil.
	Update(fn func(Tx) error) error

	// Close releases resources held by the store.
	Close() error
}

// Tx is the set of reads and writes available inside a transaction.
// Values returned by getters are copies; mutate them and Put them back.
type Tx interface {
	// State returns the process-wide record or ErrStateNotFound.
	State() (*sale.State, error)

	// PutState replaces the process-wide record.
	PutState(st *sale.State) error

	// Event returns the config stored under label or ErrEventNotFound.
	Event(label sale.Label) (*sale.Event, error)

	// PutEvent creates or overwrites an event config.
	PutEvent(ev *sale.Event) error

	// Events returns every event config ordered by label.
	Events() ([]*sale.Event, error)

	// Investment returns the ledger entry for key or ErrInvestmentNotFound.
	Investment(key sale.LedgerKey) (*sale.Investment, error)

	// PutInvestment creates or overwrites a ledger entry.
	PutInvestment(inv *sale.Investment) error

	// Investments returns all entries for a label and round ordered by investor.
	Investments(label sale.Label, round uint32) ([]*sale.Investment, error)

	// AppendAudit assigns the next sequence number to rec and stores it.
	AppendAudit(rec *sale.AuditRecord) error

	// Audit returns all audit records in sequence order.
	Audit() ([]*sale.AuditRecord, error)
}
