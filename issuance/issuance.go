// Package issuance implements the stage machine and investment ledger of a
// staged token sale. An owner configures named sale events, opens one at a
// time for deposits, closes it and opens withdrawal, during which investors
// settle their deposits into issuance-token credits.
//
// Every public method runs under one mutex and one store transaction, so
// calls are totally ordered. A call rejected by a check or by its mint or
// payout collaborator leaves no trace. The collaborator runs before the
// store commits, so if the commit itself fails after a successful mint or
// payout, the external effect stays applied and a retry repeats it.
package issuance

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
	"github.com/aeternalism/issuance/token"
)

// Issuance is one sale instance bound to a store.
type Issuance struct {
	mu sync.Mutex

	store    store.Store
	self     address.Address
	logger   *zap.Logger
	clock    Clock
	resolver token.Resolver
	payout   Payout
	treasury address.Address
	scope    sale.LedgerScope
	scopeSet bool

	// closeFns run on Close after the store is closed.
	closeFns []func() error
}

// New binds an instance at self to s. When s holds no state yet it is
// initialised with owner, stage SETUP and no event selected. When state
// exists, self must match it and owner must either be zero or match it.
func New(s store.Store, self, owner address.Address, opts ...Option) (*Issuance, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if self.IsZero() {
		return nil, ErrZeroSelf
	}

	is := &Issuance{
		store:  s,
		self:   self,
		logger: zap.NewNop(),
		clock:  systemClock{},
		scope:  sale.LedgerPerEvent,
	}
	for _, opt := range opts {
		opt(is)
	}

	created := false
	err := s.Update(func(tx store.Tx) error {
		st, err := tx.State()
		if errors.Is(err, store.ErrStateNotFound) {
			if owner.IsZero() {
				return ErrZeroOwner
			}
			created = true
			return tx.PutState(&sale.State{
				Owner: owner,
				Self:  self,
				Stage: sale.StageSetup,
				Scope: is.scope,
			})
		}
		if err != nil {
			return fmt.Errorf("issuance: load state: %w", err)
		}

		if st.Self != self {
			return fmt.Errorf("%w: stored %s", ErrSelfMismatch, st.Self)
		}
		if !owner.IsZero() && st.Owner != owner {
			return fmt.Errorf("%w: stored %s", ErrOwnerMismatch, st.Owner)
		}
		if is.scopeSet && st.Scope != is.scope {
			return fmt.Errorf("%w: stored %s", ErrScopeMismatch, st.Scope)
		}
		is.scope = st.Scope
		return nil
	})
	if err != nil {
		return nil, err
	}

	is.logger.Info("issuance ready",
		zap.Stringer("self", self),
		zap.Stringer("scope", is.scope),
		zap.Bool("created", created),
	)
	return is, nil
}

// Self returns the instance's own address, the identity it mints under.
func (is *Issuance) Self() address.Address { return is.self }

// Scope returns the ledger scope in effect.
func (is *Issuance) Scope() sale.LedgerScope { return is.scope }

// Close closes the underlying store.
func (is *Issuance) Close() error {
	is.mu.Lock()
	defer is.mu.Unlock()

	err := is.store.Close()
	for _, fn := range is.closeFns {
		if cerr := fn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	is.closeFns = nil
	return err
}

// ---------------------------------------------------------------------------
// Transaction plumbing
// ---------------------------------------------------------------------------

// op is the working set of one state-changing call.
type op struct {
	tx     store.Tx
	state  *sale.State
	record *sale.AuditRecord
	now    time.Time

	// effect is the external collaborator call. It runs after every store
	// write, inside the transaction, so its failure discards them.
	effect func() error
}

// update runs fn as one audited, all-or-nothing operation.
func (is *Issuance) update(name string, caller address.Address, fn func(o *op) error) error {
	is.mu.Lock()
	defer is.mu.Unlock()

	now := is.clock.Now()
	rec := sale.NewAuditRecord(name, caller, now)

	err := is.store.Update(func(tx store.Tx) error {
		st, err := tx.State()
		if err != nil {
			return fmt.Errorf("issuance: load state: %w", err)
		}
		rec.StageBefore = st.Stage

		o := &op{tx: tx, state: st, record: rec, now: now}
		if err := fn(o); err != nil {
			return err
		}

		rec.StageAfter = st.Stage
		if rec.Label == "" {
			rec.Label = st.CurrentEvent
		}
		if err := tx.PutState(st); err != nil {
			return fmt.Errorf("issuance: save state: %w", err)
		}
		if err := tx.AppendAudit(rec); err != nil {
			return fmt.Errorf("issuance: append audit: %w", err)
		}
		if o.effect != nil {
			return o.effect()
		}
		return nil
	})
	if err != nil {
		is.logger.Debug("operation rejected",
			zap.String("op", name),
			zap.Stringer("caller", caller),
			zap.Error(err),
		)
		return err
	}

	fields := []zap.Field{
		zap.Uint64("seq", rec.Seq),
		zap.Stringer("caller", caller),
		zap.String("event", string(rec.Label)),
		zap.Stringer("stage", rec.StageAfter),
	}
	if rec.Amount != 0 {
		fields = append(fields, zap.Uint64("amount", rec.Amount))
	}
	if !rec.Counterparty.IsZero() {
		fields = append(fields, zap.Stringer("counterparty", rec.Counterparty))
	}
	is.logger.Info(name, fields...)
	return nil
}

// view runs fn against a read-only snapshot.
func (is *Issuance) view(fn func(tx store.Tx, st *sale.State) error) error {
	is.mu.Lock()
	defer is.mu.Unlock()

	return is.store.View(func(tx store.Tx) error {
		st, err := tx.State()
		if err != nil {
			return fmt.Errorf("issuance: load state: %w", err)
		}
		return fn(tx, st)
	})
}

func requireOwner(st *sale.State, caller address.Address) error {
	if caller != st.Owner {
		return ErrNotOwner
	}
	return nil
}

// loadEvent returns the config for label, mapping a miss to sale.ErrEventNotFound.
func loadEvent(tx store.Tx, label sale.Label) (*sale.Event, error) {
	if err := label.Validate(); err != nil {
		return nil, err
	}
	ev, err := tx.Event(label)
	if errors.Is(err, store.ErrEventNotFound) {
		return nil, sale.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("issuance: load event: %w", err)
	}
	return ev, nil
}

// currentEvent returns the selected event or ErrNoEventSelected.
func currentEvent(tx store.Tx, st *sale.State) (*sale.Event, error) {
	if !st.HasEvent() {
		return nil, ErrNoEventSelected
	}
	return loadEvent(tx, st.CurrentEvent)
}

// loadInvestment returns the entry for key, or a fresh zero entry.
func loadInvestment(tx store.Tx, key sale.LedgerKey) (*sale.Investment, error) {
	inv, err := tx.Investment(key)
	if errors.Is(err, store.ErrInvestmentNotFound) {
		return &sale.Investment{Key: key}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("issuance: load investment: %w", err)
	}
	return inv, nil
}
