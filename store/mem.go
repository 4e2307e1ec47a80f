package store

import (
	"bytes"
	"sort"
	"sync"

	"github.com/aeternalism/issuance/sale"
)

// memData is the full contents of a MemStore. Values are held by value so
// getters hand out copies.
type memData struct {
	state       *sale.State
	events      map[sale.Label]sale.Event
	investments map[sale.LedgerKey]sale.Investment
	audit       []sale.AuditRecord
}

// MemStore is an in-memory Store. Update writes in place and journals the
// prior value of every key it touches; a failed or panicking callback
// replays the journal, so it leaves no trace.
type MemStore struct {
	mu     sync.RWMutex
	data   *memData
	closed bool
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data: &memData{
			events:      make(map[sale.Label]sale.Event),
			investments: make(map[sale.LedgerKey]sale.Investment),
		},
	}
}

// View runs fn against the current data.
func (s *MemStore) View(fn func(Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&memTx{data: s.data, readOnly: true})
}

// Update runs fn against the live data and undoes its writes unless fn
// succeeds.
func (s *MemStore) Update(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx := &memTx{data: s.data}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// Close marks the store closed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type memTx struct {
	data     *memData
	readOnly bool

	// undo restores the value each write replaced, newest last.
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) State() (*sale.State, error) {
	if t.data.state == nil {
		return nil, ErrStateNotFound
	}
	st := *t.data.state
	return &st, nil
}

func (t *memTx) PutState(st *sale.State) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if st == nil {
		return ErrNilParam
	}
	prev := t.data.state
	t.undo = append(t.undo, func() { t.data.state = prev })

	c := *st
	t.data.state = &c
	return nil
}

func (t *memTx) Event(label sale.Label) (*sale.Event, error) {
	ev, ok := t.data.events[label]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &ev, nil
}

func (t *memTx) PutEvent(ev *sale.Event) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if ev == nil {
		return ErrNilParam
	}
	label := ev.Label
	prev, existed := t.data.events[label]
	t.undo = append(t.undo, func() {
		if existed {
			t.data.events[label] = prev
		} else {
			delete(t.data.events, label)
		}
	})

	t.data.events[label] = *ev
	return nil
}

func (t *memTx) Events() ([]*sale.Event, error) {
	out := make([]*sale.Event, 0, len(t.data.events))
	for _, ev := range t.data.events {
		ev := ev
		out = append(out, &ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (t *memTx) Investment(key sale.LedgerKey) (*sale.Investment, error) {
	inv, ok := t.data.investments[key]
	if !ok {
		return nil, ErrInvestmentNotFound
	}
	return &inv, nil
}

func (t *memTx) PutInvestment(inv *sale.Investment) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if inv == nil {
		return ErrNilParam
	}
	key := inv.Key
	prev, existed := t.data.investments[key]
	t.undo = append(t.undo, func() {
		if existed {
			t.data.investments[key] = prev
		} else {
			delete(t.data.investments, key)
		}
	})

	t.data.investments[key] = *inv
	return nil
}

func (t *memTx) Investments(label sale.Label, round uint32) ([]*sale.Investment, error) {
	var out []*sale.Investment
	for k, inv := range t.data.investments {
		if k.Label == label && k.Round == round {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Key.Investor[:], out[j].Key.Investor[:]) < 0
	})
	return out, nil
}

func (t *memTx) AppendAudit(rec *sale.AuditRecord) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if rec == nil {
		return ErrNilParam
	}
	n := len(t.data.audit)
	t.undo = append(t.undo, func() { t.data.audit = t.data.audit[:n] })

	rec.Seq = uint64(n) + 1
	t.data.audit = append(t.data.audit, *rec)
	return nil
}

func (t *memTx) Audit() ([]*sale.AuditRecord, error) {
	out := make([]*sale.AuditRecord, len(t.data.audit))
	for i := range t.data.audit {
		rec := t.data.audit[i]
		out[i] = &rec
	}
	return out, nil
}
