package sale

import (
	"bytes"
	"time"

	"github.com/aeternalism/issuance/address"
)

// LabelSize is the maximum label length in bytes.
const LabelSize = 32

// Label names a sale event, e.g. "PRIVATE SALE".
type Label string

// Validate checks that l is 1..32 bytes with no NUL bytes.
func (l Label) Validate() error {
	if len(l) == 0 || len(l) > LabelSize || bytes.IndexByte([]byte(l), 0) >= 0 {
		return ErrInvalidLabel
	}
	return nil
}

// Key returns the label right-padded with zeros to LabelSize bytes.
func (l Label) Key() []byte {
	k := make([]byte, LabelSize)
	copy(k, l)
	return k
}

// LabelFromKey reverses Key.
func LabelFromKey(k []byte) Label {
	return Label(bytes.TrimRight(k, "\x00"))
}

// Event is a sale event configuration plus its running total.
// Only TotalRaised changes while the event is open.
type Event struct {
	Label         Label
	IssuancePrice uint64 // token base units minted per native base unit
	MinDeposit    uint64 // per single deposit
	MaxDeposit    uint64 // per single deposit
	FundGoal      uint64 // cap on TotalRaised
	Deadline      time.Time
	TotalRaised   uint64
	Round         uint32 // number of times this label has been set up
	CreatedAt     time.Time
}

// Remaining returns how much more the event can raise.
func (e *Event) Remaining() uint64 {
	if e.TotalRaised >= e.FundGoal {
		return 0
	}
	return e.FundGoal - e.TotalRaised
}

// GoalReached reports whether no further deposit can be accepted.
func (e *Event) GoalReached() bool {
	return e.TotalRaised >= e.FundGoal
}

// LedgerKey scopes an investor's ledger entry. A zero Label and Round denote
// the single global ledger.
type LedgerKey struct {
	Label    Label
	Round    uint32
	Investor address.Address
}

// Investment is an investor's ledger entry.
type Investment struct {
	Key       LedgerKey
	Deposited uint64
	Withdrawn bool
	Credited  uint64 // tokens minted at settlement
}

// State is the process-wide record of one issuance instance.
type State struct {
	Owner         address.Address
	Self          address.Address // this instance's own address, used as the minter identity
	IssuanceToken address.Address
	CurrentEvent  Label
	Stage         Stage
	Balance       uint64 // held native currency
	Scope         LedgerScope
}

// HasEvent reports whether an event is selected.
func (s *State) HasEvent() bool {
	return s.CurrentEvent != ""
}
