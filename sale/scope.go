package sale

import (
	"fmt"

	"github.com/aeternalism/issuance/address"
)

// LedgerScope selects how investor ledger entries are keyed.
type LedgerScope uint8

const (
	// LedgerPerEvent keys entries by (label, round, investor); each event
	// cycle settles independently.
	LedgerPerEvent LedgerScope = iota

	// LedgerGlobal keeps one entry per investor across all events, so
	// deposits carry over rollovers and re-setups.
	LedgerGlobal
)

// String returns "event" or "global".
func (s LedgerScope) String() string {
	switch s {
	case LedgerPerEvent:
		return "event"
	case LedgerGlobal:
		return "global"
	default:
		return fmt.Sprintf("LedgerScope(%d)", uint8(s))
	}
}

// ParseLedgerScope parses "event" or "global". The empty string means "event".
func ParseLedgerScope(s string) (LedgerScope, error) {
	switch s {
	case "", "event":
		return LedgerPerEvent, nil
	case "global":
		return LedgerGlobal, nil
	default:
		return 0, fmt.Errorf("sale: unknown ledger scope %q", s)
	}
}

// Key returns the ledger key for investor under event ev.
func (s LedgerScope) Key(ev *Event, investor address.Address) LedgerKey {
	if s == LedgerGlobal || ev == nil {
		return LedgerKey{Investor: investor}
	}
	return LedgerKey{Label: ev.Label, Round: ev.Round, Investor: investor}
}
