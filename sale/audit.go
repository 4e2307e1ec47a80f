package sale

import (
	"time"

	"github.com/google/uuid"

	"github.com/aeternalism/issuance/address"
)

// Operation names recorded in the audit trail.
const (
	OpSetupEvent        = "setupEvent"
	OpSetEvent          = "setEvent"
	OpStartEvent        = "startEvent"
	OpCloseEvent        = "closeEvent"
	OpWithdrawEvent     = "withdrawEvent"
	OpReSetupEvent      = "reSetupEvent"
	OpInvest            = "invest"
	OpWithdraw          = "withdraw"
	OpTransferFund      = "transferFund"
	OpSetIssuanceToken  = "setIssuanceToken"
	OpTransferOwnership = "transferOwnership"
)

// AuditRecord is one committed state change.
type AuditRecord struct {
	ID           uuid.UUID
	Seq          uint64 // assigned by the store, starting at 1
	Operation    string
	Caller       address.Address
	Label        Label
	StageBefore  Stage
	StageAfter   Stage
	Amount       uint64
	Counterparty address.Address // destination, token or new owner
	Time         time.Time
}

// NewAuditRecord stamps a record with a fresh ID.
func NewAuditRecord(op string, caller address.Address, now time.Time) *AuditRecord {
	return &AuditRecord{
		ID:        uuid.New(),
		Operation: op,
		Caller:    caller,
		Time:      now,
	}
}
