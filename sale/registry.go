package sale

import "time"

// EventParams are the owner-supplied fields of a sale event.
type EventParams struct {
	IssuancePrice uint64
	MinDeposit    uint64
	MaxDeposit    uint64
	FundGoal      uint64
	Deadline      time.Time
}

// Validate checks params in the fixed order price, min deposit, fund goal,
// deadline and returns the first violation. MaxDeposit is unsigned, so it is
// non-negative by construction. MinDeposit <= MaxDeposit is not checked.
func (p EventParams) Validate(now time.Time) error {
	if p.IssuancePrice == 0 {
		return ErrNegativePrice
	}
	if p.MinDeposit == 0 {
		return ErrNegativeMin
	}
	if p.FundGoal == 0 {
		return ErrNegativeGoal
	}
	if !p.Deadline.After(now) {
		return ErrDeadlineInPast
	}
	return nil
}

// NewEvent validates label and params and returns a fresh event config.
// prev is the existing config for label, or nil; a re-setup starts the next
// round with TotalRaised reset to zero.
func NewEvent(label Label, p EventParams, prev *Event, now time.Time) (*Event, error) {
	if err := label.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(now); err != nil {
		return nil, err
	}

	round := uint32(1)
	if prev != nil {
		round = prev.Round + 1
	}

	return &Event{
		Label:         label,
		IssuancePrice: p.IssuancePrice,
		MinDeposit:    p.MinDeposit,
		MaxDeposit:    p.MaxDeposit,
		FundGoal:      p.FundGoal,
		Deadline:      p.Deadline,
		Round:         round,
		CreatedAt:     now,
	}, nil
}
