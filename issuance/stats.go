package issuance

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/amount"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
)

// Report is a snapshot of the current event as seen by one wallet.
type Report struct {
	Instance      address.Address
	Event         sale.Label // empty when no event is selected
	Stage         sale.Stage
	Wallet        address.Address
	Invested      uint64
	IssuancePrice uint64
	FundGoal      uint64
	TotalRaised   uint64
	Deadline      time.Time
	Balance       uint64
	Investors     int
}

// Stats builds a Report for wallet in one consistent snapshot.
func (is *Issuance) Stats(wallet address.Address) (*Report, error) {
	r := &Report{Instance: is.self, Wallet: wallet}
	err := is.view(func(tx store.Tx, st *sale.State) error {
		r.Event = st.CurrentEvent
		r.Stage = st.Stage
		r.Balance = st.Balance

		ev, err := selectedEvent(tx, st)
		if err != nil {
			return err
		}
		if ev != nil {
			r.IssuancePrice = ev.IssuancePrice
			r.FundGoal = ev.FundGoal
			r.TotalRaised = ev.TotalRaised
			r.Deadline = ev.Deadline
		}
		if ev == nil && is.scope == sale.LedgerPerEvent {
			return nil
		}

		inv, err := loadInvestment(tx, is.scope.Key(ev, wallet))
		if err != nil {
			return err
		}
		r.Invested = inv.Deposited

		all, err := is.investmentsFor(tx, ev)
		if err != nil {
			return fmt.Errorf("issuance: list investments: %w", err)
		}
		r.Investors = len(all)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// WriteTo prints the report one field per line.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "event", string(r.Event))
	fmt.Fprintln(&buf, "state", r.Stage)
	fmt.Fprintln(&buf, "wallet", r.Wallet, ", invest into", r.Instance, ", invested:", amount.Format(r.Invested))
	fmt.Fprintln(&buf, "issuance price", r.IssuancePrice)
	fmt.Fprintln(&buf, "fund goal", amount.Format(r.FundGoal))
	fmt.Fprintln(&buf, "total raised", amount.Format(r.TotalRaised))
	fmt.Fprintln(&buf, "investors", r.Investors)
	fmt.Fprintln(&buf, "balance", amount.Format(r.Balance))

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
