package issuance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/amount"
	"github.com/aeternalism/issuance/sale"
	"github.com/aeternalism/issuance/store"
	"github.com/aeternalism/issuance/token"
)

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestScenarioDepositWithinBounds(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(40))

	inv, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), inv.Deposited)
	assert.False(t, inv.Withdrawn)

	ev, err := h.is.Event("PRI")
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), ev.TotalRaised)

	bal, err := h.is.Balance()
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), bal)

	dep, err := h.is.Deposit(alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), dep)
}

func TestScenarioDepositOutOfBounds(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)

	_, err = h.is.Invest(alice, amount.MustParse("1.5"))
	assertDomainErr(t, err, ErrBelowMinimum, sale.ErrValidation)

	_, err = h.is.Invest(alice, amount.MustParse("5.1"))
	assertDomainErr(t, err, ErrAboveMaximum, sale.ErrValidation)

	// Exact bounds are accepted.
	_, err = h.is.Invest(bob, amount.Coins(2))
	require.NoError(t, err)

	ev, err := h.is.Event("PRI")
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(7), ev.TotalRaised)
}

func TestScenarioRolloverGoalReached(t *testing.T) {
	h := newHarness(t)
	pub := params(5)
	pub.IssuancePrice = 4675
	pub.MaxDeposit = amount.Coins(100)
	h.setup(t, "PUB", pub)
	h.open(t, "PRI", params(5))

	require.NoError(t, h.is.SetEvent(ownerAddr, "PUB"))
	assert.Equal(t, sale.StageOpen, h.stage(t))

	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)

	ev, err := h.is.Event("PUB")
	require.NoError(t, err)
	assert.True(t, ev.GoalReached())
	assert.Zero(t, ev.Remaining())

	_, err = h.is.Invest(alice, amount.Coins(10))
	assertDomainErr(t, err, ErrGoalReached, sale.ErrValidation)

	// Bounds are checked before the goal.
	_, err = h.is.Invest(bob, amount.Coins(1))
	assertDomainErr(t, err, ErrBelowMinimum, sale.ErrValidation)
}

func TestScenarioSettlementCredit(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	h.open(t, "PRI", params(40))

	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	_, err = h.is.Invest(alice, amount.Coins(4))
	require.NoError(t, err)
	h.settle(t)

	inv, err := h.is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, inv.Withdrawn)
	assert.Equal(t, amount.Coins(9), inv.Deposited)
	assert.Equal(t, amount.Coins(49500), inv.Credited)

	assert.Equal(t, amount.Coins(49500), h.token.BalanceOf(alice))
	assert.Equal(t, amount.Coins(49500), h.token.TotalSupply())

	// Settlement never returns native currency.
	bal, err := h.is.Balance()
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(9), bal)
	assert.Empty(t, h.payouts)
}

func TestScenarioTransferFund(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	_, err = h.is.Invest(bob, amount.Coins(3))
	require.NoError(t, err)

	ctx := context.Background()

	_, err = h.is.TransferFund(ctx, ownerAddr, address.Zero)
	assertDomainErr(t, err, ErrTransferToZero, sale.ErrValidation)

	_, err = h.is.TransferFund(ctx, alice, treasuryAddr)
	assertDomainErr(t, err, ErrNotOwner, sale.ErrAuth)
	assert.Empty(t, h.payouts)

	sent, err := h.is.TransferFund(ctx, ownerAddr, treasuryAddr)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(8), sent)
	require.Len(t, h.payouts, 1)
	assert.Equal(t, payoutCall{from: selfAddr, to: treasuryAddr, amount: amount.Coins(8)}, h.payouts[0])

	bal, err := h.is.Balance()
	require.NoError(t, err)
	assert.Zero(t, bal)

	// Custody and per-event totals are independent.
	ev, err := h.is.Event("PRI")
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(8), ev.TotalRaised)
}

func TestScenarioWithdrawStageAndRepeat(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = h.is.Withdraw(ctx, alice)
	assertDomainErr(t, err, ErrNotAllowed, sale.ErrStage)

	require.NoError(t, h.is.CloseEvent(ownerAddr))
	_, err = h.is.Withdraw(ctx, alice)
	assertDomainErr(t, err, ErrNotAllowed, sale.ErrStage)

	require.NoError(t, h.is.WithdrawEvent(ownerAddr))
	_, err = h.is.Withdraw(ctx, alice)
	require.NoError(t, err)

	_, err = h.is.Withdraw(ctx, alice)
	assertDomainErr(t, err, ErrAlreadyWithdrawn, sale.ErrState)
	assert.Equal(t, amount.Coins(5*5500), h.token.BalanceOf(alice))
}

// ---------------------------------------------------------------------------
// Invest
// ---------------------------------------------------------------------------

func TestInvestOutsideOpen(t *testing.T) {
	for _, st := range []sale.Stage{sale.StageSetup, sale.StageClose, sale.StageWithdraw} {
		t.Run(st.String(), func(t *testing.T) {
			h := reachStage(t, st)
			_, err := h.is.Invest(alice, amount.Coins(3))
			assertDomainErr(t, err, ErrNotAllowed, sale.ErrStage)

			dep, err := h.is.Deposit(alice)
			require.NoError(t, err)
			assert.Zero(t, dep)
		})
	}
}

func TestInvestZeroAmount(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, 0)
	assertDomainErr(t, err, ErrBelowMinimum, sale.ErrValidation)
}

func TestInvestRepeatedUntilGoal(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(12))

	for i := 0; i < 3; i++ {
		_, err := h.is.Invest(alice, amount.Coins(4))
		require.NoError(t, err)
	}
	_, err := h.is.Invest(alice, amount.Coins(2))
	assertDomainErr(t, err, ErrGoalReached, sale.ErrValidation)

	dep, err := h.is.Deposit(alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(12), dep)

	recs := h.history(t)
	last := recs[len(recs)-1]
	assert.Equal(t, sale.OpInvest, last.Operation)
	assert.Equal(t, alice, last.Caller)
	assert.Equal(t, amount.Coins(4), last.Amount)
	assert.Equal(t, sale.Label("PRI"), last.Label)
}

func TestInvestOverflow(t *testing.T) {
	h := newHarness(t)
	p := params(0)
	p.MaxDeposit = ^uint64(0)
	p.FundGoal = ^uint64(0)
	h.open(t, "BIG", p)

	_, err := h.is.Invest(alice, ^uint64(0)-1)
	require.NoError(t, err)
	_, err = h.is.Invest(bob, amount.Coins(2))
	assertDomainErr(t, err, sale.ErrAmountOverflow, sale.ErrValidation)
}

// ---------------------------------------------------------------------------
// Withdraw
// ---------------------------------------------------------------------------

func TestWithdrawTokenNotSet(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	h.settle(t)

	_, err = h.is.Withdraw(context.Background(), alice)
	assertDomainErr(t, err, ErrTokenNotSet, sale.ErrState)

	// Binding the token later unblocks settlement.
	h.bindToken(t)
	_, err = h.is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
}

func TestWithdrawWithoutDeposit(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	h.open(t, "PRI", params(40))
	h.settle(t)

	inv, err := h.is.Withdraw(context.Background(), bob)
	require.NoError(t, err)
	assert.True(t, inv.Withdrawn)
	assert.Zero(t, inv.Credited)
	assert.Zero(t, h.token.TotalSupply())

	_, err = h.is.Withdraw(context.Background(), bob)
	assert.ErrorIs(t, err, ErrAlreadyWithdrawn)
}

func TestWithdrawMintFailureRollsBack(t *testing.T) {
	mintErr := errors.New("mint unavailable")
	failing := true
	var minted uint64
	minter := &token.MockMinter{
		MintFn: func(_ context.Context, minter, to address.Address, amt uint64) error {
			if failing {
				return mintErr
			}
			assert.Equal(t, selfAddr, minter)
			assert.Equal(t, alice, to)
			minted += amt
			return nil
		},
	}
	resolver := token.ResolverFunc(func(ref address.Address) (token.Minter, error) {
		if ref != tokenAddr {
			return nil, token.ErrUnknownToken
		}
		return minter, nil
	})

	h := newHarness(t, WithTokenResolver(resolver))
	h.bindToken(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	h.settle(t)
	before := len(h.history(t))

	_, err = h.is.Withdraw(context.Background(), alice)
	require.Error(t, err)
	assert.ErrorIs(t, err, mintErr)
	assert.Contains(t, err.Error(), "issuance: mint")

	inv, err := h.is.Investment(alice)
	require.NoError(t, err)
	assert.False(t, inv.Withdrawn)
	assert.Zero(t, inv.Credited)
	assert.Len(t, h.history(t), before)

	failing = false
	inv, err = h.is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, inv.Withdrawn)
	assert.Equal(t, amount.Coins(5*5500), minted)
}

var errCommit = errors.New("commit failed")

// commitFailStore runs each callback to completion and then discards its
// writes, as a store whose commit fails would.
type commitFailStore struct {
	*store.MemStore
	fail bool
}

func (s *commitFailStore) Update(fn func(store.Tx) error) error {
	if !s.fail {
		return s.MemStore.Update(fn)
	}
	return s.MemStore.Update(func(tx store.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errCommit
	})
}

func TestWithdrawCommitFailureKeepsMint(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	h.settle(t)

	reg := token.NewRegistry()
	require.NoError(t, reg.Register(tokenAddr, h.token))
	cs := &commitFailStore{MemStore: h.store}
	is, err := New(cs, selfAddr, ownerAddr, WithClock(fixedClock()), WithTokenResolver(reg))
	require.NoError(t, err)
	before := len(h.history(t))

	cs.fail = true
	_, err = is.Withdraw(context.Background(), alice)
	assert.ErrorIs(t, err, errCommit)

	// The mint ran before the commit and stays applied.
	credit := amount.Coins(5 * 5500)
	assert.Equal(t, credit, h.token.BalanceOf(alice))
	inv, err := is.Investment(alice)
	require.NoError(t, err)
	assert.False(t, inv.Withdrawn)
	assert.Len(t, h.history(t), before)

	// A retry settles the entry and mints again.
	cs.fail = false
	inv, err = is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, inv.Withdrawn)
	assert.Equal(t, 2*credit, h.token.BalanceOf(alice))
}

func TestWithdrawContextCanceled(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	h.settle(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.is.Withdraw(ctx, alice)
	assert.ErrorIs(t, err, context.Canceled)

	inv, err := h.is.Investment(alice)
	require.NoError(t, err)
	assert.False(t, inv.Withdrawn)
	assert.Zero(t, h.token.BalanceOf(alice))
}

func TestWithdrawUnresolvedToken(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"registry without ref", nil},
		{"no resolver", []Option{WithTokenResolver(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.opts...)
			require.NoError(t, h.is.SetIssuanceToken(ownerAddr, tetherAddr))
			h.open(t, "PRI", params(40))
			_, err := h.is.Invest(alice, amount.Coins(5))
			require.NoError(t, err)
			h.settle(t)
			before := len(h.history(t))

			_, err = h.is.Withdraw(context.Background(), alice)
			require.Error(t, err)
			assert.ErrorIs(t, err, token.ErrUnknownToken)
			assert.Contains(t, err.Error(), "issuance: resolve token")

			inv, err := h.is.Investment(alice)
			require.NoError(t, err)
			assert.False(t, inv.Withdrawn)
			assert.Zero(t, inv.Credited)
			assert.Len(t, h.history(t), before)
			assert.Zero(t, h.token.TotalSupply())

			// Rebinding to a resolvable token unblocks settlement.
			if tt.opts == nil {
				h.bindToken(t)
				inv, err = h.is.Withdraw(context.Background(), alice)
				require.NoError(t, err)
				assert.True(t, inv.Withdrawn)
			}
		})
	}
}

func TestWithdrawMinterRejectsUnboundIssuance(t *testing.T) {
	h := newHarness(t)
	// A second token that never bound this instance as its issuer.
	other := token.NewLedger(bob, ownerAddr, "Other", "OTH")
	reg := token.NewRegistry()
	require.NoError(t, reg.Register(bob, other))
	h.is.resolver = reg

	require.NoError(t, h.is.SetIssuanceToken(ownerAddr, bob))
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	h.settle(t)

	_, err = h.is.Withdraw(context.Background(), alice)
	assert.ErrorIs(t, err, token.ErrNotIssuance)
	assert.Zero(t, other.TotalSupply())
}

// ---------------------------------------------------------------------------
// TransferFund / Sweep
// ---------------------------------------------------------------------------

func TestTransferFundAnyStage(t *testing.T) {
	for _, st := range []sale.Stage{sale.StageSetup, sale.StageOpen, sale.StageClose, sale.StageWithdraw} {
		t.Run(st.String(), func(t *testing.T) {
			h := reachStage(t, st)
			sent, err := h.is.TransferFund(context.Background(), ownerAddr, treasuryAddr)
			require.NoError(t, err)
			assert.Zero(t, sent)
			assert.Empty(t, h.payouts)
			assert.Equal(t, st, h.stage(t))
		})
	}
}

func TestTransferFundPayoutFailureRollsBack(t *testing.T) {
	payErr := errors.New("node unreachable")
	h := newHarness(t, WithPayout(PayoutFunc(func(context.Context, address.Address, address.Address, uint64) error {
		return payErr
	})))
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)

	_, err = h.is.TransferFund(context.Background(), ownerAddr, treasuryAddr)
	assert.ErrorIs(t, err, payErr)

	bal, err := h.is.Balance()
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), bal)
}

func TestTransferFundWithoutPayout(t *testing.T) {
	h := newHarness(t, WithPayout(nil))
	h.open(t, "PRI", params(40))

	// Nothing held yet: succeeds without a collaborator.
	_, err := h.is.TransferFund(context.Background(), ownerAddr, treasuryAddr)
	require.NoError(t, err)

	_, err = h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	_, err = h.is.TransferFund(context.Background(), ownerAddr, treasuryAddr)
	assertDomainErr(t, err, ErrPayoutNotSet, sale.ErrState)
}

func TestSweep(t *testing.T) {
	h := newHarness(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)

	sent, err := h.is.Sweep(context.Background(), ownerAddr)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), sent)
	require.Len(t, h.payouts, 1)
	assert.Equal(t, treasuryAddr, h.payouts[0].to)

	h2 := newHarness(t, WithTreasury(address.Zero))
	_, err = h2.is.Sweep(context.Background(), ownerAddr)
	assert.ErrorIs(t, err, ErrNoTreasury)
}

// ---------------------------------------------------------------------------
// SetIssuanceToken
// ---------------------------------------------------------------------------

func TestSetIssuanceToken(t *testing.T) {
	h := newHarness(t)

	err := h.is.SetIssuanceToken(alice, tokenAddr)
	assertDomainErr(t, err, ErrNotOwner, sale.ErrAuth)

	err = h.is.SetIssuanceToken(ownerAddr, address.Zero)
	assertDomainErr(t, err, ErrIssuanceZero, sale.ErrValidation)

	ref, err := h.is.IssuanceToken()
	require.NoError(t, err)
	assert.True(t, ref.IsZero())

	// Refs are not resolved when bound.
	require.NoError(t, h.is.SetIssuanceToken(ownerAddr, tetherAddr))
	ref, err = h.is.IssuanceToken()
	require.NoError(t, err)
	assert.Equal(t, tetherAddr, ref)

	// Allowed in any stage.
	h.open(t, "PRI", params(40))
	require.NoError(t, h.is.SetIssuanceToken(ownerAddr, tokenAddr))
	ref, err = h.is.IssuanceToken()
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, ref)
}

func TestSetIssuanceTokenWithoutResolver(t *testing.T) {
	is, err := New(store.NewMemStore(), selfAddr, ownerAddr)
	require.NoError(t, err)

	require.NoError(t, is.SetIssuanceToken(ownerAddr, tetherAddr))
	ref, err := is.IssuanceToken()
	require.NoError(t, err)
	assert.Equal(t, tetherAddr, ref)
}

// ---------------------------------------------------------------------------
// Ledger scope
// ---------------------------------------------------------------------------

func rollover(t *testing.T, h *harness) {
	t.Helper()
	pub := params(40)
	pub.IssuancePrice = 1000
	h.setup(t, "PUB", pub)
	h.open(t, "PRI", params(40))

	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	require.NoError(t, h.is.SetEvent(ownerAddr, "PUB"))
	_, err = h.is.Invest(alice, amount.Coins(4))
	require.NoError(t, err)
}

func TestLedgerPerEvent(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	rollover(t, h)

	dep, err := h.is.Deposit(alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(4), dep)

	invs, err := h.is.Investments()
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, sale.LedgerKey{Label: "PUB", Round: 1, Investor: alice}, invs[0].Key)

	h.settle(t)
	inv, err := h.is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(4*1000), inv.Credited)

	// PRI's entry is untouched by PUB's settlement.
	require.NoError(t, h.is.ReSetupEvent(ownerAddr))
	require.NoError(t, h.is.SetEvent(ownerAddr, "PRI"))
	dep, err = h.is.Deposit(alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(5), dep)
}

func TestLedgerGlobal(t *testing.T) {
	h := newHarness(t, WithLedgerScope(sale.LedgerGlobal))
	h.bindToken(t)
	rollover(t, h)

	dep, err := h.is.Deposit(alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Coins(9), dep)

	invs, err := h.is.Investments()
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, sale.LedgerKey{Investor: alice}, invs[0].Key)

	h.settle(t)
	inv, err := h.is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
	// Credited at the price of the event current at settlement.
	assert.Equal(t, amount.Coins(9*1000), inv.Credited)

	// A settled global entry cannot take new deposits in any later event;
	// investors who never settled are unaffected.
	require.NoError(t, h.is.ReSetupEvent(ownerAddr))
	h.open(t, "PRI", params(40))
	_, err = h.is.Invest(alice, amount.Coins(3))
	assertDomainErr(t, err, ErrAlreadyWithdrawn, sale.ErrState)
	_, err = h.is.Invest(bob, amount.Coins(3))
	require.NoError(t, err)
}

func TestLedgerPerEventNewRound(t *testing.T) {
	h := newHarness(t)
	h.bindToken(t)
	h.open(t, "PRI", params(40))
	_, err := h.is.Invest(alice, amount.Coins(5))
	require.NoError(t, err)
	h.settle(t)
	_, err = h.is.Withdraw(context.Background(), alice)
	require.NoError(t, err)
	require.NoError(t, h.is.ReSetupEvent(ownerAddr))

	t.Run("same round stays settled", func(t *testing.T) {
		require.NoError(t, h.is.StartEvent(ownerAddr))
		_, err := h.is.Invest(alice, amount.Coins(3))
		assertDomainErr(t, err, ErrAlreadyWithdrawn, sale.ErrState)
		h.settle(t)
		require.NoError(t, h.is.ReSetupEvent(ownerAddr))
	})

	t.Run("re-setup opens a fresh round", func(t *testing.T) {
		h.open(t, "PRI", params(40))
		dep, err := h.is.Deposit(alice)
		require.NoError(t, err)
		assert.Zero(t, dep)

		_, err = h.is.Invest(alice, amount.Coins(3))
		require.NoError(t, err)
		h.settle(t)
		inv, err := h.is.Withdraw(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), inv.Key.Round)
		assert.Equal(t, amount.Coins(8*5500), h.token.BalanceOf(alice))
	})
}

func TestInvestmentWithoutEvent(t *testing.T) {
	h := newHarness(t)
	inv, err := h.is.Investment(alice)
	require.NoError(t, err)
	assert.Equal(t, alice, inv.Key.Investor)
	assert.Zero(t, inv.Deposited)

	invs, err := h.is.Investments()
	require.NoError(t, err)
	assert.Empty(t, invs)
}
