package pool

import (
	"errors"
	"testing"
)

func TestContributeToPool(t *testing.T) {
	e, _, _, sink := newTestEngine()

	// Anyone may contribute, participant or not.
	if err := e.ContributeToPool("stranger", 250); err != nil {
		t.Fatalf("ContributeToPool: %v", err)
	}
	if got := e.GetPoolStats().TotalPoolFunds; got != 250 {
		t.Errorf("pool funds = %d, want 250", got)
	}

	evs := sink.ofType("FundsDeposited")
	if len(evs) != 1 {
		t.Fatalf("FundsDeposited events = %d, want 1", len(evs))
	}
	if dep := evs[0].(FundsDeposited); dep.From != "stranger" || dep.Amount != 250 {
		t.Errorf("FundsDeposited = %+v", dep)
	}
}

func TestContributeToPoolRejectsNonPositive(t *testing.T) {
	e, _, _, _ := newTestEngine()

	for _, amount := range []int64{0, -10} {
		if err := e.ContributeToPool("alice", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestLedgerNeverNegative(t *testing.T) {
	// Run a full lifecycle that drains the pool to zero and verify the
	// balance never dips below it.
	e, clock, _, _, _, claimID := setupClaim(t)

	snap := e.Snapshot()
	snap.TotalPoolFunds = 100 // well below the 800 claim
	e.Restore(snap)

	for _, voter := range []string{"bob", "carol", "alice"} {
		if err := e.VoteOnClaim(voter, claimID, true); err != nil {
			t.Fatalf("VoteOnClaim(%s): %v", voter, err)
		}
	}
	if got := e.GetPoolStats().TotalPoolFunds; got != 0 {
		t.Fatalf("pool funds = %d, want 0 after capped payout", got)
	}

	// With the pool empty, a cancellation refund cannot be paid but the
	// balance must stay at zero.
	bobPolicies := e.GetUserPolicies("bob")
	clock.Advance(10)
	refund, err := e.CancelPolicy("bob", bobPolicies[0])
	if err != nil {
		t.Fatalf("CancelPolicy: %v", err)
	}
	if refund != 0 {
		t.Errorf("refund = %d from empty pool, want 0", refund)
	}
	if got := e.GetPoolStats().TotalPoolFunds; got < 0 {
		t.Fatalf("pool funds went negative: %d", got)
	}
}

func TestGetPoolStatsCounts(t *testing.T) {
	e, _, _, _, _, claimID := setupClaim(t)

	stats := e.GetPoolStats()
	if stats.PolicyCount != 3 {
		t.Errorf("policy count = %d, want 3", stats.PolicyCount)
	}
	if stats.ClaimCount != 1 {
		t.Errorf("claim count = %d, want 1", stats.ClaimCount)
	}
	// 3 premiums of 50 plus a 1000 contribution.
	if stats.TotalPoolFunds != 1150 {
		t.Errorf("pool funds = %d, want 1150", stats.TotalPoolFunds)
	}
	if stats.ResolvedCount != 0 || stats.ApprovedCount != 0 {
		t.Errorf("resolved/approved = %d/%d with only an open claim, want 0/0",
			stats.ResolvedCount, stats.ApprovedCount)
	}

	// Approve alice's claim 2-1.
	for _, vote := range []struct {
		voter   string
		support bool
	}{{"bob", true}, {"carol", true}, {"alice", false}} {
		if err := e.VoteOnClaim(vote.voter, claimID, vote.support); err != nil {
			t.Fatalf("VoteOnClaim(%s): %v", vote.voter, err)
		}
	}

	// bob files a second claim which gets voted down 0-3.
	bobPolicies := e.GetUserPolicies("bob")
	rejectedID, err := e.SubmitClaim("bob", bobPolicies[0], 100, "minor dent")
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	for _, voter := range []string{"alice", "bob", "carol"} {
		if err := e.VoteOnClaim(voter, rejectedID, false); err != nil {
			t.Fatalf("VoteOnClaim(%s): %v", voter, err)
		}
	}

	stats = e.GetPoolStats()
	if stats.ClaimCount != 2 {
		t.Errorf("claim count = %d, want 2", stats.ClaimCount)
	}
	if stats.ResolvedCount != 2 {
		t.Errorf("resolved count = %d, want 2", stats.ResolvedCount)
	}
	if stats.ApprovedCount != 1 {
		t.Errorf("approved count = %d, want 1", stats.ApprovedCount)
	}
}
