package pool

import "fmt"

// Claim is a request by a policyholder to draw funds against their policy's
// coverage. A claim is immutable once Resolved is true.
type Claim struct {
	ID           uint64          `json:"id"`
	PolicyID     uint64          `json:"policy_id"`
	Claimant     string          `json:"claimant"`
	ClaimAmount  int64           `json:"claim_amount"`
	Description  string          `json:"description"`
	SubmittedAt  int64           `json:"submitted_at"`
	VotesFor     int             `json:"votes_for"`
	VotesAgainst int             `json:"votes_against"`
	HasVoted     map[string]bool `json:"has_voted"`
	Resolved     bool            `json:"resolved"`
	Approved     bool            `json:"approved"`
}

// votingOpen reports whether votes are still accepted at time now.
func (c *Claim) votingOpen(now int64) bool {
	return now <= c.SubmittedAt+VotingPeriod
}

func (c *Claim) totalVotes() int {
	return c.VotesFor + c.VotesAgainst
}

// SubmitClaim opens a claim against the caller's policy. The claim amount
// is checked against the pool balance at submission time only; the payout
// is re-clamped at resolution if funds have dropped since.
func (e *Engine) SubmitClaim(caller string, policyID uint64, claimAmount int64, description string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.policies[policyID]
	if !ok {
		return 0, ErrPolicyNotFound
	}
	if p.Holder != caller {
		return 0, ErrNotPolicyholder
	}
	if !p.IsActive {
		return 0, ErrPolicyNotActive
	}
	if p.Expired(e.now()) {
		return 0, ErrPolicyExpired
	}
	if p.HasClaimed {
		return 0, ErrAlreadyClaimed
	}
	if claimAmount <= 0 {
		return 0, ErrInvalidAmount
	}
	if claimAmount > p.CoverageAmount {
		return 0, ErrClaimExceedsCoverage
	}
	if claimAmount > e.ledger.Balance() {
		return 0, ErrInsufficientPoolFunds
	}
	if description == "" {
		return 0, ErrEmptyDescription
	}

	id := e.nextClaimID
	e.nextClaimID++

	e.claims[id] = &Claim{
		ID:          id,
		PolicyID:    policyID,
		Claimant:    caller,
		ClaimAmount: claimAmount,
		Description: description,
		SubmittedAt: e.now(),
		HasVoted:    make(map[string]bool),
	}

	e.events.Emit(ClaimSubmitted{ClaimID: id, PolicyID: policyID, Claimant: caller, ClaimAmount: claimAmount})
	return id, nil
}

// ResolveClaim forces resolution of a claim whose voting window has elapsed
// or whose vote threshold is already met. It exists for claims that were
// not auto-resolved by the vote path.
func (e *Engine) ResolveClaim(claimID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.claims[claimID]
	if !ok {
		return ErrClaimNotFound
	}
	if c.Resolved {
		return ErrClaimResolved
	}
	if c.votingOpen(e.now()) && c.totalVotes() < MinVotesRequired {
		return ErrVotingStillOpen
	}

	var pending []Event
	if err := e.resolve(c, &pending); err != nil {
		return err
	}
	e.emitAll(pending)
	return nil
}

// resolve applies the terminal decision to c. Approval requires a strict
// majority; a tie rejects. On approval the payout is capped at the pool
// balance, the ledger and policy are updated first, and the transfer is the
// last step so any reentrant observer sees finalized state. If the transfer
// fails every mutation made here is rolled back.
//
// resolve is idempotent in the sense that callers must check c.Resolved
// before invoking it; it appends its notification to pending rather than
// emitting, so the caller controls when events become observable.
func (e *Engine) resolve(c *Claim, pending *[]Event) error {
	approved := c.VotesFor > c.VotesAgainst

	c.Resolved = true
	c.Approved = approved

	var payout int64
	if approved {
		p := e.policies[c.PolicyID]
		p.HasClaimed = true

		payout = e.ledger.Cap(c.ClaimAmount)
		if err := e.ledger.Debit(payout); err != nil {
			c.Resolved = false
			c.Approved = false
			p.HasClaimed = false
			return err
		}

		if payout > 0 {
			if err := e.transfer.Transfer(c.Claimant, payout); err != nil {
				e.ledger.Credit(payout)
				c.Resolved = false
				c.Approved = false
				p.HasClaimed = false
				return fmt.Errorf("%w: %v", ErrTransferFailed, err)
			}
		}
	}

	*pending = append(*pending, ClaimResolved{ClaimID: c.ID, Approved: approved, Payout: payout})
	return nil
}
