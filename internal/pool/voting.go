package pool

// VoteOnClaim records one vote for or against an open claim. Eligibility is
// "has ever created a policy in the pool"; the policy does not have to be
// active or related to the claim. Each address votes at most once per
// claim. Reaching MinVotesRequired total votes resolves the claim
// immediately as part of this operation.
func (e *Engine) VoteOnClaim(caller string, claimID uint64, support bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.claims[claimID]
	if !ok {
		return ErrClaimNotFound
	}
	if c.Resolved {
		return ErrClaimResolved
	}
	if c.HasVoted[caller] {
		return ErrAlreadyVoted
	}
	if !c.votingOpen(e.now()) {
		return ErrVotingClosed
	}
	if !e.isParticipant(caller) {
		return ErrNotParticipant
	}

	c.HasVoted[caller] = true
	if support {
		c.VotesFor++
	} else {
		c.VotesAgainst++
	}

	pending := []Event{VoteCast{ClaimID: claimID, Voter: caller, Support: support}}

	if c.totalVotes() >= MinVotesRequired {
		if err := e.resolve(c, &pending); err != nil {
			// The whole vote operation reverts with the failed resolution.
			delete(c.HasVoted, caller)
			if support {
				c.VotesFor--
			} else {
				c.VotesAgainst--
			}
			return err
		}
	}

	e.emitAll(pending)
	return nil
}
