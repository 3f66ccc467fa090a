package pool

import "fmt"

// Policy is a coverage commitment created by a participant against a
// premium payment. Policies are append-only history: they are deactivated,
// never deleted.
type Policy struct {
	ID             uint64 `json:"id"`
	Holder         string `json:"holder"`
	PremiumPaid    int64  `json:"premium_paid"`
	CoverageAmount int64  `json:"coverage_amount"`
	StartTime      int64  `json:"start_time"`
	Duration       int64  `json:"duration"`
	IsActive       bool   `json:"is_active"`
	HasClaimed     bool   `json:"has_claimed"`
}

// Expired reports whether the policy's coverage window has passed at time
// now (unix seconds). A policy is usable for claiming only while it is
// active and not expired.
func (p *Policy) Expired(now int64) bool {
	return now >= p.StartTime+p.Duration
}

// CreatePolicy registers a new policy for holder. The premium is treated as
// already received and is credited to the pool. The premium must be at
// least coverage / 20 (integer floor, so coverage under 20 units yields a
// minimum premium of 0).
func (e *Engine) CreatePolicy(holder string, coverageAmount, duration, premium int64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if premium <= 0 || coverageAmount <= 0 {
		return 0, ErrInvalidAmount
	}
	if duration <= 0 {
		return 0, ErrInvalidDuration
	}
	if premium < coverageAmount/MinPremiumDivisor {
		return 0, fmt.Errorf("%w: need at least %d", ErrPremiumTooLow, coverageAmount/MinPremiumDivisor)
	}

	id := e.nextPolicyID
	e.nextPolicyID++

	e.policies[id] = &Policy{
		ID:             id,
		Holder:         holder,
		PremiumPaid:    premium,
		CoverageAmount: coverageAmount,
		StartTime:      e.now(),
		Duration:       duration,
		IsActive:       true,
		HasClaimed:     false,
	}
	e.userPolicies[holder] = append(e.userPolicies[holder], id)
	e.ledger.Credit(premium)

	e.emitAll([]Event{
		PolicyCreated{PolicyID: id, Holder: holder, CoverageAmount: coverageAmount, PremiumPaid: premium},
		FundsDeposited{From: holder, Amount: premium},
	})
	return id, nil
}

// CancelPolicy deactivates the caller's policy and refunds the unused share
// of the premium, prorated over the remaining duration with integer
// truncation. The policy is deactivated even when the pool cannot cover the
// refund; in that case no refund is paid and the cancellation event carries
// refund 0.
func (e *Engine) CancelPolicy(caller string, policyID uint64) (int64, error) {
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
	now := e.now()
	if p.Expired(now) {
		return 0, ErrPolicyExpired
	}
	if p.HasClaimed {
		return 0, ErrAlreadyClaimed
	}

	elapsed := now - p.StartTime
	remaining := p.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	refund := p.PremiumPaid * remaining / p.Duration

	p.IsActive = false
	paid := int64(0)
	if refund > 0 && refund <= e.ledger.Balance() {
		if err := e.ledger.Debit(refund); err != nil {
			p.IsActive = true
			return 0, err
		}
		paid = refund
	}

	if paid > 0 {
		if err := e.transfer.Transfer(caller, paid); err != nil {
			e.ledger.Credit(paid)
			p.IsActive = true
			return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}

	e.events.Emit(PolicyCancelled{PolicyID: policyID, Holder: caller, Refund: paid})
	return paid, nil
}
