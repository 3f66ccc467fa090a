// Package pool implements the insurance pool ledger and claims engine:
// policy registry, shared fund ledger, claim workflow and participant voting.
package pool

import (
	"sync"
	"time"
)

const (
	// MinPremiumDivisor enforces the minimum premium-to-coverage ratio:
	// premium must be at least coverage / MinPremiumDivisor (5%).
	MinPremiumDivisor = 20

	// MinVotesRequired is the vote count at which a claim auto-resolves.
	MinVotesRequired = 3

	// VotingPeriod is how long after submission votes are accepted, in seconds.
	VotingPeriod = int64(3 * 24 * 60 * 60)
)

// Clock supplies the current time to the engine.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Engine owns the entire pool state. All mutating operations are serialized
// and atomic: they either fully apply or leave no observable change.
type Engine struct {
	mu       sync.Mutex
	clock    Clock
	transfer FundTransferor
	events   EventSink

	policies     map[uint64]*Policy
	claims       map[uint64]*Claim
	userPolicies map[string][]uint64
	nextPolicyID uint64
	nextClaimID  uint64
	ledger       fundLedger
}

// NewEngine creates an empty pool engine. clock, transfer and events may be
// nil, in which case the system clock, a no-op transferor and a no-op sink
// are used.
func NewEngine(clock Clock, transfer FundTransferor, events EventSink) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if transfer == nil {
		transfer = NopTransferor{}
	}
	if events == nil {
		events = NopSink{}
	}
	return &Engine{
		clock:        clock,
		transfer:     transfer,
		events:       events,
		policies:     make(map[uint64]*Policy),
		claims:       make(map[uint64]*Claim),
		userPolicies: make(map[string][]uint64),
		nextPolicyID: 1,
		nextClaimID:  1,
	}
}

func (e *Engine) now() int64 { return e.clock.Now().Unix() }

func (e *Engine) emitAll(events []Event) {
	for _, ev := range events {
		e.events.Emit(ev)
	}
}

// PoolStats is a read-only snapshot of the pool's aggregate counters.
type PoolStats struct {
	TotalPoolFunds int64  `json:"total_pool_funds"`
	PolicyCount    uint64 `json:"policy_count"`
	ClaimCount     uint64 `json:"claim_count"`
	ResolvedCount  uint64 `json:"resolved_count"`
	ApprovedCount  uint64 `json:"approved_count"`
}

// GetPoolStats returns the current pool totals.
func (e *Engine) GetPoolStats() PoolStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := PoolStats{
		TotalPoolFunds: e.ledger.Balance(),
		PolicyCount:    e.nextPolicyID - 1,
		ClaimCount:     e.nextClaimID - 1,
	}
	for _, c := range e.claims {
		if c.Resolved {
			stats.ResolvedCount++
			if c.Approved {
				stats.ApprovedCount++
			}
		}
	}
	return stats
}

// GetPolicy returns a copy of the policy with the given id.
func (e *Engine) GetPolicy(policyID uint64) (Policy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.policies[policyID]
	if !ok {
		return Policy{}, ErrPolicyNotFound
	}
	return *p, nil
}

// GetClaim returns a copy of the claim with the given id, including its
// voter set.
func (e *Engine) GetClaim(claimID uint64) (Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.claims[claimID]
	if !ok {
		return Claim{}, ErrClaimNotFound
	}
	out := *c
	out.HasVoted = make(map[string]bool, len(c.HasVoted))
	for voter := range c.HasVoted {
		out.HasVoted[voter] = true
	}
	return out, nil
}

// GetUserPolicies returns the ids of all policies ever created by holder,
// in creation order.
func (e *Engine) GetUserPolicies(holder string) []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.userPolicies[holder]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// isParticipant reports whether addr has ever created a policy. Cancelled
// and expired policies still count; this is the voting eligibility rule.
func (e *Engine) isParticipant(addr string) bool {
	return len(e.userPolicies[addr]) > 0
}
