package pool

import "sort"

// Snapshot is the full durable state of the pool: every policy and claim
// (including voter sets), the per-user policy index and the scalar
// counters. It is what the hosts persist between operations.
type Snapshot struct {
	Policies       []*Policy           `json:"policies"`
	Claims         []*Claim            `json:"claims"`
	UserPolicies   map[string][]uint64 `json:"user_policies"`
	NextPolicyID   uint64              `json:"next_policy_id"`
	NextClaimID    uint64              `json:"next_claim_id"`
	TotalPoolFunds int64               `json:"total_pool_funds"`
}

// Snapshot returns a deep copy of the engine state, with policies and
// claims ordered by id.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &Snapshot{
		Policies:       make([]*Policy, 0, len(e.policies)),
		Claims:         make([]*Claim, 0, len(e.claims)),
		UserPolicies:   make(map[string][]uint64, len(e.userPolicies)),
		NextPolicyID:   e.nextPolicyID,
		NextClaimID:    e.nextClaimID,
		TotalPoolFunds: e.ledger.Balance(),
	}
	for _, p := range e.policies {
		cp := *p
		s.Policies = append(s.Policies, &cp)
	}
	sort.Slice(s.Policies, func(i, j int) bool { return s.Policies[i].ID < s.Policies[j].ID })
	for _, c := range e.claims {
		cp := *c
		cp.HasVoted = make(map[string]bool, len(c.HasVoted))
		for voter := range c.HasVoted {
			cp.HasVoted[voter] = true
		}
		s.Claims = append(s.Claims, &cp)
	}
	sort.Slice(s.Claims, func(i, j int) bool { return s.Claims[i].ID < s.Claims[j].ID })
	for holder, ids := range e.userPolicies {
		cp := make([]uint64, len(ids))
		copy(cp, ids)
		s.UserPolicies[holder] = cp
	}
	return s
}

// Restore replaces the engine state with the contents of s. It does not
// copy s; callers hand over ownership.
func (e *Engine) Restore(s *Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.policies = make(map[uint64]*Policy, len(s.Policies))
	for _, p := range s.Policies {
		e.policies[p.ID] = p
	}
	e.claims = make(map[uint64]*Claim, len(s.Claims))
	for _, c := range s.Claims {
		if c.HasVoted == nil {
			c.HasVoted = make(map[string]bool)
		}
		e.claims[c.ID] = c
	}
	e.userPolicies = s.UserPolicies
	if e.userPolicies == nil {
		e.userPolicies = make(map[string][]uint64)
	}
	e.nextPolicyID = s.NextPolicyID
	if e.nextPolicyID == 0 {
		e.nextPolicyID = 1
	}
	e.nextClaimID = s.NextClaimID
	if e.nextClaimID == 0 {
		e.nextClaimID = 1
	}
	e.ledger = fundLedger{balance: s.TotalPoolFunds}
}
