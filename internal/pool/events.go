package pool

// Event is an append-only notification emitted by the engine. Each concrete
// event carries exactly the fields observers are promised for that
// notification type.
type Event interface {
	EventType() string
}

// EventSink receives engine notifications. Emit is called after the
// operation's state changes and transfer have fully succeeded.
type EventSink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// PolicyCreated is emitted when a new policy is registered.
type PolicyCreated struct {
	PolicyID       uint64 `json:"policy_id"`
	Holder         string `json:"holder"`
	CoverageAmount int64  `json:"coverage_amount"`
	PremiumPaid    int64  `json:"premium_paid"`
}

func (PolicyCreated) EventType() string { return "PolicyCreated" }

// FundsDeposited is emitted when a premium or contribution credits the pool.
type FundsDeposited struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
}

func (FundsDeposited) EventType() string { return "FundsDeposited" }

// ClaimSubmitted is emitted when a new claim enters the voting window.
type ClaimSubmitted struct {
	ClaimID     uint64 `json:"claim_id"`
	PolicyID    uint64 `json:"policy_id"`
	Claimant    string `json:"claimant"`
	ClaimAmount int64  `json:"claim_amount"`
}

func (ClaimSubmitted) EventType() string { return "ClaimSubmitted" }

// VoteCast is emitted for every accepted vote.
type VoteCast struct {
	ClaimID uint64 `json:"claim_id"`
	Voter   string `json:"voter"`
	Support bool   `json:"support"`
}

func (VoteCast) EventType() string { return "VoteCast" }

// ClaimResolved is emitted when a claim reaches its terminal state. Payout
// is the amount actually disbursed, which may be less than the claim amount
// when the pool could not cover it; it is 0 for rejected claims.
type ClaimResolved struct {
	ClaimID  uint64 `json:"claim_id"`
	Approved bool   `json:"approved"`
	Payout   int64  `json:"payout"`
}

func (ClaimResolved) EventType() string { return "ClaimResolved" }

// PolicyCancelled is emitted when a holder cancels a policy. Refund is the
// amount actually paid back, 0 when the pool could not cover it or the
// policy had already run out.
type PolicyCancelled struct {
	PolicyID uint64 `json:"policy_id"`
	Holder   string `json:"holder"`
	Refund   int64  `json:"refund"`
}

func (PolicyCancelled) EventType() string { return "PolicyCancelled" }
