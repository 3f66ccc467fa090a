package main

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	Address   string `json:"address"`
	ExpiresAt int64  `json:"expires_at"`
}

type CreatePolicyRequest struct {
	CoverageAmount int64 `json:"coverage_amount"`
	Duration       int64 `json:"duration"` // seconds
	Premium        int64 `json:"premium"`
}

type SubmitClaimRequest struct {
	PolicyID    uint64 `json:"policy_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type VoteRequest struct {
	Support bool `json:"support"`
}

type ContributeRequest struct {
	Amount int64 `json:"amount"`
}
