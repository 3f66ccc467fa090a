package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/api"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/auth"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/fabricclient"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/pool"
	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/store"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	engine *pool.Engine
	store  *store.Store
	fabric *fabricclient.Client
	secret []byte
}

// writePoolError maps an engine rejection to a stable error code.
func writePoolError(w http.ResponseWriter, err error) {
	type mapping struct {
		sentinel error
		status   int
		code     string
	}
	mappings := []mapping{
		{pool.ErrPolicyNotFound, http.StatusNotFound, "policy_not_found"},
		{pool.ErrClaimNotFound, http.StatusNotFound, "claim_not_found"},
		{pool.ErrNotPolicyholder, http.StatusForbidden, "not_policyholder"},
		{pool.ErrNotParticipant, http.StatusForbidden, "not_participant"},
		{pool.ErrPolicyNotActive, http.StatusConflict, "policy_not_active"},
		{pool.ErrPolicyExpired, http.StatusConflict, "policy_expired"},
		{pool.ErrAlreadyClaimed, http.StatusConflict, "already_claimed"},
		{pool.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
		{pool.ErrClaimResolved, http.StatusConflict, "claim_resolved"},
		{pool.ErrVotingClosed, http.StatusConflict, "voting_period_ended"},
		{pool.ErrVotingStillOpen, http.StatusConflict, "voting_still_open"},
		{pool.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{pool.ErrInvalidDuration, http.StatusBadRequest, "invalid_duration"},
		{pool.ErrPremiumTooLow, http.StatusBadRequest, "premium_too_low"},
		{pool.ErrClaimExceedsCoverage, http.StatusBadRequest, "claim_exceeds_coverage"},
		{pool.ErrInsufficientPoolFunds, http.StatusBadRequest, "insufficient_pool_funds"},
		{pool.ErrEmptyDescription, http.StatusBadRequest, "description_required"},
		{pool.ErrTransferFailed, http.StatusBadGateway, "transfer_failed"},
	}
	for _, m := range mappings {
		if errors.Is(err, m.sentinel) {
			api.WriteError(w, m.status, m.code, err.Error())
			return
		}
	}
	log.Printf("Unexpected engine error: %v", err)
	api.WriteError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error")
}

// persist saves the engine snapshot after a mutation. A failed save leaves
// the in-memory engine authoritative and is retried on the next mutation.
func (s *Service) persist() {
	if err := s.store.SaveSnapshot(s.engine.Snapshot()); err != nil {
		log.Printf("Failed to persist pool snapshot: %v", err)
	}
}

// mirror submits the same operation to the pool chaincode when a Fabric
// gateway is configured. The local engine stays authoritative; a mirror
// failure is logged, not surfaced.
//
// Every mirrored transaction runs under the gateway's single identity, so
// on-chain caller attribution diverges from the local engine: per-caller
// checks like vote deduplication collapse onto one chain identity and later
// mirrors of per-caller operations can fail there. The chain copy is an
// audit trail of the operation stream, not a second authority.
func (s *Service) mirror(name string, args ...string) {
	if s.fabric == nil {
		return
	}
	if _, err := s.fabric.SubmitTransaction(name, args...); err != nil {
		log.Printf("Failed to mirror %s on chain: %v", name, err)
	}
}

func (s *Service) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Username and password required")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to hash password")
		return
	}

	address := "user-" + req.Username
	if err := s.store.CreateUser(address, req.Username, string(hashedPassword)); err != nil {
		log.Printf("Failed to register user: %v", err)
		api.WriteError(w, http.StatusConflict, "user_exists", "Username already exists")
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]string{"address": address, "status": "created"})
}

func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := s.store.GetUserByUsername(req.Username)
	if err == sql.ErrNoRows {
		api.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	} else if err != nil {
		log.Printf("DB Error: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		api.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	token, expiresAt, err := auth.IssueToken(s.secret, user.ID, user.Username)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to generate token")
		return
	}

	api.WriteSuccess(w, http.StatusOK, TokenResponse{Token: token, Address: user.ID, ExpiresAt: expiresAt})
}

func (s *Service) CreatePolicyHandler(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerAddress(r.Context())

	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	id, err := s.engine.CreatePolicy(caller, req.CoverageAmount, req.Duration, req.Premium)
	if err != nil {
		writePoolError(w, err)
		return
	}
	s.persist()
	s.mirror("CreatePolicy",
		strconv.FormatInt(req.CoverageAmount, 10),
		strconv.FormatInt(req.Duration, 10),
		strconv.FormatInt(req.Premium, 10))

	api.WriteSuccess(w, http.StatusCreated, map[string]uint64{"policy_id": id})
}

func (s *Service) CancelPolicyHandler(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerAddress(r.Context())

	id, err := parseID(r, "id")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid policy id")
		return
	}

	refund, err := s.engine.CancelPolicy(caller, id)
	if err != nil {
		writePoolError(w, err)
		return
	}
	s.persist()
	s.mirror("CancelPolicy", strconv.FormatUint(id, 10))

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"policy_id": id, "refund": refund})
}

func (s *Service) GetPolicyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid policy id")
		return
	}

	p, err := s.engine.GetPolicy(id)
	if err != nil {
		writePoolError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, p)
}

func (s *Service) ListMyPoliciesHandler(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerAddress(r.Context())

	ids := s.engine.GetUserPolicies(caller)
	policies := make([]pool.Policy, 0, len(ids))
	for _, id := range ids {
		p, err := s.engine.GetPolicy(id)
		if err != nil {
			continue
		}
		policies = append(policies, p)
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"policy_ids": ids, "policies": policies})
}

func (s *Service) SubmitClaimHandler(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerAddress(r.Context())

	var req SubmitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	id, err := s.engine.SubmitClaim(caller, req.PolicyID, req.Amount, req.Description)
	if err != nil {
		writePoolError(w, err)
		return
	}
	s.persist()
	s.mirror("SubmitClaim",
		strconv.FormatUint(req.PolicyID, 10),
		strconv.FormatInt(req.Amount, 10),
		req.Description)

	api.WriteSuccess(w, http.StatusCreated, map[string]uint64{"claim_id": id})
}

func (s *Service) GetClaimHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid claim id")
		return
	}

	c, err := s.engine.GetClaim(id)
	if err != nil {
		writePoolError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, c)
}

func (s *Service) VoteHandler(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerAddress(r.Context())

	id, err := parseID(r, "id")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid claim id")
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := s.engine.VoteOnClaim(caller, id, req.Support); err != nil {
		writePoolError(w, err)
		return
	}
	s.persist()
	s.mirror("VoteOnClaim", strconv.FormatUint(id, 10), strconv.FormatBool(req.Support))

	c, _ := s.engine.GetClaim(id)
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"claim_id":      id,
		"votes_for":     c.VotesFor,
		"votes_against": c.VotesAgainst,
		"resolved":      c.Resolved,
		"approved":      c.Approved,
	})
}

func (s *Service) ResolveClaimHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid claim id")
		return
	}

	if err := s.engine.ResolveClaim(id); err != nil {
		writePoolError(w, err)
		return
	}
	s.persist()
	s.mirror("ResolveClaim", strconv.FormatUint(id, 10))

	c, _ := s.engine.GetClaim(id)
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"claim_id": id,
		"approved": c.Approved,
	})
}

func (s *Service) ContributeHandler(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerAddress(r.Context())

	var req ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := s.engine.ContributeToPool(caller, req.Amount); err != nil {
		writePoolError(w, err)
		return
	}
	s.persist()
	s.mirror("ContributeToPool", strconv.FormatInt(req.Amount, 10))

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"status": "credited", "amount": req.Amount})
}

func (s *Service) PoolStatsHandler(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, http.StatusOK, s.engine.GetPoolStats())
}

func parseID(r *http.Request, key string) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[key], 10, 64)
}
