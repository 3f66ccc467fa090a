// Package chaincode binds the insurance pool engine to Hyperledger Fabric.
// The full engine snapshot lives under a single world-state key; payouts
// and refunds are recorded as Transaction objects and notifications are
// emitted as one chaincode event per invocation.
package chaincode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/pool"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

const stateKey = "POOL_STATE"

// InsurancePool provides the pool's operation surface as a smart contract.
type InsurancePool struct {
	contractapi.Contract
}

// Transaction records a disbursement out of the pool.
type Transaction struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// eventRecord tags an engine notification with its type for the chaincode
// event payload.
type eventRecord struct {
	Type    string     `json:"type"`
	Payload pool.Event `json:"payload"`
}

// collector gathers the events and transfers produced by one engine
// operation so they can be written to the stub after the operation
// succeeds.
type collector struct {
	events    []pool.Event
	transfers []Transaction
}

func (c *collector) Emit(ev pool.Event) {
	c.events = append(c.events, ev)
}

func (c *collector) Transfer(to string, amount int64) error {
	c.transfers = append(c.transfers, Transaction{Type: "PoolTransfer", To: to, Amount: amount})
	return nil
}

// loadEngine rebuilds the engine from world state with a fresh collector
// attached.
func loadEngine(ctx contractapi.TransactionContextInterface) (*pool.Engine, *collector, error) {
	col := &collector{}
	engine := pool.NewEngine(nil, col, col)

	raw, err := ctx.GetStub().GetState(stateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read pool state: %v", err)
	}
	if raw != nil {
		var snap pool.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, nil, fmt.Errorf("failed to decode pool state: %v", err)
		}
		engine.Restore(&snap)
	}
	return engine, col, nil
}

// commit writes the updated snapshot, the collected transfer records and
// the chaincode event back to the stub.
func commit(ctx contractapi.TransactionContextInterface, engine *pool.Engine, col *collector) error {
	raw, err := json.Marshal(engine.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode pool state: %v", err)
	}
	if err := ctx.GetStub().PutState(stateKey, raw); err != nil {
		return fmt.Errorf("failed to save pool state: %v", err)
	}

	for i := range col.transfers {
		tr := col.transfers[i]
		tr.ID = fmt.Sprintf("%s-transfer-%d", ctx.GetStub().GetTxID(), i)
		tr.Timestamp = time.Now().Unix()
		trBytes, _ := json.Marshal(tr)
		if err := ctx.GetStub().PutState(tr.ID, trBytes); err != nil {
			return fmt.Errorf("failed to record transfer: %v", err)
		}
	}

	if len(col.events) > 0 {
		records := make([]eventRecord, 0, len(col.events))
		for _, ev := range col.events {
			records = append(records, eventRecord{Type: ev.EventType(), Payload: ev})
		}
		payload, _ := json.Marshal(records)
		if err := ctx.GetStub().SetEvent("PoolEvent", payload); err != nil {
			return fmt.Errorf("failed to set event: %v", err)
		}
	}
	return nil
}

func callerID(ctx contractapi.TransactionContextInterface) (string, error) {
	id, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %v", err)
	}
	return id, nil
}

// InitLedger seeds an empty pool. It is a no-op when state already exists.
func (c *InsurancePool) InitLedger(ctx contractapi.TransactionContextInterface) error {
	raw, err := ctx.GetStub().GetState(stateKey)
	if err != nil {
		return fmt.Errorf("failed to read pool state: %v", err)
	}
	if raw != nil {
		return nil
	}
	engine := pool.NewEngine(nil, nil, nil)
	seed, _ := json.Marshal(engine.Snapshot())
	return ctx.GetStub().PutState(stateKey, seed)
}

// CreatePolicy registers a policy for the caller and credits the premium to
// the pool.
func (c *InsurancePool) CreatePolicy(ctx contractapi.TransactionContextInterface, coverageAmount int64, duration int64, premium int64) (uint64, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return 0, err
	}
	engine, col, err := loadEngine(ctx)
	if err != nil {
		return 0, err
	}
	id, err := engine.CreatePolicy(caller, coverageAmount, duration, premium)
	if err != nil {
		return 0, err
	}
	if err := commit(ctx, engine, col); err != nil {
		return 0, err
	}
	return id, nil
}

// SubmitClaim opens a claim against the caller's policy.
func (c *InsurancePool) SubmitClaim(ctx contractapi.TransactionContextInterface, policyID uint64, claimAmount int64, description string) (uint64, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return 0, err
	}
	engine, col, err := loadEngine(ctx)
	if err != nil {
		return 0, err
	}
	id, err := engine.SubmitClaim(caller, policyID, claimAmount, description)
	if err != nil {
		return 0, err
	}
	if err := commit(ctx, engine, col); err != nil {
		return 0, err
	}
	return id, nil
}

// VoteOnClaim casts the caller's vote; reaching the vote threshold resolves
// the claim in the same invocation.
func (c *InsurancePool) VoteOnClaim(ctx contractapi.TransactionContextInterface, claimID uint64, support bool) error {
	caller, err := callerID(ctx)
	if err != nil {
		return err
	}
	engine, col, err := loadEngine(ctx)
	if err != nil {
		return err
	}
	if err := engine.VoteOnClaim(caller, claimID, support); err != nil {
		return err
	}
	return commit(ctx, engine, col)
}

// ResolveClaim forces resolution once the voting window has elapsed or the
// vote threshold is met.
func (c *InsurancePool) ResolveClaim(ctx contractapi.TransactionContextInterface, claimID uint64) error {
	engine, col, err := loadEngine(ctx)
	if err != nil {
		return err
	}
	if err := engine.ResolveClaim(claimID); err != nil {
		return err
	}
	return commit(ctx, engine, col)
}

// ContributeToPool credits a voluntary contribution from the caller.
func (c *InsurancePool) ContributeToPool(ctx contractapi.TransactionContextInterface, amount int64) error {
	caller, err := callerID(ctx)
	if err != nil {
		return err
	}
	engine, col, err := loadEngine(ctx)
	if err != nil {
		return err
	}
	if err := engine.ContributeToPool(caller, amount); err != nil {
		return err
	}
	return commit(ctx, engine, col)
}

// CancelPolicy deactivates the caller's policy and refunds the unused
// premium share when the pool can cover it. It returns the refund paid.
func (c *InsurancePool) CancelPolicy(ctx contractapi.TransactionContextInterface, policyID uint64) (int64, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return 0, err
	}
	engine, col, err := loadEngine(ctx)
	if err != nil {
		return 0, err
	}
	refund, err := engine.CancelPolicy(caller, policyID)
	if err != nil {
		return 0, err
	}
	if err := commit(ctx, engine, col); err != nil {
		return 0, err
	}
	return refund, nil
}

// GetPolicyDetails returns the policy with the given id.
func (c *InsurancePool) GetPolicyDetails(ctx contractapi.TransactionContextInterface, policyID uint64) (*pool.Policy, error) {
	engine, _, err := loadEngine(ctx)
	if err != nil {
		return nil, err
	}
	p, err := engine.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetClaimDetails returns the claim with the given id, including its voter
// set and tally.
func (c *InsurancePool) GetClaimDetails(ctx contractapi.TransactionContextInterface, claimID uint64) (*pool.Claim, error) {
	engine, _, err := loadEngine(ctx)
	if err != nil {
		return nil, err
	}
	cl, err := engine.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// GetUserPolicies returns the ids of all policies ever created by holder.
func (c *InsurancePool) GetUserPolicies(ctx contractapi.TransactionContextInterface, holder string) ([]uint64, error) {
	engine, _, err := loadEngine(ctx)
	if err != nil {
		return nil, err
	}
	return engine.GetUserPolicies(holder), nil
}

// GetPoolStats returns the pool's aggregate counters.
func (c *InsurancePool) GetPoolStats(ctx contractapi.TransactionContextInterface) (*pool.PoolStats, error) {
	engine, _, err := loadEngine(ctx)
	if err != nil {
		return nil, err
	}
	stats := engine.GetPoolStats()
	return &stats, nil
}
