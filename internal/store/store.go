package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/V19Amit/Decentralized-Insurance-Pool/internal/pool"
	"github.com/google/uuid"
)

// Store wraps the pool database. It doubles as the engine's event sink and
// fund transferor: events become pool_events rows and payouts/refunds
// become pool_transfers rows.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot upserts the singleton engine snapshot.
func (s *Store) SaveSnapshot(snap *pool.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO pool_db.pool_state (id, snapshot, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET snapshot = $1, updated_at = $2`,
		raw, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}
	return nil
}

// LoadSnapshot returns the persisted engine snapshot, or nil when the pool
// has never run.
func (s *Store) LoadSnapshot() (*pool.Snapshot, error) {
	var raw []byte
	err := s.db.QueryRow(`SELECT snapshot FROM pool_db.pool_state WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %v", err)
	}

	var snap pool.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %v", err)
	}
	return &snap, nil
}

// Emit records an engine notification in the event log. The log is
// append-only observability; a write failure must not abort the operation
// that emitted the event, so it is logged and swallowed here.
func (s *Store) Emit(ev pool.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", ev.EventType(), err)
		return
	}
	_, err = s.db.Exec(`
		INSERT INTO pool_db.pool_events (id, event_type, payload)
		VALUES ($1, $2, $3)`,
		uuid.NewString(), ev.EventType(), payload)
	if err != nil {
		log.Printf("Failed to record %s event: %v", ev.EventType(), err)
	}
}

// Transfer records an outbound payout or refund. A failed insert fails the
// transfer, which rolls the surrounding engine operation back.
func (s *Store) Transfer(to string, amount int64) error {
	_, err := s.db.Exec(`
		INSERT INTO pool_db.pool_transfers (id, recipient, amount)
		VALUES ($1, $2, $3)`,
		uuid.NewString(), to, amount)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %v", err)
	}
	return nil
}

// User is a participant account. The ID doubles as the participant's pool
// address.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}

// CreateUser registers a participant account.
func (s *Store) CreateUser(id, username, passwordHash string) error {
	_, err := s.db.Exec(`
		INSERT INTO pool_db.users (id, username, password_hash)
		VALUES ($1, $2, $3)`,
		id, username, passwordHash)
	return err
}

// GetUserByUsername looks a participant up for login. Returns
// sql.ErrNoRows when the username is unknown.
func (s *Store) GetUserByUsername(username string) (User, error) {
	var u User
	err := s.db.QueryRow(`
		SELECT id, username, password_hash
		FROM pool_db.users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	return u, err
}
