package pool

// fundLedger is the single shared pool balance. All arithmetic on the
// balance goes through Credit/Debit so the non-negativity invariant is
// enforced in one place.
type fundLedger struct {
	balance int64
}

func (l *fundLedger) Balance() int64 { return l.balance }

func (l *fundLedger) Credit(amount int64) {
	l.balance += amount
}

// Debit removes amount from the pool. It refuses to drive the balance
// negative; callers clamp payouts with Cap first.
func (l *fundLedger) Debit(amount int64) error {
	if amount > l.balance {
		return ErrInsufficientPoolFunds
	}
	l.balance -= amount
	return nil
}

// Cap returns the largest disbursement the pool can cover, at most amount.
func (l *fundLedger) Cap(amount int64) int64 {
	if amount > l.balance {
		return l.balance
	}
	return amount
}

// ContributeToPool credits a voluntary contribution from any caller.
func (e *Engine) ContributeToPool(caller string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		return ErrInvalidAmount
	}

	e.ledger.Credit(amount)
	e.events.Emit(FundsDeposited{From: caller, Amount: amount})
	return nil
}
