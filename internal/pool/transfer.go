package pool

// FundTransferor moves value out of the pool to a recipient address. It is
// the fallible external boundary of every payout and refund: the engine
// finalizes all state before calling Transfer, and rolls the operation back
// if Transfer fails. Implementations must not call back into the engine
// while a transfer is in flight.
type FundTransferor interface {
	Transfer(to string, amount int64) error
}

// NopTransferor accepts every transfer without moving anything. Useful when
// disbursement is settled by the host environment.
type NopTransferor struct{}

func (NopTransferor) Transfer(string, int64) error { return nil }
