package pool

import (
	"testing"
	"time"
)

// fakeClock lets tests move the pool through voting windows and policy
// durations deterministically.
type fakeClock struct {
	now int64
}

func (c *fakeClock) Now() time.Time { return time.Unix(c.now, 0) }

func (c *fakeClock) Advance(seconds int64) { c.now += seconds }

type transferCall struct {
	to     string
	amount int64
}

// fakeTransferor records outbound transfers and can be told to fail.
type fakeTransferor struct {
	calls []transferCall
	err   error
}

func (f *fakeTransferor) Transfer(to string, amount int64) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, transferCall{to: to, amount: amount})
	return nil
}

// recordingSink captures emitted events in order.
type recordingSink struct {
	events []Event
}

func (s *recordingSink) Emit(ev Event) { s.events = append(s.events, ev) }

func (s *recordingSink) ofType(name string) []Event {
	var out []Event
	for _, ev := range s.events {
		if ev.EventType() == name {
			out = append(out, ev)
		}
	}
	return out
}

func newTestEngine() (*Engine, *fakeClock, *fakeTransferor, *recordingSink) {
	clock := &fakeClock{now: 1_700_000_000}
	transfer := &fakeTransferor{}
	sink := &recordingSink{}
	return NewEngine(clock, transfer, sink), clock, transfer, sink
}

// mustCreatePolicy registers a standard policy (coverage 1000, premium 50,
// duration 100000s) so the holder becomes a participant.
func mustCreatePolicy(t *testing.T, e *Engine, holder string) uint64 {
	t.Helper()
	id, err := e.CreatePolicy(holder, 1000, 100000, 50)
	if err != nil {
		t.Fatalf("CreatePolicy(%s): %v", holder, err)
	}
	return id
}
