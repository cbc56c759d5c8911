package chain

import (
	"context"
	"sync"
)

// NonceSource yields the next account nonce for the operator.
type NonceSource interface {
	PendingNonce(ctx context.Context) (uint64, error)
}

// Sequencer serializes privileged writes against the single operator
// account. A workflow holds the sequencer for its whole transaction batch:
// the nonce is read from the node once at Begin and then only incremented
// locally, so a not-yet-indexed transaction inside the batch cannot race the
// next reservation.
type Sequencer struct {
	mu  sync.Mutex
	src NonceSource
}

func NewSequencer(src NonceSource) *Sequencer {
	return &Sequencer{src: src}
}

// Begin blocks until the operator account is free, captures the current
// account nonce, and returns a session owning the nonce sequence. The caller
// must End the session.
func (s *Sequencer) Begin(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	next, err := s.src.PendingNonce(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return &Session{seq: s, next: next}, nil
}

// Session is an exclusive reservation window on the operator nonce sequence.
type Session struct {
	seq  *Sequencer
	next uint64
	done bool
}

// Reserve returns the next nonce in the window.
func (ss *Session) Reserve() uint64 {
	n := ss.next
	ss.next++
	return n
}

// End releases the operator account.
func (ss *Session) End() {
	if ss.done {
		return
	}
	ss.done = true
	ss.seq.mu.Unlock()
}
