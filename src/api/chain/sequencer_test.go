package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNonceSource struct {
	nonce uint64
	err   error
	reads int
}

func (f *fakeNonceSource) PendingNonce(ctx context.Context) (uint64, error) {
	f.reads++
	return f.nonce, f.err
}

func TestSequencerReservesLocally(t *testing.T) {
	src := &fakeNonceSource{nonce: 10}
	seq := NewSequencer(src)

	sess, err := seq.Begin(context.Background())
	require.NoError(t, err)
	defer sess.End()

	// one node read per session, then local increments only
	assert.Equal(t, uint64(10), sess.Reserve())
	assert.Equal(t, uint64(11), sess.Reserve())
	assert.Equal(t, uint64(12), sess.Reserve())
	assert.Equal(t, 1, src.reads)
}

func TestSequencerSerializesSessions(t *testing.T) {
	src := &fakeNonceSource{nonce: 10}
	seq := NewSequencer(src)

	first, err := seq.Begin(context.Background())
	require.NoError(t, err)
	first.Reserve()

	acquired := make(chan *Session)
	go func() {
		sess, err := seq.Begin(context.Background())
		if err == nil {
			acquired <- sess
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second session began while the first still held the account")
	case <-time.After(50 * time.Millisecond):
	}

	src.nonce = 11 // the node has seen the first session's send
	first.End()

	select {
	case sess := <-acquired:
		defer sess.End()
		assert.Equal(t, uint64(11), sess.Reserve())
	case <-time.After(time.Second):
		t.Fatal("second session never began after release")
	}
}

func TestSequencerEndIsIdempotent(t *testing.T) {
	seq := NewSequencer(&fakeNonceSource{nonce: 3})

	sess, err := seq.Begin(context.Background())
	require.NoError(t, err)
	sess.End()
	sess.End() // second End must not unlock someone else's session

	next, err := seq.Begin(context.Background())
	require.NoError(t, err)
	next.End()
}

func TestSequencerBeginReleasesOnError(t *testing.T) {
	src := &fakeNonceSource{err: errors.New("node down")}
	seq := NewSequencer(src)

	_, err := seq.Begin(context.Background())
	require.Error(t, err)

	// the failed Begin must not leave the account locked
	src.err = nil
	src.nonce = 4
	sess, err := seq.Begin(context.Background())
	require.NoError(t, err)
	defer sess.End()
	assert.Equal(t, uint64(4), sess.Reserve())
}
