package relay

import "errors"

var (
	// ErrPrecursorMissing means a required prior linkage (such as a linked
	// wallet) is absent. Caller-fixable; never retried here.
	ErrPrecursorMissing = errors.New("required linkage missing")

	// ErrChainStateMismatch means a transaction confirmed but its expected
	// proof-of-effect event is missing from the receipt. Fatal for the
	// request and requires operator investigation.
	ErrChainStateMismatch = errors.New("confirmed transaction missing expected event")

	// ErrQuantityTooSmall means a requested quantity truncates to zero in
	// on-chain base units. Caller-fixable.
	ErrQuantityTooSmall = errors.New("quantity truncates to zero in base units")
)
