package lflist

import (
	"errors"
	"fmt"
)

var (
	// ErrNilComparator is returned by New when no comparator is supplied.
	ErrNilComparator = errors.New("nil comparator")

	// ErrInvalidKey is wrapped by the KeyError raised when a key fails the
	// configured validator.
	ErrInvalidKey = errors.New("invalid key")

	// Errors reported by Check.
	ErrBrokenChain = errors.New("chain does not reach the tail sentinel")
	ErrUnsorted    = errors.New("keys are not strictly ascending")
	ErrMarkedNode  = errors.New("reachable node is marked")
	ErrFlaggedLink = errors.New("reachable link is flagged")
)

// KeyError is the panic value of an operation called with a key rejected by
// the validator.
type KeyError struct {
	Op  string
	Key any
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("lflist: %s %v: %v: %v", e.Op, e.Key, ErrInvalidKey, e.Err)
}

func (e *KeyError) Unwrap() []error {
	return []error{ErrInvalidKey, e.Err}
}
