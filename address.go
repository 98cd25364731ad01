package bollywood

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Address is an opaque, comparable, hashable actor identity. Both
// implementations below are plain comparable structs, so a bare Go map
// keyed by Address (or by Address.String(), which directory.go uses for
// sharding) works without any custom hashing.
//
// Named after original_source's address.py (Uuid7Address, NumericAddress).
type Address interface {
	// String returns a stable, human-readable representation, unique within
	// a Stage for the Stage's lifetime.
	String() string

	// Equal reports whether other names the same actor.
	Equal(other Address) bool
}

// UUIDAddress is the default Address: a time-ordered UUIDv7. UUIDv7
// embeds a millisecond timestamp in its high bits, so addresses sort
// roughly by creation order even though they are not sequential integers.
type UUIDAddress struct {
	id uuid.UUID
}

// NewUUIDAddress mints a fresh time-ordered address.
func NewUUIDAddress() UUIDAddress {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the backing entropy source errors, which does
		// not happen with the default reader; fall back to v4 rather than
		// panic so a degraded entropy source never takes down actor
		// creation.
		id = uuid.New()
	}
	return UUIDAddress{id: id}
}

func (a UUIDAddress) String() string { return a.id.String() }

func (a UUIDAddress) Equal(other Address) bool {
	o, ok := other.(UUIDAddress)
	return ok && o.id == a.id
}

// NumericAddress is the monotonic-integer variant, handy in tests and
// examples where a stable, ascending identity reads better than a UUID.
type NumericAddress struct {
	n uint64
}

var numericAddressCounter atomic.Uint64

// NewNumericAddress returns the next address in a process-wide monotonic
// sequence. Like UUIDAddress, uniqueness only holds within a single Stage's
// lifetime, not across processes.
func NewNumericAddress() NumericAddress {
	return NumericAddress{n: numericAddressCounter.Add(1)}
}

func (a NumericAddress) String() string { return fmt.Sprintf("#%d", a.n) }

func (a NumericAddress) Equal(other Address) bool {
	o, ok := other.(NumericAddress)
	return ok && o.n == a.n
}
