package gemini

import (
	"errors"
	"math/rand"
)

// ErrEmptyKeyPool is returned when a rotator is constructed without keys
var ErrEmptyKeyPool = errors.New("gemini: credential pool is empty")

// KeyRotator spreads requests across a pool of API keys so that each
// key's quota bucket absorbs only part of the load. Selection is
// uniform random: round-robin would need shared mutable state to stay
// correct across concurrent callers, and random choice spreads load
// just as well with none.
type KeyRotator struct {
	keys []string
}

// NewKeyRotator builds a rotator over a non-empty key pool. The pool is
// copied and never mutated afterwards, so Next is safe for concurrent use.
func NewKeyRotator(keys []string) (*KeyRotator, error) {
	pool := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			pool = append(pool, k)
		}
	}
	if len(pool) == 0 {
		return nil, ErrEmptyKeyPool
	}
	return &KeyRotator{keys: pool}, nil
}

// Next returns a randomly chosen key from the pool
func (r *KeyRotator) Next() string {
	return r.keys[rand.Intn(len(r.keys))]
}

// Size returns the number of keys in the pool
func (r *KeyRotator) Size() int {
	return len(r.keys)
}
