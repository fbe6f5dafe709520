// Package rng provides the seedable xorshift32 generator every random draw in
// the game goes through. Streams are reproducible across save/restore.
package rng

import (
	"errors"
	"math"
)

// ZeroSeed replaces a zero seed or state, which would lock xorshift at zero.
const ZeroSeed uint32 = 0x1a2b3c4d

var ErrEmptyPick = errors.New("rng: cannot pick from an empty list")

// RNG is a xorshift32 generator. The zero value is not usable; use New.
type RNG struct {
	seed  uint32
	state uint32
}

// Snapshot is the serialized form of an RNG.
type Snapshot struct {
	Seed  uint32 `json:"seed"`
	State uint32 `json:"state"`
}

// New returns a generator whose state starts at seed.
func New(seed uint32) *RNG {
	seed = nonZero(seed)
	return &RNG{seed: seed, state: seed}
}

// NewWithState resumes a generator from a saved state.
func NewWithState(seed, state uint32) *RNG {
	return &RNG{seed: nonZero(seed), state: nonZero(state)}
}

// Restore rebuilds a generator from a Snapshot.
func Restore(s Snapshot) *RNG {
	return NewWithState(s.Seed, s.State)
}

// NewDerived is shorthand for New(DeriveSeed(base, parts...)).
func NewDerived(base uint32, parts ...any) *RNG {
	return New(DeriveSeed(base, parts...))
}

func nonZero(v uint32) uint32 {
	if v == 0 {
		return ZeroSeed
	}
	return v
}

func (r *RNG) Seed() uint32  { return r.seed }
func (r *RNG) State() uint32 { return r.state }

// NextUint advances the state and returns it.
func (r *RNG) NextUint() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// NextFloat returns a value in [0, 1).
func (r *RNG) NextFloat() float64 {
	return float64(r.NextUint()) / 4294967296.0
}

// NextRange returns a value in [min, max). It returns min without advancing
// the state when max <= min.
func (r *RNG) NextRange(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + r.NextFloat()*(max-min)
}

// NextInt returns an integer in [min, max], swapping reversed bounds.
func (r *RNG) NextInt(min, max int) int {
	if max < min {
		min, max = max, min
	}
	span := max - min + 1
	return min + int(math.Floor(r.NextFloat()*float64(span)))
}

// Serialize captures seed and state.
func (r *RNG) Serialize() Snapshot {
	return Snapshot{Seed: r.seed, State: r.state}
}

// Clone returns an independent copy positioned at the same state.
func (r *RNG) Clone() *RNG {
	c := *r
	return &c
}

// Pick returns a uniformly chosen element of list.
func Pick[T any](r *RNG, list []T) (T, error) {
	var zero T
	if len(list) == 0 {
		return zero, ErrEmptyPick
	}
	return list[r.NextInt(0, len(list)-1)], nil
}
