// Package random provides the sources of randomness the game engine draws
// from. Callers derive bounded values with modulo, so every Source must
// return non-negative integers spread evenly over its range.
package random

import (
	"math/rand"
	"time"
)

// Source produces non-negative integers.
type Source interface {
	Int() int
}

// Local is a Source backed by the process-local PRNG.
type Local struct {
	rng *rand.Rand
}

// NewLocal seeds a local PRNG. A zero seed picks one from the clock.
func NewLocal(seed int64) *Local {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Local{rng: rand.New(rand.NewSource(seed))}
}

func (l *Local) Int() int { return l.rng.Int() }

// Sequence replays a fixed list of values, wrapping around at the end. It makes
// game outcomes reproducible for tests and replays.
type Sequence struct {
	values []int
	drawn  int
}

func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		values = []int{0}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Int() int {
	v := s.values[s.drawn%len(s.values)]
	s.drawn++
	return v
}

// Drawn reports how many values have been consumed so far.
func (s *Sequence) Drawn() int { return s.drawn }
