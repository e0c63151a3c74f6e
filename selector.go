package spawnpick

import (
	"math/rand"
	"sort"
	"time"
)

// Source provides uniformly distributed floats in [0, 1).
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Choice is a value with its weight and the running total of weights up to
// and including it.
type Choice[T any] struct {
	Value            T
	Weight           int
	CumulativeWeight int
}

// Selector picks values at random with probability proportional to their
// weight. It is not safe for concurrent use.
type Selector[T comparable] struct {
	rnd     Source
	choices []Choice[T]
	total   int
}

type SelectorOption func(*selectorOpts)

type selectorOpts struct {
	rnd Source
}

// WithRand sets the random source used by Choose.
func WithRand(src Source) SelectorOption {
	return func(o *selectorOpts) {
		o.rnd = src
	}
}

// WithSeed uses a math/rand generator with the given seed.
func WithSeed(seed int64) SelectorOption {
	return func(o *selectorOpts) {
		o.rnd = rand.New(rand.NewSource(seed))
	}
}

func NewSelector[T comparable](opts ...SelectorOption) *Selector[T] {
	var o selectorOpts
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector[T]{rnd: o.rnd}
}

// AddChoice appends value with the given weight.
// Non-positive weights are ignored.
func (s *Selector[T]) AddChoice(value T, weight int) {
	if weight <= 0 {
		return
	}
	s.total += weight
	s.choices = append(s.choices, Choice[T]{
		Value:            value,
		Weight:           weight,
		CumulativeWeight: s.total,
	})
}

// ChangeWeight sets the weight of every choice equal to value and
// recomputes the cumulative weights. Non-positive weights are ignored.
func (s *Selector[T]) ChangeWeight(value T, weight int) {
	if weight <= 0 {
		return
	}
	old := s.choices
	s.choices = make([]Choice[T], 0, len(old))
	s.total = 0
	for _, c := range old {
		w := c.Weight
		if c.Value == value {
			w = weight
		}
		s.AddChoice(c.Value, w)
	}
}

func (s *Selector[T]) Clear() {
	s.choices = nil
	s.total = 0
}

// Choose returns a value at random, or the zero value of T if there
// are no choices.
func (s *Selector[T]) Choose() T {
	v, _ := s.TryChoose()
	return v
}

// TryChoose is like Choose but reports whether a choice was made.
func (s *Selector[T]) TryChoose() (T, bool) {
	if s.total == 0 {
		var zero T
		return zero, false
	}
	r := s.rnd.Float64() * float64(s.total)
	// Ties land on the earlier choice since cumulative weights are strictly increasing.
	i := sort.Search(len(s.choices), func(i int) bool {
		return float64(s.choices[i].CumulativeWeight) >= r
	})
	if i == len(s.choices) {
		i--
	}
	return s.choices[i].Value, true
}

// Choices returns a copy of the current choices in insertion order.
func (s *Selector[T]) Choices() []Choice[T] {
	ret := make([]Choice[T], len(s.choices))
	copy(ret, s.choices)
	return ret
}

func (s *Selector[T]) TotalWeight() int {
	return s.total
}

func (s *Selector[T]) Len() int {
	return len(s.choices)
}

// Has reports whether any choice equals value.
func (s *Selector[T]) Has(value T) bool {
	for _, c := range s.choices {
		if c.Value == value {
			return true
		}
	}
	return false
}
