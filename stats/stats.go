// Package stats implements the StatsSet lattice (spec.md §3, "Stats"): a
// map from Stat to a Precision-tagged Scalar, either Exact (computed and
// trustworthy for pruning) or Inexact (a bound, usable only for
// can't-possibly-match pruning, never for correctness-sensitive decisions).
package stats

import (
	"sync"

	"github.com/deepteams/vortex/scalar"
)

// Stat names a single statistic an array may carry.
type Stat uint8

const (
	Min Stat = iota
	Max
	IsConstant
	IsSorted
	IsStrictSorted
	NullCount
	TrueCount
	RunCount
	BitWidthFreq
	TrailingZeroFreq
	UncompressedSizeInBytes
)

func (s Stat) String() string {
	switch s {
	case Min:
		return "Min"
	case Max:
		return "Max"
	case IsConstant:
		return "IsConstant"
	case IsSorted:
		return "IsSorted"
	case IsStrictSorted:
		return "IsStrictSorted"
	case NullCount:
		return "NullCount"
	case TrueCount:
		return "TrueCount"
	case RunCount:
		return "RunCount"
	case BitWidthFreq:
		return "BitWidthFreq"
	case TrailingZeroFreq:
		return "TrailingZeroFreq"
	case UncompressedSizeInBytes:
		return "UncompressedSizeInBytes"
	default:
		return "Unknown"
	}
}

// Precision tags whether a statistic's value is trustworthy for equality
// decisions (Exact) or only as a conservative bound (Inexact).
type Precision uint8

const (
	Exact Precision = iota
	Inexact
)

// Value pairs a scalar statistic with its precision.
type Value struct {
	Scalar    scalar.Scalar
	Precision Precision
}

// StatsSet is a concurrency-safe, lazily-populated map of Stat to Value.
// Readers may compute and cache stats on demand (e.g. a kernel that scans
// for IsSorted stores the result so a later call is free); writers may
// pre-compute pruning stats before a compressor discards them.
type StatsSet struct {
	mu     sync.RWMutex
	values map[Stat]Value
}

// New returns an empty StatsSet.
func New() *StatsSet {
	return &StatsSet{values: make(map[Stat]Value)}
}

// Get returns the stat's value and whether it is present.
func (s *StatsSet) Get(stat Stat) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[stat]
	return v, ok
}

// Set stores a stat's value, overwriting any previous entry.
func (s *StatsSet) Set(stat Stat, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[stat] = v
}

// SetExact is a convenience for Set(stat, Value{sc, Exact}).
func (s *StatsSet) SetExact(stat Stat, sc scalar.Scalar) {
	s.Set(stat, Value{Scalar: sc, Precision: Exact})
}

// SetInexact is a convenience for Set(stat, Value{sc, Inexact}).
func (s *StatsSet) SetInexact(stat Stat, sc scalar.Scalar) {
	s.Set(stat, Value{Scalar: sc, Precision: Inexact})
}

// GetOrCompute returns the cached stat, or invokes compute, caches, and
// returns its result. compute must return the Precision it can guarantee.
func (s *StatsSet) GetOrCompute(stat Stat, compute func() Value) Value {
	if v, ok := s.Get(stat); ok {
		return v
	}
	v := compute()
	s.Set(stat, v)
	return v
}

// Clone returns a read-only-intent copy of the set, used when canonicalize
// inherits a source array's stats onto its result (spec.md §4.2.1 rule 2).
func (s *StatsSet) Clone() *StatsSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Stat]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return &StatsSet{values: out}
}

// Merge copies every entry of other into s that s does not already have.
func (s *StatsSet) Merge(other *StatsSet) {
	if other == nil {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range other.values {
		if _, exists := s.values[k]; !exists {
			s.values[k] = v
		}
	}
}

// Len returns the number of stats currently cached.
func (s *StatsSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
