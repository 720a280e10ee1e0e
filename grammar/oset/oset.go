// Package oset provides insertion-ordered sets (component B): a mutable
// Set for building up membership during a single pass, and a Frozen
// snapshot with value equality and stable hashing for use as a map key
// (state merge keys, cached FIRST sets) or in algorithms that need to
// compare or union whole sets.
//
// Ordering is preserved so that generated tables and diagnostic messages
// are deterministic across runs; equality and hashing of Frozen
// deliberately ignore order, since two sets with the same elements in a
// different order must still merge (spec §3, §4.B).
package oset

import (
	"sort"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Set is a mutable, insertion-ordered collection of comparable keys.
type Set struct {
	backing *linkedhashset.Set
}

func New(keys ...string) *Set {
	s := &Set{backing: linkedhashset.New()}
	for _, k := range keys {
		s.backing.Add(k)
	}
	return s
}

// Add inserts key, returning true if it was not already present.
func (s *Set) Add(key string) bool {
	if s.backing.Contains(key) {
		return false
	}
	s.backing.Add(key)
	return true
}

// AddAll inserts every key of other, returning true if anything changed.
func (s *Set) AddAll(other *Set) bool {
	if other == nil {
		return false
	}
	changed := false
	for _, k := range other.Values() {
		if s.Add(k) {
			changed = true
		}
	}
	return changed
}

func (s *Set) Contains(key string) bool { return s.backing.Contains(key) }
func (s *Set) Len() int                 { return s.backing.Size() }

// Values returns the elements in insertion order.
func (s *Set) Values() []string {
	raw := s.backing.Values()
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = v.(string)
	}
	return out
}

func (s *Set) Remove(key string) {
	s.backing.Remove(key)
}

// Freeze snapshots s into a value-comparable, hashable Frozen set.
func (s *Set) Freeze() *Frozen {
	return newFrozen(s.Values())
}

// Frozen is an immutable set with content-based equality and hashing:
// order is preserved for iteration (Values) but ignored by Equal and
// Hash, so two sets built in different orders but with the same members
// are interchangeable wherever set identity (not sequence) matters.
type Frozen struct {
	values []string
	index  map[string]struct{}
}

func NewFrozen(keys ...string) *Frozen {
	return newFrozen(keys)
}

func newFrozen(keys []string) *Frozen {
	f := &Frozen{index: map[string]struct{}{}}
	for _, k := range keys {
		if _, ok := f.index[k]; ok {
			continue
		}
		f.index[k] = struct{}{}
		f.values = append(f.values, k)
	}
	return f
}

func (f *Frozen) Contains(key string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[key]
	return ok
}

func (f *Frozen) Len() int {
	if f == nil {
		return 0
	}
	return len(f.values)
}

// Values returns the elements in insertion order.
func (f *Frozen) Values() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.values...)
}

// Sorted returns the elements sorted lexically, for deterministic
// diagnostic output.
func (f *Frozen) Sorted() []string {
	v := f.Values()
	sort.Strings(v)
	return v
}

// Equal reports whether f and other contain exactly the same elements,
// regardless of order.
func (f *Frozen) Equal(other *Frozen) bool {
	if f.Len() != other.Len() {
		return false
	}
	for _, v := range f.Values() {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// IsSubset reports whether every element of f is also in other.
func (f *Frozen) IsSubset(other *Frozen) bool {
	for _, v := range f.Values() {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// Union returns a new Frozen containing the elements of both sets.
func (f *Frozen) Union(other *Frozen) *Frozen {
	out := append([]string(nil), f.Values()...)
	out = append(out, other.Values()...)
	return newFrozen(out)
}

// Difference returns a new Frozen containing the elements of f that are
// not in other.
func (f *Frozen) Difference(other *Frozen) *Frozen {
	var out []string
	for _, v := range f.Values() {
		if !other.Contains(v) {
			out = append(out, v)
		}
	}
	return newFrozen(out)
}

// Intersect returns a new Frozen containing the elements present in both
// sets.
func (f *Frozen) Intersect(other *Frozen) *Frozen {
	var out []string
	for _, v := range f.Values() {
		if other.Contains(v) {
			out = append(out, v)
		}
	}
	return newFrozen(out)
}

// Hash returns a stable structural hash of f's content, ignoring order.
// It is used to build the LALR state merge key (component I) from the
// (prod-index, dot) core keys of a state's kernel items.
func (f *Frozen) Hash() string {
	sorted := f.Sorted()
	h, err := structhash.Hash(sorted, 1)
	if err != nil {
		// structhash only fails on unsupported field kinds; a []string
		// is always supported, so this is unreachable in practice.
		return "hash-error:" + err.Error()
	}
	return h
}
