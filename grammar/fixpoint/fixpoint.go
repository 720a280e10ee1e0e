// Package fixpoint provides the fixed-point driver (component C): a
// single reusable "iterate until stable" loop for the monotone relations
// computed throughout the grammar-lowering pipeline (nullability, FIRST,
// FOLLOW's subsumption relation).
package fixpoint

// Fix computes the least fixed point of f above seed by applying f
// repeatedly until the result stops changing, as judged by equal.
// Termination depends on f being monotone with respect to whatever order
// equal/seed imply; callers are responsible for that invariant (spec
// §4.C).
func Fix[T any](f func(T) T, seed T, equal func(a, b T) bool) T {
	current := seed
	for {
		next := f(current)
		if equal(next, current) {
			return next
		}
		current = next
	}
}

// Until repeatedly calls step until it reports no change. step mutates
// whatever state it closes over and returns true iff it changed
// something on this pass. This shape fits callers that accumulate into a
// shared structure (maps of sets) rather than threading an immutable
// value through f, which is the common case in this package's own
// callers (grammar/validate.go, grammar/analysis.go).
func Until(step func() (changed bool)) {
	for step() {
	}
}
