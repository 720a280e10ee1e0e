package grammar

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// Kind is the error taxonomy from spec §7.
type Kind int

const (
	KindInvalidGrammar Kind = iota
	KindCycle
	KindTrailingLookahead
	KindActiveLookaheadAtReduce
	KindReduceReduce
	KindShiftReduce
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidGrammar:
		return "InvalidGrammar"
	case KindCycle:
		return "InvalidGrammar/Cycle"
	case KindTrailingLookahead:
		return "InvalidGrammar/TrailingLookahead"
	case KindActiveLookaheadAtReduce:
		return "InvalidGrammar/ActiveLookaheadAtReduce"
	case KindReduceReduce:
		return "ReduceReduceConflict"
	case KindShiftReduce:
		return "ShiftReduceConflict"
	case KindInternal:
		return "InternalInvariantViolation"
	default:
		return "Unknown"
	}
}

// reflowWidth is the terminal width diagnostic text is wrapped to.
const reflowWidth = 96

func reflow(s string) string {
	return rosed.Edit(s).WrapOpts(reflowWidth, rosed.Options{PreserveParagraphs: true}).String()
}

// GrammarError reports a grammar that failed validation before state
// construction ever began: a cycle, a trailing lookahead restriction, or
// any other structural problem caught before stage J runs.
type GrammarError struct {
	Kind  Kind
	Cause error
}

func NewGrammarError(kind Kind, cause error) *GrammarError {
	return &GrammarError{Kind: kind, Cause: cause}
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *GrammarError) Unwrap() error { return e.Cause }

// ConflictError reports a shift-reduce or reduce-reduce conflict found
// during state construction (component J). Summary names the state ID
// and the terminal; Explanation names the conflicting production(s),
// pretty-printed (for shift-reduce, only the first reduce candidate), and
// suggests how to rewrite the grammar. It carries no traceback of the
// symbols leading to the conflicting state and no derivation chain
// showing why the terminal can follow the nonterminal.
type ConflictError struct {
	Kind        Kind
	Summary     string
	Explanation string
}

func (e *ConflictError) Error() string {
	if e.Explanation == "" {
		return e.Summary
	}
	return e.Summary + "\n" + reflow(e.Explanation)
}

// InternalError reports an assertion failure in item-compatibility,
// closure, or state-merge logic (spec §7): a bug in the generator, never
// in the input grammar.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal invariant violation (this is a bug in the generator, not the grammar): %v", e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }

func internalf(format string, args ...any) error {
	return &InternalError{Cause: fmt.Errorf(format, args...)}
}
