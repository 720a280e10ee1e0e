// Package token defines the contract a caller's lexer must satisfy to
// drive a compiled parser table: lalrgen builds tables, it does not
// tokenize. A Source is whatever the caller already has — a hand-written
// scanner, a generated lexer, a replayed token log.
package token

import "fmt"

// Token is one lexed unit: its terminal kind (must match a terminal name
// the compiled grammar uses) and its literal text, for diagnostics and
// for reduction actions that need the matched text.
type Token struct {
	Kind string
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Pos)
}

// EndOfInput is the terminal kind that stands for end of input in a
// compiled table (TakeEOF itself only returns a bool); it matches
// grammar.EndMarker so a caller can, if it wants to, build a Token for it
// using this constant instead of spelling "$end" itself.
const EndOfInput = "$end"

// Source is the minimal interface a driver needs from a lexer: look at
// the next token without consuming it, consume it, and learn whether the
// stream is exhausted. Implementations are free to tokenize eagerly or
// lazily; lalrgen never calls anything else on a Source.
type Source interface {
	// Peek returns the next token without advancing, or ok=false if the
	// stream is exhausted.
	Peek() (Token, bool)

	// Take consumes and returns the next token. Calling Take after Peek
	// returned ok=false is a programmer error.
	Take() Token

	// TakeEOF reports whether the stream has been fully consumed.
	TakeEOF() bool
}
