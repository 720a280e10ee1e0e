package grammar

import (
	"testing"

	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// buildFlatProdTable runs just enough of the pipeline (no optional slots
// in these grammars, so stage F is a pass-through) to get a ProdTable and
// nullable set for FIRST/FOLLOW to operate on directly.
func buildFlatProdTable(t *testing.T, g *Grammar) (*ProdTable, map[string]bool) {
	t.Helper()
	nullable := Nullable(g)
	_, pt, err := ExpandOptionals(g)
	if err != nil {
		t.Fatalf("ExpandOptionals failed: %v", err)
	}
	return pt, nullable
}

// A small worked grammar:
//
//	S -> E
//	E -> T E'
//	E' -> + T E' | ε
//	T -> id
func exprGrammar(t *testing.T) *Grammar {
	t.Helper()
	return buildGrammar(t, func(b *Builder) {
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{symbol.Nonterminal("E")}})
		b.Add("E", Production{NT: "E", Body: []symbol.Symbol{symbol.Nonterminal("T"), symbol.Nonterminal("Eprime")}})
		b.Add("Eprime",
			Production{NT: "Eprime", Body: []symbol.Symbol{symbol.Terminal("+"), symbol.Nonterminal("T"), symbol.Nonterminal("Eprime")}},
			Production{NT: "Eprime", Body: nil},
		)
		b.Add("T", Production{NT: "T", Body: []symbol.Symbol{symbol.Terminal("id")}})
		b.Goal("S")
	})
}

func TestFirstOfExprGrammar(t *testing.T) {
	g := exprGrammar(t)
	pt, nullable := buildFlatProdTable(t, g)
	first := First(g, pt, nullable)

	for _, nt := range []string{"S", "E", "T"} {
		if !first[nt]["id"] {
			t.Fatalf("FIRST(%s) should contain id, got %v", nt, first[nt])
		}
	}
	if !first["Eprime"]["+"] {
		t.Fatalf("FIRST(Eprime) should contain +, got %v", first["Eprime"])
	}
	if first["T"]["+"] {
		t.Fatalf("FIRST(T) should not contain +, got %v", first["T"])
	}
}

func TestFollowOfExprGrammar(t *testing.T) {
	g := exprGrammar(t)
	pt, nullable := buildFlatProdTable(t, g)
	first := First(g, pt, nullable)
	follow := Follow(g, pt, first, nullable)

	if !follow["S"][EndMarker] {
		t.Fatalf("FOLLOW(S) should contain %s, got %v", EndMarker, follow["S"])
	}
	if !follow["E"][EndMarker] {
		t.Fatalf("FOLLOW(E) should contain %s (S -> E), got %v", EndMarker, follow["E"])
	}
	if !follow["Eprime"][EndMarker] {
		t.Fatalf("FOLLOW(Eprime) should contain %s, got %v", EndMarker, follow["Eprime"])
	}
	if !follow["T"]["+"] {
		t.Fatalf("FOLLOW(T) should contain + (from Eprime -> + T Eprime), got %v", follow["T"])
	}
	if !follow["T"][EndMarker] {
		t.Fatalf("FOLLOW(T) should contain %s via Eprime's nullability, got %v", EndMarker, follow["T"])
	}
}

func TestSuffixFirstNullableSuffixReportsNullableTrue(t *testing.T) {
	g := exprGrammar(t)
	pt, nullable := buildFlatProdTable(t, g)
	first := First(g, pt, nullable)

	idx := pt.ForNT("Eprime")[0] // + T Eprime
	set, nullableSuffix := SuffixFirst(pt.Prods[idx], 3, first, nullable)
	if !nullableSuffix {
		t.Fatalf("the suffix after all 3 elements should be considered nullable (empty)")
	}
	if len(set) != 0 {
		t.Fatalf("an empty suffix should have an empty FIRST set, got %v", set)
	}
}

func TestFirstOfSeqThenTerminalAppendsExtraWhenNullable(t *testing.T) {
	g := exprGrammar(t)
	pt, nullable := buildFlatProdTable(t, g)
	first := First(g, pt, nullable)

	// Eprime -> ε (index into the empty production)
	var emptyIdx int
	for _, i := range pt.ForNT("Eprime") {
		if pt.Prods[i].IsEmpty() {
			emptyIdx = i
		}
	}
	set := FirstOfSeqThenTerminal(pt.Prods[emptyIdx], 0, EndMarker, first, nullable)
	if !set[EndMarker] {
		t.Fatalf("an empty body's FIRST-then-extra should contain the extra terminal, got %v", set)
	}
}
