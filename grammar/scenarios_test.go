package grammar

import (
	"errors"
	"testing"

	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// S1 — dangling else: a ShiftReduceConflict on ELSE in the state that has
// just recognized "IF expr stmt".
func TestScenarioS1DanglingElse(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("stmt",
			Production{NT: "stmt", Body: []symbol.Symbol{symbol.Terminal("IF"), symbol.Nonterminal("expr"), symbol.Nonterminal("stmt")}},
			Production{NT: "stmt", Body: []symbol.Symbol{symbol.Terminal("IF"), symbol.Nonterminal("expr"), symbol.Nonterminal("stmt"), symbol.Terminal("ELSE"), symbol.Nonterminal("stmt")}},
			Production{NT: "stmt", Body: []symbol.Symbol{symbol.Terminal("other")}},
		)
		b.Add("expr", Production{NT: "expr", Body: []symbol.Symbol{symbol.Terminal("cond")}})
		b.Goal("stmt")
	})
	_, err := Compile(g)
	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Kind != KindShiftReduce {
		t.Fatalf("expected a ShiftReduceConflict, got %v", err)
	}
}

// S2 — arithmetic with precedence folded into the grammar shape itself
// (separate E/T/F levels): generation succeeds with no conflicts, and
// driving NUM STAR NUM PLUS NUM through the built table reduces
// (NUM STAR NUM) before PLUS is applied.
func arithGrammar(t *testing.T) *Grammar {
	t.Helper()
	return buildGrammar(t, func(b *Builder) {
		b.Add("E",
			Production{NT: "E", Body: []symbol.Symbol{symbol.Nonterminal("E"), symbol.Terminal("PLUS"), symbol.Nonterminal("T")}},
			Production{NT: "E", Body: []symbol.Symbol{symbol.Nonterminal("T")}},
		)
		b.Add("T",
			Production{NT: "T", Body: []symbol.Symbol{symbol.Nonterminal("T"), symbol.Terminal("STAR"), symbol.Nonterminal("F")}},
			Production{NT: "T", Body: []symbol.Symbol{symbol.Nonterminal("F")}},
		)
		b.Add("F",
			Production{NT: "F", Body: []symbol.Symbol{symbol.Terminal("LP"), symbol.Nonterminal("E"), symbol.Terminal("RP")}},
			Production{NT: "F", Body: []symbol.Symbol{symbol.Terminal("NUM")}},
		)
		b.Goal("E")
	})
}

func TestScenarioS2ArithmeticNoConflicts(t *testing.T) {
	g := arithGrammar(t)
	res, err := Compile(g)
	if err != nil {
		t.Fatalf("expected the precedence-shaped arithmetic grammar to build cleanly: %v", err)
	}

	// Drive NUM STAR NUM PLUS NUM by hand through the ACTION/GOTO tables
	// and check that the STAR term (T -> T STAR F) is reduced before any
	// reduction to E (i.e. NUM*NUM binds first).
	input := []string{"NUM", "STAR", "NUM", "PLUS", "NUM", EndMarker}
	start := res.Tables.Starts["E"]
	stack := []int{start}
	var reducedNonterminalsInOrder []string
	starReduction := -1
	pos := 0

	for {
		top := stack[len(stack)-1]
		terminal := input[pos]
		action, ok := res.Tables.Actions[top][terminal]
		if !ok {
			t.Fatalf("no action for %q in state %d (input so far: %v)", terminal, top, input[:pos+1])
		}
		switch action.Kind {
		case ActionShift:
			stack = append(stack, action.Target)
			pos++
		case ActionReduce:
			prod := res.Prods.Prods[action.Prod]
			stack = stack[:len(stack)-len(prod.RHS)]
			gt, ok := res.Tables.Gotos[stack[len(stack)-1]][prod.NT]
			if !ok {
				t.Fatalf("no goto for %s from state %d", prod.NT, stack[len(stack)-1])
			}
			stack = append(stack, gt)
			reducedNonterminalsInOrder = append(reducedNonterminalsInOrder, prod.NT)
			if prod.NT == "T" && len(prod.RHS) == 3 && starReduction == -1 {
				starReduction = len(reducedNonterminalsInOrder) - 1
			}
		case ActionAccept:
			goto done
		}
	}
done:
	foundE := -1
	for i, nt := range reducedNonterminalsInOrder {
		if nt == "E" && foundE == -1 {
			foundE = i
		}
	}
	if starReduction == -1 || foundE == -1 || starReduction >= foundE {
		t.Fatalf("expected T -> T STAR F (NUM*NUM) to reduce before the first E, reduction order: %v", reducedNonterminalsInOrder)
	}
}

// S3 — optional expansion: S -> A? B? flattens to exactly the four bodies
// and adjusted actions the spec names.
func TestScenarioS3OptionalExpansion(t *testing.T) {
	optA, err := symbol.Optional(symbol.Nonterminal("A"))
	if err != nil {
		t.Fatalf("symbol.Optional failed: %v", err)
	}
	optB, err := symbol.Optional(symbol.Nonterminal("B"))
	if err != nil {
		t.Fatalf("symbol.Optional failed: %v", err)
	}

	g := buildGrammar(t, func(b *Builder) {
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{optA, optB}, Action: Call("pair", Index(0), Index(1))})
		b.Add("A", Production{NT: "A", Body: []symbol.Symbol{symbol.Terminal("a")}})
		b.Add("B", Production{NT: "B", Body: []symbol.Symbol{symbol.Terminal("b")}})
		b.Goal("S")
	})

	_, pt, err := ExpandOptionals(g)
	if err != nil {
		t.Fatalf("ExpandOptionals failed: %v", err)
	}

	idxs := pt.ForNT("S")
	if len(idxs) != 4 {
		t.Fatalf("expected 4 flat productions for S, got %d", len(idxs))
	}

	type want struct {
		bodyLen  int
		removals []int
		action   string
	}
	wants := map[string]want{
		"A B": {2, []int{}, "pair(Some(0), Some(1))"},
		"A":   {1, []int{1}, "pair(Some(0), None)"},
		"B":   {1, []int{0}, "pair(None, Some(0))"},
		"":    {0, []int{0, 1}, "pair(None, None)"},
	}
	seen := map[string]bool{}
	for _, i := range idxs {
		p := pt.Prods[i]
		key := ""
		for j, s := range p.RHS {
			if j > 0 {
				key += " "
			}
			key += s.Name
		}
		w, ok := wants[key]
		if !ok {
			t.Fatalf("unexpected flattened body shape %q", key)
		}
		seen[key] = true
		if len(p.RHS) != w.bodyLen {
			t.Fatalf("body %q: len = %d, want %d", key, len(p.RHS), w.bodyLen)
		}
		if len(p.Removals) != len(w.removals) {
			t.Fatalf("body %q: removals = %v, want %v", key, p.Removals, w.removals)
		}
		for j, r := range w.removals {
			if p.Removals[j] != r {
				t.Fatalf("body %q: removals = %v, want %v", key, p.Removals, w.removals)
			}
		}
		if p.Action.String() != w.action {
			t.Fatalf("body %q: action = %v, want %v", key, p.Action, w.action)
		}
	}
	if len(seen) != 4 {
		t.Fatalf("expected to observe all 4 distinct flattened bodies, saw %v", seen)
	}
}

// S4 — lookahead restriction: a LookaheadRule as the last body element
// (trailing only an optional/absent continuation) must raise
// TrailingLookahead, even when another production does consume a
// following SEMI elsewhere in the grammar.
func TestScenarioS4LookaheadRestriction(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("asi", Production{NT: "asi", Body: []symbol.Symbol{
			symbol.Nonterminal("statement"),
			symbol.Lookahead([]symbol.Symbol{symbol.Terminal("SEMI")}, false),
		}})
		b.Add("statement", Production{NT: "statement", Body: []symbol.Symbol{symbol.Terminal("expr")}})
		b.Add("block", Production{NT: "block", Body: []symbol.Symbol{symbol.Nonterminal("asi"), symbol.Terminal("SEMI")}})
		b.Goal("block")
	})
	nullable := Nullable(g)
	err := Validate(g, nullable)
	var gErr *GrammarError
	if !errors.As(err, &gErr) || gErr.Kind != KindTrailingLookahead {
		t.Fatalf("expected TrailingLookahead, got %v", err)
	}
}

// A lookahead restriction written before a nonterminal must still apply
// when that nonterminal only reaches a terminal through further layers of
// nonterminal indirection (A -> B, B -> FORBIDDEN | ALLOWED): the guard on
// A has to thread through both step-ins, not just the immediate one.
func TestLookaheadRestrictionPropagatesThroughNestedNonterminals(t *testing.T) {
	restriction := symbol.Lookahead([]symbol.Symbol{symbol.Terminal("FORBIDDEN")}, false)
	g := buildGrammar(t, func(b *Builder) {
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{
			symbol.Terminal("x"), restriction, symbol.Nonterminal("A"), symbol.Terminal("y"),
		}})
		b.Add("A", Production{NT: "A", Body: []symbol.Symbol{symbol.Nonterminal("B")}})
		b.Add("B",
			Production{NT: "B", Body: []symbol.Symbol{symbol.Terminal("FORBIDDEN")}},
			Production{NT: "B", Body: []symbol.Symbol{symbol.Terminal("ALLOWED")}},
		)
		b.Goal("S")
	})
	res, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	start := res.Tables.Starts["S"]
	shiftX, ok := res.Tables.Actions[start]["x"]
	if !ok || shiftX.Kind != ActionShift {
		t.Fatalf("expected a shift on x from the start state")
	}
	afterX := shiftX.Target

	if _, has := res.Tables.Actions[afterX]["FORBIDDEN"]; has {
		t.Fatalf("the restriction before A should block FORBIDDEN two nonterminal layers down (A -> B -> FORBIDDEN), but a shift action exists")
	}
	if action, has := res.Tables.Actions[afterX]["ALLOWED"]; !has || action.Kind != ActionShift {
		t.Fatalf("ALLOWED should still be shiftable through A -> B -> ALLOWED, unaffected by the restriction")
	}
}

// S5 — parameterization: Expr(In) -> Assign(In) | Conditional(In), used as
// Expr(yield), specializes to concrete names with no Var/Apply survivors.
func TestScenarioS5Parameterization(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{
			symbol.Apply("Expr", []symbol.ParamArg{{Param: "In", Value: "yield"}}),
		}})
		b.AddParameterized("Expr", []string{"In"},
			RHSEntry{Production: Production{NT: "Expr", Body: []symbol.Symbol{
				symbol.Apply("Assign", []symbol.ParamArg{{Param: "In", VarRef: "In"}}),
			}}},
			RHSEntry{Production: Production{NT: "Expr", Body: []symbol.Symbol{
				symbol.Apply("Conditional", []symbol.ParamArg{{Param: "In", VarRef: "In"}}),
			}}},
		)
		b.AddParameterized("Assign", []string{"In"}, RHSEntry{
			Production: Production{NT: "Assign", Body: []symbol.Symbol{symbol.Terminal("assign_tok")}},
		})
		b.AddParameterized("Conditional", []string{"In"}, RHSEntry{
			Production: Production{NT: "Conditional", Body: []symbol.Symbol{symbol.Terminal("cond_tok")}},
		})
		b.Goal("S")
	})

	out, err := ExpandFunctions(g)
	if err != nil {
		t.Fatalf("ExpandFunctions failed: %v", err)
	}
	for _, name := range []string{"Expr{In=yield}", "Assign{In=yield}", "Conditional{In=yield}"} {
		if !out.IsNonterminal(name) {
			t.Fatalf("expected specialized nonterminal %q, got names %v", name, out.Names())
		}
	}
	for _, name := range out.Names() {
		def, _ := out.Def(name)
		if def.Parameterized() {
			t.Fatalf("no nonterminal should remain parameterized after expansion, but %q has params %v", name, def.Params)
		}
		for _, e := range def.Entries {
			for _, s := range e.Production.Body {
				if s.Kind == symbol.KindApply || s.Kind == symbol.KindVar {
					t.Fatalf("no Apply/Var markers should survive expansion, found %v in %q", s, name)
				}
			}
			if e.conditional() {
				t.Fatalf("no conditional entries should survive expansion, found one in %q", name)
			}
		}
	}
}

// S6 — LALR merging: two canonical-LR states sharing a core but differing
// only in lookahead collapse into one state whose lookahead is the union.
// A diamond grammar (S -> a C x | b C y, C -> c) forces the core
// C -> c . to be reached under two different inherited lookaheads, x and
// y, so the union is observable as the reduce set of that one state.
func TestScenarioS6LALRMerging(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("S",
			Production{NT: "S", Body: []symbol.Symbol{symbol.Terminal("a"), symbol.Nonterminal("C"), symbol.Terminal("x")}},
			Production{NT: "S", Body: []symbol.Symbol{symbol.Terminal("b"), symbol.Nonterminal("C"), symbol.Terminal("y")}},
		)
		b.Add("C", Production{NT: "C", Body: []symbol.Symbol{symbol.Terminal("c")}})
		b.Goal("S")
	})
	res, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// Find the state reached after shifting 'c': its action row must
	// offer a reduce on both 'x' and 'y', the union of what canonical LR
	// would have kept as two separate states.
	found := false
	for _, row := range res.Tables.Actions {
		_, hasX := row["x"]
		_, hasY := row["y"]
		if hasX && hasY {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected one merged state whose reduce lookahead set is {x, y} (the union), got actions: %+v", res.Tables.Actions)
	}
}
