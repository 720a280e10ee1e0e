package grammar

import (
	"testing"

	"github.com/arfaoui/lalrgen/grammar/symbol"
)

func TestEpsilonStep1WrapsBareNullableUse(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("Opt", Production{NT: "Opt", Body: nil})
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{symbol.Terminal("a"), symbol.Nonterminal("Opt")}})
		b.Goal("S")
	})
	nullable := Nullable(g)

	out, err := EpsilonStep1(g, nullable)
	if err != nil {
		t.Fatalf("EpsilonStep1 failed: %v", err)
	}
	sDef, _ := out.Def("S")
	body := sDef.Entries[0].Production.Body
	if !body[1].IsOptional() {
		t.Fatalf("expected the bare nullable use of Opt to be wrapped in Optional, got %v", body[1])
	}
}

func TestEpsilonStep1LeavesNonNullableUseBare(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("T", Production{NT: "T", Body: []symbol.Symbol{symbol.Terminal("x")}})
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{symbol.Nonterminal("T")}})
		b.Goal("S")
	})
	nullable := Nullable(g)

	out, err := EpsilonStep1(g, nullable)
	if err != nil {
		t.Fatalf("EpsilonStep1 failed: %v", err)
	}
	sDef, _ := out.Def("S")
	body := sDef.Entries[0].Production.Body
	if body[0].IsOptional() {
		t.Fatalf("a non-nullable nonterminal use should not be wrapped")
	}
}

func TestEpsilonStep2DropsEmptyNonGoalProduction(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("Opt", Production{NT: "Opt", Body: nil})
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{symbol.Terminal("a")}})
		b.Goal("S")
	})
	_, pt, err := ExpandOptionals(g)
	if err != nil {
		t.Fatalf("ExpandOptionals failed: %v", err)
	}

	outG, outPT := EpsilonStep2(g, pt)

	optDef, _ := outG.Def("Opt")
	if len(optDef.Entries) != 0 {
		t.Fatalf("expected Opt's empty alternative to be dropped, got %+v", optDef.Entries)
	}
	for _, p := range outPT.Prods {
		if p.NT == "Opt" {
			t.Fatalf("expected no flat productions left for Opt, found %+v", p)
		}
	}
}

func TestEpsilonStep2KeepsEmptyGoalProduction(t *testing.T) {
	g := buildGrammar(t, func(b *Builder) {
		b.Add("S", Production{NT: "S", Body: nil})
		b.Goal("S")
	})
	_, pt, err := ExpandOptionals(g)
	if err != nil {
		t.Fatalf("ExpandOptionals failed: %v", err)
	}

	outG, outPT := EpsilonStep2(g, pt)

	sDef, _ := outG.Def("S")
	if len(sDef.Entries) != 1 {
		t.Fatalf("expected the goal's empty alternative to survive, got %+v", sDef.Entries)
	}
	found := false
	for _, p := range outPT.Prods {
		if p.NT == "S" && p.IsEmpty() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the flat ProdTable to still carry S's empty production")
	}
}
