package grammar

import (
	"fmt"

	"github.com/arfaoui/lalrgen/grammar/fixpoint"
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// Nullable computes the set of nonterminals that can derive the empty
// string, as a least fixed point over g's (still un-flattened) bodies: a
// nonterminal is nullable iff some production's every element is a
// LookaheadRule, an Optional, or a nullable nonterminal. Grounded on
// original_source/espg/gen.py's empty_nt_set (spec §4.E).
func Nullable(g *Grammar) map[string]bool {
	nullable := map[string]bool{}
	fixpoint.Until(func() bool {
		changed := false
		for _, name := range g.Names() {
			if nullable[name] {
				continue
			}
			def, _ := g.Def(name)
			for _, e := range def.Entries {
				if productionIsEmptyModulo(nullable, e.Production.Body) {
					nullable[name] = true
					changed = true
					break
				}
			}
		}
		return changed
	})
	return nullable
}

func productionIsEmptyModulo(nullable map[string]bool, body []symbol.Symbol) bool {
	for _, s := range body {
		switch s.Kind {
		case symbol.KindLookahead, symbol.KindOptional:
		case symbol.KindNonterminal:
			if !nullable[s.Name] {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Validate runs component E's two structural checks (cycle-freedom and
// no trailing lookahead restrictions) against g, given its precomputed
// nullable set. Both checks reason about every optional-subset flattening
// of each body, exactly as the function-expanded, not-yet-optional-
// expanded grammar will eventually be flattened by stage F.
func Validate(g *Grammar, nullable map[string]bool) error {
	if err := checkCycleFree(g, nullable); err != nil {
		return err
	}
	if err := checkTrailingLookahead(g, nullable); err != nil {
		return err
	}
	return nil
}

// checkCycleFree fails if some nonterminal can derive itself through a
// chain of productions that contribute nothing but further nonterminals
// (directly, or behind a nullable prefix). Grounded on
// original_source/espg/gen.py's check_cycle_free.
func checkCycleFree(g *Grammar, nullable map[string]bool) error {
	produces := map[string]map[string]bool{}
	for _, name := range g.Names() {
		produces[name] = map[string]bool{}
		def, _ := g.Def(name)
		for _, e := range def.Entries {
			for _, exp := range expandOptionalSymbolsInRHS(e.Production.Body) {
				if result, ok := directProduces(exp.body, nullable); ok {
					for _, r := range result {
						produces[name][r] = true
					}
				}
			}
		}
	}

	fixpoint.Until(func() bool {
		changed := false
		for orig, set := range produces {
			var toAdd []string
			for b := range set {
				for c := range produces[b] {
					if !set[c] {
						toAdd = append(toAdd, c)
					}
				}
			}
			for _, c := range toAdd {
				if !set[c] {
					set[c] = true
					changed = true
				}
			}
			_ = orig
		}
		return changed
	})

	for name := range produces {
		if produces[name][name] {
			return NewGrammarError(KindCycle, fmt.Errorf(
				"nonterminal %q can derive itself through a chain of productions that never contribute a terminal", name))
		}
	}
	return nil
}

// directProduces walks one flattened body left to right, collapsing
// LookaheadRule elements and committing to the set of nonterminals the
// body "reduces to" once nullable noise is discarded. It reports ok=false
// for bodies that contain a terminal (these contribute nothing to the
// produces relation).
func directProduces(body []symbol.Symbol, nullable map[string]bool) ([]string, bool) {
	var result []string
	allEmptySoFar := true
	for _, s := range body {
		switch s.Kind {
		case symbol.KindTerminal:
			return nil, false
		case symbol.KindLookahead:
			// contributes nothing
		case symbol.KindNonterminal:
			if nullable[s.Name] {
				if allEmptySoFar {
					result = append(result, s.Name)
				}
			} else {
				if !allEmptySoFar {
					return nil, false
				}
				allEmptySoFar = false
				result = []string{s.Name}
			}
		default:
			return nil, false
		}
	}
	return result, true
}

// checkTrailingLookahead fails if any flattened production body ends (once
// trailing nullable nonterminals are looked past) in a LookaheadRule — the
// stricter reading of spec §4.E's open question: a lookahead restriction
// that nothing but optional/nullable material follows is still dead
// weight, since no token can ever be consumed to discharge it.
func checkTrailingLookahead(g *Grammar, nullable map[string]bool) error {
	for _, name := range g.Names() {
		def, _ := g.Def(name)
		for _, e := range def.Entries {
			for _, exp := range expandOptionalSymbolsInRHS(e.Production.Body) {
				if endsInLookahead(exp.body, nullable) {
					return NewGrammarError(KindTrailingLookahead, fmt.Errorf(
						"production %s has a lookahead restriction with nothing but optional material after it",
						g.ProductionToString(Production{NT: name, Body: exp.body})))
				}
			}
		}
	}
	return nil
}

func endsInLookahead(body []symbol.Symbol, nullable map[string]bool) bool {
	for i := len(body) - 1; i >= 0; i-- {
		switch body[i].Kind {
		case symbol.KindLookahead:
			return true
		case symbol.KindNonterminal:
			if nullable[body[i].Name] {
				continue
			}
			return false
		default:
			return false
		}
	}
	return false
}
