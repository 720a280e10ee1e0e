package grammar

import (
	"github.com/arfaoui/lalrgen/grammar/fixpoint"
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// EndMarker is the pseudo-terminal appended to a goal nonterminal's
// FOLLOW set, standing in for end-of-input: InitNt(goal) → goal gives
// goal nothing to be followed by except the end of the token stream.
const EndMarker = "$end"

// seqFirstFrom computes, for the body suffix seq[i:], the set of
// terminals (and EndMarker, never produced here) that can begin it, and
// whether the whole suffix can derive the empty string. LookaheadRule
// elements filter the set computed for everything after them, exactly as
// they do at parse time: seqFirstFrom(seq, i, ...) for a LookaheadRule at
// i recurses into i+1 first, then keeps only the terminals the rule
// allows. Grounded on original_source/espg/gen.py's seq_start (spec
// §4.H).
func seqFirstFrom(seq []symbol.Symbol, i int, first map[string]map[string]bool, nullable map[string]bool) (map[string]bool, bool) {
	if i >= len(seq) {
		return map[string]bool{}, true
	}
	s := seq[i]
	switch s.Kind {
	case symbol.KindTerminal:
		return map[string]bool{s.Name: true}, false
	case symbol.KindNonterminal:
		set := copyTerminalSet(first[s.Name])
		if nullable[s.Name] {
			rest, restNullable := seqFirstFrom(seq, i+1, first, nullable)
			for t := range rest {
				set[t] = true
			}
			return set, restNullable
		}
		return set, false
	case symbol.KindLookahead:
		rest, restNullable := seqFirstFrom(seq, i+1, first, nullable)
		filtered := map[string]bool{}
		for t := range rest {
			member := lookaheadSetHas(s.Set, t)
			if s.Positive == member {
				filtered[t] = true
			}
		}
		return filtered, restNullable
	default:
		return map[string]bool{}, true
	}
}

func copyTerminalSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func lookaheadSetHas(set []symbol.Symbol, terminal string) bool {
	for _, s := range set {
		if s.Kind == symbol.KindTerminal && s.Name == terminal {
			return true
		}
	}
	return false
}

// SuffixFirst exposes seqFirstFrom for a flat production's body, starting
// at from, for use by item closure (component I): the lookahead a dotted
// item propagates to a nonterminal it points at is SuffixFirst(rest) ∪
// {inherited} if the suffix is nullable.
func SuffixFirst(p Prod, from int, first map[string]map[string]bool, nullable map[string]bool) (map[string]bool, bool) {
	return seqFirstFrom(p.RHS, from, first, nullable)
}

// FirstOfSeqThenTerminal computes FIRST(seq[from:] · extra): the
// lookahead set a closure item derives for a nonterminal at position
// from-1, given the single inherited lookahead terminal extra.
func FirstOfSeqThenTerminal(p Prod, from int, extra string, first map[string]map[string]bool, nullable map[string]bool) map[string]bool {
	set, restNullable := seqFirstFrom(p.RHS, from, first, nullable)
	if restNullable {
		set[extra] = true
	}
	return set
}

// First computes the FIRST set of every nonterminal over the flattened
// production table, as a least fixed point. Grounded on
// original_source/espg/gen.py's start_sets/make_start_set_cache (spec
// §4.H).
func First(g *Grammar, pt *ProdTable, nullable map[string]bool) map[string]map[string]bool {
	first := map[string]map[string]bool{}
	for _, name := range g.Names() {
		first[name] = map[string]bool{}
	}
	fixpoint.Until(func() bool {
		changed := false
		for _, p := range pt.Prods {
			set, _ := seqFirstFrom(p.RHS, 0, first, nullable)
			for t := range set {
				if !first[p.NT][t] {
					first[p.NT][t] = true
					changed = true
				}
			}
		}
		return changed
	})
	return first
}

// Follow computes the FOLLOW set of every nonterminal: the terminals
// (and, for goal nonterminals, EndMarker) that can immediately follow
// some occurrence of it in a derivation from a goal. Subsumption
// (FOLLOW(A) flows into FOLLOW(B) when A → α B and what follows B in that
// production is nullable) is resolved as a least fixed point. Grounded on
// original_source/espg/gen.py's follow_sets (spec §4.H).
func Follow(g *Grammar, pt *ProdTable, first map[string]map[string]bool, nullable map[string]bool) map[string]map[string]bool {
	follow := map[string]map[string]bool{}
	for _, name := range g.Names() {
		follow[name] = map[string]bool{}
	}
	for _, goal := range g.Goals() {
		follow[goal][EndMarker] = true
	}

	fixpoint.Until(func() bool {
		changed := false
		for _, p := range pt.Prods {
			for i, s := range p.RHS {
				if s.Kind != symbol.KindNonterminal {
					continue
				}
				restSet, restNullable := seqFirstFrom(p.RHS, i+1, first, nullable)
				for t := range restSet {
					if !follow[s.Name][t] {
						follow[s.Name][t] = true
						changed = true
					}
				}
				if restNullable {
					for t := range follow[p.NT] {
						if !follow[s.Name][t] {
							follow[s.Name][t] = true
							changed = true
						}
					}
				}
			}
		}
		return changed
	})
	return follow
}
