package grammar

import (
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// EpsilonStep1 wraps every bare occurrence of a nullable nonterminal in a
// production body with Optional, pushing nullability out to each use site
// so that stage F's subset expansion can absorb it. A nonterminal element
// that is already wrapped (or that is itself not nullable) is left alone.
// Grounded on original_source/espg/gen.py's make_epsilon_free_step_1
// (spec §4.G).
func EpsilonStep1(g *Grammar, nullable map[string]bool) (*Grammar, error) {
	newDefs := map[string]*NonterminalDef{}
	for _, name := range g.Names() {
		def, _ := g.Def(name)
		entries := make([]RHSEntry, len(def.Entries))
		for i, e := range def.Entries {
			body := make([]symbol.Symbol, len(e.Production.Body))
			for j, s := range e.Production.Body {
				if s.Kind == symbol.KindNonterminal && nullable[s.Name] {
					wrapped, err := symbol.Optional(s)
					if err != nil {
						return nil, internalf("epsilon step 1: %w", err)
					}
					body[j] = wrapped
				} else {
					body[j] = s
				}
			}
			entries[i] = RHSEntry{Production: e.Production.WithBody(body)}
		}
		newDefs[name] = &NonterminalDef{Entries: entries}
	}
	return g.WithNonterminals(newDefs, g.Names()), nil
}

// EpsilonStep2 drops the now-redundant empty alternative from every
// non-goal nonterminal: once step 1 has pushed nullability to use sites,
// an explicit epsilon production contributes nothing a caller's Optional
// wrapper doesn't already cover. Goal nonterminals keep their empty
// alternative, if any, since nothing wraps a goal's own use. Operates on
// the flattened (post stage-F) grammar and ProdTable together so the two
// views stay in lockstep. Grounded on
// original_source/espg/gen.py's make_epsilon_free_step_2 (spec §4.G).
func EpsilonStep2(g *Grammar, pt *ProdTable) (*Grammar, *ProdTable) {
	goals := map[string]bool{}
	for _, name := range g.Goals() {
		goals[name] = true
	}

	newDefs := map[string]*NonterminalDef{}
	for _, name := range g.Names() {
		def, _ := g.Def(name)
		if goals[name] {
			newDefs[name] = def
			continue
		}
		var entries []RHSEntry
		for _, e := range def.Entries {
			if len(e.Production.Body) == 0 {
				continue
			}
			entries = append(entries, e)
		}
		newDefs[name] = &NonterminalDef{Entries: entries}
	}

	newPT := &ProdTable{ByNT: map[string][]int{}}
	for _, p := range pt.Prods {
		if !goals[p.NT] && p.IsEmpty() {
			continue
		}
		idx := len(newPT.Prods)
		newPT.Prods = append(newPT.Prods, p)
		newPT.ByNT[p.NT] = append(newPT.ByNT[p.NT], idx)
	}

	return g.WithNonterminals(newDefs, g.Names()), newPT
}
