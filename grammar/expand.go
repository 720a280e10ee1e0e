package grammar

import (
	"fmt"

	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// pendingExpansion is one (base nonterminal, argument binding) pair
// waiting to be specialized, keyed by its already-computed derived name
// so that the same specialization is never queued twice (spec §4.D).
type pendingExpansion struct {
	derivedName string
	base        string
	env         map[string]string
}

// ExpandFunctions specializes every parameterized nonterminal reachable
// from a goal, evaluates ConditionalRhs entries against the current
// argument binding, and materializes Apply references into concrete
// nonterminal names (component D). The result contains no Var, Apply, or
// Conditional markers and no parameterized entries.
func ExpandFunctions(g *Grammar) (*Grammar, error) {
	assigned := map[string]bool{}
	var order []string
	var todo []pendingExpansion

	enqueue := func(p pendingExpansion) {
		if assigned[p.derivedName] {
			return
		}
		assigned[p.derivedName] = true
		order = append(order, p.derivedName)
		todo = append(todo, p)
	}

	for _, goal := range g.Goals() {
		enqueue(pendingExpansion{derivedName: goal, base: goal})
	}

	result := map[string]*NonterminalDef{}

	var expandElement func(s symbol.Symbol, env map[string]string) (symbol.Symbol, error)
	expandElement = func(s symbol.Symbol, env map[string]string) (symbol.Symbol, error) {
		switch s.Kind {
		case symbol.KindTerminal:
			return s, nil
		case symbol.KindLookahead:
			return s, nil
		case symbol.KindNonterminal:
			enqueue(pendingExpansion{derivedName: s.Name, base: s.Name})
			return s, nil
		case symbol.KindOptional:
			if s.Inner == nil {
				return symbol.Symbol{}, internalf("expand: Optional with nil inner")
			}
			in, err := expandElement(*s.Inner, env)
			if err != nil {
				return symbol.Symbol{}, err
			}
			return symbol.Optional(in)
		case symbol.KindApply:
			resolved, err := s.WithResolvedArgs(env)
			if err != nil {
				return symbol.Symbol{}, fmt.Errorf("expanding %s: %w", s.Base, err)
			}
			name, err := resolved.DerivedName()
			if err != nil {
				return symbol.Symbol{}, err
			}
			childEnv := map[string]string{}
			for _, a := range resolved.Args {
				childEnv[a.Param] = a.Value
			}
			enqueue(pendingExpansion{derivedName: name, base: resolved.Base, env: childEnv})
			return symbol.Nonterminal(name), nil
		default:
			return symbol.Symbol{}, internalf("expand: unexpected symbol kind %v in production body", s.Kind)
		}
	}

	expandEntries := func(name string, def *NonterminalDef, env map[string]string) ([]RHSEntry, error) {
		var out []RHSEntry
		for _, e := range def.Entries {
			if e.conditional() {
				if env == nil || env[e.CondParam] != e.CondValue {
					continue
				}
			}
			body := make([]symbol.Symbol, len(e.Production.Body))
			for i, s := range e.Production.Body {
				es, err := expandElement(s, env)
				if err != nil {
					return nil, err
				}
				body[i] = es
			}
			out = append(out, RHSEntry{Production: Production{NT: name, Body: body, Action: e.Production.Action}})
		}
		return out, nil
	}

	for i := 0; i < len(todo); i++ {
		p := todo[i]
		if _, done := result[p.derivedName]; done {
			continue
		}
		def, ok := g.Def(p.base)
		if !ok {
			return nil, NewGrammarError(KindInvalidGrammar, fmt.Errorf("undefined nonterminal %q", p.base))
		}
		if def.Parameterized() && len(p.env) != len(def.Params) {
			return nil, NewGrammarError(KindInvalidGrammar, fmt.Errorf("nonterminal %q takes %d parameter(s), applied with %d", p.base, len(def.Params), len(p.env)))
		}
		entries, err := expandEntries(p.derivedName, def, p.env)
		if err != nil {
			return nil, err
		}
		result[p.derivedName] = &NonterminalDef{Entries: entries}
	}

	return g.WithNonterminals(result, order), nil
}
