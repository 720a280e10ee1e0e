package main

import (
	"fmt"
	"sort"

	"github.com/arfaoui/lalrgen/grammar"
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// The types in this file are the JSON wire format for a grammar: a
// serialization of the in-memory model grammar.Builder constructs, not a
// grammar surface syntax in its own right (no parser or lexer is
// involved in reading it — encoding/json does all the work). This is the
// CLI's only supported input shape (SPEC_FULL.md §3).

type symbolJSON struct {
	Kind     string       `json:"kind"`
	Name     string       `json:"name,omitempty"`
	Inner    *symbolJSON  `json:"inner,omitempty"`
	Set      []symbolJSON `json:"set,omitempty"`
	Positive bool         `json:"positive,omitempty"`
	Base     string       `json:"base,omitempty"`
	Args     []argJSON    `json:"args,omitempty"`
}

type argJSON struct {
	Param string `json:"param"`
	Value string `json:"value,omitempty"`
	Var   string `json:"var,omitempty"`
}

type actionJSON struct {
	Kind   string       `json:"kind"`
	Index  int          `json:"index,omitempty"`
	Inner  *actionJSON  `json:"inner,omitempty"`
	Method string       `json:"method,omitempty"`
	Args   []actionJSON `json:"args,omitempty"`
}

type entryJSON struct {
	Body      []symbolJSON `json:"body"`
	Action    *actionJSON  `json:"action,omitempty"`
	CondParam string       `json:"cond_param,omitempty"`
	CondValue string       `json:"cond_value,omitempty"`
}

type nonterminalJSON struct {
	Params  []string    `json:"params,omitempty"`
	Entries []entryJSON `json:"entries"`
}

type grammarJSON struct {
	Nonterminals map[string]nonterminalJSON `json:"nonterminals"`
	Order        []string                   `json:"order,omitempty"`
	Goals        []string                   `json:"goals"`
}

func toSymbol(s symbolJSON) (symbol.Symbol, error) {
	switch s.Kind {
	case "terminal":
		return symbol.Terminal(s.Name), nil
	case "nonterminal":
		return symbol.Nonterminal(s.Name), nil
	case "var":
		return symbol.VarRef(s.Name), nil
	case "optional":
		if s.Inner == nil {
			return symbol.Symbol{}, fmt.Errorf("optional symbol missing inner")
		}
		inner, err := toSymbol(*s.Inner)
		if err != nil {
			return symbol.Symbol{}, err
		}
		return symbol.Optional(inner)
	case "lookahead":
		set := make([]symbol.Symbol, len(s.Set))
		for i, t := range s.Set {
			sym, err := toSymbol(t)
			if err != nil {
				return symbol.Symbol{}, err
			}
			set[i] = sym
		}
		return symbol.Lookahead(set, s.Positive), nil
	case "apply":
		args := make([]symbol.ParamArg, len(s.Args))
		for i, a := range s.Args {
			if a.Var != "" {
				args[i] = symbol.ParamArg{Param: a.Param, VarRef: a.Var}
			} else {
				args[i] = symbol.ParamArg{Param: a.Param, Value: a.Value}
			}
		}
		return symbol.Apply(s.Base, args), nil
	default:
		return symbol.Symbol{}, fmt.Errorf("unknown symbol kind %q", s.Kind)
	}
}

func toAction(a *actionJSON) (*grammar.ReductionExpr, error) {
	if a == nil {
		return nil, nil
	}
	switch a.Kind {
	case "index":
		return grammar.Index(a.Index), nil
	case "none":
		return grammar.NoneExpr, nil
	case "some":
		inner, err := toAction(a.Inner)
		if err != nil {
			return nil, err
		}
		return grammar.Some(inner), nil
	case "call":
		args := make([]*grammar.ReductionExpr, len(a.Args))
		for i := range a.Args {
			sub, err := toAction(&a.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = sub
		}
		return grammar.Call(a.Method, args...), nil
	case "accept":
		return grammar.Accept, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func buildGrammarFromJSON(doc grammarJSON) (*grammar.Grammar, error) {
	order := doc.Order
	if len(order) == 0 {
		for name := range doc.Nonterminals {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	b := grammar.NewBuilder()
	for _, name := range order {
		nt, ok := doc.Nonterminals[name]
		if !ok {
			return nil, fmt.Errorf("order lists %q but it has no definition", name)
		}
		if len(nt.Params) > 0 {
			entries := make([]grammar.RHSEntry, len(nt.Entries))
			for i, e := range nt.Entries {
				entry, err := toEntry(name, e)
				if err != nil {
					return nil, fmt.Errorf("%s entry %d: %w", name, i, err)
				}
				entries[i] = entry
			}
			b.AddParameterized(name, nt.Params, entries...)
			continue
		}

		prods := make([]grammar.Production, len(nt.Entries))
		for i, e := range nt.Entries {
			entry, err := toEntry(name, e)
			if err != nil {
				return nil, fmt.Errorf("%s entry %d: %w", name, i, err)
			}
			prods[i] = entry.Production
		}
		b.Add(name, prods...)
	}
	for _, goal := range doc.Goals {
		b.Goal(goal)
	}
	return b.Build()
}

func toEntry(nt string, e entryJSON) (grammar.RHSEntry, error) {
	body := make([]symbol.Symbol, len(e.Body))
	for i, s := range e.Body {
		sym, err := toSymbol(s)
		if err != nil {
			return grammar.RHSEntry{}, err
		}
		body[i] = sym
	}
	action, err := toAction(e.Action)
	if err != nil {
		return grammar.RHSEntry{}, err
	}
	return grammar.RHSEntry{
		Production: grammar.Production{NT: nt, Body: body, Action: action},
		CondParam:  e.CondParam,
		CondValue:  e.CondValue,
	}, nil
}
