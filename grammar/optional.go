package grammar

import (
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// rhsExpansion is one flattening of a production body: the body with a
// particular subset of its optional slots kept (and the rest dropped),
// plus the ascending list of original-body indices that were dropped.
type rhsExpansion struct {
	body     []symbol.Symbol
	removals []int
}

// expandOptionalSymbolsInRHS yields every body obtainable by replacing
// each Optional element of rhs either with its wrapped symbol or with
// nothing, paired with the ascending indices of the dropped elements
// (spec §4.F). Grounded directly on
// original_source/espg/gen.py's expand_optional_symbols_in_rhs.
func expandOptionalSymbolsInRHS(rhs []symbol.Symbol) []rhsExpansion {
	return expandFrom(rhs, 0)
}

func expandFrom(rhs []symbol.Symbol, start int) []rhsExpansion {
	i := start
	for i < len(rhs) && rhs[i].Kind != symbol.KindOptional {
		i++
	}
	if i == len(rhs) {
		return []rhsExpansion{{body: append([]symbol.Symbol(nil), rhs[start:]...)}}
	}

	var out []rhsExpansion
	for _, sub := range expandFrom(rhs, i+1) {
		without := rhsExpansion{
			body:     concatSymbols(rhs[start:i], sub.body),
			removals: append([]int{i}, sub.removals...),
		}
		out = append(out, without)

		with := rhsExpansion{
			body:     concatSymbols(rhs[start:i], append([]symbol.Symbol{*rhs[i].Inner}, sub.body...)),
			removals: append([]int(nil), sub.removals...),
		}
		out = append(out, with)
	}
	return out
}

func concatSymbols(a, b []symbol.Symbol) []symbol.Symbol {
	out := make([]symbol.Symbol, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// adjustReductionExpr rewrites a reduction expression so it indexes into
// a flattened body with removals dropped, per spec §4.F's adjust rules:
// an index into a removed slot becomes None; an index into a kept
// optional slot becomes Some(shifted index); an index into a kept plain
// slot is just shifted.
func adjustReductionExpr(expr *ReductionExpr, origBody []symbol.Symbol, removals []int) *ReductionExpr {
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case ExprIndex:
		i := expr.Index
		for _, r := range removals {
			if r == i {
				return NoneExpr
			}
		}
		wasOptional := i < len(origBody) && origBody[i].Kind == symbol.KindOptional
		shift := 0
		for _, r := range removals {
			if r < i {
				shift++
			}
		}
		shifted := Index(i - shift)
		if wasOptional {
			return Some(shifted)
		}
		return shifted
	case ExprNone:
		return NoneExpr
	case ExprSome:
		return Some(adjustReductionExpr(expr.Inner, origBody, removals))
	case ExprCall:
		args := make([]*ReductionExpr, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = adjustReductionExpr(a, origBody, removals)
		}
		return Call(expr.Method, args...)
	case ExprAccept:
		return Accept
	default:
		return expr
	}
}

// Prod is the flat production the rest of the pipeline operates on:
// (nt, source-index, rhs, removals, action), with rhs containing only
// terminals, plain nonterminals, and (until item construction absorbs
// them) LookaheadRule elements (spec §3).
type Prod struct {
	NT          string
	SourceIndex int
	RHS         []symbol.Symbol
	Removals    []int
	Action      *ReductionExpr
}

func (p Prod) IsEmpty() bool { return len(p.RHS) == 0 }

// ProdTable is the global, indexed list of flat productions produced by
// stage F, bucketed by nonterminal for fast lookup during closure and
// FOLLOW computation.
type ProdTable struct {
	Prods []Prod
	ByNT  map[string][]int
}

func (t *ProdTable) ForNT(name string) []int { return t.ByNT[name] }

// ExpandOptionals runs stage F: every production in g is replaced by one
// flat production per subset of its optional slots, each both recorded
// as a Grammar production (so the grammar stays self-consistent for
// later stages) and appended to the returned ProdTable with a global
// index.
func ExpandOptionals(g *Grammar) (*Grammar, *ProdTable, error) {
	newDefs := map[string]*NonterminalDef{}
	pt := &ProdTable{ByNT: map[string][]int{}}

	for _, name := range g.Names() {
		def, _ := g.Def(name)
		var entries []RHSEntry
		for srcIdx, e := range def.Entries {
			for _, exp := range expandOptionalSymbolsInRHS(e.Production.Body) {
				action := adjustReductionExpr(e.Production.Action, e.Production.Body, exp.removals)
				prod := Production{NT: name, Body: exp.body, Action: action}
				entries = append(entries, RHSEntry{Production: prod})

				flat := Prod{
					NT:          name,
					SourceIndex: srcIdx,
					RHS:         append([]symbol.Symbol(nil), exp.body...),
					Removals:    append([]int(nil), exp.removals...),
					Action:      action,
				}
				idx := len(pt.Prods)
				pt.Prods = append(pt.Prods, flat)
				pt.ByNT[name] = append(pt.ByNT[name], idx)
			}
		}
		newDefs[name] = &NonterminalDef{Entries: entries}
	}

	return g.WithNonterminals(newDefs, g.Names()), pt, nil
}
