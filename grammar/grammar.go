// Package grammar implements the core of the parser-table generator: the
// grammar-lowering pipeline (components D-G) and LALR(1) state
// construction (components H-J) described in spec §§3-4. The package is
// organized the way nihei9-vartan's grammar package is — one package,
// one file per concern — rather than split across many small packages,
// because the stages are as tightly coupled as spec §1 says they are.
package grammar

import (
	"fmt"
	"strings"

	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// ExprKind identifies which of the five reduction-expression shapes a
// ReductionExpr holds (spec §3).
type ExprKind int

const (
	ExprIndex ExprKind = iota
	ExprNone
	ExprSome
	ExprCall
	ExprAccept
)

// ReductionExpr is the small expression tree a production's action
// carries: which captured child values (if any) a reduction keeps, and
// how. Stage F (optional expansion) rewrites these trees; the external
// emitter turns them into target-language code.
type ReductionExpr struct {
	Kind ExprKind

	Index int // ExprIndex

	Inner *ReductionExpr // ExprSome

	Method string           // ExprCall
	Args   []*ReductionExpr // ExprCall
}

func Index(i int) *ReductionExpr { return &ReductionExpr{Kind: ExprIndex, Index: i} }

var NoneExpr = &ReductionExpr{Kind: ExprNone}

func Some(inner *ReductionExpr) *ReductionExpr { return &ReductionExpr{Kind: ExprSome, Inner: inner} }

func Call(method string, args ...*ReductionExpr) *ReductionExpr {
	return &ReductionExpr{Kind: ExprCall, Method: method, Args: args}
}

var Accept = &ReductionExpr{Kind: ExprAccept}

func (e *ReductionExpr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprIndex:
		return fmt.Sprintf("%d", e.Index)
	case ExprNone:
		return "None"
	case ExprSome:
		return fmt.Sprintf("Some(%s)", e.Inner.String())
	case ExprCall:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.Method, strings.Join(parts, ", "))
	case ExprAccept:
		return "accept"
	default:
		return "<invalid action>"
	}
}

// Production is a single (nonterminal, body, action) rule, possibly
// still containing Optional/Apply/Var/LookaheadRule elements prior to
// lowering (spec §3).
type Production struct {
	NT     string
	Body   []symbol.Symbol
	Action *ReductionExpr
}

func (p Production) WithBody(body []symbol.Symbol) Production {
	return Production{NT: p.NT, Body: body, Action: p.Action}
}

// RHSEntry is one alternative in a (possibly parameterized) nonterminal's
// definition. CondParam is non-empty iff this entry is a ConditionalRhs:
// it survives function expansion only when the enclosing Apply bound
// CondParam to CondValue (spec §4.D).
type RHSEntry struct {
	Production Production
	CondParam  string
	CondValue  string
}

func (e RHSEntry) conditional() bool { return e.CondParam != "" }

// NonterminalDef is the value side of a Grammar's nonterminal map: either
// a plain production list (Params is empty) or a parameterized
// definition whose bodies may reference Params via symbol.VarRef and
// whose entries may be conditional on a parameter's bound value.
type NonterminalDef struct {
	Params  []string
	Entries []RHSEntry
}

func (d *NonterminalDef) Parameterized() bool { return len(d.Params) > 0 }

// Productions returns the unconditional production list of a
// non-parameterized definition. It is a convenience for the common case;
// parameterized definitions must be walked via Entries directly.
func (d *NonterminalDef) Productions() []Production {
	out := make([]Production, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, e.Production)
	}
	return out
}

// Grammar is the immutable, in-memory representation the core consumes
// (spec §6: "constructed in memory by the caller ... the core consumes
// the immutable object"). Use Builder to construct one.
type Grammar struct {
	order []string
	defs  map[string]*NonterminalDef
	goals []string
}

func (g *Grammar) Names() []string { return append([]string(nil), g.order...) }
func (g *Grammar) Goals() []string { return append([]string(nil), g.goals...) }

func (g *Grammar) Def(name string) (*NonterminalDef, bool) {
	d, ok := g.defs[name]
	return d, ok
}

func (g *Grammar) IsNonterminal(name string) bool {
	_, ok := g.defs[name]
	return ok
}

func (g *Grammar) IsTerminal(s symbol.Symbol) bool {
	return s.IsTerminal()
}

func (g *Grammar) IsNT(s symbol.Symbol) bool {
	return s.IsNonterminal() && g.IsNonterminal(s.Name)
}

// WithNonterminals returns a shallow copy of g whose nonterminal map is
// replaced by defs and whose name order is order, taken as given; the
// goal list is carried over unchanged. This is the "with_nonterminals"
// constructor spec §4.A calls for.
func (g *Grammar) WithNonterminals(defs map[string]*NonterminalDef, order []string) *Grammar {
	return &Grammar{
		order: append([]string(nil), order...),
		defs:  defs,
		goals: append([]string(nil), g.goals...),
	}
}

// InitNTName returns the name of the implicit init nonterminal for goal,
// InitNt(goal) in spec §3: "InitNt(G) → G" with action accept.
func InitNTName(goal string) string { return "InitNt(" + goal + ")" }

func (g *Grammar) ProductionToString(p Production) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s →", p.NT)
	for _, s := range p.Body {
		fmt.Fprintf(&b, " %s", s.String())
	}
	if len(p.Body) == 0 {
		fmt.Fprintf(&b, " ε")
	}
	return b.String()
}

func (g *Grammar) SymbolsToString(syms []symbol.Symbol) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Builder assembles a Grammar from nonterminal definitions and a goal
// list, then validates it (every referenced nonterminal name must be a
// key of the grammar — spec §3's first invariant).
type Builder struct {
	order []string
	defs  map[string]*NonterminalDef
	goals []string
}

func NewBuilder() *Builder {
	return &Builder{defs: map[string]*NonterminalDef{}}
}

func (b *Builder) Add(name string, prods ...Production) *Builder {
	entries := make([]RHSEntry, len(prods))
	for i, p := range prods {
		entries[i] = RHSEntry{Production: p}
	}
	if _, ok := b.defs[name]; !ok {
		b.order = append(b.order, name)
	}
	b.defs[name] = &NonterminalDef{Entries: entries}
	return b
}

func (b *Builder) AddParameterized(name string, params []string, entries ...RHSEntry) *Builder {
	if _, ok := b.defs[name]; !ok {
		b.order = append(b.order, name)
	}
	b.defs[name] = &NonterminalDef{Params: params, Entries: entries}
	return b
}

func (b *Builder) Goal(name string) *Builder {
	b.goals = append(b.goals, name)
	return b
}

func (b *Builder) Build() (*Grammar, error) {
	if len(b.goals) == 0 {
		return nil, NewGrammarError(KindInvalidGrammar, fmt.Errorf("a grammar needs at least one goal"))
	}
	g := &Grammar{order: append([]string(nil), b.order...), defs: b.defs, goals: append([]string(nil), b.goals...)}

	referenced := func(s symbol.Symbol) (string, bool) {
		switch s.Kind {
		case symbol.KindNonterminal:
			return s.Name, true
		case symbol.KindOptional:
			if s.Inner != nil && s.Inner.Kind == symbol.KindNonterminal {
				return s.Inner.Name, true
			}
		case symbol.KindApply:
			return s.Base, true
		}
		return "", false
	}

	for _, name := range g.goals {
		if !g.IsNonterminal(name) {
			return nil, NewGrammarError(KindInvalidGrammar, fmt.Errorf("goal %q is not a defined nonterminal", name))
		}
	}
	for _, name := range g.order {
		def := g.defs[name]
		for _, e := range def.Entries {
			for _, s := range e.Production.Body {
				if nt, ok := referenced(s); ok {
					if !g.IsNonterminal(nt) {
						return nil, NewGrammarError(KindInvalidGrammar, fmt.Errorf("nonterminal %q references undefined nonterminal %q", name, nt))
					}
				}
			}
		}
	}
	return g, nil
}
