// Package symbol defines the tagged-union symbol type shared by every
// stage of the grammar-lowering pipeline: terminals, nonterminals,
// optional wrappers, lookahead guards, parameter placeholders, and
// parameterized-nonterminal applications.
package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies which of the six symbol variants a Symbol holds.
type Kind int

const (
	KindTerminal Kind = iota
	KindNonterminal
	KindOptional
	KindLookahead
	KindVar
	KindApply
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindNonterminal:
		return "non-terminal"
	case KindOptional:
		return "optional"
	case KindLookahead:
		return "lookahead"
	case KindVar:
		return "var"
	case KindApply:
		return "apply"
	default:
		return "unknown"
	}
}

// ParamArg binds a parameter of a parameterized nonterminal to either a
// literal value or a Var reference that must be resolved against the
// caller's own argument binding during expansion (component D).
type ParamArg struct {
	Param  string
	Value  string
	VarRef string // non-empty iff this arg is `Var(VarRef)`, not yet resolved
}

func (a ParamArg) isVar() bool { return a.VarRef != "" }

// Symbol is the tagged union described in spec §3. Most call sites only
// ever see Terminal and Nonterminal once the lowering pipeline (stages
// D-G) has run; the other variants are intermediate representations used
// while lowering a raw grammar.
//
// Symbol is not comparable with ==: Optional/LookaheadRule/Apply carry
// slice payloads. Code that needs to use a Symbol as a map key calls
// Key() and indexes by that string instead.
type Symbol struct {
	Kind Kind

	// Name holds the terminal kind identifier (Terminal), the
	// nonterminal name (Nonterminal; may already be a derived name like
	// "Expr{In=yield}"), or the parameter name (Var).
	Name string

	// Inner is the wrapped symbol of an Optional. It is always a
	// Terminal or Nonterminal; Optional never wraps itself.
	Inner *Symbol

	// Set and Positive describe a LookaheadRule: the guarded terminal
	// set and whether membership in it is required (true) or forbidden
	// (false).
	Set      []Symbol
	Positive bool

	// Base and Args describe an Apply: the nonterminal being applied
	// and its argument bindings, which may still contain unresolved Var
	// references until stage D resolves them.
	Base string
	Args []ParamArg
}

func Terminal(kind string) Symbol {
	return Symbol{Kind: KindTerminal, Name: kind}
}

func Nonterminal(name string) Symbol {
	return Symbol{Kind: KindNonterminal, Name: name}
}

func VarRef(name string) Symbol {
	return Symbol{Kind: KindVar, Name: name}
}

// Optional wraps inner in an Optional symbol. It returns an error if
// inner is itself Optional, a LookaheadRule, a Var, or an Apply.
func Optional(inner Symbol) (Symbol, error) {
	switch inner.Kind {
	case KindTerminal, KindNonterminal:
		in := inner
		return Symbol{Kind: KindOptional, Inner: &in}, nil
	default:
		return Symbol{}, fmt.Errorf("symbol: Optional may only wrap a terminal or non-terminal, got %v", inner.Kind)
	}
}

func Lookahead(set []Symbol, positive bool) Symbol {
	cp := append([]Symbol(nil), set...)
	return Symbol{Kind: KindLookahead, Set: cp, Positive: positive}
}

func Apply(base string, args []ParamArg) Symbol {
	cp := append([]ParamArg(nil), args...)
	return Symbol{Kind: KindApply, Base: base, Args: cp}
}

func (s Symbol) IsTerminal() bool     { return s.Kind == KindTerminal }
func (s Symbol) IsNonterminal() bool  { return s.Kind == KindNonterminal }
func (s Symbol) IsOptional() bool     { return s.Kind == KindOptional }
func (s Symbol) IsLookaheadRule() bool { return s.Kind == KindLookahead }
func (s Symbol) IsVar() bool          { return s.Kind == KindVar }
func (s Symbol) IsApply() bool        { return s.Kind == KindApply }

// Resolved reports whether an Apply symbol's arguments are all concrete
// (no remaining Var references).
func (s Symbol) Resolved() bool {
	if s.Kind != KindApply {
		return true
	}
	for _, a := range s.Args {
		if a.isVar() {
			return false
		}
	}
	return true
}

// WithResolvedArgs returns a copy of an Apply symbol with every Var
// argument replaced by the value bound to that name in env.
func (s Symbol) WithResolvedArgs(env map[string]string) (Symbol, error) {
	if s.Kind != KindApply {
		return s, nil
	}
	out := make([]ParamArg, len(s.Args))
	for i, a := range s.Args {
		if a.isVar() {
			v, ok := env[a.VarRef]
			if !ok {
				return Symbol{}, fmt.Errorf("symbol: no binding for parameter %q", a.VarRef)
			}
			out[i] = ParamArg{Param: a.Param, Value: v}
		} else {
			out[i] = a
		}
	}
	return Symbol{Kind: KindApply, Base: s.Base, Args: out}, nil
}

// DerivedName returns the concrete nonterminal name an Apply symbol
// expands to once all of its arguments are resolved: the bare base name
// if there are no arguments, or "Base{param=value,...}" with arguments
// sorted by parameter name for determinism (spec §4.D).
func (s Symbol) DerivedName() (string, error) {
	if s.Kind != KindApply {
		return "", fmt.Errorf("symbol: DerivedName called on a %v symbol", s.Kind)
	}
	if len(s.Args) == 0 {
		return s.Base, nil
	}
	sorted := append([]ParamArg(nil), s.Args...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Param < sorted[j].Param })
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		if a.isVar() {
			return "", fmt.Errorf("symbol: DerivedName called with an unresolved argument %q", a.Param)
		}
		parts[i] = fmt.Sprintf("%s=%s", a.Param, a.Value)
	}
	return fmt.Sprintf("%s{%s}", s.Base, strings.Join(parts, ",")), nil
}

// Key returns a canonical string identity for s, suitable for use as a
// map key or a set element. Two symbols denote the same value iff their
// keys are equal.
func (s Symbol) Key() string {
	switch s.Kind {
	case KindTerminal:
		return "t:" + s.Name
	case KindNonterminal:
		return "n:" + s.Name
	case KindVar:
		return "v:" + s.Name
	case KindOptional:
		if s.Inner == nil {
			return "o:<nil>"
		}
		return "o:" + s.Inner.Key()
	case KindLookahead:
		keys := make([]string, len(s.Set))
		for i, t := range s.Set {
			keys[i] = t.Key()
		}
		sort.Strings(keys)
		sign := "+"
		if !s.Positive {
			sign = "-"
		}
		return fmt.Sprintf("l:%s[%s]", sign, strings.Join(keys, ","))
	case KindApply:
		sorted := append([]ParamArg(nil), s.Args...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Param < sorted[j].Param })
		parts := make([]string, len(sorted))
		for i, a := range sorted {
			v := a.Value
			if a.isVar() {
				v = "$" + a.VarRef
			}
			parts[i] = a.Param + "=" + v
		}
		return fmt.Sprintf("a:%s{%s}", s.Base, strings.Join(parts, ","))
	default:
		return "?"
	}
}

func (s Symbol) Equal(other Symbol) bool {
	return s.Key() == other.Key()
}

// String renders s for diagnostics and pretty-printing.
func (s Symbol) String() string {
	switch s.Kind {
	case KindTerminal:
		return s.Name
	case KindNonterminal:
		return s.Name
	case KindVar:
		return "?" + s.Name
	case KindOptional:
		if s.Inner == nil {
			return "<nil>?"
		}
		return s.Inner.String() + "?"
	case KindLookahead:
		keys := make([]string, len(s.Set))
		for i, t := range s.Set {
			keys[i] = t.String()
		}
		op := "="
		if !s.Positive {
			op = "!="
		}
		return fmt.Sprintf("[lookahead %s {%s}]", op, strings.Join(keys, ", "))
	case KindApply:
		name, err := s.DerivedName()
		if err != nil {
			parts := make([]string, len(s.Args))
			for i, a := range s.Args {
				if a.isVar() {
					parts[i] = a.Param + "=?" + a.VarRef
				} else {
					parts[i] = a.Param + "=" + a.Value
				}
			}
			return fmt.Sprintf("%s(%s)", s.Base, strings.Join(parts, ", "))
		}
		return name
	default:
		return "<invalid symbol>"
	}
}
