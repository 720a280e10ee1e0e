package grammar

import (
	"sort"

	"github.com/arfaoui/lalrgen/grammar/symbol"
	"github.com/google/uuid"
)

// withInitNonterminals adds, for every goal of g, the implicit
// InitNt(goal) → goal [accept] nonterminal spec §3 describes. The
// original goal names are left untouched as g.Goals(): FOLLOW seeding
// and start-state seeding consult them directly, while the synthetic
// wrapper exists purely to give the accept action somewhere to live.
func withInitNonterminals(g *Grammar) *Grammar {
	defs := map[string]*NonterminalDef{}
	for _, name := range g.Names() {
		def, _ := g.Def(name)
		defs[name] = def
	}
	order := g.Names()
	for _, goal := range g.Goals() {
		initName := InitNTName(goal)
		if _, exists := defs[initName]; exists {
			continue
		}
		defs[initName] = &NonterminalDef{
			Entries: []RHSEntry{{Production: Production{
				NT:     initName,
				Body:   []symbol.Symbol{symbol.Nonterminal(goal)},
				Action: Accept,
			}}},
		}
		order = append(order, initName)
	}
	return g.WithNonterminals(defs, order)
}

// Result is everything Compile produces for a grammar that validated and
// built cleanly: the flattened production table, the FIRST/FOLLOW/
// nullable analysis it was built from, and the LALR(1) tables themselves.
type Result struct {
	Grammar   *Grammar
	Prods     *ProdTable
	Nullable  map[string]bool
	First     map[string]map[string]bool
	Follow    map[string]map[string]bool
	Tables    *Tables
	Report    *Report
}

// Compile runs the full pipeline spec §2 describes: function expansion,
// structural validation, epsilon-freedom (both passes, straddling
// optional expansion), FIRST/FOLLOW analysis, and LALR(1) state
// construction. Grammar problems are returned as a *GrammarError,
// conflicts as a *ConflictError, and generator bugs as an *InternalError;
// an Apply whose arguments cannot be resolved is returned as a wrapped
// symbol error. A successful return means the grammar is ready to drive
// a parser.
func Compile(g *Grammar) (*Result, error) {
	expanded, err := ExpandFunctions(g)
	if err != nil {
		return nil, err
	}

	nullable := Nullable(expanded)
	if err := Validate(expanded, nullable); err != nil {
		return nil, err
	}

	withInit := withInitNonterminals(expanded)
	// InitNt bodies are a single use of their goal (nullable exactly when
	// the goal is), so recomputing nullable here only adds entries that
	// step 1 needs for the new nonterminal names; it never changes any
	// existing entry.
	nullable = Nullable(withInit)

	step1, err := EpsilonStep1(withInit, nullable)
	if err != nil {
		return nil, err
	}

	flattened, pt, err := ExpandOptionals(step1)
	if err != nil {
		return nil, err
	}

	flattened, pt = EpsilonStep2(flattened, pt)

	// Nullability over the flattened table is needed by FIRST/FOLLOW and
	// by closure; recompute it directly from the flattened bodies (they
	// no longer contain Optional elements, so productionIsEmptyModulo's
	// "nullable" case reduces to "every remaining element is a nullable
	// nonterminal or a lookahead guard" exactly as before).
	flatNullable := nullableFromProdTable(pt)

	first := First(flattened, pt, flatNullable)
	follow := Follow(flattened, pt, first, flatNullable)

	tables, err := Build(flattened, pt, first, follow, flatNullable)
	if err != nil {
		return nil, err
	}

	report := NewReport(flattened, pt, tables)

	return &Result{
		Grammar:  flattened,
		Prods:    pt,
		Nullable: flatNullable,
		First:    first,
		Follow:   follow,
		Tables:   tables,
		Report:   report,
	}, nil
}

func nullableFromProdTable(pt *ProdTable) map[string]bool {
	nullable := map[string]bool{}
	changed := true
	for changed {
		changed = false
		for _, p := range pt.Prods {
			if nullable[p.NT] {
				continue
			}
			if productionIsEmptyModulo(nullable, p.RHS) {
				nullable[p.NT] = true
				changed = true
			}
		}
	}
	return nullable
}

// Report summarizes a successful build for operators and for the
// describe/interact CLI surfaces: a run identifier for correlating a
// build with its cached table file, and the set of terminals each state
// has an action for.
type Report struct {
	RunID             string
	Goals             []string
	NumStates         int
	NumProds          int
	ExpectedTerminals map[int][]string
}

func NewReport(g *Grammar, pt *ProdTable, t *Tables) *Report {
	expected := map[int][]string{}
	for id, row := range t.Actions {
		ts := make([]string, 0, len(row))
		for term := range row {
			ts = append(ts, term)
		}
		sort.Strings(ts)
		expected[id] = ts
	}
	return &Report{
		RunID:             uuid.NewString(),
		Goals:             g.Goals(),
		NumStates:         len(t.States),
		NumProds:          len(pt.Prods),
		ExpectedTerminals: expected,
	}
}
