package grammar

import (
	"fmt"
	"sort"

	"github.com/arfaoui/lalrgen/grammar/oset"
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// ActionKind identifies what an Action table cell does on its terminal.
type ActionKind int

const (
	ActionShift ActionKind = iota
	ActionReduce
	ActionAccept
)

// Action is one cell of the ACTION table: shift to Target, reduce by
// Prod, or accept.
type Action struct {
	Kind   ActionKind
	Target int
	Prod   int
}

// State is one LALR state: a kernel (core items with accumulated
// lookahead sets) and the transitions computed from its closure.
type State struct {
	ID          int
	Kernel      []kernelEntry
	Transitions map[string]int // symbol.Key() -> target state ID, terminals and nonterminals alike
}

// Tables is the complete, built parser table: per-goal start states, and
// the ACTION/GOTO rows for every state, indexed by state ID.
type Tables struct {
	States  []*State
	Starts  map[string]int // goal name -> start state ID
	Actions map[int]map[string]Action
	Gotos   map[int]map[string]int
}

type successorAccum struct {
	sym    symbol.Symbol
	order  []string
	byCore map[string]*kernelEntry
}

// Build runs component J: the worklist construction of the LALR(1) state
// graph, merging states by core (mergeKey) as they are discovered, and
// detecting shift-reduce and reduce-reduce conflicts as each state's
// action row is finalized. Grounded on
// original_source/espg/gen.py's State.closure/State.analyze/analyze_states,
// with the incremental-merge worklist idiom from nihei9-vartan's
// lalr1.go/lr0.go (spec §4.I-J).
func Build(g *Grammar, pt *ProdTable, first, follow map[string]map[string]bool, nullable map[string]bool) (*Tables, error) {
	var states []*State
	byMergeKey := map[string]int{}
	var queue []int

	newOrMergedState := func(kernel []kernelEntry) int {
		mk := mergeKey(kernel)
		if idx, ok := byMergeKey[mk]; ok {
			existing := states[idx]
			byCore := map[string]*kernelEntry{}
			for i := range existing.Kernel {
				byCore[existing.Kernel[i].item.CoreKey()] = &existing.Kernel[i]
			}
			changed := false
			for _, e := range kernel {
				if ex, ok := byCore[e.item.CoreKey()]; ok {
					if ex.la.AddAll(e.la) {
						changed = true
					}
				}
			}
			if changed {
				queue = append(queue, idx)
			}
			return idx
		}
		s := &State{ID: len(states), Kernel: kernel, Transitions: map[string]int{}}
		states = append(states, s)
		byMergeKey[mk] = s.ID
		queue = append(queue, s.ID)
		return s.ID
	}

	starts := map[string]int{}
	for _, goal := range g.Goals() {
		initName := InitNTName(goal)
		idxs := pt.ForNT(initName)
		if len(idxs) != 1 {
			return nil, internalf("build: goal %q must have exactly one init production, found %d", goal, len(idxs))
		}
		kernel := []kernelEntry{{item: Item{Prod: idxs[0], Dot: 0}, la: oset.New(EndMarker)}}
		starts[goal] = newOrMergedState(kernel)
	}

	actions := map[int]map[string]Action{}
	gotos := map[int]map[string]int{}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		st := states[id]

		items := closure(st.Kernel, pt, g, first, nullable)

		successors := map[string]*successorAccum{}
		reduceBy := map[string][]int{} // terminal -> candidate prod indices
		var acceptOn []string

		for _, ci := range items {
			rhs := pt.Prods[ci.item.Prod].RHS
			sym, idx, ok := nextConsumable(rhs, ci.item.Dot)
			if !ok {
				prod := pt.Prods[ci.item.Prod]
				if prod.Action != nil && prod.Action.Kind == ExprAccept {
					acceptOn = append(acceptOn, ci.la)
					continue
				}
				reduceBy[ci.la] = appendUnique(reduceBy[ci.la], ci.item.Prod)
				continue
			}
			if sym.Kind == symbol.KindTerminal {
				if !satisfiesRestrictions(ci.restrictions, sym.Name) {
					continue
				}
			}
			key := sym.Key()
			acc, ok := successors[key]
			if !ok {
				acc = &successorAccum{sym: sym, byCore: map[string]*kernelEntry{}}
				successors[key] = acc
			}
			nextItem := Item{Prod: ci.item.Prod, Dot: idx + 1}
			ck := nextItem.CoreKey()
			e, ok := acc.byCore[ck]
			if !ok {
				e = &kernelEntry{item: nextItem, la: oset.New()}
				acc.byCore[ck] = e
				acc.order = append(acc.order, ck)
			}
			e.la.Add(ci.la)
		}

		row := map[string]Action{}
		for _, t := range acceptOn {
			row[t] = Action{Kind: ActionAccept}
		}

		targets := map[string]int{}
		var symKeys []string
		for k := range successors {
			symKeys = append(symKeys, k)
		}
		sort.Strings(symKeys)
		for _, k := range symKeys {
			acc := successors[k]
			kernel := make([]kernelEntry, len(acc.order))
			for i, ck := range acc.order {
				kernel[i] = *acc.byCore[ck]
			}
			target := newOrMergedState(kernel)
			targets[k] = target
			if acc.sym.Kind == symbol.KindTerminal {
				if existing, had := row[acc.sym.Name]; had && existing.Kind != ActionShift {
					return nil, conflictFromShiftReduce(g, pt, st.ID, acc.sym.Name, reduceBy[acc.sym.Name])
				}
				row[acc.sym.Name] = Action{Kind: ActionShift, Target: target}
			}
		}

		var terminals []string
		for t := range reduceBy {
			terminals = append(terminals, t)
		}
		sort.Strings(terminals)
		for _, t := range terminals {
			prods := reduceBy[t]
			if len(prods) > 1 {
				return nil, conflictFromReduceReduce(g, pt, st.ID, t, prods)
			}
			if existing, had := row[t]; had && existing.Kind == ActionShift {
				return nil, conflictFromShiftReduce(g, pt, st.ID, t, prods)
			}
			row[t] = Action{Kind: ActionReduce, Prod: prods[0]}
		}

		actions[id] = row
		gotoRow := map[string]int{}
		for k, target := range targets {
			if acc := successors[k]; acc.sym.Kind == symbol.KindNonterminal {
				gotoRow[acc.sym.Name] = target
				st.Transitions[k] = target
			} else {
				st.Transitions[k] = target
			}
		}
		gotos[id] = gotoRow
	}

	return &Tables{States: states, Starts: starts, Actions: actions, Gotos: gotos}, nil
}

func appendUnique(xs []int, x int) []int {
	for _, v := range xs {
		if v == x {
			return xs
		}
	}
	return append(xs, x)
}

func conflictFromShiftReduce(g *Grammar, pt *ProdTable, stateID int, terminal string, reduceProds []int) error {
	var prodText string
	if len(reduceProds) > 0 {
		p := pt.Prods[reduceProds[0]]
		prodText = g.ProductionToString(Production{NT: p.NT, Body: p.RHS})
	}
	return &ConflictError{
		Kind:        KindShiftReduce,
		Summary:     fmt.Sprintf("shift-reduce conflict in state %d on %q", stateID, terminal),
		Explanation: explainShiftReduce(g, pt, terminal, prodText),
	}
}

func conflictFromReduceReduce(g *Grammar, pt *ProdTable, stateID int, terminal string, prods []int) error {
	names := make([]string, len(prods))
	for i, p := range prods {
		prod := pt.Prods[p]
		names[i] = g.ProductionToString(Production{NT: prod.NT, Body: prod.RHS})
	}
	return &ConflictError{
		Kind:        KindReduceReduce,
		Summary:     fmt.Sprintf("reduce-reduce conflict in state %d on %q", stateID, terminal),
		Explanation: explainReduceReduce(names),
	}
}
