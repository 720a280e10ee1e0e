package grammar

import (
	"fmt"
	"strings"

	"github.com/arfaoui/lalrgen/grammar/pathfind"
	"github.com/arfaoui/lalrgen/grammar/symbol"
	"github.com/dekarrin/rosed"
	"golang.org/x/exp/slices"
)

// explanationWidth is the column WhyFollow's best-effort prose is wrapped
// to when no derivation chain was found, matching the fixed width tunaq
// wraps its own generated messages to.
const explanationWidth = 72

func explainShiftReduce(g *Grammar, pt *ProdTable, terminal, reduceProd string) string {
	return fmt.Sprintf(
		"the parser cannot decide whether to shift %q or reduce by %s here. Rewrite the grammar so the two alternatives are distinguishable: factor out the shared prefix, or add a lookahead restriction that rules one of them out for %q.",
		terminal, reduceProd, terminal)
}

func explainReduceReduce(prodTexts []string) string {
	sorted := append([]string(nil), prodTexts...)
	slices.Sort(sorted)
	return fmt.Sprintf(
		"more than one production can reduce the same handle here: %s. Rewrite the grammar so at most one of them applies for any given lookahead terminal.",
		strings.Join(sorted, "; or "))
}

// followNode is either a nonterminal name or the sentinel "$HIT:<terminal>"
// marking the point where a derivation chain reaches a production whose
// suffix directly has terminal in its FIRST set.
type followNode string

func hitNode(terminal string) followNode { return followNode("$HIT:" + terminal) }

func isHit(n followNode) bool { return strings.HasPrefix(string(n), "$HIT:") }

// WhyFollow reconstructs a best-effort derivation chain explaining why
// terminal is a member of FOLLOW(nt): a sequence of productions, each
// putting the next nonterminal immediately before either a direct
// occurrence of terminal (possibly behind other nullable material) or the
// end of a goal's body. It is diagnostic text only, not used by table
// construction itself — when no chain is found (the sets were computed
// correctly but the search gave up), it says so rather than guessing.
// Grounded on original_source/espg/gen.py's why_follow/why_start (spec §6,
// design note on best-effort explanation).
func WhyFollow(g *Grammar, pt *ProdTable, first map[string]map[string]bool, nullable map[string]bool, nt, terminal string) string {
	goals := map[string]bool{}
	for _, name := range g.Goals() {
		goals[name] = true
	}

	successors := func(x followNode) []pathfind.Step[followNode, string] {
		if isHit(x) {
			return nil
		}
		var steps []pathfind.Step[followNode, string]
		for _, p := range pt.Prods {
			for i, s := range p.RHS {
				if s.Kind != symbol.KindNonterminal || s.Name != string(x) {
					continue
				}
				restSet, restNullable := seqFirstFrom(p.RHS, i+1, first, nullable)
				label := g.ProductionToString(Production{NT: p.NT, Body: p.RHS})
				if restSet[terminal] {
					steps = append(steps, pathfind.Step[followNode, string]{Edge: label, Node: hitNode(terminal)})
				}
				if restNullable {
					steps = append(steps, pathfind.Step[followNode, string]{Edge: label, Node: followNode(p.NT)})
				}
			}
		}
		return steps
	}

	done := func(n followNode) bool {
		if isHit(n) {
			return true
		}
		return goals[string(n)] && terminal == EndMarker
	}

	path := pathfind.Find(
		[]followNode{followNode(nt)},
		func(n followNode) string { return string(n) },
		successors,
		done,
	)
	if path == nil {
		msg := fmt.Sprintf("%q can appear immediately after %s, but no explanatory derivation chain could be reconstructed", terminal, nt)
		return rosed.Edit(msg).Wrap(explanationWidth).String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%q can follow %s because:\n", terminal, nt)
	for i := 1; i < len(path); i += 2 {
		fmt.Fprintf(&b, "  via %v\n", path[i])
	}
	return b.String()
}
