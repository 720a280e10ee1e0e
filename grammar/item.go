package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arfaoui/lalrgen/grammar/oset"
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

// Item is an LR item: a flat production together with a dot position.
// The lookahead terminals valid for reducing this item, once the dot
// reaches the end of the body, live alongside it in a kernelEntry rather
// than on Item itself — that separation is what lets many LR(1) contexts
// collapse into one LALR state (component I, spec §4.I).
type Item struct {
	Prod int
	Dot  int
}

func (it Item) CoreKey() string { return fmt.Sprintf("%d.%d", it.Prod, it.Dot) }

// nextConsumable returns the first body element at or after dot that is
// not a LookaheadRule, together with its index, skipping over any
// restriction guards in between. LookaheadRule elements consume no
// input; the restriction they express is threaded forward as a
// closureItem field (restrictionsBefore, mergeRestrictions) rather than
// modeled as a parser transition in its own right, and resolved against
// the concrete next terminal only once it is about to be shifted.
func nextConsumable(rhs []symbol.Symbol, dot int) (symbol.Symbol, int, bool) {
	i := dot
	for i < len(rhs) && rhs[i].Kind == symbol.KindLookahead {
		i++
	}
	if i >= len(rhs) {
		return symbol.Symbol{}, i, false
	}
	return rhs[i], i, true
}

// restrictionsBefore returns the contiguous run of LookaheadRule elements
// of rhs immediately before index i, in order: the guards that must hold
// of the terminal consumed at i. Guards written before an earlier
// consumed element are not included.
func restrictionsBefore(rhs []symbol.Symbol, i int) []symbol.Symbol {
	end := i
	if end > len(rhs) {
		end = len(rhs)
	}
	start := end
	for start > 0 && rhs[start-1].Kind == symbol.KindLookahead {
		start--
	}
	var out []symbol.Symbol
	for j := start; j < end; j++ {
		out = append(out, rhs[j])
	}
	return out
}

// satisfiesRestrictions reports whether terminal t is consistent with
// every LookaheadRule in restrictions.
func satisfiesRestrictions(restrictions []symbol.Symbol, t string) bool {
	for _, r := range restrictions {
		member := lookaheadSetHas(r.Set, t)
		if r.Positive != member {
			return false
		}
	}
	return true
}

// mergeRestrictions combines the restriction guards inherited from an
// ancestor closure step with any new guards found locally, deduplicating
// by key. This is the Go analogue of gen.py's lookahead_intersect: the
// combined result constrains a terminal at least as much as either input
// alone.
func mergeRestrictions(inherited, local []symbol.Symbol) []symbol.Symbol {
	if len(inherited) == 0 {
		return local
	}
	if len(local) == 0 {
		return inherited
	}
	seen := make(map[string]bool, len(inherited)+len(local))
	out := make([]symbol.Symbol, 0, len(inherited)+len(local))
	for _, r := range inherited {
		if !seen[r.Key()] {
			seen[r.Key()] = true
			out = append(out, r)
		}
	}
	for _, r := range local {
		if !seen[r.Key()] {
			seen[r.Key()] = true
			out = append(out, r)
		}
	}
	return out
}

// restrictionsKey canonicalizes a restriction list for use in a set/map
// key, so that closure items with the same core, lookahead terminal, and
// restriction set are recognized as duplicates regardless of the order
// their guards were accumulated in.
func restrictionsKey(restrictions []symbol.Symbol) string {
	if len(restrictions) == 0 {
		return ""
	}
	keys := make([]string, len(restrictions))
	for i, r := range restrictions {
		keys[i] = r.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (it Item) NextSymbol(pt *ProdTable) (symbol.Symbol, int, bool) {
	return nextConsumable(pt.Prods[it.Prod].RHS, it.Dot)
}

func (it Item) AtEnd(pt *ProdTable) bool {
	_, _, ok := it.NextSymbol(pt)
	return !ok
}

func (it Item) AdvanceTo(i int) Item { return Item{Prod: it.Prod, Dot: i + 1} }

// kernelEntry is one core item of a state together with the accumulated
// set of lookahead terminals valid for reducing it — the LALR
// representation: many canonical LR(1) contexts sharing a core collapse
// into one kernelEntry whose lookahead set is their union.
type kernelEntry struct {
	item Item
	la   *oset.Set
}

// mergeKey is the structural signature of a kernel used to detect when a
// freshly computed GOTO target can be merged into an already-built state:
// the sorted set of core item keys, deliberately excluding lookahead, so
// that two LR(1) contexts with the same productions-and-dot-positions but
// different follow terminals are treated as the same LALR state (spec
// §4.I, the canonical-LR-vs-LALR distinction).
func mergeKey(kernel []kernelEntry) string {
	keys := make([]string, len(kernel))
	for i, e := range kernel {
		keys[i] = e.item.CoreKey()
	}
	return oset.NewFrozen(keys...).Hash()
}

// closureItem is one fully-expanded item of a state's closure: a core
// item, the single lookahead terminal it is valid under, and the
// restriction guards accumulated on the path that produced it. Item sets
// are exploded to this granularity only when building the action table
// (component J); the kernel itself stays in the more compact per-core
// lookahead-set form.
type closureItem struct {
	item Item
	la   string

	// restrictions holds every LookaheadRule guard that must hold of the
	// terminal this item is about to consume: guards written directly
	// before that position in this item's own production, combined with
	// whatever guards were already pending when an ancestor closure step
	// stepped into this production. It is threaded through unbounded
	// levels of nonterminal indirection and resolved only once a
	// concrete terminal is considered for shift (see Build), mirroring
	// original_source/espg/gen.py's LRItem.lookahead field and
	// PgenContext.make_lr_item's intersect-on-step-in behavior.
	restrictions []symbol.Symbol
}

// closure expands a kernel into the full set of items implied by it:
// repeatedly, for every item whose next consumable element is a
// nonterminal, add (that nonterminal's productions, dot 0) with the
// lookahead computed from whatever follows it in the current production,
// propagated through any interleaved LookaheadRule elements, combined
// with the item's own inherited lookahead when what follows is nullable.
// Restriction guards accumulate the same way: a child item inherits its
// parent's restrictions and layers on any guards written at the front of
// its own production, however many nonterminal layers deep that
// production sits — closure itself never rejects an item on account of a
// restriction, it only carries the guards forward for Build to check
// once a real terminal is in hand. Grounded on
// original_source/espg/gen.py's State.closure and PgenContext.make_lr_item
// (spec §4.I).
func closure(kernel []kernelEntry, pt *ProdTable, g *Grammar, first map[string]map[string]bool, nullable map[string]bool) []closureItem {
	seen := map[string]bool{}
	var items []closureItem
	var queue []closureItem

	addItem := func(ci closureItem) {
		k := ci.item.CoreKey() + "@" + ci.la + "@" + restrictionsKey(ci.restrictions)
		if seen[k] {
			return
		}
		seen[k] = true
		items = append(items, ci)
		queue = append(queue, ci)
	}

	for _, e := range kernel {
		rhs := pt.Prods[e.item.Prod].RHS
		var local []symbol.Symbol
		if _, idx, ok := nextConsumable(rhs, e.item.Dot); ok {
			local = restrictionsBefore(rhs, idx)
		}
		for _, la := range e.la.Values() {
			addItem(closureItem{item: e.item, la: la, restrictions: local})
		}
	}

	for len(queue) > 0 {
		ci := queue[0]
		queue = queue[1:]

		rhs := pt.Prods[ci.item.Prod].RHS
		sym, idx, ok := nextConsumable(rhs, ci.item.Dot)
		if !ok || sym.Kind != symbol.KindNonterminal {
			continue
		}
		if !g.IsNonterminal(sym.Name) {
			continue
		}

		laSet := FirstOfSeqThenTerminal(pt.Prods[ci.item.Prod], idx+1, ci.la, first, nullable)
		for _, childIdx := range pt.ForNT(sym.Name) {
			childRHS := pt.Prods[childIdx].RHS
			var childLocal []symbol.Symbol
			if _, childFirstIdx, ok := nextConsumable(childRHS, 0); ok {
				childLocal = restrictionsBefore(childRHS, childFirstIdx)
			}
			childRestrictions := mergeRestrictions(ci.restrictions, childLocal)
			for t := range laSet {
				addItem(closureItem{item: Item{Prod: childIdx, Dot: 0}, la: t, restrictions: childRestrictions})
			}
		}
	}
	return items
}
