// Package pathfind implements the shortest-path utility (component K)
// used only to build diagnostic explanations ("here is why terminal t
// can follow nonterminal N"). It has no bearing on table correctness.
package pathfind

// Step is one (edge, neighbor) pair a Successors function yields.
type Step[N any, E any] struct {
	Edge E
	Node N
}

// Find performs a breadth-first search from the nodes in start, following
// edges produced by successors, until a node satisfies done. It returns
// the path as an alternating [node, edge, node, edge, ..., node] slice,
// or nil if no such node is reachable.
//
// Nodes are compared via their key(node) string, since N itself need not
// be comparable (this repo's only caller, grammar.WhyFollow, uses a
// string-based node type and passes its string value as the key).
func Find[N any, E any](
	start []N,
	key func(N) string,
	successors func(N) []Step[N, E],
	done func(N) bool,
) []any {
	type link struct {
		fromKey string
		via     E
		hasLink bool
	}

	links := map[string]link{}
	nodes := map[string]N{}
	var queue []N

	for _, n := range start {
		k := key(n)
		if _, seen := links[k]; seen {
			continue
		}
		links[k] = link{}
		nodes[k] = n
		if done(n) {
			return []any{n}
		}
		queue = append(queue, n)
	}

	var found *N
	for len(queue) > 0 && found == nil {
		a := queue[0]
		queue = queue[1:]
		ak := key(a)
		for _, step := range successors(a) {
			bk := key(step.Node)
			if _, seen := links[bk]; seen {
				continue
			}
			links[bk] = link{fromKey: ak, via: step.Edge, hasLink: true}
			nodes[bk] = step.Node
			if done(step.Node) {
				b := step.Node
				found = &b
				break
			}
			queue = append(queue, step.Node)
		}
	}
	if found == nil {
		return nil
	}

	var path []any
	bk := key(*found)
	b := *found
	for {
		path = append(path, b)
		l := links[bk]
		if !l.hasLink {
			break
		}
		path = append(path, l.via)
		bk = l.fromKey
		b = nodes[bk]
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
