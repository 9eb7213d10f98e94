package diagram

import "github.com/rendis/flowpaper/pkg/schema"

// Successors returns, for each element ID, the targets of its outgoing links
// in link insertion order.
func (g *Graph) Successors() map[string][]string {
	succ := make(map[string][]string, len(g.index))
	for _, l := range g.Links() {
		succ[l.Source] = append(succ[l.Source], l.Target)
	}
	return succ
}

// Reachable returns the set of element IDs reachable from root, root included.
func (g *Graph) Reachable(root string) map[string]bool {
	succ := g.Successors()
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range succ[node] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// Cycles enumerates the elementary cycles of the graph. Each cycle is listed
// once, as element IDs starting from its earliest-inserted element, and cycles
// are ordered by that element's insertion position.
func (g *Graph) Cycles() [][]string {
	elements := g.Elements()
	order := make(map[string]int, len(elements))
	for i, e := range elements {
		order[e.ID] = i
	}
	succ := g.Successors()

	var cycles [][]string
	for _, start := range elements {
		// Only walk through elements inserted after start so that every cycle
		// is found exactly once, from its lowest-ordered element.
		onPath := map[string]bool{start.ID: true}
		path := []string{start.ID}

		var walk func(node string)
		walk = func(node string) {
			for _, next := range succ[node] {
				if next == start.ID {
					c := make([]string, len(path))
					copy(c, path)
					cycles = append(cycles, c)
					continue
				}
				if onPath[next] || order[next] < order[start.ID] {
					continue
				}
				onPath[next] = true
				path = append(path, next)
				walk(next)
				path = path[:len(path)-1]
				delete(onPath, next)
			}
		}
		walk(start.ID)
	}
	return cycles
}

// Verify re-checks referential integrity: every link must connect two
// elements of the graph. AddCells already enforces this on insertion.
func (g *Graph) Verify() error {
	for _, l := range g.Links() {
		if _, ok := g.Element(l.Source); !ok {
			return schema.NewErrorf(schema.ErrCodeDanglingReference, "unknown source %q", l.Source).WithCell(l.ID)
		}
		if _, ok := g.Element(l.Target); !ok {
			return schema.NewErrorf(schema.ErrCodeDanglingReference, "unknown target %q", l.Target).WithCell(l.ID)
		}
	}
	return nil
}
