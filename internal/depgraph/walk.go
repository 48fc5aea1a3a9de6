package depgraph

import (
	"fmt"
	"io"
	"strings"
)

// LevelWalk visits the graph breadth first, starting at Roots and moving
// along dependent edges. fn receives the node and its level (roots are
// level 0); returning false stops the walk. A node is marked visited
// before its dependents are enqueued and is never visited twice even when
// several dependency paths reach it.
func (g *Graph) LevelWalk(fn func(n *Node, level int) bool) {
	type item struct {
		id    NodeID
		level int
	}

	visited := make(NodeSet, len(g.nodes))
	queue := make([]item, 0, len(g.Roots))
	for _, id := range g.Roots.Sorted() {
		visited.Add(id)
		queue = append(queue, item{id: id})
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		n := g.nodes[it.id]
		if !fn(n, it.level) {
			return
		}
		for _, dep := range n.Dependents.Sorted() {
			if visited.Has(dep) {
				continue
			}
			visited.Add(dep)
			queue = append(queue, item{id: dep, level: it.level + 1})
		}
	}
}

// Dump writes a human-readable listing of the graph, level by level.
// Backs the graph subcommand.
func (g *Graph) Dump(w io.Writer) {
	if g.Invalid {
		fmt.Fprintln(w, "graph: INVALID")
	}
	fmt.Fprintf(w, "nodes: %d, roots: %d, terminals: %d\n",
		g.Len(), g.Roots.Len(), g.Terminals.Len())

	last := -1
	g.LevelWalk(func(n *Node, level int) bool {
		if level != last {
			fmt.Fprintf(w, "level %d:\n", level)
			last = level
		}
		var attrs []string
		if n.Public {
			attrs = append(attrs, "public")
		}
		if n.External {
			attrs = append(attrs, "external")
		}
		suffix := ""
		if len(attrs) > 0 {
			suffix = " [" + strings.Join(attrs, ",") + "]"
		}
		fmt.Fprintf(w, "  %s %s%s\n", n.ID.Kind, g.UnitPath(n.ID), suffix)
		for _, dep := range n.Deps.Sorted() {
			fmt.Fprintf(w, "    <- %s %s\n", dep.Kind, g.UnitPath(dep))
		}
		return true
	})
}
