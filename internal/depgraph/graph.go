// Package depgraph builds the declaration/definition dependency graph a
// build run is ordered by. Every unit contributes a declaration node and,
// unless the unit is external, a definition node; edges always point at
// declaration nodes of the depended-on units.
package depgraph

import (
	"cmp"
	"fmt"
	"slices"

	"strata/internal/deps"
	"strata/internal/diag"
	"strata/internal/source"
)

// Kind distinguishes the two nodes every unit contributes.
type Kind uint8

const (
	KindDeclaration Kind = iota
	KindDefinition
)

func (k Kind) String() string {
	if k == KindDefinition {
		return "def"
	}
	return "decl"
}

// NodeID identifies a graph node by unit and kind.
type NodeID struct {
	Kind Kind
	Unit source.UnitID
}

// NodeSet is a set of node ids. Derived sets (roots, terminals, updated
// nodes) are all NodeSets, so membership checks never chase pointers.
type NodeSet map[NodeID]struct{}

func (s NodeSet) Add(id NodeID)      { s[id] = struct{}{} }
func (s NodeSet) Has(id NodeID) bool { _, ok := s[id]; return ok }
func (s NodeSet) Len() int           { return len(s) }

// Sorted returns the members ordered by unit id, declarations first.
// Used wherever traversal order must be deterministic.
func (s NodeSet) Sorted() []NodeID {
	out := make([]NodeID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b NodeID) int {
		if c := cmp.Compare(a.Unit, b.Unit); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out
}

// Node is one graph vertex. Edge sets hold NodeIDs, not node pointers;
// the graph arena is the only owner of Node values.
type Node struct {
	ID         NodeID
	Deps       NodeSet // nodes this one depends on
	Dependents NodeSet // reverse edges
	Public     bool
	External   bool
}

// Graph owns all nodes plus the derived sets. Once Build returns, the
// edge structure is immutable and may be traversed from any goroutine
// without locking.
type Graph struct {
	interner *source.Interner

	nodes map[NodeID]*Node

	Roots     NodeSet
	Terminals NodeSet

	// Invalid is set when the node set is non-empty but no node is
	// dependency-free, which means every unit sits on a cycle.
	Invalid bool
}

// Node returns the node for id, or nil if the graph has no such node.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Len returns the total node count.
func (g *Graph) Len() int { return len(g.nodes) }

// NodeIDs returns every node id in deterministic order.
func (g *Graph) NodeIDs() []NodeID {
	all := make(NodeSet, len(g.nodes))
	for id := range g.nodes {
		all.Add(id)
	}
	return all.Sorted()
}

// UnitPath resolves a node's unit back to its interned path.
func (g *Graph) UnitPath(id NodeID) string {
	return g.interner.MustLookup(id.Unit)
}

// Build assembles the graph from per-unit dependency lists.
//
// For each unit a declaration node is created, and a definition node
// unless the unit is external. The definition inherits every declaration
// dependency plus the definition-only ones: the whole unit is recompiled
// from source, so the object depends on everything the interface does.
// Dependency paths that do not name a collected unit are reported through
// r and leave the graph invalid.
func Build(lists *deps.UnitLists, r diag.Reporter) *Graph {
	g := &Graph{
		interner:  lists.Interner(),
		nodes:     make(map[NodeID]*Node, 2*lists.Len()),
		Roots:     make(NodeSet),
		Terminals: make(NodeSet),
	}

	unresolved := false
	for _, unit := range lists.UnitIDs() {
		ud := lists.Get(unit)

		decl := g.ensure(NodeID{Kind: KindDeclaration, Unit: unit})
		decl.Public = ud.Public
		decl.External = ud.External

		var def *Node
		if !ud.External {
			def = g.ensure(NodeID{Kind: KindDefinition, Unit: unit})
			def.Public = ud.Public
		}

		link := func(to *Node, depPath string) {
			depUnit, ok := lists.Resolve(depPath)
			if !ok {
				unresolved = true
				diag.Error(r, diag.DepUnresolved, g.interner.MustLookup(unit),
					fmt.Sprintf("dependency %q does not name a known unit", depPath))
				return
			}
			if depUnit == unit {
				diag.Warning(r, diag.DepSelfImport, depPath,
					"unit depends on itself; edge ignored")
				return
			}
			dep := g.ensure(NodeID{Kind: KindDeclaration, Unit: depUnit})
			to.Deps.Add(dep.ID)
			dep.Dependents.Add(to.ID)
		}

		for _, p := range ud.DeclarationDeps {
			link(decl, p)
			if def != nil {
				link(def, p)
			}
		}
		if def != nil {
			for _, p := range ud.DefinitionDeps {
				link(def, p)
			}
		}
	}

	for id, n := range g.nodes {
		if len(n.Deps) == 0 {
			g.Roots.Add(id)
		}
		if len(n.Dependents) == 0 {
			g.Terminals.Add(id)
		}
	}

	if unresolved {
		g.Invalid = true
		return g
	}

	if len(g.nodes) > 0 && len(g.Roots) == 0 {
		g.Invalid = true
		diag.Error(r, diag.DepCycle, "",
			"no dependency-free unit exists: the import graph is cyclic")
		return g
	}

	g.propagatePublic()
	return g
}

func (g *Graph) ensure(id NodeID) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{
		ID:         id,
		Deps:       make(NodeSet),
		Dependents: make(NodeSet),
	}
	g.nodes[id] = n
	return n
}

// propagatePublic walks dependency edges down from every terminal with a
// sticky "public" flag: once the walk passes a node explicitly flagged
// public, everything reachable below is public too. A node is revisited
// when a later arrival carries the flag and the earlier one did not, so
// the final marking does not depend on terminal iteration order.
func (g *Graph) propagatePublic() {
	// seen[id] records the strongest flag the walk arrived with.
	seen := make(map[NodeID]bool, len(g.nodes))

	var visit func(id NodeID, public bool)
	visit = func(id NodeID, public bool) {
		n := g.nodes[id]
		public = public || n.Public
		if was, ok := seen[id]; ok && (was || !public) {
			return
		}
		seen[id] = public
		if public {
			n.Public = true
		}
		for _, dep := range n.Deps.Sorted() {
			visit(dep, public)
		}
	}

	for _, id := range g.Terminals.Sorted() {
		visit(id, false)
	}
}
