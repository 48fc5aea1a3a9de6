package testkit

import (
	"fmt"

	"strata/internal/depgraph"
)

// CheckGraphInvariants runs the structural invariants every well-formed
// dependency graph must hold:
// 1) edge symmetry: d in n.Deps iff n in d.Dependents
// 2) Roots is exactly the dependency-free nodes, Terminals the dependent-free
// 3) a non-empty valid graph has at least one root
// 4) public monotonicity: every dependency of a public node is public
func CheckGraphInvariants(g *depgraph.Graph) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}

	for _, id := range g.NodeIDs() {
		n := g.Node(id)
		for dep := range n.Deps {
			d := g.Node(dep)
			if d == nil {
				return fmt.Errorf("%v depends on missing node %v", id, dep)
			}
			if !d.Dependents.Has(id) {
				return fmt.Errorf("edge %v -> %v has no reverse edge", id, dep)
			}
			if n.Public && !d.Public {
				return fmt.Errorf("public node %v depends on non-public %v", id, dep)
			}
		}
		for dep := range n.Dependents {
			d := g.Node(dep)
			if d == nil {
				return fmt.Errorf("%v is depended on by missing node %v", id, dep)
			}
			if !d.Deps.Has(id) {
				return fmt.Errorf("reverse edge %v -> %v has no forward edge", dep, id)
			}
		}

		if (len(n.Deps) == 0) != g.Roots.Has(id) {
			return fmt.Errorf("root set disagrees with edges for %v", id)
		}
		if (len(n.Dependents) == 0) != g.Terminals.Has(id) {
			return fmt.Errorf("terminal set disagrees with edges for %v", id)
		}
	}

	if !g.Invalid && g.Len() > 0 && g.Roots.Len() == 0 {
		return fmt.Errorf("non-empty graph has no roots but is not invalid")
	}
	return nil
}
