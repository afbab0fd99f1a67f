package engine

import (
	"fmt"
	"sort"

	"github.com/TechInSite/aws-cdk/cdk"
)

// Graph is the dependency graph over a template's resources. Edges come
// from reference tokens inside properties: a resource consuming another's
// data deploys after it.
type Graph struct {
	nodes    map[string]*graphNode
	order    []string // creation order
	revOrder []string // destruction order
}

type graphNode struct {
	id         string
	deps       []string // resources this node consumes data from
	dependents []string // resources consuming this node's data
}

// BuildGraph constructs the dependency graph for a template. References to
// logical ids outside the template are left for apply-time resolution to
// reject; they carry no ordering information. The returned orders are
// deterministic: ties break on logical id.
func BuildGraph(tmpl *cdk.Template) (*Graph, error) {
	g := &Graph{nodes: make(map[string]*graphNode, len(tmpl.Resources))}

	ids := make([]string, 0, len(tmpl.Resources))
	for id := range tmpl.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		g.nodes[id] = &graphNode{id: id}
	}

	for _, id := range ids {
		node := g.nodes[id]
		seen := make(map[string]bool)
		for _, ref := range cdk.FindTokens(tmpl.Resources[id].Properties) {
			if seen[ref.LogicalID] {
				continue
			}
			seen[ref.LogicalID] = true
			if _, ok := g.nodes[ref.LogicalID]; ok {
				node.deps = append(node.deps, ref.LogicalID)
			}
		}
		sort.Strings(node.deps)
	}

	for _, id := range ids {
		for _, dep := range g.nodes[id].deps {
			g.nodes[dep].dependents = append(g.nodes[dep].dependents, id)
		}
	}

	order, err := g.topoSort(ids)
	if err != nil {
		return nil, err
	}
	g.order = order

	g.revOrder = make([]string, len(order))
	for i, id := range order {
		g.revOrder[len(order)-1-i] = id
	}

	return g, nil
}

// CreationOrder returns logical ids in dependency-respecting deploy order.
func (g *Graph) CreationOrder() []string {
	return g.order
}

// DestructionOrder returns logical ids in reverse dependency order.
func (g *Graph) DestructionOrder() []string {
	return g.revOrder
}

// Dependencies returns the logical ids a resource consumes data from.
func (g *Graph) Dependencies(id string) []string {
	if node, ok := g.nodes[id]; ok {
		return node.deps
	}
	return nil
}

// topoSort runs Kahn's algorithm seeded in sorted id order, so independent
// resources come out alphabetically instead of in map iteration order.
func (g *Graph) topoSort(ids []string) ([]string, error) {
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = len(g.nodes[id].deps)
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		for _, dependent := range g.nodes[id].dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		var stuck []string
		for _, id := range ids {
			if inDegree[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("reference cycle involving %v", stuck)
	}

	return sorted, nil
}
