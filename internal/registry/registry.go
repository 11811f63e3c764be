// Package registry builds the canonical set of monitored node identities
// from the central inventory.
package registry

import (
	"fmt"
	"sort"

	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

// Registry maps normalized node identity to its inventory entry. Identities
// are unique within a run; it is the join key every downstream aggregator
// uses.
type Registry struct {
	nodes map[string]models.Node
}

// Build consumes validated inventory tables. On duplicate identities the
// later row wins; rows with a blank unit name are skipped with a warning.
func Build(tables []*models.Table) (*Registry, []models.Warning) {
	reg := &Registry{nodes: make(map[string]models.Node)}
	var warnings []models.Warning

	for _, tbl := range tables {
		for i, row := range tbl.Rows {
			name := row.Get(schema.ColUnitName)
			identity := models.NormalizeIdentity(name)
			if identity == "" {
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnParse,
					Source:  tbl.Source,
					Row:     i + 1,
					Message: "blank unit name, row skipped",
				})
				continue
			}

			node := models.Node{
				Identity:    identity,
				DisplayName: name,
				UnitType:    row.Get(schema.ColUnitType),
			}
			if prev, ok := reg.nodes[identity]; ok && prev.UnitType != node.UnitType {
				warnings = append(warnings, models.Warning{
					Kind:   models.WarnIntegrity,
					Source: tbl.Source,
					Row:    i + 1,
					Message: fmt.Sprintf("duplicate unit %q with conflicting type (%q replaces %q)",
						name, node.UnitType, prev.UnitType),
				})
			}
			reg.nodes[identity] = node
		}
	}
	return reg, warnings
}

// Len returns the number of distinct nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// Node looks up a node by normalized identity.
func (r *Registry) Node(identity string) (models.Node, bool) {
	n, ok := r.nodes[models.NormalizeIdentity(identity)]
	return n, ok
}

// Nodes returns all nodes ordered by identity.
func (r *Registry) Nodes() []models.Node {
	out := make([]models.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

// Collectors returns the subset of nodes classified as collectors, ordered by
// identity.
func (r *Registry) Collectors() []models.Node {
	var out []models.Node
	for _, n := range r.Nodes() {
		if n.IsCollector() {
			out = append(out, n)
		}
	}
	return out
}
