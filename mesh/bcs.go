package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/goles/types"
)

// DirichletBC pins a nodal field to Value on a set of vertices.
type DirichletBC struct {
	Tag   types.BCTAG
	Nodes []int
	Value float64
}

func (bc *DirichletBC) Apply(f []float64) {
	for _, i := range bc.Nodes {
		f[i] = bc.Value
	}
}

func (m *Mesh) NewDirichletBC(tag types.BCTAG, value float64) (bc *DirichletBC, err error) {
	nodes, ok := m.BCNodes[tag]
	if !ok {
		err = fmt.Errorf("mesh has no boundary tagged %q", tag)
		return
	}
	bc = &DirichletBC{Tag: tag, Nodes: nodes, Value: value}
	return
}

/*
NutBCs derives the Dirichlet conditions on the eddy viscosity from the mesh boundary tags. Walls carry
nut = 0, every other boundary is left free. An override keyed by the full tag, or by the flag name
(e.g. "wall", "inflow"), replaces the derived value or pins a boundary that would otherwise be free.
*/
func (m *Mesh) NutBCs(overrides map[string]float64) (bcs []*DirichletBC) {
	tags := make([]types.BCTAG, 0, len(m.BCNodes))
	for tag := range m.BCNodes {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	for _, tag := range tags {
		value, pinned := tag.GetFLAG().NutValue()
		if v, ok := overrides[string(tag)]; ok {
			value, pinned = v, true
		} else if v, ok := overrides[tag.GetKind()]; ok {
			value, pinned = v, true
		}
		if pinned {
			// nut is a viscosity, a negative override holds the boundary at zero
			value = math.Max(value, 0)
			bcs = append(bcs, &DirichletBC{Tag: tag, Nodes: m.BCNodes[tag], Value: value})
		}
	}
	return
}
