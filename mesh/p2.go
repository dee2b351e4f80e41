package mesh

import (
	"github.com/notargets/goles/utils"
)

// Quadratic (P2) velocity dofs are the vertices followed by the edge midpoints, in Edges order.

func (m *Mesh) NumP2Nodes() int { return m.NVerts + len(m.Edges) }

func (m *Mesh) P2Coords() (coords [][]float64) {
	var (
		NP2 = m.NumP2Nodes()
	)
	coords = make([][]float64, m.Dim)
	for d := range coords {
		coords[d] = make([]float64, NP2)
		copy(coords[d], m.Coords[d])
		for e, ek := range m.Edges {
			verts := ek.GetVertices(false)
			coords[d][m.NVerts+e] = 0.5 * (m.Coords[d][verts[0]] + m.Coords[d][verts[1]])
		}
	}
	return
}

// P2ToCG1 interpolates a P2 field onto CG1, which keeps the vertex values.
func (m *Mesh) P2ToCG1() (P utils.CSR) {
	I := utils.NewDOK(m.NVerts, m.NumP2Nodes())
	for i := 0; i < m.NVerts; i++ {
		I.AddAt(i, i, 1)
	}
	P = I.ToCSR()
	P.SetReadOnly("P2 to CG1")
	return
}
