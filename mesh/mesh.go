package mesh

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goles/types"
	"github.com/notargets/goles/utils"
)

/*
Mesh is a conforming simplex mesh (triangles in 2D, tetrahedra in 3D) carrying the two discrete
spaces used by the closure:
  - CG1: one degree of freedom per vertex, linear hat functions
  - DG0: one value per element

Vertices double as CG1 degrees of freedom, so every nodal field has NVerts entries.
*/
type Mesh struct {
	Dim        int
	NVerts, K  int
	Coords     [][]float64   // Dim x NVerts
	EToV       [][]int       // K x (Dim+1)
	Volume     []float64     // K, element measure (area in 2D)
	BasisGrad  [][][]float64 // K x (Dim+1) x Dim, physical gradient of each vertex hat function
	NodeVolume []float64     // NVerts, sum of the volumes of elements sharing the vertex
	VtoE       VertexToElement
	vtoeStart  []int
	Edges      []types.EdgeKey
	Neighbors  [][]int               // NVerts, vertices sharing an edge, ascending
	BCNodes    map[types.BCTAG][]int // Tagged boundary vertices
	Partitions *utils.PartitionMap   // Partitions of the vertices for parallel work
	EPartition *utils.PartitionMap   // Partitions of the elements for parallel work
	locator    *bucketGrid
}

func NewMesh(dim int, coords [][]float64, EToV [][]int, BCNodes map[types.BCTAG][]int, ProcLimit int) (m *Mesh, err error) {
	if dim != 2 && dim != 3 {
		err = fmt.Errorf("space dimensions not 2 or 3, have %d", dim)
		return
	}
	if len(coords) != dim {
		err = fmt.Errorf("coordinates should have %d components, have %d", dim, len(coords))
		return
	}
	if len(EToV) == 0 {
		err = fmt.Errorf("mesh has no elements")
		return
	}
	NVerts := len(coords[0])
	for d := 1; d < dim; d++ {
		if len(coords[d]) != NVerts {
			err = fmt.Errorf("coordinate component %d has %d entries, expected %d", d, len(coords[d]), NVerts)
			return
		}
	}
	for k, verts := range EToV {
		if len(verts) != dim+1 {
			err = fmt.Errorf("element %d has %d vertices, a %dD simplex needs %d", k, len(verts), dim, dim+1)
			return
		}
		for _, v := range verts {
			if v < 0 || v >= NVerts {
				err = fmt.Errorf("element %d references vertex %d, valid range is [0,%d)", k, v, NVerts)
				return
			}
		}
	}
	if BCNodes == nil {
		BCNodes = make(map[types.BCTAG][]int)
	}
	m = &Mesh{
		Dim:        dim,
		NVerts:     NVerts,
		K:          len(EToV),
		Coords:     coords,
		EToV:       EToV,
		BCNodes:    BCNodes,
		Partitions: utils.NewParallelPartitionMap(ProcLimit, NVerts),
		EPartition: utils.NewParallelPartitionMap(ProcLimit, len(EToV)),
	}
	if err = m.computeGeometry(); err != nil {
		m = nil
		return
	}
	m.VtoE = NewVertexToElement(EToV)
	m.vtoeStart = m.VtoE.Offsets(NVerts)
	m.computeConnectivity()
	m.locator = newBucketGrid(m)
	return
}

func (m *Mesh) computeGeometry() (err error) {
	var (
		dim       = m.Dim
		factorial = 1.
	)
	for d := 2; d <= dim; d++ {
		factorial *= float64(d)
	}
	m.Volume = make([]float64, m.K)
	m.BasisGrad = make([][][]float64, m.K)
	m.NodeVolume = make([]float64, m.NVerts)
	J := mat.NewDense(dim, dim, nil)
	var Jinv mat.Dense
	for k, verts := range m.EToV {
		v0 := verts[0]
		for a := 1; a <= dim; a++ {
			for d := 0; d < dim; d++ {
				J.Set(d, a-1, m.Coords[d][verts[a]]-m.Coords[d][v0])
			}
		}
		det := mat.Det(J)
		m.Volume[k] = math.Abs(det) / factorial
		if m.Volume[k] < utils.NODETOL*utils.NODETOL {
			return fmt.Errorf("element %d is degenerate, volume = %g", k, m.Volume[k])
		}
		if err = Jinv.Inverse(J); err != nil {
			return fmt.Errorf("element %d has a singular Jacobian: %w", k, err)
		}
		// x = x0 + J*xi, so dxi_a/dx_d is row a of the inverse Jacobian
		grad := make([][]float64, dim+1)
		grad[0] = make([]float64, dim)
		for a := 1; a <= dim; a++ {
			grad[a] = make([]float64, dim)
			for d := 0; d < dim; d++ {
				grad[a][d] = Jinv.At(a-1, d)
				grad[0][d] -= grad[a][d]
			}
		}
		m.BasisGrad[k] = grad
		for _, v := range verts {
			m.NodeVolume[v] += m.Volume[k]
		}
	}
	return
}

func (m *Mesh) computeConnectivity() {
	var (
		edgeSet = make(map[types.EdgeKey]struct{}, m.K*(m.Dim+1))
	)
	for _, verts := range m.EToV {
		for a := 0; a < len(verts); a++ {
			for b := a + 1; b < len(verts); b++ {
				edgeSet[types.NewEdgeKey([2]int{verts[a], verts[b]})] = struct{}{}
			}
		}
	}
	m.Edges = make([]types.EdgeKey, 0, len(edgeSet))
	for ek := range edgeSet {
		m.Edges = append(m.Edges, ek)
	}
	sort.Slice(m.Edges, func(i, j int) bool { return m.Edges[i] < m.Edges[j] })
	m.Neighbors = make([][]int, m.NVerts)
	for _, ek := range m.Edges {
		verts := ek.GetVertices(false)
		m.Neighbors[verts[0]] = append(m.Neighbors[verts[0]], verts[1])
		m.Neighbors[verts[1]] = append(m.Neighbors[verts[1]], verts[0])
	}
	for i := range m.Neighbors {
		sort.Ints(m.Neighbors[i])
	}
}

// ElementsOf returns the elements sharing vertex v.
func (m *Mesh) ElementsOf(v int) (elements []int) {
	elements = make([]int, 0, m.vtoeStart[v+1]-m.vtoeStart[v])
	for _, pair := range m.VtoE[m.vtoeStart[v]:m.vtoeStart[v+1]] {
		elements = append(elements, int(pair[1]))
	}
	return
}

// BoundaryNodes returns the vertices lying on facets that belong to exactly one element.
func (m *Mesh) BoundaryNodes() (nodes []int) {
	var (
		onBoundary = make([]bool, m.NVerts)
	)
	switch m.Dim {
	case 2:
		count := make(map[types.EdgeKey]int)
		for _, verts := range m.EToV {
			for a := 0; a < 3; a++ {
				count[types.NewEdgeKey([2]int{verts[a], verts[(a+1)%3]})]++
			}
		}
		for ek, c := range count {
			if c == 1 {
				verts := ek.GetVertices(false)
				onBoundary[verts[0]], onBoundary[verts[1]] = true, true
			}
		}
	case 3:
		count := make(map[types.FaceKey]int)
		for _, verts := range m.EToV {
			for a := 0; a < 4; a++ {
				count[types.NewFaceKey([3]int{verts[a], verts[(a+1)%4], verts[(a+2)%4]})]++
			}
		}
		for fk, c := range count {
			if c == 1 {
				for _, v := range fk.GetVertices() {
					onBoundary[v] = true
				}
			}
		}
	}
	for v, b := range onBoundary {
		if b {
			nodes = append(nodes, v)
		}
	}
	return
}

// The accessors below are the geometry view consumed by the closure.

func (m *Mesh) SpatialDim() int             { return m.Dim }
func (m *Mesh) NumNodes() int               { return m.NVerts }
func (m *Mesh) NumElements() int            { return m.K }
func (m *Mesh) ElementNodes(k int) []int    { return m.EToV[k] }
func (m *Mesh) ElementVolume(k int) float64 { return m.Volume[k] }
func (m *Mesh) NodeCoord(i int, x []float64) {
	for d := 0; d < m.Dim; d++ {
		x[d] = m.Coords[d][i]
	}
}

// Evaluate fills dst with f evaluated at every vertex.
func (m *Mesh) Evaluate(f func(x []float64) float64, dst []float64) {
	m.Partitions.ParallelFor(func(np, iMin, iMax int) {
		x := make([]float64, m.Dim)
		for i := iMin; i < iMax; i++ {
			m.NodeCoord(i, x)
			dst[i] = f(x)
		}
	})
}

func (m *Mesh) Print() string {
	box := m.locator.box
	return fmt.Sprintf("%dD simplex mesh: %d vertices, %d elements, %d edges, bounding box %v - %v",
		m.Dim, m.NVerts, m.K, len(m.Edges), box.Min, box.Max)
}
