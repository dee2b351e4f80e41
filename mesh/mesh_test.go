package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/goles/types"
)

func TestMesh(t *testing.T) {
	{ // Test rectangle geometry
		m, err := NewRectangleMesh(4, 3, 2., 1.5, 2)
		assert.NoError(t, err)
		assert.Equal(t, 20, m.NVerts)
		assert.Equal(t, 24, m.K)
		var total float64
		for _, vol := range m.Volume {
			total += vol
		}
		assert.InDelta(t, 3., total, 1.e-12)
		// Hat function gradients sum to zero in every element
		for k := 0; k < m.K; k++ {
			for d := 0; d < 2; d++ {
				var s float64
				for a := 0; a < 3; a++ {
					s += m.BasisGrad[k][a][d]
				}
				assert.InDelta(t, 0., s, 1.e-12)
			}
		}
		// Edges: horizontal, vertical and one diagonal per cell
		assert.Equal(t, 4*4+5*3+12, len(m.Edges))
		assert.Equal(t, []int{1, 5, 6}, m.Neighbors[0])
		assert.Equal(t, []int{0, 1}, m.ElementsOf(0))
		assert.Equal(t, 14, len(m.BoundaryNodes()))
		assert.Equal(t, 5, len(m.BCNodes["Wall-bottom"]))
		assert.Equal(t, 4, len(m.BCNodes["Inflow-left"]))
	}
	{ // Test box geometry
		m, err := NewBoxMesh(2, 2, 2, 1., 2., 3., 0)
		assert.NoError(t, err)
		assert.Equal(t, 27, m.NVerts)
		assert.Equal(t, 48, m.K)
		var total float64
		for _, vol := range m.Volume {
			assert.InDelta(t, 0.75/6., vol, 1.e-12)
			total += vol
		}
		assert.InDelta(t, 6., total, 1.e-12)
		// Only the center vertex is interior
		assert.Equal(t, 26, len(m.BoundaryNodes()))
		assert.Equal(t, 9, len(m.BCNodes["Slip-back"]))
	}
	{ // Test invalid input
		_, err := NewMesh(1, [][]float64{{0, 1}}, [][]int{{0, 1}}, nil, 1)
		assert.Error(t, err)
		_, err = NewMesh(2, [][]float64{{0, 1, 0}, {0, 0, 1}}, [][]int{{0, 1, 3}}, nil, 1)
		assert.Error(t, err)
		_, err = NewMesh(2, [][]float64{{0, 1, 2}, {0, 0, 0}}, [][]int{{0, 1, 2}}, nil, 1)
		assert.Error(t, err)
		_, err = NewRectangleMesh(0, 2, 1, 1, 1)
		assert.Error(t, err)
	}
}

func TestProjection(t *testing.T) {
	{ // Test gradient of a linear field is exact at every vertex, 2D
		m, err := NewRectangleMesh(5, 4, 1., 1., 3)
		assert.NoError(t, err)
		f := make([]float64, m.NVerts)
		m.Evaluate(func(x []float64) float64 { return 2.*x[0] - 3.*x[1] + 1 }, f)
		grad := [][]float64{make([]float64, m.NVerts), make([]float64, m.NVerts)}
		m.NodalGradient(f, grad)
		for i := 0; i < m.NVerts; i++ {
			assert.InDelta(t, 2., grad[0][i], 1.e-10)
			assert.InDelta(t, -3., grad[1][i], 1.e-10)
		}
	}
	{ // Test gradient of a linear field is exact at every vertex, 3D
		m, err := NewBoxMesh(3, 2, 2, 1., 1., 1., 0)
		assert.NoError(t, err)
		f := make([]float64, m.NVerts)
		m.Evaluate(func(x []float64) float64 { return x[0] + 0.5*x[1] - 4.*x[2] }, f)
		grad := [][]float64{make([]float64, m.NVerts), make([]float64, m.NVerts), make([]float64, m.NVerts)}
		m.NodalGradient(f, grad)
		for i := 0; i < m.NVerts; i++ {
			assert.InDelta(t, 1., grad[0][i], 1.e-10)
			assert.InDelta(t, 0.5, grad[1][i], 1.e-10)
			assert.InDelta(t, -4., grad[2][i], 1.e-10)
		}
	}
	{ // Test DG0 to CG1 preserves constants and volume weights the average
		m, err := NewRectangleMesh(3, 3, 1., 1., 1)
		assert.NoError(t, err)
		src, dst := make([]float64, m.K), make([]float64, m.NVerts)
		for k := range src {
			src[k] = 7.
		}
		m.DG0ToCG1(src, dst)
		for _, v := range dst {
			assert.InDelta(t, 7., v, 1.e-12)
		}
		// Vertex 0 touches elements 0 and 1 only
		src[0], src[1] = 1., 3.
		m.DG0ToCG1(src, dst)
		assert.InDelta(t, 2., dst[0], 1.e-12)
		var lumped float64
		for _, v := range m.LumpedMass() {
			lumped += v
		}
		assert.InDelta(t, 1., lumped, 1.e-12)
	}
	{ // Test shape mismatch panics
		m, _ := NewRectangleMesh(2, 2, 1., 1., 1)
		assert.Panics(t, func() { m.DG0ToCG1(make([]float64, 3), make([]float64, m.NVerts)) })
		assert.Panics(t, func() { m.NodalGradient(make([]float64, m.NVerts), [][]float64{make([]float64, m.NVerts)}) })
	}
}

func TestLocate(t *testing.T) {
	{ // Test sampling a linear field reproduces it inside the mesh
		m, err := NewRectangleMesh(6, 5, 3., 2., 1)
		assert.NoError(t, err)
		f := make([]float64, m.NVerts)
		lin := func(x []float64) float64 { return 1. + x[0] - 2.*x[1] }
		m.Evaluate(lin, f)
		for _, x := range [][]float64{{0.1, 0.1}, {1.23, 0.77}, {2.999, 1.999}, {0, 0}, {1.5, 1.}} {
			k, lambda, inside := m.Locate(x)
			assert.True(t, inside, x)
			assert.True(t, k >= 0 && k < m.K)
			assert.InDelta(t, 1., lambda[0]+lambda[1]+lambda[2], 1.e-12)
			assert.InDelta(t, lin(x), m.Sample(x, f), 1.e-12)
		}
		// Outside points are clipped to the nearest element
		k, lambda, inside := m.Locate([]float64{-0.5, 1.})
		assert.False(t, inside)
		fmin, fmax := math.Inf(1), math.Inf(-1)
		for a, v := range m.EToV[k] {
			assert.True(t, lambda[a] >= 0)
			fmin, fmax = math.Min(fmin, f[v]), math.Max(fmax, f[v])
		}
		val := m.Sample([]float64{-0.5, 1.}, f)
		assert.True(t, val >= fmin-1.e-12 && val <= fmax+1.e-12)
	}
	{ // Test 3D location
		m, err := NewBoxMesh(2, 3, 2, 1., 1., 1., 0)
		assert.NoError(t, err)
		f := make([]float64, m.NVerts)
		lin := func(x []float64) float64 { return x[0] + x[1] + x[2] }
		m.Evaluate(lin, f)
		x := []float64{0.31, 0.62, 0.77}
		_, _, inside := m.Locate(x)
		assert.True(t, inside)
		assert.InDelta(t, lin(x), m.Sample(x, f), 1.e-12)
	}
	{ // Test bounding box
		bb := NewBoundingBox([][]float64{{0, 2, 1}, {-1, 0, 3}})
		assert.Equal(t, []float64{0, -1}, bb.Min)
		assert.Equal(t, []float64{2, 3}, bb.Max)
		assert.True(t, bb.PointInside([]float64{1, 1}))
		assert.False(t, bb.PointInside([]float64{3, 1}))
	}
}

func TestBCs(t *testing.T) {
	m, err := NewRectangleMesh(3, 2, 1., 1., 1)
	assert.NoError(t, err)
	{ // Test derived nut conditions pin the walls only
		bcs := m.NutBCs(nil)
		assert.Equal(t, 2, len(bcs))
		assert.Equal(t, types.BCTAG("Wall-bottom"), bcs[0].Tag)
		assert.Equal(t, types.BCTAG("Wall-top"), bcs[1].Tag)
		f := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
		for _, bc := range bcs {
			bc.Apply(f)
		}
		assert.Equal(t, []float64{0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0}, f)
	}
	{ // Test overrides by kind and by full tag
		bcs := m.NutBCs(map[string]float64{"inflow": 0.5, "Wall-top": 2.})
		assert.Equal(t, 3, len(bcs))
		assert.Equal(t, types.BCTAG("Inflow-left"), bcs[0].Tag)
		assert.Equal(t, 0.5, bcs[0].Value)
		assert.Equal(t, 2., bcs[2].Value)
	}
	{ // Test a negative override holds the boundary at zero
		bcs := m.NutBCs(map[string]float64{"wall": -1})
		assert.Equal(t, 2, len(bcs))
		for _, bc := range bcs {
			assert.Equal(t, 0., bc.Value)
		}
	}
	{ // Test explicit Dirichlet condition
		bc, err := m.NewDirichletBC("Outflow-right", 3.)
		assert.NoError(t, err)
		assert.Equal(t, []int{3, 7, 11}, bc.Nodes)
		_, err = m.NewDirichletBC("Cyl-1", 0)
		assert.Error(t, err)
	}
	assert.True(t, math.Abs(m.Volume[0]-1./12.) < 1.e-12)
}

func TestP2(t *testing.T) {
	m, err := NewRectangleMesh(2, 1, 2., 1., 1)
	assert.NoError(t, err)
	assert.Equal(t, 6+len(m.Edges), m.NumP2Nodes())
	coords := m.P2Coords()
	// Edge 0 joins vertices 0 and 1
	assert.Equal(t, [2]int{0, 1}, m.Edges[0].GetVertices(false))
	assert.InDelta(t, 0.5, coords[0][6], 1.e-14)
	assert.InDelta(t, 0., coords[1][6], 1.e-14)
	P := m.P2ToCG1()
	nr, nc := P.Dims()
	assert.Equal(t, 6, nr)
	assert.Equal(t, m.NumP2Nodes(), nc)
	src := make([]float64, nc)
	for i := range src {
		src[i] = float64(i)
	}
	dst := make([]float64, nr)
	P.MulVec(dst, src)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, dst)
}
