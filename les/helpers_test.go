package les

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/goles/mesh"
)

func rectangle(t *testing.T, n int, L float64, procs int) *mesh.Mesh {
	m, err := mesh.NewRectangleMesh(n, n, L, L, procs)
	require.NoError(t, err)
	return m
}

func box(t *testing.T, n int, procs int) *mesh.Mesh {
	m, err := mesh.NewBoxMesh(n, n, n, 1., 1., 1., procs)
	require.NoError(t, err)
	return m
}

// velocity evaluates f component by component at the mesh vertices.
func velocity(m *mesh.Mesh, f func(x []float64, u []float64)) (U VectorField) {
	var (
		x = make([]float64, m.Dim)
		u = make([]float64, m.Dim)
	)
	U = NewVectorField("u", m.Dim, m.NVerts)
	for i := 0; i < m.NVerts; i++ {
		m.NodeCoord(i, x)
		f(x, u)
		for d := range u {
			U[d].Data[i] = u[d]
		}
	}
	return
}

func taylorGreen(m *mesh.Mesh, amp float64) VectorField {
	return velocity(m, func(x, u []float64) {
		u[0] = amp * math.Sin(x[0]) * math.Cos(x[1])
		u[1] = -amp * math.Cos(x[0]) * math.Sin(x[1])
	})
}

// linear returns u = A x.
func linear(m *mesh.Mesh, A [][]float64) VectorField {
	return velocity(m, func(x, u []float64) {
		for i := range u {
			u[i] = 0
			for j := range x {
				u[i] += A[i][j] * x[j]
			}
		}
	})
}

// compressive returns the uniform compression u = -amp (x - 1/2).
func compressive(m *mesh.Mesh, amp float64) VectorField {
	return velocity(m, func(x, u []float64) {
		for d := range u {
			u[d] = -amp * (x[d] - 0.5)
		}
	})
}

func constant(m *mesh.Mesh, c ...float64) VectorField {
	return velocity(m, func(x, u []float64) { copy(u, c) })
}

func isBoundary(m *mesh.Mesh) (bnd []bool) {
	bnd = make([]bool, m.NVerts)
	for _, v := range m.BoundaryNodes() {
		bnd[v] = true
	}
	return
}
