package les

import (
	"fmt"

	"github.com/notargets/goles/utils"
)

/*
Geometry is the view of the mesh and its discrete spaces used by the closure. Nodal fields live on the CG1
dofs (NumNodes values), element fields on DG0 (NumElements values). *mesh.Mesh implements it.
Sample is called concurrently and must only read shared state.
*/
type Geometry interface {
	SpatialDim() int
	NumNodes() int
	NumElements() int
	ElementNodes(k int) []int
	ElementVolume(k int) float64
	NodeCoord(i int, x []float64)
	// NodalGradient projects the gradient of the CG1 field src onto CG1, dst is Dim x NumNodes
	NodalGradient(src []float64, dst [][]float64)
	DG0ToCG1(src, dst []float64)
	// Sample evaluates the CG1 field src at an arbitrary point, clipping to the domain
	Sample(x []float64, src []float64) float64
}

// Constraint pins values of a nodal field, for example a Dirichlet condition on the eddy viscosity.
type Constraint interface {
	Apply(f []float64)
}

// Interpolator resamples velocity from the solver's native space onto CG1.
type Interpolator interface {
	Interpolate(dst, src VectorField)
}

// IdentityInterpolator is used when the velocity is already linear.
type IdentityInterpolator struct{}

func (IdentityInterpolator) Interpolate(dst, src VectorField) { dst.CopyFrom(src) }

// MatrixInterpolator applies a precomputed NumNodes x NativeDofs interpolation matrix per component.
type MatrixInterpolator struct {
	P utils.CSR
}

func NewMatrixInterpolator(P utils.CSR) *MatrixInterpolator {
	return &MatrixInterpolator{P: P}
}

func (mi *MatrixInterpolator) Dims() (nr, nc int) { return mi.P.Dims() }

func (mi *MatrixInterpolator) Interpolate(dst, src VectorField) {
	if len(dst) != len(src) {
		panic(fmt.Errorf("vector dimension mismatch, have %d, need %d", len(src), len(dst)))
	}
	for d := range dst {
		mi.P.MulVec(dst[d].Data, src[d].Data)
	}
}
