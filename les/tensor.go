package les

import (
	"fmt"
	"math"

	"github.com/notargets/goles/utils"
)

/*
SymTensor is a symmetric rank two tensor field. Only the upper triangle is stored, row by row:

	2D: 00 01 11
	3D: 00 01 02 11 12 22

At(i,j) and At(j,i) return the same *Field.
*/
type SymTensor struct {
	Name string
	Dim  int
	Comp []*Field
}

func NumSymComponents(dim int) int { return dim * (dim + 1) / 2 }

// SymPairs lists the (i,j), i <= j, index pair of each stored component.
func SymPairs(dim int) (pairs [][2]int) {
	pairs = make([][2]int, 0, NumSymComponents(dim))
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return
}

func symIndex(dim, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return i*dim - i*(i-1)/2 + j - i
}

func NewSymTensor(name string, dim, n int) (T *SymTensor) {
	T = &SymTensor{Name: name, Dim: dim}
	for _, p := range SymPairs(dim) {
		T.Comp = append(T.Comp, NewField(fmt.Sprintf("%s_%d%d", name, p[0], p[1]), n))
	}
	return
}

func (T *SymTensor) At(i, j int) *Field { return T.Comp[symIndex(T.Dim, i, j)] }

func (T *SymTensor) Len() int { return T.Comp[0].Len() }

func (T *SymTensor) Fill(val float64) {
	for _, f := range T.Comp {
		f.Fill(val)
	}
}

func (T *SymTensor) CopyFrom(src *SymTensor) {
	if T.Dim != src.Dim {
		panic(fmt.Errorf("tensor %s is %dD, %s is %dD", T.Name, T.Dim, src.Name, src.Dim))
	}
	for c := range T.Comp {
		T.Comp[c].CopyFrom(src.Comp[c])
	}
}

/*
TensorAlgebra performs the pointwise tensor operations of the closure over the nodes, in parallel across the
node partitions. Operations that differentiate use the geometry's projection primitive.
*/
type TensorAlgebra struct {
	Dim, N     int
	Partitions *utils.PartitionMap
	geo        Geometry
	pairs      [][2]int
	grad       [][][]float64 // Dim x Dim x N, grad[i][j] = du_i/dx_j
}

func NewTensorAlgebra(geo Geometry, pm *utils.PartitionMap) (ta *TensorAlgebra) {
	ta = &TensorAlgebra{
		Dim:        geo.SpatialDim(),
		N:          geo.NumNodes(),
		Partitions: pm,
		geo:        geo,
		pairs:      SymPairs(geo.SpatialDim()),
	}
	ta.grad = make([][][]float64, ta.Dim)
	for i := range ta.grad {
		ta.grad[i] = make([][]float64, ta.Dim)
		for j := range ta.grad[i] {
			ta.grad[i][j] = make([]float64, ta.N)
		}
	}
	return
}

func (ta *TensorAlgebra) checkTensor(op string, Ts ...*SymTensor) {
	for _, T := range Ts {
		if T.Dim != ta.Dim || len(T.Comp) != len(ta.pairs) {
			panic(fmt.Errorf("%s: tensor %s is %dD with %d components, need %dD", op, T.Name, T.Dim, len(T.Comp), ta.Dim))
		}
		checkLen(op, ta.N, T.Comp...)
	}
}

func (ta *TensorAlgebra) checkVector(op string, vs ...VectorField) {
	for _, v := range vs {
		if v.Dim() != ta.Dim {
			panic(fmt.Errorf("%s: vector has %d components, need %d", op, v.Dim(), ta.Dim))
		}
		checkLen(op, ta.N, v...)
	}
}

// Gradient fills and returns the velocity gradient, valid until the next call.
func (ta *TensorAlgebra) Gradient(u VectorField) [][][]float64 {
	ta.checkVector("gradient", u)
	for i := 0; i < ta.Dim; i++ {
		ta.geo.NodalGradient(u[i].Data, ta.grad[i])
	}
	return ta.grad
}

// StrainRate computes S_ij = (du_i/dx_j + du_j/dx_i)/2.
func (ta *TensorAlgebra) StrainRate(u VectorField, S *SymTensor) {
	ta.checkTensor("strain rate", S)
	grad := ta.Gradient(u)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for c, p := range ta.pairs {
			s, gij, gji := S.Comp[c].Data, grad[p[0]][p[1]], grad[p[1]][p[0]]
			for i := iMin; i < iMax; i++ {
				s[i] = 0.5 * (gij[i] + gji[i])
			}
		}
	})
}

// Inner computes dst = A_ij B_ij summed over all nine (four in 2D) entries.
func (ta *TensorAlgebra) Inner(A, B *SymTensor, dst *Field) {
	ta.checkTensor("inner product", A, B)
	checkLen("inner product", ta.N, dst)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			var sum float64
			for c, p := range ta.pairs {
				ab := A.Comp[c].Data[i] * B.Comp[c].Data[i]
				if p[0] != p[1] {
					ab *= 2
				}
				sum += ab
			}
			dst.Data[i] = sum
		}
	})
}

// StrainMagnitude computes magS = sqrt(2 S_ij S_ij).
func (ta *TensorAlgebra) StrainMagnitude(S *SymTensor, magS *Field) {
	ta.Inner(S, S, magS)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			magS.Data[i] = math.Sqrt(2 * magS.Data[i])
		}
	})
}

// Deviatoric removes the trace from T in place.
func (ta *TensorAlgebra) Deviatoric(T *SymTensor) {
	ta.checkTensor("deviatoric", T)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			var trace float64
			for d := 0; d < ta.Dim; d++ {
				trace += T.At(d, d).Data[i]
			}
			trace /= float64(ta.Dim)
			for d := 0; d < ta.Dim; d++ {
				T.At(d, d).Data[i] -= trace
			}
		}
	})
}

// Outer computes T_ij = u_i u_j.
func (ta *TensorAlgebra) Outer(u VectorField, T *SymTensor) {
	ta.checkVector("outer product", u)
	ta.checkTensor("outer product", T)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for c, p := range ta.pairs {
			t, ui, uj := T.Comp[c].Data, u[p[0]].Data, u[p[1]].Data
			for i := iMin; i < iMax; i++ {
				t[i] = ui[i] * uj[i]
			}
		}
	})
}

// ScaleBy computes dst_ij = f T_ij, dst may be T.
func (ta *TensorAlgebra) ScaleBy(f *Field, T, dst *SymTensor) {
	ta.checkTensor("scale", T, dst)
	checkLen("scale", ta.N, f)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for c := range ta.pairs {
			t, d := T.Comp[c].Data, dst.Comp[c].Data
			for i := iMin; i < iMax; i++ {
				d[i] = f.Data[i] * t[i]
			}
		}
	})
}

// Axpy computes Y += alpha X.
func (ta *TensorAlgebra) Axpy(alpha float64, X, Y *SymTensor) {
	ta.checkTensor("axpy", X, Y)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for c := range ta.pairs {
			x, y := X.Comp[c].Data, Y.Comp[c].Data
			for i := iMin; i < iMax; i++ {
				y[i] += alpha * x[i]
			}
		}
	})
}

// Scale multiplies T by alpha in place.
func (ta *TensorAlgebra) Scale(alpha float64, T *SymTensor) {
	ta.checkTensor("scale", T)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for c := range ta.pairs {
			t := T.Comp[c].Data
			for i := iMin; i < iMax; i++ {
				t[i] *= alpha
			}
		}
	})
}

// Sub computes dst = A - B, dst may alias A or B.
func (ta *TensorAlgebra) Sub(A, B, dst *SymTensor) {
	ta.checkTensor("subtract", A, B, dst)
	ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for c := range ta.pairs {
			a, b, d := A.Comp[c].Data, B.Comp[c].Data, dst.Comp[c].Data
			for i := iMin; i < iMax; i++ {
				d[i] = a[i] - b[i]
			}
		}
	})
}

// Divergence computes dst_i = sum_j dT_ij/dx_j, reusing the gradient scratch.
func (ta *TensorAlgebra) Divergence(T *SymTensor, dst VectorField) {
	ta.checkTensor("divergence", T)
	ta.checkVector("divergence", dst)
	dst.Fill(0)
	grad := ta.grad[0]
	for c, p := range ta.pairs {
		ta.geo.NodalGradient(T.Comp[c].Data, grad)
		i, j := p[0], p[1]
		ta.Partitions.ParallelFor(func(np, nMin, nMax int) {
			for n := nMin; n < nMax; n++ {
				dst[i].Data[n] += grad[j][n]
				if i != j {
					dst[j].Data[n] += grad[i][n]
				}
			}
		})
	}
}
