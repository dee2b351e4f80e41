package les

import (
	"fmt"

	"github.com/notargets/goles/types"
)

// Alpha is the ratio of test filter to grid filter width.
const Alpha = 2.

/*
ScaleSimilarity builds the stress surrogate tensors from the CG1 velocity and its test (F) and grid (G)
filtered versions:

	L_ij       = F(u_i u_j) - F(u_i) F(u_j)
	M_ij       = 2 delta^2 (F(|S| S_ij) - alpha^2 F(|S|) F(S_ij))
	Leonard_ij = dev(G(u_i u_j) - G(u_i) G(u_j))
	H_ij       = DMM1 or DMM2 nested filter correction, see ComputeHij

Scratch storage is owned by the receiver, so one ScaleSimilarity must not be used concurrently.
*/
type ScaleSimilarity struct {
	ta         *TensorAlgebra
	F, G       *FilterOperator
	v1, v2     VectorField
	t1, t2, t3 *SymTensor
	S          *SymTensor
	magSf      *Field
}

func NewScaleSimilarity(ta *TensorAlgebra, F, G *FilterOperator) (ss *ScaleSimilarity) {
	var (
		dim, N = ta.Dim, ta.N
	)
	return &ScaleSimilarity{
		ta:    ta,
		F:     F,
		G:     G,
		v1:    NewVectorField("v1", dim, N),
		v2:    NewVectorField("v2", dim, N),
		t1:    NewSymTensor("t1", dim, N),
		t2:    NewSymTensor("t2", dim, N),
		t3:    NewSymTensor("t3", dim, N),
		S:     NewSymTensor("S", dim, N),
		magSf: NewField("magSf", N),
	}
}

// filteredOuter computes dst = F(G(...(a_i a_j))), applying the filters in the order given.
func (ss *ScaleSimilarity) filteredOuter(a VectorField, dst *SymTensor, filters ...*FilterOperator) {
	ss.ta.Outer(a, dst)
	for _, f := range filters {
		f.ApplyTensor(dst, dst)
	}
}

// filterVector computes dst = ...(G(F(src))), applying the filters in the order given.
func filterVector(dst, src VectorField, filters ...*FilterOperator) {
	dst.CopyFrom(src)
	for _, f := range filters {
		f.ApplyVector(dst, dst)
	}
}

func (ss *ScaleSimilarity) ComputeLij(u VectorField, L *SymTensor) {
	ss.filteredOuter(u, L, ss.F)
	filterVector(ss.v1, u, ss.F)
	ss.ta.Outer(ss.v1, ss.t1)
	ss.ta.Sub(L, ss.t1, L)
}

// ComputeMij fills M from the strain of u and returns the unfiltered strain magnitude in magS.
func (ss *ScaleSimilarity) ComputeMij(u VectorField, deltaSq *Field, M *SymTensor, magS *Field) {
	ss.ta.StrainRate(u, ss.S)
	ss.ta.StrainMagnitude(ss.S, magS)
	// F(|S| S)
	ss.ta.ScaleBy(magS, ss.S, M)
	ss.F.ApplyTensor(M, M)
	// alpha^2 F(|S|) F(S)
	ss.F.ApplyField(ss.magSf, magS)
	ss.F.ApplyTensor(ss.t1, ss.S)
	ss.ta.ScaleBy(ss.magSf, ss.t1, ss.t1)
	ss.ta.Axpy(-Alpha*Alpha, ss.t1, M)
	ss.ta.ScaleBy(deltaSq, M, M)
	ss.ta.Scale(2, M)
}

func (ss *ScaleSimilarity) ComputeLeonard(u VectorField, Leonard *SymTensor) {
	ss.filteredOuter(u, Leonard, ss.G)
	filterVector(ss.v1, u, ss.G)
	ss.ta.Outer(ss.v1, ss.t1)
	ss.ta.Sub(Leonard, ss.t1, Leonard)
	ss.ta.Deviatoric(Leonard)
}

/*
ComputeHij computes the mixed model correction subtracted from L_ij.

	DMM1: H_ij = F(G(u_i) G(u_j)) - F(G(u_i)) F(G(u_j))
	DMM2: H_ij = F(G(F(u_i) F(u_j))) - F(G(F(u_i))) F(G(F(u_j))) - F(G(u_i u_j)) + F(G(u_i) G(u_j))
*/
func (ss *ScaleSimilarity) ComputeHij(model types.ModelType, u VectorField, H *SymTensor) {
	var (
		ta, F, G = ss.ta, ss.F, ss.G
	)
	switch model {
	case types.MixedDMM1:
		filterVector(ss.v1, u, G)
		ss.filteredOuter(ss.v1, H, F)
		filterVector(ss.v2, ss.v1, F)
		ta.Outer(ss.v2, ss.t1)
		ta.Sub(H, ss.t1, H)
	case types.MixedDMM2:
		filterVector(ss.v1, u, F)
		ss.filteredOuter(ss.v1, H, G, F)
		filterVector(ss.v2, ss.v1, G, F)
		ta.Outer(ss.v2, ss.t1)
		ta.Sub(H, ss.t1, H)
		ss.filteredOuter(u, ss.t2, G, F)
		ta.Sub(H, ss.t2, H)
		filterVector(ss.v1, u, G)
		ss.filteredOuter(ss.v1, ss.t3, F)
		ta.Axpy(1, ss.t3, H)
	default:
		panic(fmt.Errorf("model %s has no scale similarity correction", model.Print()))
	}
}
