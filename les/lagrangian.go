package les

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/goles/utils"
)

// RelaxationLaw gives the Lagrangian averaging timescale at a node from the filter width and the previous averages.
type RelaxationLaw interface {
	Timescale(delta, jlm, jmm float64) float64
	Print() string
}

/*
MeneveauRelaxation is the timescale of Meneveau, Lund and Cabot (1996):

	T = Theta * delta * (JLM JMM)^(-1/8)

The product is floored at Floor, which caps T in regions with vanishing averages.
*/
type MeneveauRelaxation struct {
	Theta, Floor float64
}

func NewMeneveauRelaxation() MeneveauRelaxation {
	return MeneveauRelaxation{Theta: 1.5, Floor: 1.e-32}
}

func (mr MeneveauRelaxation) Timescale(delta, jlm, jmm float64) float64 {
	return mr.Theta * delta * math.Pow(math.Max(jlm*jmm, mr.Floor), -0.125)
}

func (mr MeneveauRelaxation) Print() string {
	return fmt.Sprintf("Meneveau, theta = %g", mr.Theta)
}

// FixedRelaxation uses one timescale everywhere.
type FixedRelaxation struct {
	T float64
}

func (fr FixedRelaxation) Timescale(delta, jlm, jmm float64) float64 { return fr.T }

func (fr FixedRelaxation) Print() string { return fmt.Sprintf("Fixed, T = %g", fr.T) }

// LagrangianStart selects how the averages JLM and JMM begin.
type LagrangianStart uint8

const (
	// SeedFromContractions takes JLM = max(0, A:M) and JMM = M:M at the first recompute
	SeedFromContractions LagrangianStart = iota
	// AverageFromInitial starts from InitialJLM and InitialJMM and averages on the first recompute too
	AverageFromInitial
)

const (
	InitialJLM = 1.e-32
	InitialJMM = 1.
)

var LagrangianStartNames = map[string]LagrangianStart{
	"seed":    SeedFromContractions,
	"initial": AverageFromInitial,
}

func (ls LagrangianStart) Print() string {
	for name, v := range LagrangianStartNames {
		if v == ls {
			return name
		}
	}
	return fmt.Sprintf("LagrangianStart(%d)", uint8(ls))
}

func ParseLagrangianStart(label string) (ls LagrangianStart, err error) {
	var ok bool
	if ls, ok = LagrangianStartNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown lagrangian start [%s], use seed or initial", label)
	}
	return
}

/*
LagrangianAverager advances the running averages JLM (of A:M) and JMM (of M:M) along pathlines:

	J_new = max(0, (J_adv + eps A:B) / (1 + eps)),  eps = dt/T

where J_adv is the previous average sampled at the backward traced foot x - u dt. T is evaluated once
per node from the previous averages, before either field is advanced.
*/
type LagrangianAverager struct {
	Law        RelaxationLaw
	Delta      *Field
	Partitions *utils.PartitionMap
	geo        Geometry
	ta         *TensorAlgebra
	am, mm     *Field
	jlmAdv     []float64
	jmmAdv     []float64
}

func NewLagrangianAverager(law RelaxationLaw, delta *Field, ta *TensorAlgebra, geo Geometry) (la *LagrangianAverager) {
	var (
		N = geo.NumNodes()
	)
	checkLen("lagrangian averager", N, delta)
	return &LagrangianAverager{
		Law:        law,
		Delta:      delta,
		Partitions: ta.Partitions,
		geo:        geo,
		ta:         ta,
		am:         NewField("A:M", N),
		mm:         NewField("M:M", N),
		jlmAdv:     make([]float64, N),
		jmmAdv:     make([]float64, N),
	}
}

// Seed starts the averages from the instantaneous contractions, JLM = max(0, A:M) and JMM = M:M.
func (la *LagrangianAverager) Seed(JLM, JMM *Field, A, M *SymTensor) {
	la.ta.Inner(A, M, la.am)
	la.ta.Inner(M, M, la.mm)
	la.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			JLM.Data[i] = math.Max(0, la.am.Data[i])
			JMM.Data[i] = la.mm.Data[i]
		}
	})
}

// Initialize fills the averages with the fixed starting values used by AverageFromInitial.
func (la *LagrangianAverager) Initialize(JLM, JMM *Field) {
	JLM.Fill(InitialJLM)
	JMM.Fill(InitialJMM)
}

func (la *LagrangianAverager) Advance(JLM, JMM *Field, A, M *SymTensor, u VectorField, dt float64) {
	var (
		dim = la.geo.SpatialDim()
	)
	checkLen("lagrangian average", la.geo.NumNodes(), JLM, JMM)
	la.ta.Inner(A, M, la.am)
	la.ta.Inner(M, M, la.mm)
	la.Partitions.ParallelFor(func(np, iMin, iMax int) {
		x := make([]float64, dim)
		for i := iMin; i < iMax; i++ {
			la.geo.NodeCoord(i, x)
			for d := 0; d < dim; d++ {
				x[d] -= u[d].Data[i] * dt
			}
			la.jlmAdv[i] = la.geo.Sample(x, JLM.Data)
			la.jmmAdv[i] = la.geo.Sample(x, JMM.Data)
		}
	})
	// JLM and JMM are read by Sample above, so the update waits for every partition
	la.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			T := la.Law.Timescale(la.Delta.Data[i], JLM.Data[i], JMM.Data[i])
			eps := dt / T
			JLM.Data[i] = math.Max(0, (la.jlmAdv[i]+eps*la.am.Data[i])/(1+eps))
			JMM.Data[i] = math.Max(0, (la.jmmAdv[i]+eps*la.mm.Data[i])/(1+eps))
		}
	})
}
