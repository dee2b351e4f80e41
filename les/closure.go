package les

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/goles/types"
	"github.com/notargets/goles/utils"
)

type Config struct {
	Model             types.ModelType
	CsConst           float64 // Smagorinsky only
	RecomputeInterval int     // dynamic models only
	GridFilterWeight  float64 // weight of the single grid filter pass
	Relaxation        RelaxationLaw
	AverageStart      LagrangianStart
	Interpolator      Interpolator
	ParallelDegree    int // go routines per field operation, 0 uses every CPU
	CheckNaN          bool
	Verbose           bool
}

func NewConfig(model types.ModelType) Config {
	return Config{
		Model:             model,
		CsConst:           0.1677,
		RecomputeInterval: 1,
		GridFilterWeight:  0.75,
		Relaxation:        NewMeneveauRelaxation(),
		Interpolator:      IdentityInterpolator{},
	}
}

func (cfg Config) Validate() (err error) {
	if _, ok := types.ModelNamesRev[cfg.Model]; !ok {
		return fmt.Errorf("unknown SGS model %d", cfg.Model)
	}
	if cfg.Model == types.Smagorinsky {
		if !(cfg.CsConst > 0) || math.IsInf(cfg.CsConst, 0) {
			return fmt.Errorf("smagorinsky constant must be positive and finite, have %g", cfg.CsConst)
		}
		return
	}
	if cfg.RecomputeInterval < 1 {
		return fmt.Errorf("recompute interval must be a positive integer, have %d", cfg.RecomputeInterval)
	}
	if !(cfg.GridFilterWeight > 0 && cfg.GridFilterWeight <= 1) {
		return fmt.Errorf("grid filter weight must be in (0,1], have %g", cfg.GridFilterWeight)
	}
	if cfg.Relaxation == nil {
		return fmt.Errorf("dynamic models need a relaxation law")
	}
	if cfg.AverageStart != SeedFromContractions && cfg.AverageStart != AverageFromInitial {
		return fmt.Errorf("unknown lagrangian start %d", cfg.AverageStart)
	}
	return
}

/*
ClosureState is everything the closure carries between timesteps. Nut and Source are handed to the outer
solver, which must not write them while Update runs.
*/
type ClosureState struct {
	Model    types.ModelType
	JLM, JMM *Field // Lagrangian averages, dynamic models only
	Cs       *Field // dynamic coefficient (Cs, not Cs^2)
	Nut      *Field
	Source   VectorField // mixed models only
	Delta    *Field      // nodal length scale, fixed at setup
	DeltaSq  *Field
	MagS     *Field
	UCG1     VectorField // velocity interpolated to CG1 at the last update
	Schedule *Schedule   // dynamic models only
}

// Closure is the uniform call site for the outer solver, called once per timestep after velocity advances.
type Closure interface {
	Update(u VectorField, tstep int, dt float64) (nut *Field, source VectorField)
	State() *ClosureState
	Model() types.ModelType
}

/*
Setup validates the configuration against the geometry and initial velocity and builds the selected
closure. Errors are configuration errors: unknown model, bad constants, dimension or size mismatch.
*/
func Setup(cfg Config, geo Geometry, constraints []Constraint, u0 VectorField) (cl Closure, err error) {
	var (
		cb *closureBase
	)
	if err = cfg.Validate(); err != nil {
		return
	}
	if cb, err = newClosureBase(cfg, geo, constraints, u0); err != nil {
		return
	}
	switch cfg.Model {
	case types.Smagorinsky:
		cl = newSmagorinsky(cb)
	default:
		if cl, err = newDynamic(cb); err != nil {
			return nil, err
		}
	}
	if cfg.Verbose {
		cb.logger.WithFields(log.Fields{
			"dim":      geo.SpatialDim(),
			"nodes":    geo.NumNodes(),
			"elements": geo.NumElements(),
			"parallel": cb.ta.Partitions.ParallelDegree,
		}).Info("closure setup")
	}
	return
}

type closureBase struct {
	cfg    Config
	geo    Geometry
	state  *ClosureState
	interp Interpolator
	ta     *TensorAlgebra
	ev     *EddyViscosity
	S      *SymTensor
	logger *log.Entry
}

func newClosureBase(cfg Config, geo Geometry, constraints []Constraint, u0 VectorField) (cb *closureBase, err error) {
	var (
		dim = geo.SpatialDim()
		N   = geo.NumNodes()
	)
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("space dimensions not 2 or 3, have %d", dim)
	}
	if N == 0 || geo.NumElements() == 0 {
		return nil, fmt.Errorf("empty geometry")
	}
	if u0.Dim() != dim {
		return nil, fmt.Errorf("initial velocity has %d components, geometry is %dD", u0.Dim(), dim)
	}
	nNative := u0.Len()
	for _, f := range u0 {
		if f.Len() != nNative {
			return nil, fmt.Errorf("velocity component %s has %d values, expected %d", f.Name, f.Len(), nNative)
		}
	}
	interp := cfg.Interpolator
	if interp == nil {
		interp = IdentityInterpolator{}
	}
	switch ip := interp.(type) {
	case IdentityInterpolator, *IdentityInterpolator:
		if nNative != N {
			return nil, fmt.Errorf("identity interpolation needs %d velocity values, have %d", N, nNative)
		}
	case interface{ Dims() (int, int) }:
		if nr, nc := ip.Dims(); nr != N || nc != nNative {
			return nil, fmt.Errorf("interpolation matrix is %dx%d, need %dx%d", nr, nc, N, nNative)
		}
	}
	pm := utils.NewParallelPartitionMap(cfg.ParallelDegree, N)
	cb = &closureBase{
		cfg:    cfg,
		geo:    geo,
		interp: interp,
		ta:     NewTensorAlgebra(geo, pm),
		ev:     &EddyViscosity{Constraints: constraints, Partitions: pm},
		S:      NewSymTensor("S", dim, N),
		logger: log.WithFields(log.Fields{"model": cfg.Model.Print()}),
	}
	cb.state = &ClosureState{
		Model:   cfg.Model,
		Nut:     NewField("nut", N),
		Delta:   NewField("delta", N),
		DeltaSq: NewField("delta^2", N),
		MagS:    NewField("magS", N),
		UCG1:    NewVectorField("u", dim, N),
	}
	cb.lengthScale()
	interp.Interpolate(cb.state.UCG1, u0)
	return
}

/*
lengthScale projects the element size vol^(1/dim) onto the nodes. The static model uses the projection of
vol^(2/dim) as its squared length, the dynamic models the square of the projected length.
*/
func (cb *closureBase) lengthScale() {
	var (
		st  = cb.state
		K   = cb.geo.NumElements()
		dim = float64(cb.geo.SpatialDim())
		h   = make([]float64, K)
		exp = 1. / dim
	)
	for k := range h {
		h[k] = math.Pow(cb.geo.ElementVolume(k), exp)
	}
	cb.geo.DG0ToCG1(h, st.Delta.Data)
	if cb.cfg.Model == types.Smagorinsky {
		for k := range h {
			h[k] *= h[k]
		}
		cb.geo.DG0ToCG1(h, st.DeltaSq.Data)
		return
	}
	for i, d := range st.Delta.Data {
		st.DeltaSq.Data[i] = d * d
	}
}

func (cb *closureBase) State() *ClosureState   { return cb.state }
func (cb *closureBase) Model() types.ModelType { return cb.cfg.Model }

// strain interpolates u to CG1 and refreshes the strain rate and its magnitude.
func (cb *closureBase) strain(u VectorField) {
	st := cb.state
	cb.interp.Interpolate(st.UCG1, u)
	cb.ta.StrainRate(st.UCG1, cb.S)
	cb.ta.StrainMagnitude(cb.S, st.MagS)
}

func (cb *closureBase) checkNaN(fields ...*Field) {
	if !cb.cfg.CheckNaN {
		return
	}
	for _, f := range fields {
		utils.IsNanPanic(f.Name, f.Data)
	}
}
