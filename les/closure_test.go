package les

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goles/mesh"
	"github.com/notargets/goles/types"
)

func constraintsOf(m *mesh.Mesh) (cons []Constraint) {
	for _, bc := range m.NutBCs(nil) {
		cons = append(cons, bc)
	}
	return
}

func setup(t *testing.T, cfg Config, m *mesh.Mesh, u0 VectorField) Closure {
	cl, err := Setup(cfg, m, constraintsOf(m), u0)
	require.NoError(t, err)
	return cl
}

func TestSetupErrors(t *testing.T) {
	m := rectangle(t, 4, 1., 1)
	u0 := constant(m, 1, 0)
	{ // Test unknown model
		_, err := Setup(NewConfig(types.ModelType(9)), m, nil, u0)
		assert.Error(t, err)
	}
	{ // Test bad Smagorinsky constant
		cfg := NewConfig(types.Smagorinsky)
		for _, c := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
			cfg.CsConst = c
			_, err := Setup(cfg, m, nil, u0)
			assert.Error(t, err)
		}
	}
	{ // Test bad dynamic settings
		cfg := NewConfig(types.MixedDMM1)
		cfg.RecomputeInterval = 0
		_, err := Setup(cfg, m, nil, u0)
		assert.Error(t, err)
		cfg = NewConfig(types.MixedDMM1)
		cfg.GridFilterWeight = 1.5
		_, err = Setup(cfg, m, nil, u0)
		assert.Error(t, err)
		cfg = NewConfig(types.DynamicLagrangian)
		cfg.Relaxation = nil
		_, err = Setup(cfg, m, nil, u0)
		assert.Error(t, err)
	}
	{ // Test dimension and size mismatch
		cfg := NewConfig(types.DynamicLagrangian)
		_, err := Setup(cfg, m, nil, NewVectorField("u", 3, m.NVerts))
		assert.Error(t, err)
		_, err = Setup(cfg, m, nil, NewVectorField("u", 2, m.NVerts+1))
		assert.Error(t, err)
		cfg.Interpolator = NewMatrixInterpolator(m.P2ToCG1())
		_, err = Setup(cfg, m, nil, u0)
		assert.Error(t, err)
	}
	{ // Test a valid setup
		cfg := NewConfig(types.MixedDMM2)
		cfg.Verbose = true
		cl, err := Setup(cfg, m, nil, u0)
		assert.NoError(t, err)
		assert.Equal(t, types.MixedDMM2, cl.Model())
		st := cl.State()
		assert.False(t, st.Schedule.HasValidCoefficient)
		assert.Equal(t, 2, st.Source.Dim())
		assert.Equal(t, 0., MaxAbs(st.Source))
		// Uniform mesh: every node sees the same element size
		h := math.Sqrt(1. / 32.)
		for i := 0; i < m.NVerts; i++ {
			assert.InDelta(t, h, st.Delta.Data[i], 1.e-14)
			assert.InDelta(t, h*h, st.DeltaSq.Data[i], 1.e-14)
		}
	}
}

func TestSmagorinsky(t *testing.T) {
	m := rectangle(t, 8, 1., 2)
	bnd := isBoundary(m)
	wall := make([]bool, m.NVerts)
	for tag, nodes := range m.BCNodes {
		if tag.GetFLAG() == types.BC_Wall {
			for _, v := range nodes {
				wall[v] = true
			}
		}
	}
	{ // Test a uniform velocity has zero eddy viscosity for any constant
		for _, c := range []float64{0.1, 0.3} {
			cfg := NewConfig(types.Smagorinsky)
			cfg.CsConst = c
			u := constant(m, 2, -1)
			cl := setup(t, cfg, m, u)
			nut, source := cl.Update(u, 0, 0.01)
			assert.Nil(t, source)
			assert.Nil(t, cl.State().Schedule)
			for i := range nut.Data {
				assert.InDelta(t, 0., nut.Data[i], 1.e-14)
				assert.InDelta(t, 0., cl.State().MagS.Data[i], 1.e-12)
			}
		}
	}
	{ // Test simple shear against the closed form
		var (
			a, cs = 2., 0.17
			vol   = 1. / 128.
		)
		cfg := NewConfig(types.Smagorinsky)
		cfg.CsConst = cs
		u := linear(m, [][]float64{{0, a}, {0, 0}})
		cl := setup(t, cfg, m, u)
		nut, _ := cl.Update(u, 3, 0.01)
		for i := 0; i < m.NVerts; i++ {
			switch {
			case wall[i]:
				assert.Equal(t, 0., nut.Data[i])
			case !bnd[i]:
				assert.InDelta(t, cs*cs*vol*a, nut.Data[i], 1.e-12)
			}
			assert.True(t, nut.Data[i] >= 0)
		}
	}
	{ // Test NaN checking
		cfg := NewConfig(types.Smagorinsky)
		cfg.CheckNaN = true
		u := constant(m, 1, 1)
		cl := setup(t, cfg, m, u)
		u[0].Data[40] = math.NaN()
		assert.Panics(t, func() { cl.Update(u, 1, 0.01) })
	}
}

func TestDynamicSchedule(t *testing.T) {
	m := rectangle(t, 10, 1., 2)
	cfg := NewConfig(types.DynamicLagrangian)
	cfg.RecomputeInterval = 5
	cl := setup(t, cfg, m, compressive(m, 1))
	st := cl.State()
	var (
		phases []Phase
		cs0    = NewField("Cs0", m.NVerts)
		nut0   = NewField("nut0", m.NVerts)
	)
	for tstep := 0; tstep < 6; tstep++ {
		nut, source := cl.Update(compressive(m, 1+0.1*float64(tstep)), tstep, 0.01)
		assert.Nil(t, source)
		phases = append(phases, st.Schedule.LastPhase)
		switch tstep {
		case 0:
			cs0.CopyFrom(st.Cs)
			nut0.CopyFrom(nut)
			// Uniform compression has L:M > 0 everywhere
			assert.True(t, Stats(st.Cs).Min > 0)
		case 1, 2, 3, 4:
			// Cs is held, nut follows the current strain
			assert.Equal(t, cs0.Data, st.Cs.Data)
			assert.NotEqual(t, nut0.Data, nut.Data)
			assert.Equal(t, 1, st.Schedule.Recomputes)
		}
	}
	assert.Equal(t, []Phase{Recompute, Reuse, Reuse, Reuse, Reuse, Recompute}, phases)
	assert.Equal(t, 2, st.Schedule.Recomputes)
	assert.Equal(t, 5, st.Schedule.LastRecompute)
	assert.Equal(t, 6, st.Schedule.Calls)
}

func TestLagrangianStart(t *testing.T) {
	m := rectangle(t, 6, 1., 1)
	var (
		u      = compressive(m, 1)
		dt     = 0.1
		T      = 0.5
		eps    = dt / T
		am, mm = NewField("A:M", m.NVerts), NewField("M:M", m.NVerts)
	)
	newClosure := func(start LagrangianStart) *Dynamic {
		cfg := NewConfig(types.DynamicLagrangian)
		cfg.Relaxation = FixedRelaxation{T: T}
		cfg.AverageStart = start
		return setup(t, cfg, m, u).(*Dynamic)
	}
	{ // Test the first recompute seeds from the instantaneous contractions
		dy := newClosure(SeedFromContractions)
		st := dy.State()
		dy.Update(u, 0, dt)
		dy.ta.Inner(dy.L, dy.M, am)
		dy.ta.Inner(dy.M, dy.M, mm)
		assert.True(t, MaxAbs(VectorField{mm}) > 0)
		for i := 0; i < m.NVerts; i++ {
			assert.Equal(t, math.Max(0, am.Data[i]), st.JLM.Data[i])
			assert.Equal(t, mm.Data[i], st.JMM.Data[i])
		}
	}
	{ // Test the initial start averages from fixed values on the first recompute
		dy := newClosure(AverageFromInitial)
		st := dy.State()
		for i := 0; i < m.NVerts; i++ {
			assert.Equal(t, InitialJLM, st.JLM.Data[i])
			assert.Equal(t, InitialJMM, st.JMM.Data[i])
		}
		dy.Update(u, 0, dt)
		assert.True(t, st.Schedule.HasValidCoefficient)
		dy.ta.Inner(dy.L, dy.M, am)
		dy.ta.Inner(dy.M, dy.M, mm)
		for i := 0; i < m.NVerts; i++ {
			assert.InDelta(t, math.Max(0, (InitialJLM+eps*am.Data[i])/(1+eps)), st.JLM.Data[i], 1.e-12)
			assert.InDelta(t, (InitialJMM+eps*mm.Data[i])/(1+eps), st.JMM.Data[i], 1.e-12)
		}
	}
	{ // Test start labels and an unknown start
		ls, err := ParseLagrangianStart(" Initial ")
		assert.NoError(t, err)
		assert.Equal(t, AverageFromInitial, ls)
		assert.Equal(t, "seed", SeedFromContractions.Print())
		_, err = ParseLagrangianStart("zero")
		assert.Error(t, err)
		cfg := NewConfig(types.DynamicLagrangian)
		cfg.AverageStart = LagrangianStart(7)
		_, err = Setup(cfg, m, nil, u)
		assert.Error(t, err)
	}
}

func TestMixedSourceLatch(t *testing.T) {
	m := rectangle(t, 10, 2*math.Pi, 1)
	{ // Test the source is untouched before the first update and refreshed from then on
		cfg := NewConfig(types.MixedDMM2)
		cl := setup(t, cfg, m, taylorGreen(m, 1))
		st := cl.State()
		assert.Equal(t, 0., MaxAbs(st.Source))
		_, source := cl.Update(taylorGreen(m, 1), 0, 0.01)
		assert.True(t, st.Schedule.HasValidCoefficient)
		assert.True(t, MaxAbs(source) > 0)
		first := MaxAbs(source)
		_, source = cl.Update(taylorGreen(m, 2), 1, 0.01)
		assert.NotEqual(t, first, MaxAbs(source))
	}
	{ // Test a reuse before any recompute skips the source
		cfg := NewConfig(types.MixedDMM1)
		cl := setup(t, cfg, m, taylorGreen(m, 1))
		dy := cl.(*Dynamic)
		dy.State().Source.Fill(7)
		dy.reuse(taylorGreen(m, 1))
		for _, f := range dy.State().Source {
			for _, v := range f.Data {
				assert.Equal(t, 7., v)
			}
		}
	}
}

func TestDynamicInvariants(t *testing.T) {
	m := rectangle(t, 12, 2*math.Pi, 0)
	for _, model := range []types.ModelType{types.DynamicLagrangian, types.MixedDMM1, types.MixedDMM2} {
		cfg := NewConfig(model)
		cfg.RecomputeInterval = 2
		cfg.CheckNaN = true
		cl := setup(t, cfg, m, taylorGreen(m, 1))
		st := cl.State()
		for tstep := 0; tstep < 8; tstep++ {
			nut, _ := cl.Update(taylorGreen(m, math.Exp(-0.2*float64(tstep))), tstep, 0.05)
			for i := range nut.Data {
				assert.True(t, nut.Data[i] >= 0)
				assert.True(t, st.Cs.Data[i] <= CsMax)
				assert.True(t, st.JLM.Data[i] >= 0)
				assert.True(t, st.JMM.Data[i] >= 0)
			}
		}
	}
}

func TestDMM1VersusDMM2(t *testing.T) {
	m := rectangle(t, 10, 2*math.Pi, 2)
	u := taylorGreen(m, 1)
	var dyn [2]*Dynamic
	for n, model := range []types.ModelType{types.MixedDMM1, types.MixedDMM2} {
		cl := setup(t, NewConfig(model), m, u)
		cl.Update(u, 0, 0.01)
		dyn[n] = cl.(*Dynamic)
		for _, c := range cl.State().Cs.Data {
			assert.True(t, c <= CsMax)
		}
	}
	D := NewSymTensor("D", 2, m.NVerts)
	dyn[0].ta.Sub(dyn[0].H, dyn[1].H, D)
	assert.True(t, maxAbsTensor(D) > 1.e-8)
}

func TestParallelDeterminism(t *testing.T) {
	var states [2]*ClosureState
	for n, procs := range []int{1, 3} {
		m := rectangle(t, 9, 2*math.Pi, procs)
		cfg := NewConfig(types.MixedDMM2)
		cfg.ParallelDegree = procs
		cl := setup(t, cfg, m, taylorGreen(m, 1))
		for tstep := 0; tstep < 3; tstep++ {
			cl.Update(taylorGreen(m, 1+0.5*float64(tstep)), tstep, 0.02)
		}
		states[n] = cl.State()
	}
	assert.Equal(t, states[0].Nut.Data, states[1].Nut.Data)
	assert.Equal(t, states[0].Cs.Data, states[1].Cs.Data)
	assert.Equal(t, states[0].JLM.Data, states[1].JLM.Data)
	assert.Equal(t, states[0].Source[1].Data, states[1].Source[1].Data)
}

func TestInterpolatedVelocity(t *testing.T) {
	m := rectangle(t, 6, 2*math.Pi, 1)
	var (
		p2   = m.P2Coords()
		NP2  = m.NumP2Nodes()
		uP2  = NewVectorField("u", 2, NP2)
		uCG1 = taylorGreen(m, 1)
	)
	for i := 0; i < NP2; i++ {
		x, y := p2[0][i], p2[1][i]
		uP2[0].Data[i] = math.Sin(x) * math.Cos(y)
		uP2[1].Data[i] = -math.Cos(x) * math.Sin(y)
	}
	cfg := NewConfig(types.DynamicLagrangian)
	cfg.Interpolator = NewMatrixInterpolator(m.P2ToCG1())
	clP2 := setup(t, cfg, m, uP2)
	clCG1 := setup(t, NewConfig(types.DynamicLagrangian), m, uCG1)
	nutP2, _ := clP2.Update(uP2, 0, 0.01)
	nutCG1, _ := clCG1.Update(uCG1, 0, 0.01)
	assert.Equal(t, nutCG1.Data, nutP2.Data)
}

func TestDynamic3D(t *testing.T) {
	m := box(t, 3, 0)
	u := velocity(m, func(x, u []float64) {
		u[0] = math.Sin(2*x[1]) + x[2]
		u[1] = math.Cos(3 * x[0])
		u[2] = x[0] * x[1]
	})
	cfg := NewConfig(types.MixedDMM1)
	cfg.CheckNaN = true
	cl := setup(t, cfg, m, u)
	nut, source := cl.Update(u, 0, 0.01)
	assert.Equal(t, 3, source.Dim())
	for i := range nut.Data {
		assert.True(t, nut.Data[i] >= 0)
	}
	nut, _ = cl.Update(u, 1, 0.01)
	assert.Equal(t, 2, cl.State().Schedule.Recomputes)
	assert.Equal(t, m.NVerts, nut.Len())
}
