package KinematicLES

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goles/InputParameters"
	"github.com/notargets/goles/les"
	"github.com/notargets/goles/types"
)

type recorder struct {
	reports []StepReport
}

func (r *recorder) Publish(msg interface{}) error {
	r.reports = append(r.reports, msg.(StepReport))
	return nil
}

func params(model string, steps int) (ip *InputParameters.LESParameters) {
	ip = InputParameters.NewLESParameters()
	ip.Model = model
	ip.Nx, ip.Ny = 8, 8
	ip.Steps = steps
	return
}

func TestAnalyticVelocity(t *testing.T) {
	{ // Test Taylor-Green values and viscous decay
		av := AnalyticVelocity{Case: types.TaylorGreen, Nu: 0.1, Lx: 1, Ly: 2}
		X := [][]float64{{0.25, 0}, {0, 0.5}}
		u := les.NewVectorField("u", 2, 2)
		av.Evaluate(0, X, u)
		assert.InDelta(t, 1., u[0].Data[0], 1.e-14)
		assert.InDelta(t, 0., u[1].Data[0], 1.e-14)
		// kx/ky = 2, cos(0) sin(pi/2) = 1
		assert.InDelta(t, -2., u[1].Data[1], 1.e-14)
		k2 := 4*math.Pi*math.Pi + math.Pi*math.Pi
		av.Evaluate(2, X, u)
		assert.InDelta(t, math.Exp(-0.2*k2), u[0].Data[0], 1.e-14)
	}
	{ // Test the shear layer is antisymmetric about the two interfaces
		av := AnalyticVelocity{Case: types.ShearLayer, Lx: 1, Ly: 1, Lz: 1}
		X := [][]float64{{0, 0.25, 0.5}, {0.25, 0.75, 0}, {0, 0, 0}}
		u := les.NewVectorField("u", 3, 3)
		u[2].Fill(7)
		av.Evaluate(0, X, u)
		assert.InDelta(t, 0., u[0].Data[0], 1.e-14)
		assert.InDelta(t, 0., u[0].Data[1], 1.e-14)
		assert.InDelta(t, -math.Tanh(ShearRho*0.25), u[0].Data[2], 1.e-14)
		assert.InDelta(t, ShearDelta, u[1].Data[1], 1.e-14)
		assert.Equal(t, []float64{0, 0, 0}, u[2].Data)
	}
}

func TestKinematicLES(t *testing.T) {
	{ // Test a Smagorinsky run publishes every step
		c, err := NewKinematicLES(params("smagorinsky", 4), "", false)
		require.NoError(t, err)
		rec := &recorder{}
		c.Publisher = rec
		final, err := c.Solve(context.Background())
		require.NoError(t, err)
		require.Equal(t, 4, len(rec.reports))
		assert.Equal(t, rec.reports[3], final)
		assert.Equal(t, 3, final.Step)
		assert.InDelta(t, 0.03, final.Time, 1.e-15)
		assert.Equal(t, "Smagorinsky-Lilly", final.Model)
		for _, sr := range rec.reports {
			assert.True(t, sr.Nut.Min >= 0)
			assert.True(t, sr.Nut.Max > 0)
			assert.Equal(t, 0., sr.SourceMax)
		}
		// Wall rows carry nut = 0
		for _, i := range c.Mesh.BCNodes["Wall-bottom"] {
			assert.Equal(t, 0., c.Closure.State().Nut.Data[i])
		}
	}
	{ // Test a mixed model with quadratic velocity follows the schedule
		ip := params("dmm1", 5)
		ip.VelocityDegree = 2
		ip.RecomputeInterval = 2
		ip.Case = "shearlayer"
		c, err := NewKinematicLES(ip, "", false)
		require.NoError(t, err)
		assert.Equal(t, c.Mesh.NumP2Nodes(), c.U.Len())
		rec := &recorder{}
		c.Publisher = rec
		_, err = c.Solve(context.Background())
		require.NoError(t, err)
		var phases []string
		for _, sr := range rec.reports {
			phases = append(phases, sr.Phase)
			assert.True(t, sr.Cs.Max <= les.CsMax)
			assert.True(t, sr.SourceMax > 0)
		}
		assert.Equal(t, []string{"Recompute", "Reuse", "Recompute", "Reuse", "Recompute"}, phases)
		assert.Equal(t, 3, rec.reports[4].Recomputes)
	}
	{ // Test a 3D box run
		ip := params("dynamiclagrangian", 2)
		ip.Dim = 3
		ip.Nx, ip.Ny, ip.Nz = 3, 3, 3
		c, err := NewKinematicLES(ip, "", false)
		require.NoError(t, err)
		final, err := c.Solve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, final.Recomputes)
		assert.True(t, final.Nut.Min >= 0)
	}
	{ // Test cancellation stops before the first step
		c, err := NewKinematicLES(params("smagorinsky", 4), "", false)
		require.NoError(t, err)
		rec := &recorder{}
		c.Publisher = rec
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.Solve(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, len(rec.reports))
	}
	{ // Test invalid parameters are returned
		_, err := NewKinematicLES(params("wale", 1), "", false)
		assert.Error(t, err)
		_, err = NewKinematicLES(params("smagorinsky", 1), "missing.su2", false)
		assert.Error(t, err)
		ip := params("dmm2", 1)
		ip.BCs = map[string]float64{"wall": -1}
		_, err = NewKinematicLES(ip, "", false)
		assert.Error(t, err)
	}
	{ // Test a run on a mesh read from file
		gridFile := filepath.Join(t.TempDir(), "square.su2")
		require.NoError(t, os.WriteFile(gridFile, []byte(squareSU2(4)), 0644))
		ip := params("smagorinsky", 2)
		ip.BCs = map[string]float64{"inflow": 0.5}
		c, err := NewKinematicLES(ip, gridFile, false)
		require.NoError(t, err)
		assert.Equal(t, 25, c.Mesh.NVerts)
		assert.InDelta(t, 1., c.Velocity.Lx, 1.e-15)
		_, err = c.Solve(context.Background())
		require.NoError(t, err)
		nut := c.Closure.State().Nut.Data
		wall := make(map[int]bool)
		for _, i := range c.Mesh.BCNodes["wall"] {
			wall[i] = true
			assert.Equal(t, 0., nut[i])
		}
		// Corners take the wall value, walls sort after inflow
		for _, i := range c.Mesh.BCNodes["inflow"] {
			if !wall[i] {
				assert.Equal(t, 0.5, nut[i])
			}
		}
	}
}

// squareSU2 writes an n x n triangulated unit square with the bottom and top tagged wall and the left inflow.
func squareSU2(n int) string {
	var (
		b  strings.Builder
		id = func(i, j int) int { return i + j*(n+1) }
	)
	fmt.Fprintf(&b, "NDIME= 2\nNELEM= %d\n", 2*n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "5 %d %d %d\n", id(i, j), id(i+1, j), id(i+1, j+1))
			fmt.Fprintf(&b, "5 %d %d %d\n", id(i, j), id(i+1, j+1), id(i, j+1))
		}
	}
	fmt.Fprintf(&b, "NPOIN= %d\n", (n+1)*(n+1))
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			fmt.Fprintf(&b, "%g %g %d\n", float64(i)/float64(n), float64(j)/float64(n), id(i, j))
		}
	}
	fmt.Fprintf(&b, "NMARK= 2\nMARKER_TAG= wall\nMARKER_ELEMS= %d\n", 2*n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "3 %d %d\n", id(i, 0), id(i+1, 0))
		fmt.Fprintf(&b, "3 %d %d\n", id(i, n), id(i+1, n))
	}
	fmt.Fprintf(&b, "MARKER_TAG= inflow\nMARKER_ELEMS= %d\n", n)
	for j := 0; j < n; j++ {
		fmt.Fprintf(&b, "3 %d %d\n", id(0, j), id(0, j+1))
	}
	return b.String()
}
