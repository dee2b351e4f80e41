package KinematicLES

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/goles/InputParameters"
	"github.com/notargets/goles/les"
	"github.com/notargets/goles/mesh"
	"github.com/notargets/goles/readfiles"
	"github.com/notargets/goles/types"
	"github.com/notargets/goles/utils"
)

// Publisher receives one report per step, the monitor hub is one.
type Publisher interface {
	Publish(msg interface{}) error
}

/*
KinematicLES drives a closure with a prescribed analytic velocity. It stands in for the outer flow
solver: each step it evaluates the velocity at the native dofs, calls Update and reports the closure
fields. Linear velocity lives on the mesh vertices, quadratic velocity on vertices plus edge midpoints.
*/
type KinematicLES struct {
	Params    *InputParameters.LESParameters
	Case      types.CaseType
	Mesh      *mesh.Mesh
	Closure   les.Closure
	Velocity  AnalyticVelocity
	Publisher Publisher
	U         les.VectorField // native velocity
	X         [][]float64     // native dof coordinates
	verbose   bool
}

func NewKinematicLES(ip *InputParameters.LESParameters, gridFile string, verbose bool) (c *KinematicLES, err error) {
	var (
		cfg    les.Config
		m      *mesh.Mesh
		procs  = ip.ParallelDegree
		consts []les.Constraint
	)
	if err = ip.Validate(); err != nil {
		return
	}
	c = &KinematicLES{Params: ip, verbose: verbose}
	c.Case, _ = types.ParseCaseType(ip.Case)
	if cfg, err = ip.ClosureConfig(); err != nil {
		return nil, err
	}
	cfg.Verbose = verbose
	switch {
	case len(gridFile) != 0:
		m, err = readfiles.ReadMeshFile(gridFile, procs, verbose)
	case ip.Dim == 2:
		m, err = mesh.NewRectangleMesh(ip.Nx, ip.Ny, ip.Lx, ip.Ly, procs)
	default:
		m, err = mesh.NewBoxMesh(ip.Nx, ip.Ny, ip.Nz, ip.Lx, ip.Ly, ip.Lz, procs)
	}
	if err != nil {
		return nil, err
	}
	c.Mesh = m
	c.Velocity = AnalyticVelocity{Case: c.Case, Nu: ip.Nu, Lx: ip.Lx, Ly: ip.Ly, Lz: ip.Lz}
	if len(gridFile) != 0 {
		// Periods follow the mesh extent
		box := mesh.NewBoundingBox(m.Coords)
		ext := make([]float64, 3)
		for d := 0; d < m.Dim; d++ {
			ext[d] = box.Max[d] - box.Min[d]
		}
		c.Velocity.Lx, c.Velocity.Ly = ext[0], ext[1]
		if m.Dim == 3 {
			c.Velocity.Lz = ext[2]
		}
	}
	switch ip.VelocityDegree {
	case 2:
		c.X = m.P2Coords()
		cfg.Interpolator = les.NewMatrixInterpolator(m.P2ToCG1())
	default:
		c.X = m.Coords
	}
	for _, bc := range m.NutBCs(ip.BCs) {
		consts = append(consts, bc)
	}
	c.U = les.NewVectorField("u", m.Dim, len(c.X[0]))
	c.Velocity.Evaluate(0, c.X, c.U)
	if c.Closure, err = les.Setup(cfg, m, consts, c.U); err != nil {
		return nil, err
	}
	if verbose {
		c.PrintInitialization()
	}
	return
}

// Step advances the velocity to step tstep and updates the closure.
func (c *KinematicLES) Step(tstep int) (sr StepReport) {
	var (
		dt   = c.Params.Dt
		Time = float64(tstep) * dt
	)
	c.Velocity.Evaluate(Time, c.X, c.U)
	nut, source := c.Closure.Update(c.U, tstep, dt)
	return NewStepReport(tstep, Time, c.Closure.State(), nut, source)
}

// Solve runs Params.Steps steps, publishing each report. It stops early when ctx is done.
func (c *KinematicLES) Solve(ctx context.Context) (final StepReport, err error) {
	var (
		start = time.Now()
	)
	for tstep := 0; tstep < c.Params.Steps; tstep++ {
		select {
		case <-ctx.Done():
			return final, ctx.Err()
		default:
		}
		final = c.Step(tstep)
		if c.Publisher != nil {
			if err = c.Publisher.Publish(final); err != nil {
				return
			}
		}
		if c.verbose {
			log.WithFields(final.Fields()).Debug("step")
		}
	}
	if c.verbose {
		c.PrintFinal(time.Since(start), c.Params.Steps)
	}
	return
}

func (c *KinematicLES) PrintInitialization() {
	fmt.Printf("Kinematic LES in %d dimensions\n", c.Mesh.Dim)
	fmt.Printf("Solving %s\n", c.Case.Print())
	fmt.Printf("Closure: %s\n", c.Closure.Model().Print())
	fmt.Printf("%s\n", c.Mesh.Print())
	fmt.Printf("Velocity dofs = %d, Dt = %8.5f, Steps = %d\n\n", len(c.X[0]), c.Params.Dt, c.Params.Steps)
}

func (c *KinematicLES) PrintFinal(elapsed time.Duration, steps int) {
	rate := float64(elapsed.Microseconds()) / float64(c.Mesh.NVerts*steps)
	fmt.Printf("\nRate of execution = %8.5f us/(node*step) over %d steps\n", rate, steps)
	fmt.Printf("%s\n", utils.GetMemUsage())
}
