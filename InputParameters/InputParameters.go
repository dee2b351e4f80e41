package InputParameters

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"gopkg.in/ini.v1"

	"github.com/notargets/goles/les"
	"github.com/notargets/goles/types"
)

// Parameters obtained from the YAML or INI input file
type LESParameters struct {
	Title             string             `json:"Title"`
	Model             string             `json:"Model"`
	CsConst           float64            `json:"CsConst"`
	RecomputeInterval int                `json:"RecomputeInterval"`
	FilterWeightGrid  float64            `json:"FilterWeightGrid"`
	RelaxationLaw     string             `json:"RelaxationLaw"` // meneveau or fixed
	RelaxationTheta   float64            `json:"RelaxationTheta"`
	RelaxationTime    float64            `json:"RelaxationTime"`
	LagrangianStart   string             `json:"LagrangianStart"` // seed or initial
	VelocityDegree    int                `json:"VelocityDegree"`
	ParallelDegree    int                `json:"ParallelDegree"`
	CheckNaN          bool               `json:"CheckNaN"`
	Case              string             `json:"Case"`
	Dim               int                `json:"Dim"`
	Nx                int                `json:"Nx"`
	Ny                int                `json:"Ny"`
	Nz                int                `json:"Nz"`
	Lx                float64            `json:"Lx"`
	Ly                float64            `json:"Ly"`
	Lz                float64            `json:"Lz"`
	Dt                float64            `json:"Dt"`
	Steps             int                `json:"Steps"`
	Nu                float64            `json:"Nu"`
	BCs               map[string]float64 `json:"BCs"` // BC tag or kind -> nut value held there
}

func NewLESParameters() *LESParameters {
	return &LESParameters{
		Title:             "Untitled",
		Model:             "smagorinsky",
		CsConst:           0.1677,
		RecomputeInterval: 1,
		FilterWeightGrid:  0.75,
		RelaxationLaw:     "meneveau",
		RelaxationTheta:   1.5,
		LagrangianStart:   "seed",
		VelocityDegree:    1,
		Case:              "taylorgreen",
		Dim:               2,
		Nx:                16,
		Ny:                16,
		Nz:                8,
		Lx:                1,
		Ly:                1,
		Lz:                1,
		Dt:                0.01,
		Steps:             10,
		Nu:                1.e-3,
	}
}

// Parse reads YAML. Keys missing from data keep their current values.
func (ip *LESParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

/*
ParseINI reads the INI form, with the closure keys under [closure], the case keys under [case] and
the nut boundary values under [bcs]:

	[closure]
	Model = dmm2
	RecomputeInterval = 5
	[case]
	Case = shearlayer
	[bcs]
	Wall = 0
*/
func (ip *LESParameters) ParseINI(data []byte) (err error) {
	var (
		file *ini.File
	)
	if file, err = ini.Load(data); err != nil {
		return
	}
	cl := file.Section("closure")
	ip.Title = cl.Key("Title").MustString(ip.Title)
	ip.Model = cl.Key("Model").MustString(ip.Model)
	ip.CsConst = cl.Key("CsConst").MustFloat64(ip.CsConst)
	ip.RecomputeInterval = cl.Key("RecomputeInterval").MustInt(ip.RecomputeInterval)
	ip.FilterWeightGrid = cl.Key("FilterWeightGrid").MustFloat64(ip.FilterWeightGrid)
	ip.RelaxationLaw = cl.Key("RelaxationLaw").MustString(ip.RelaxationLaw)
	ip.RelaxationTheta = cl.Key("RelaxationTheta").MustFloat64(ip.RelaxationTheta)
	ip.RelaxationTime = cl.Key("RelaxationTime").MustFloat64(ip.RelaxationTime)
	ip.LagrangianStart = cl.Key("LagrangianStart").MustString(ip.LagrangianStart)
	ip.VelocityDegree = cl.Key("VelocityDegree").MustInt(ip.VelocityDegree)
	ip.ParallelDegree = cl.Key("ParallelDegree").MustInt(ip.ParallelDegree)
	ip.CheckNaN = cl.Key("CheckNaN").MustBool(ip.CheckNaN)

	cs := file.Section("case")
	ip.Case = cs.Key("Case").MustString(ip.Case)
	ip.Dim = cs.Key("Dim").MustInt(ip.Dim)
	ip.Nx = cs.Key("Nx").MustInt(ip.Nx)
	ip.Ny = cs.Key("Ny").MustInt(ip.Ny)
	ip.Nz = cs.Key("Nz").MustInt(ip.Nz)
	ip.Lx = cs.Key("Lx").MustFloat64(ip.Lx)
	ip.Ly = cs.Key("Ly").MustFloat64(ip.Ly)
	ip.Lz = cs.Key("Lz").MustFloat64(ip.Lz)
	ip.Dt = cs.Key("Dt").MustFloat64(ip.Dt)
	ip.Steps = cs.Key("Steps").MustInt(ip.Steps)
	ip.Nu = cs.Key("Nu").MustFloat64(ip.Nu)

	if file.HasSection("bcs") {
		if ip.BCs == nil {
			ip.BCs = make(map[string]float64)
		}
		for _, key := range file.Section("bcs").Keys() {
			var val float64
			if val, err = key.Float64(); err != nil {
				return fmt.Errorf("bcs key %s: %w", key.Name(), err)
			}
			ip.BCs[key.Name()] = val
		}
	}
	return
}

// ReadFile parses an input file, INI when the extension is .ini or .cfg and YAML otherwise.
func (ip *LESParameters) ReadFile(fileName string) (err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(fileName); err != nil {
		return fmt.Errorf("unable to read input conditions file %s: %w", fileName, err)
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ini", ".cfg":
		err = ip.ParseINI(data)
	default:
		err = ip.Parse(data)
	}
	if err != nil {
		err = fmt.Errorf("unable to parse %s: %w", fileName, err)
	}
	return
}

func (ip *LESParameters) Relaxation() (law les.RelaxationLaw, err error) {
	switch strings.ToLower(strings.TrimSpace(ip.RelaxationLaw)) {
	case "", "meneveau":
		mr := les.NewMeneveauRelaxation()
		if ip.RelaxationTheta != 0 {
			mr.Theta = ip.RelaxationTheta
		}
		if !(mr.Theta > 0) {
			return nil, fmt.Errorf("relaxation theta must be positive, have %g", mr.Theta)
		}
		law = mr
	case "fixed":
		if !(ip.RelaxationTime > 0) {
			return nil, fmt.Errorf("fixed relaxation needs a positive RelaxationTime, have %g", ip.RelaxationTime)
		}
		law = les.FixedRelaxation{T: ip.RelaxationTime}
	default:
		err = fmt.Errorf("unknown relaxation law [%s]", ip.RelaxationLaw)
	}
	return
}

// ClosureConfig converts the closure keys. The interpolator is left as identity, the caller owns the mesh.
func (ip *LESParameters) ClosureConfig() (cfg les.Config, err error) {
	var (
		model types.ModelType
	)
	if model, err = types.ParseModelType(ip.Model); err != nil {
		return
	}
	cfg = les.NewConfig(model)
	cfg.CsConst = ip.CsConst
	cfg.RecomputeInterval = ip.RecomputeInterval
	cfg.GridFilterWeight = ip.FilterWeightGrid
	cfg.ParallelDegree = ip.ParallelDegree
	cfg.CheckNaN = ip.CheckNaN
	if cfg.Relaxation, err = ip.Relaxation(); err != nil {
		return
	}
	if len(ip.LagrangianStart) != 0 {
		if cfg.AverageStart, err = les.ParseLagrangianStart(ip.LagrangianStart); err != nil {
			return
		}
	}
	err = cfg.Validate()
	return
}

func (ip *LESParameters) Validate() (err error) {
	if _, err = ip.ClosureConfig(); err != nil {
		return
	}
	if _, err = types.ParseCaseType(ip.Case); err != nil {
		return
	}
	switch {
	case ip.Dim != 2 && ip.Dim != 3:
		return fmt.Errorf("dimension must be 2 or 3, have %d", ip.Dim)
	case ip.VelocityDegree != 1 && ip.VelocityDegree != 2:
		return fmt.Errorf("velocity degree must be 1 or 2, have %d", ip.VelocityDegree)
	case ip.Nx < 1 || ip.Ny < 1 || (ip.Dim == 3 && ip.Nz < 1):
		return fmt.Errorf("grid counts must be positive, have %d x %d x %d", ip.Nx, ip.Ny, ip.Nz)
	case !(ip.Lx > 0) || !(ip.Ly > 0) || (ip.Dim == 3 && !(ip.Lz > 0)):
		return fmt.Errorf("domain lengths must be positive, have %g x %g x %g", ip.Lx, ip.Ly, ip.Lz)
	case !(ip.Dt > 0):
		return fmt.Errorf("timestep must be positive, have %g", ip.Dt)
	case ip.Steps < 1:
		return fmt.Errorf("step count must be positive, have %d", ip.Steps)
	case ip.Nu < 0:
		return fmt.Errorf("viscosity must not be negative, have %g", ip.Nu)
	}
	for _, key := range ip.bcKeys() {
		if val := ip.BCs[key]; !(val >= 0) || math.IsInf(val, 1) {
			return fmt.Errorf("nut boundary value for %s must be finite and non negative, have %g", key, val)
		}
	}
	return
}

func (ip *LESParameters) bcKeys() (keys []string) {
	keys = make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

func (ip *LESParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Model\n", ip.Model)
	fmt.Printf("%8.5f\t\t= CsConst\n", ip.CsConst)
	fmt.Printf("[%d]\t\t\t\t= Recompute Interval\n", ip.RecomputeInterval)
	fmt.Printf("%8.5f\t\t= Grid Filter Weight\n", ip.FilterWeightGrid)
	fmt.Printf("[%s]\t\t\t= Relaxation Law\n", ip.RelaxationLaw)
	fmt.Printf("[%s]\t\t\t= Lagrangian Start\n", ip.LagrangianStart)
	fmt.Printf("[%d]\t\t\t\t= Velocity Degree\n", ip.VelocityDegree)
	fmt.Printf("[%s]\t\t= Case\n", ip.Case)
	fmt.Printf("[%dD %dx%dx%d]\t\t= Grid\n", ip.Dim, ip.Nx, ip.Ny, ip.Nz)
	fmt.Printf("%8.5f\t\t= Dt\n", ip.Dt)
	fmt.Printf("[%d]\t\t\t\t= Steps\n", ip.Steps)
	fmt.Printf("%8.5f\t\t= Nu\n", ip.Nu)
	for _, key := range ip.bcKeys() {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}
