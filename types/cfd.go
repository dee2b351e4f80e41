package types

import (
	"fmt"
	"strings"
)

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Dirichlet
	BC_Slip
	BC_Far
	BC_Wall
	BC_Cyl
	BC_Neuman
	BC_Out
	BC_Periodic
)

var BCNameMap = map[string]BCFLAG{
	"inflow":    BC_In,
	"in":        BC_In,
	"out":       BC_Out,
	"outflow":   BC_Out,
	"wall":      BC_Wall,
	"far":       BC_Far,
	"cyl":       BC_Cyl,
	"dirichlet": BC_Dirichlet,
	"neuman":    BC_Neuman,
	"slip":      BC_Slip,
	"periodic":  BC_Periodic,
}

var bcFlagNames = map[BCFLAG]string{
	BC_None:      "BC_None",
	BC_In:        "BC_In",
	BC_Dirichlet: "BC_Dirichlet",
	BC_Slip:      "BC_Slip",
	BC_Far:       "BC_Far",
	BC_Wall:      "BC_Wall",
	BC_Cyl:       "BC_Cyl",
	BC_Neuman:    "BC_Neuman",
	BC_Out:       "BC_Out",
	BC_Periodic:  "BC_Periodic",
}

func (bf BCFLAG) String() string {
	if name, ok := bcFlagNames[bf]; ok {
		return name
	}
	return fmt.Sprintf("BCFLAG(%d)", uint8(bf))
}

// NutValue is the eddy viscosity pinned on a boundary of this type. Boundaries
// without a pinned value (inflow, outflow, far field) report ok == false.
func (bf BCFLAG) NutValue() (value float64, ok bool) {
	switch bf {
	case BC_Wall, BC_Cyl:
		return 0, true
	}
	return 0, false
}

/*
BCTAG is a boundary label as it appears in a mesh file, for example "Wall-top" or "Inflow-3".
The leading token names the boundary type, the remainder (after the first '-') is a free label.
*/
type BCTAG string

func NewBCTAG(label string) (bt BCTAG) {
	return BCTAG(strings.TrimSpace(label))
}

func (bt BCTAG) split() (flag, label string) {
	s := string(bt)
	if ind := strings.Index(s, "-"); ind >= 0 {
		return s[:ind], s[ind+1:]
	}
	return s, ""
}

func (bt BCTAG) GetFLAG() (bf BCFLAG) {
	flag, _ := bt.split()
	if bf, ok := BCNameMap[strings.ToLower(flag)]; ok {
		return bf
	}
	return BC_None
}

func (bt BCTAG) GetLabel() (label string) {
	_, label = bt.split()
	return
}

// GetKind is the lower cased leading token, e.g. "wall" for "Wall-top".
func (bt BCTAG) GetKind() (kind string) {
	flag, _ := bt.split()
	return strings.ToLower(flag)
}
