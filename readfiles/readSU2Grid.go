package readfiles

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/goles/mesh"
	"github.com/notargets/goles/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
	ELType_Tetrahedral   SU2ElementType = 10
	ELType_Hexahedral    SU2ElementType = 12
	ELType_Prism         SU2ElementType = 13
	ELType_Pyramid       SU2ElementType = 14
)

// simplex is the element type of a dim dimensional simplex, facet that of its boundary.
func simplex(dim int) (element, facet SU2ElementType) {
	if dim == 3 {
		return ELType_Tetrahedral, ELType_Triangle
	}
	return ELType_Triangle, ELType_LINE
}

func readBCs(lr *lineReader, dim int) (BCNodes map[types.BCTAG][]int) {
	var (
		_, facetType = simplex(dim)
		facets       = make(map[types.BCTAG][][]int)
	)
	NBCs := readNumber(lr)
	for n := 0; n < NBCs; n++ {
		key := types.NewBCTAG(readLabel(lr))
		nFacets := readNumber(lr)
		// Repeated tags (periodic pairs for instance) accumulate onto one boundary
		for i := 0; i < nFacets; i++ {
			fields := strings.Fields(getLine(lr))
			verts := readInts(fields, dim+1)
			if SU2ElementType(verts[0]) != facetType {
				panic(fmt.Errorf("boundary %s: facet type %d, a %dD mesh needs type %d", key, verts[0], dim, facetType))
			}
			facets[key] = append(facets[key], verts[1:])
		}
	}
	BCNodes = make(map[types.BCTAG][]int, len(facets))
	for key, f := range facets {
		BCNodes[key] = uniqueNodes(f)
	}
	return
}

func readVertices(lr *lineReader, dim int) (coords [][]float64) {
	var (
		x   float64
		err error
	)
	Nv := readNumber(lr)
	coords = make([][]float64, dim)
	for d := range coords {
		coords[d] = make([]float64, Nv)
	}
	for i := 0; i < Nv; i++ {
		fields := strings.Fields(getLine(lr))
		if len(fields) < dim {
			panic(fmt.Errorf("unable to read %d coordinates from %v", dim, fields))
		}
		for d := 0; d < dim; d++ {
			if _, err = fmt.Sscanf(fields[d], "%g", &x); err != nil {
				panic(err)
			}
			coords[d][i] = x
		}
	}
	return
}

func readElements(lr *lineReader, dim int) (EToV [][]int) {
	elType, _ := simplex(dim)
	K := readNumber(lr)
	EToV = make([][]int, K)
	for k := 0; k < K; k++ {
		verts := readInts(strings.Fields(getLine(lr)), dim+2)
		if SU2ElementType(verts[0]) != elType {
			panic(fmt.Errorf("element %d has type %d, only simplices (type %d) are supported in %dD",
				k, verts[0], elType, dim))
		}
		EToV[k] = verts[1:]
	}
	return
}

func readInts(fields []string, n int) (vals []int) {
	var (
		err error
	)
	if len(fields) < n {
		panic(fmt.Errorf("need %d integers, have %v", n, fields))
	}
	vals = make([]int, n)
	for i := 0; i < n; i++ {
		if _, err = fmt.Sscanf(fields[i], "%d", &vals[i]); err != nil {
			panic(fmt.Errorf("unable to read integer from [%s]: %w", fields[i], err))
		}
	}
	return
}

func getToken(lr *lineReader) (key, token string) {
	var (
		line = getLineNoComments(lr)
	)
	ind := strings.Index(line, "=")
	if ind < 0 {
		panic(fmt.Errorf("badly formed input line [%s], should have an =", line))
	}
	return strings.TrimSpace(line[:ind]), line[ind+1:]
}

func readLabel(lr *lineReader) (label string) {
	var (
		err error
	)
	_, token := getToken(lr)
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		panic(fmt.Errorf("unable to read label from token: [%s]", token))
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(lr *lineReader) (num int) {
	var (
		err error
	)
	_, token := getToken(lr)
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		panic(fmt.Errorf("unable to read number from token: [%s]", token))
	}
	return
}

func getLineNoComments(lr *lineReader) (line string) {
	for {
		line = strings.TrimSpace(getLine(lr))
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

// peekKey returns the keyword of the next non comment line without consuming it, ok is false at the end of input.
func peekKey(lr *lineReader) (key string, ok bool) {
	var line string
	for {
		if line, ok = lr.nextLine(); !ok {
			return
		}
		line = strings.TrimSpace(line)
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			break
		}
	}
	lr.unread(line)
	if ind := strings.Index(line, "="); ind >= 0 {
		return strings.TrimSpace(line[:ind]), true
	}
	return line, true
}

func ReadSU2File(filename string, ProcLimit int, verbose bool) (m *mesh.Mesh, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if m, err = ReadSU2(file, ProcLimit, verbose); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

/*
ReadSU2 reads a native SU2 mesh of triangles (NDIME= 2) or tetrahedra (NDIME= 3). The NELEM and NPOIN
sections may appear in either order, NMARK boundaries become tagged vertex sets.
*/
func ReadSU2(r io.Reader, ProcLimit int, verbose bool) (m *mesh.Mesh, err error) {
	var (
		lr      = newLineReader(r)
		EToV    [][]int
		coords  [][]float64
		BCNodes map[types.BCTAG][]int
	)
	defer recoverReadError(lr, &err)
	dim := readNumber(lr)
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("NDIME= %d, need 2 or 3", dim)
	}
	for {
		key, ok := peekKey(lr)
		if !ok {
			break
		}
		switch key {
		case "NELEM":
			EToV = readElements(lr, dim)
		case "NPOIN":
			coords = readVertices(lr, dim)
		case "NMARK":
			BCNodes = readBCs(lr, dim)
		default:
			return nil, fmt.Errorf("unexpected section [%s]", key)
		}
	}
	if EToV == nil || coords == nil {
		return nil, fmt.Errorf("missing NELEM or NPOIN section")
	}
	if m, err = mesh.NewMesh(dim, coords, EToV, BCNodes, ProcLimit); err != nil {
		return
	}
	if verbose {
		logMesh("su2", m, BCNodes)
	}
	return
}
