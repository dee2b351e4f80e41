package readfiles

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/goles/mesh"
	"github.com/notargets/goles/types"
)

type Material struct {
	ElementCount  int
	MaterialValue float64
	Title         string
}

// Gambit face numbering, one based in the file, as local vertex lists.
var (
	gambitTriFaces = [][]int{{0, 1}, {1, 2}, {2, 0}}
	gambitTetFaces = [][]int{{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {0, 2, 3}}
)

func ReadGambitFile(filename string, ProcLimit int, verbose bool) (m *mesh.Mesh, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if m, err = ReadGambit(file, ProcLimit, verbose); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

// ReadGambit reads a Gambit neutral file of triangles (NDFCD 2) or tetrahedra (NDFCD 3).
func ReadGambit(r io.Reader, ProcLimit int, verbose bool) (m *mesh.Mesh, err error) {
	var (
		lr = newLineReader(r)
	)
	defer recoverReadError(lr, &err)

	// Skip first six lines
	skipLines(6, lr)

	// Get dimensions
	Nv, K, Nmats, Nbcs, Nsd := ReadHeader(lr)
	skipLines(2, lr)
	if Nsd > 3 || Nsd < 2 {
		return nil, fmt.Errorf("space dimensions not 2 or 3, have %d", Nsd)
	}

	coords := ReadVertices(Nv, Nsd, lr)
	skipLines(2, lr)

	EToV := ReadElements(K, Nsd, lr)
	skipLines(2, lr)

	matGroups := make(map[int]*Material)
	for i := 0; i < Nmats; i++ {
		gn, elnum, matval, title := ReadMaterialHeader(lr)
		matGroups[gn] = &Material{
			ElementCount:  elnum,
			MaterialValue: matval,
			Title:         title,
		}
		SkipMaterialGroup(lr, elnum)
		skipLines(2, lr)
	}

	BCNodes := ReadBCS(Nbcs, Nsd, lr, EToV)
	if m, err = mesh.NewMesh(Nsd, coords, EToV, BCNodes, ProcLimit); err != nil {
		return
	}
	if verbose {
		logMesh("gambit", m, BCNodes)
		for gn, mat := range matGroups {
			log.WithFields(log.Fields{
				"group":    gn,
				"elements": mat.ElementCount,
				"material": mat.MaterialValue,
			}).Info(mat.Title)
		}
	}
	return
}

func ReadBCS(Nbcs, Nsd int, lr *lineReader, EToV [][]int) (BCNodes map[types.BCTAG][]int) {
	var (
		faces  = gambitTriFaces
		facets = make(map[types.BCTAG][][]int)
	)
	if Nsd == 3 {
		faces = gambitTetFaces
	}
	for i := 0; i < Nbcs; i++ {
		// BOUNDARY CONDITIONS section header precedes every group after the first
		if i != 0 {
			skipLines(1, lr)
		}
		var (
			bctyp             string
			itype, numfaces   int
			kp1, typ, faceNum int
			n                 int
			err               error
		)
		line := getLine(lr)
		if n, err = fmt.Sscanf(line, "%s %d %d", &bctyp, &itype, &numfaces); err != nil || n < 3 {
			panic(fmt.Errorf("unable to read boundary header [%s]: %v", line, err))
		}
		key := types.NewBCTAG(bctyp)
		for f := 0; f < numfaces; f++ {
			line = getLine(lr)
			if n, err = fmt.Sscanf(line, "%d %d %d", &kp1, &typ, &faceNum); err != nil || n < 3 {
				panic(fmt.Errorf("unable to read boundary face [%s]: %v", line, err))
			}
			if kp1 < 1 || kp1 > len(EToV) || faceNum < 1 || faceNum > len(faces) {
				panic(fmt.Errorf("boundary %s references element %d face %d", key, kp1, faceNum))
			}
			verts := EToV[kp1-1]
			facet := make([]int, len(faces[faceNum-1]))
			for j, a := range faces[faceNum-1] {
				facet[j] = verts[a]
			}
			facets[key] = append(facets[key], facet)
		}
		skipLines(1, lr)
	}
	BCNodes = make(map[types.BCTAG][]int, len(facets))
	for key, f := range facets {
		BCNodes[key] = uniqueNodes(f)
	}
	return
}

// SkipMaterialGroup consumes the element list of a group, ten entries per line.
func SkipMaterialGroup(lr *lineReader, elementCount int) {
	var (
		added int
	)
	if elementCount%10 != 0 {
		added = 1
	}
	skipLines(elementCount/10+added, lr)
}

func ReadMaterialHeader(lr *lineReader) (gn, elnum int, matval float64, title string) {
	/*
	   GROUP:           1 ELEMENTS:        977 MATERIAL:      1.000 NFLAGS:          0
	                     epsilon: 1.000
	          0
	*/
	var (
		line = strings.TrimSpace(getLine(lr))
		n    int
		err  error
	)
	nargs := 3
	if n, err = fmt.Sscanf(line, "GROUP: %d ELEMENTS: %d MATERIAL: %f", &gn, &elnum, &matval); err != nil || n < nargs {
		if err == nil && n < nargs {
			err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
		}
		panic(err)
	}
	title = strings.TrimSpace(getLine(lr))
	skipLines(1, lr)
	return
}

func ReadHeader(lr *lineReader) (Nv, K, Nmats, Nbcs, Nsd int) {
	/*
		Nv      // num nodes in mesh
		K       // num elements
		Nmats   // num material groups
		Nbcs    // num boundary groups
		Nsd;    // num space dimensions
	*/
	var (
		line   = getLine(lr)
		n, dum int
		err    error
	)
	nargs := 6
	if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &Nv, &K, &Nmats, &Nbcs, &Nsd, &dum); err != nil || n < nargs {
		if err == nil && n < nargs {
			err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
		}
		panic(err)
	}
	return
}

// ReadVertices reads one based vertex records "index x y [z]".
func ReadVertices(Nv, Nsd int, lr *lineReader) (coords [][]float64) {
	var (
		x   float64
		ind int
		err error
	)
	coords = make([][]float64, Nsd)
	for d := range coords {
		coords[d] = make([]float64, Nv)
	}
	for i := 0; i < Nv; i++ {
		fields := strings.Fields(getLine(lr))
		if len(fields) < Nsd+1 {
			panic(fmt.Errorf("read fewer than required dimensions, need %d, line: %v", Nsd+1, fields))
		}
		if _, err = fmt.Sscanf(fields[0], "%d", &ind); err != nil || ind < 1 || ind > Nv {
			panic(fmt.Errorf("bad vertex index [%s]", fields[0]))
		}
		for d := 0; d < Nsd; d++ {
			if _, err = fmt.Sscanf(fields[d+1], "%g", &x); err != nil {
				panic(err)
			}
			coords[d][ind-1] = x
		}
	}
	return
}

/*
ReadElements reads element records "index type nnodes n1 ... nN" with one based vertex numbers:

	---------------------------------------------
	 Tetrahedra in 3D:
	---------------------------------------------
	    ELEMENTS/CELLS 1.3.0
	     1  6  4      248     247     385     265
	     2  6  4      248     249     273     397
*/
func ReadElements(K, Nsd int, lr *lineReader) (EToV [][]int) {
	var (
		nargs = Nsd + 4
	)
	EToV = make([][]int, K)
	for i := 0; i < K; i++ {
		vals := readInts(strings.Fields(getLine(lr)), nargs)
		ind := vals[0]
		if ind < 1 || ind > K {
			panic(fmt.Errorf("bad element index %d", ind))
		}
		if vals[2] != Nsd+1 {
			panic(fmt.Errorf("element %d has %d nodes, only simplices are supported", ind, vals[2]))
		}
		verts := make([]int, Nsd+1)
		for a := range verts {
			verts[a] = vals[3+a] - 1
		}
		EToV[ind-1] = verts
	}
	return
}
