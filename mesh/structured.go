package mesh

import (
	"fmt"

	"github.com/notargets/goles/types"
)

/*
NewRectangleMesh builds a structured triangulation of [0,lx]x[0,ly] with nx by ny cells, each cell split
along its rising diagonal. Vertex (i,j) has index i + j*(nx+1). Boundaries are tagged
Wall-bottom, Wall-top, Inflow-left and Outflow-right.
*/
func NewRectangleMesh(nx, ny int, lx, ly float64, ProcLimit int) (m *Mesh, err error) {
	if nx < 1 || ny < 1 || lx <= 0 || ly <= 0 {
		err = fmt.Errorf("invalid rectangle: %dx%d cells over %gx%g", nx, ny, lx, ly)
		return
	}
	var (
		NVerts = (nx + 1) * (ny + 1)
		coords = [][]float64{make([]float64, NVerts), make([]float64, NVerts)}
		EToV   = make([][]int, 0, 2*nx*ny)
		id     = func(i, j int) int { return i + j*(nx+1) }
		bcs    = make(map[types.BCTAG][]int)
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			v := id(i, j)
			coords[0][v] = lx * float64(i) / float64(nx)
			coords[1][v] = ly * float64(j) / float64(ny)
			if j == 0 {
				bcs["Wall-bottom"] = append(bcs["Wall-bottom"], v)
			}
			if j == ny {
				bcs["Wall-top"] = append(bcs["Wall-top"], v)
			}
			if i == 0 {
				bcs["Inflow-left"] = append(bcs["Inflow-left"], v)
			}
			if i == nx {
				bcs["Outflow-right"] = append(bcs["Outflow-right"], v)
			}
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10, v11, v01 := id(i, j), id(i+1, j), id(i+1, j+1), id(i, j+1)
			EToV = append(EToV, []int{v00, v10, v11}, []int{v00, v11, v01})
		}
	}
	return NewMesh(2, coords, EToV, bcs, ProcLimit)
}

// kuhnPaths lists the axis orders of the six tetrahedra sharing the cell diagonal.
var kuhnPaths = [6][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

/*
NewBoxMesh builds a structured tetrahedralization of [0,lx]x[0,ly]x[0,lz], splitting each hexahedral cell
into six tetrahedra along its main diagonal (Kuhn subdivision), which keeps neighboring cells conforming.
Boundaries are tagged as in NewRectangleMesh with the z faces tagged Slip-front and Slip-back.
*/
func NewBoxMesh(nx, ny, nz int, lx, ly, lz float64, ProcLimit int) (m *Mesh, err error) {
	if nx < 1 || ny < 1 || nz < 1 || lx <= 0 || ly <= 0 || lz <= 0 {
		err = fmt.Errorf("invalid box: %dx%dx%d cells over %gx%gx%g", nx, ny, nz, lx, ly, lz)
		return
	}
	var (
		NVerts = (nx + 1) * (ny + 1) * (nz + 1)
		coords = [][]float64{make([]float64, NVerts), make([]float64, NVerts), make([]float64, NVerts)}
		EToV   = make([][]int, 0, 6*nx*ny*nz)
		id     = func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
		bcs    = make(map[types.BCTAG][]int)
		tag    = func(t types.BCTAG, v int) { bcs[t] = append(bcs[t], v) }
	)
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				v := id(i, j, k)
				coords[0][v] = lx * float64(i) / float64(nx)
				coords[1][v] = ly * float64(j) / float64(ny)
				coords[2][v] = lz * float64(k) / float64(nz)
				switch {
				case j == 0:
					tag("Wall-bottom", v)
				case j == ny:
					tag("Wall-top", v)
				}
				switch {
				case i == 0:
					tag("Inflow-left", v)
				case i == nx:
					tag("Outflow-right", v)
				}
				switch {
				case k == 0:
					tag("Slip-front", v)
				case k == nz:
					tag("Slip-back", v)
				}
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, path := range kuhnPaths {
					var (
						off [3]int
						tet = make([]int, 0, 4)
					)
					tet = append(tet, id(i, j, k))
					for _, axis := range path {
						off[axis] = 1
						tet = append(tet, id(i+off[0], j+off[1], k+off[2]))
					}
					EToV = append(EToV, tet)
				}
			}
		}
	}
	return NewMesh(3, coords, EToV, bcs, ProcLimit)
}
