package mesh

import (
	"sort"
)

type VertexToElement [][2]int32 // Vertex id is the first int32, element ID is the next

func (ve VertexToElement) Len() int      { return len(ve) }
func (ve VertexToElement) Swap(i, j int) { ve[i], ve[j] = ve[j], ve[i] }
func (ve VertexToElement) Less(i, j int) bool {
	if ve[i][0] == ve[j][0] {
		return ve[i][1] < ve[j][1]
	}
	return ve[i][0] < ve[j][0]
}
func (ve VertexToElement) Sort() { sort.Sort(ve) }

func NewVertexToElement(EToV [][]int) (VtoE VertexToElement) {
	var (
		Kmax = len(EToV)
	)
	if Kmax == 0 {
		return
	}
	Nverts := len(EToV[0])
	VtoE = make(VertexToElement, 0, Kmax*Nverts)
	for k := 0; k < Kmax; k++ {
		for _, v := range EToV[k] {
			VtoE = append(VtoE, [2]int32{int32(v), int32(k)})
		}
	}
	VtoE.Sort()
	return
}

// Offsets returns start such that the elements touching vertex v are VtoE[start[v]:start[v+1]].
func (ve VertexToElement) Offsets(NVerts int) (start []int) {
	start = make([]int, NVerts+1)
	for _, pair := range ve {
		start[pair[0]+1]++
	}
	for v := 0; v < NVerts; v++ {
		start[v+1] += start[v]
	}
	return
}
