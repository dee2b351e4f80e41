package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly format: entries are accumulated in any order, then converted to CSR for use.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface along with T.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) AddAt(i, j int, val float64) { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// ToCSR converts with the column indices of each row sorted, so products sum in a fixed order.
func (m DOK) ToCSR() (R CSR) {
	R = CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
	raw := R.RawMatrix()
	nr, _ := R.Dims()
	for i := 0; i < nr; i++ {
		row := csrRow{
			ind:  raw.Ind[raw.Indptr[i]:raw.Indptr[i+1]],
			data: raw.Data[raw.Indptr[i]:raw.Indptr[i+1]],
		}
		sort.Sort(row)
	}
	return
}

type csrRow struct {
	ind  []int
	data []float64
}

func (r csrRow) Len() int           { return len(r.ind) }
func (r csrRow) Less(i, j int) bool { return r.ind[i] < r.ind[j] }
func (r csrRow) Swap(i, j int) {
	r.ind[i], r.ind[j] = r.ind[j], r.ind[i]
	r.data[i], r.data[j] = r.data[j], r.data[i]
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

func (m *CSR) SetReadOnly(name ...string) CSR {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m CSR) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m CSR) RowSums() (sums []float64) {
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
	)
	sums = make([]float64, nr)
	for i := 0; i < nr; i++ {
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			sums[i] += raw.Data[ii]
		}
	}
	return
}

func (m CSR) ScaleRows(scale []float64) { // Changes receiver
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
	)
	m.checkWritable()
	if len(scale) != nr {
		panic(fmt.Errorf("row scale length %d does not match matrix rows %d", len(scale), nr))
	}
	for i := 0; i < nr; i++ {
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			raw.Data[ii] *= scale[i]
		}
	}
}

// MulVecRange computes dst[i] = sum_j A[i,j]*x[j] for rows in [rowMin, rowMax). dst and x must not alias.
func (m CSR) MulVecRange(dst, x []float64, rowMin, rowMax int) {
	var (
		raw = m.RawMatrix()
	)
	for i := rowMin; i < rowMax; i++ {
		var sum float64
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			sum += raw.Data[ii] * x[raw.Ind[ii]]
		}
		dst[i] = sum
	}
}

func (m CSR) MulVec(dst, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix is %dx%d, x has %d, dst has %d", nr, nc, len(x), len(dst)))
	}
	m.MulVecRange(dst, x, 0, nr)
}
