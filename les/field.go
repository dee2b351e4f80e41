package les

import (
	"fmt"
)

// Field is a scalar field stored at the CG1 degrees of freedom, or at the native velocity dofs for input.
type Field struct {
	Name string
	Data []float64
}

func NewField(name string, n int) (f *Field) {
	return &Field{Name: name, Data: make([]float64, n)}
}

func (f *Field) Len() int { return len(f.Data) }

func (f *Field) Fill(val float64) {
	for i := range f.Data {
		f.Data[i] = val
	}
}

func (f *Field) CopyFrom(src *Field) {
	checkLen("copy", f.Len(), src)
	copy(f.Data, src.Data)
}

// VectorField holds one scalar Field per spatial dimension.
type VectorField []*Field

var componentNames = []string{"x", "y", "z"}

func NewVectorField(name string, dim, n int) (v VectorField) {
	v = make(VectorField, dim)
	for d := range v {
		v[d] = NewField(name+"_"+componentNames[d], n)
	}
	return
}

func (v VectorField) Dim() int { return len(v) }

// Len is the number of dofs per component.
func (v VectorField) Len() int {
	if len(v) == 0 {
		return 0
	}
	return v[0].Len()
}

func (v VectorField) Fill(val float64) {
	for _, f := range v {
		f.Fill(val)
	}
}

func (v VectorField) CopyFrom(src VectorField) {
	if len(v) != len(src) {
		panic(fmt.Errorf("vector dimension mismatch, have %d, need %d", len(src), len(v)))
	}
	for d := range v {
		v[d].CopyFrom(src[d])
	}
}

func checkLen(op string, n int, fields ...*Field) {
	for _, f := range fields {
		if f.Len() != n {
			panic(fmt.Errorf("%s: field %s has %d values, need %d", op, f.Name, f.Len(), n))
		}
	}
}
