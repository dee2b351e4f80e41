package les

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

type FieldStats struct {
	Min, Max, Mean, L2 float64
}

func Stats(f *Field) (fs FieldStats) {
	if f == nil || f.Len() == 0 {
		return
	}
	fs.Min = floats.Min(f.Data)
	fs.Max = floats.Max(f.Data)
	fs.Mean = floats.Sum(f.Data) / float64(f.Len())
	fs.L2 = floats.Norm(f.Data, 2)
	return
}

// MaxAbs is the largest magnitude over every component of v.
func MaxAbs(v VectorField) (m float64) {
	for _, f := range v {
		if f.Len() == 0 {
			continue
		}
		m = max(m, floats.Max(f.Data), -floats.Min(f.Data))
	}
	return
}

func (fs FieldStats) Print() string {
	return fmt.Sprintf("min = %8.5g, max = %8.5g, mean = %8.5g", fs.Min, fs.Max, fs.Mean)
}
