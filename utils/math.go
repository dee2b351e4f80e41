package utils

import (
	"math"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// SafeDivide returns num/den, or zero when |den| is at or below tol.
func SafeDivide(num, den, tol float64) float64 {
	if math.Abs(den) <= tol || math.IsNaN(den) {
		return 0
	}
	return num / den
}
