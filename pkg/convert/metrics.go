package convert

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// FidelityMetrics summarizes how closely a resampled output matches a
// reference, for the identity/round-trip invariants of spec.md §8 when a
// caller wants a number rather than a bitwise comparison — mirrors the
// teacher's ValidationMetrics (pkg/reconstruction/reconstructor.go), built
// the same way with gonum/stat.
type FidelityMetrics struct {
	RMSE        float64
	Correlation float64
}

// ComputeFidelityMetrics compares two equal-length float64 sample sets.
func ComputeFidelityMetrics(reference, actual []float64) FidelityMetrics {
	n := len(reference)
	if n == 0 || n != len(actual) {
		return FidelityMetrics{}
	}
	sumSq := 0.0
	for i := 0; i < n; i++ {
		d := reference[i] - actual[i]
		sumSq += d * d
	}
	rmse := math.Sqrt(sumSq / float64(n))

	corr := 0.0
	if n > 1 {
		corr = stat.Correlation(reference, actual, nil)
	}
	return FidelityMetrics{RMSE: rmse, Correlation: corr}
}
