package transform

import (
	"math"

	"mrireslice/pkg/matrix"
)

// Warp is a small nonlinear PointTransform used to exercise the engine's
// non-homogeneous residual path (spec.md §4.4, "the point transform is
// non-homogeneous"). It displaces a point by a smooth, invertible-by-
// fixed-point-iteration sinusoidal field — not a physically meaningful
// warp, just enough curvature to defeat the permute fast path and the
// update-extent pre-pass (which must fall back to requesting the whole
// input extent, per spec.md §4.1).
type Warp struct {
	Amplitude [3]float64
	Frequency [3]float64
}

// NewWarp builds a Warp with the given per-axis displacement amplitude and
// spatial frequency.
func NewWarp(amplitude, frequency [3]float64) *Warp {
	return &Warp{Amplitude: amplitude, Frequency: frequency}
}

func (w *Warp) Forward(p Point) Point {
	return Point{
		p[0] + w.Amplitude[0]*math.Sin(w.Frequency[0]*p[1]),
		p[1] + w.Amplitude[1]*math.Sin(w.Frequency[1]*p[2]),
		p[2] + w.Amplitude[2]*math.Sin(w.Frequency[2]*p[0]),
	}
}

// Inverse solves Forward(q) = p for q via fixed-point iteration, which
// converges for the small-amplitude displacements this transform is meant
// to be configured with.
func (w *Warp) Inverse(p Point) Point {
	q := p
	for iter := 0; iter < 16; iter++ {
		f := w.Forward(q)
		q[0] -= f[0] - p[0]
		q[1] -= f[1] - p[1]
		q[2] -= f[2] - p[2]
	}
	return q
}

func (w *Warp) IsHomogeneous() bool { return false }

func (w *Warp) Matrix() matrix.Mat4 {
	panic("transform: Matrix() called on a non-homogeneous Warp")
}
