// Package transform defines the point-transform contract the resampling
// engine composes into its index matrix (spec.md §3, "Point transform"),
// plus two reference implementations: an affine (homogeneous) transform and
// a small nonlinear warp used to exercise the engine's non-homogeneous
// residual path.
package transform

import "mrireslice/pkg/matrix"

// Point is a 3D point in world coordinates.
type Point [3]float64

// PointTransform is the narrow capability the engine needs from a reslice
// transform: forward/inverse point mapping, and whether it can be folded
// into a single 4x4 matrix.
type PointTransform interface {
	Forward(p Point) Point
	Inverse(p Point) Point
	IsHomogeneous() bool
	// Matrix returns the 4x4 matrix form. Only valid when IsHomogeneous()
	// is true; implementations that are not homogeneous may panic.
	Matrix() matrix.Mat4
}

// Affine wraps a 4x4 matrix as a homogeneous PointTransform.
type Affine struct {
	M    matrix.Mat4
	inv  matrix.Mat4
	once bool
}

// NewAffine builds an Affine transform from a 4x4 matrix, precomputing its
// inverse for Inverse().
func NewAffine(m matrix.Mat4) *Affine {
	return &Affine{M: m, inv: m.Invert(), once: true}
}

func (a *Affine) Forward(p Point) Point {
	out := a.M.MultiplyPoint([3]float64(p))
	return Point{out[0], out[1], out[2]}
}

func (a *Affine) Inverse(p Point) Point {
	out := a.inv.MultiplyPoint([3]float64(p))
	return Point{out[0], out[1], out[2]}
}

func (a *Affine) IsHomogeneous() bool { return true }

func (a *Affine) Matrix() matrix.Mat4 { return a.M }

// Identity returns the identity Affine transform.
func Identity() *Affine {
	return NewAffine(matrix.Identity4())
}
