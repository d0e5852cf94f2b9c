// Package interpolate implements the pluggable sampling kernel the
// resampling engine calls per output voxel (spec.md §4.2). It ships three
// concrete, separable kernels — Nearest, Linear, Cubic — behind a narrow
// interface so the engine's general and permute execute paths never depend
// on the kernel's own internals, only on the capabilities they advertise.
package interpolate

import "mrireslice/pkg/voxel"

// BorderMode controls how a kernel treats samples near or outside the
// input extent.
type BorderMode int

const (
	BorderClamp BorderMode = iota
	BorderRepeat
	BorderMirror
)

// StandardTolerance is the default border tolerance (spec.md §6's
// "border_thickness" default), used by the nearest-neighbor fast-copy
// sub-path's "standard tolerance" precondition (spec.md §4.5).
const StandardTolerance = 0.5

// Interpolator is the full capability surface of spec.md §4.2.
type Interpolator interface {
	// ComputeSupportSize returns the nominal kernel footprint per axis.
	// matrixElements is the flattened upper-left 3x3 of the index matrix,
	// passed so non-separable kernels could oversample anisotropically;
	// the kernels in this package ignore it.
	ComputeSupportSize(matrixElements [9]float64) (sx, sy, sz int)
	SetBorderMode(mode BorderMode)
	BorderMode() BorderMode
	// SetTolerance widens the in-bounds test by t indices outside the
	// strict extent. Under repeat/mirror the tolerance is effectively
	// infinite regardless of t.
	SetTolerance(t float64)
	Tolerance() float64
	IsSeparable() bool
	CheckBoundsIJK(p [3]float64, extent voxel.Extent) bool
	// InterpolateIJK samples the source grid at continuous index p and
	// writes NumComponents() float64 values into out.
	InterpolateIJK(src *voxel.Grid, p [3]float64, out []float64)
	ComponentOffset() int
	NumberOfComponents() int
	SetComponentOffset(offset, n int)
}

// SeparableWeights is the narrow capability a separable interpolator
// advertises so the permute fast path can precompute per-axis weight
// tables instead of calling InterpolateIJK per voxel. Kept distinct from
// Interpolator per spec.md §9 REDESIGN FLAGS ("the permute path only
// requires the separable-weights capability, so that capability should be
// a distinct interface").
type SeparableWeights interface {
	// PrecomputeWeightsForExtent produces per-axis weight tables covering
	// the requested output extent under the given index matrix, plus the
	// largest sub-extent over which all three axes' weights sample fully
	// in-bounds against srcExtent.
	PrecomputeWeightsForExtent(m [4][4]float64, requested, srcExtent voxel.Extent) (clipped voxel.Extent, tables WeightTables)
	// InterpolateRow evaluates n consecutive output voxels starting at
	// output-X index x0, row (y,z), from the precomputed tables, writing
	// NumComponents()*n float64 values into out.
	InterpolateRow(src *voxel.Grid, tables WeightTables, x0, y, z, n int, out []float64)
}

// AxisWeights holds, for one separable axis, a base input index and
// coefficient vector per output index in [0,len). Base values are the raw
// tap positions computed from the affine output->input map; they are not
// pre-clamped or pre-wrapped, so readers must run them through WrapIndex
// against SrcLo/SrcHi (this axis's source extent bounds) before indexing
// the source grid, exactly as the general path's per-voxel kernels do.
type AxisWeights struct {
	Base          []int       // base input index for each output position
	Coeffs        [][]float64 // coefficient vector for each output position
	SrcLo, SrcHi  int         // this axis's source extent bounds
}

// WeightTables bundles the three per-axis weight tables, indexed from the
// output extent's lower bound on each axis.
type WeightTables struct {
	X, Y, Z AxisWeights
	// OffsetX/Y/Z is the output-index value that Base[0]/Coeffs[0]
	// corresponds to (the lower bound of the extent the tables were built
	// for).
	OffsetX, OffsetY, OffsetZ int
	// Border is the border mode the tables were built under; row readers
	// wrap out-of-range taps through it instead of reading past the
	// source extent.
	Border BorderMode
}
