package reslice

import (
	"mrireslice/pkg/matrix"
	"mrireslice/pkg/transform"
	"mrireslice/pkg/voxel"
)

// indexMatrix is the immutable per-pass snapshot of spec.md §4.4: the
// composed output-index -> input-index transform, its classification,
// and an optional non-homogeneous residual that, when present, must be
// applied per voxel rather than folded into a single 4x4.
type indexMatrix struct {
	// Full is the composed output-index -> input-index matrix. Valid
	// (and exact) only when HasResidual is false.
	Full matrix.Mat4

	// PreResidual maps output index -> world (M_out then reslice axes),
	// used per voxel ahead of the residual transform when HasResidual is
	// true.
	PreResidual matrix.Mat4

	// InputWorldToIndex maps world -> input index, applied after the
	// residual transform's forward() when HasResidual is true.
	InputWorldToIndex matrix.Mat4

	HasResidual bool
	Residual    transform.PointTransform

	IsIdentity    bool
	IsPermutation bool
	IsNearestSafe bool
}

// buildIndexMatrix composes the four stages of spec.md §4.4 from the
// derived output geometry, the input geometry, and the reslice
// parameters.
func buildIndexMatrix(inputInfo, outputInfo voxel.GridInfo, p Params) (*indexMatrix, error) {
	mOut := matrix.FromDiagonalOrigin(outputInfo.Spacing, outputInfo.Direction, outputInfo.Origin)
	mIn := matrix.FromDiagonalOrigin(inputInfo.Spacing, inputInfo.Direction, inputInfo.Origin)
	mInInv := mIn.Invert()

	preResidual := p.ResliceAxes.Mul(mOut)

	im := &indexMatrix{
		PreResidual:       preResidual,
		InputWorldToIndex: mInInv,
	}

	if p.ResliceTransform != nil && !p.ResliceTransform.IsHomogeneous() {
		im.HasResidual = true
		im.Residual = p.ResliceTransform
		return im, nil
	}

	residualMat := matrix.Identity4()
	if p.ResliceTransform != nil {
		residualMat = p.ResliceTransform.Matrix()
	}

	full := mInInv.Mul(residualMat).Mul(p.ResliceAxes).Mul(mOut)
	im.Full = full
	im.IsIdentity = full.IsIdentity()
	im.IsPermutation = full.IsPermutation()
	im.IsNearestSafe = full.IsNearestSafe()
	return im, nil
}

// mapPoint maps an output index (i,j,k) to an input-index point, applying
// the residual transform per voxel if one is configured. w is the
// homogeneous 4th component, relevant only for non-affine Full matrices
// (perspective divide is the caller's responsibility).
func (im *indexMatrix) mapPoint(ijk [3]float64) (p [3]float64, w float64) {
	if !im.HasResidual {
		q := im.Full.MultiplyPoint(ijk)
		return [3]float64{q[0], q[1], q[2]}, q[3]
	}
	worldQ := im.PreResidual.MultiplyPoint(ijk)
	world := [3]float64{worldQ[0], worldQ[1], worldQ[2]}
	if worldQ[3] != 0 && worldQ[3] != 1 {
		f := 1.0 / worldQ[3]
		world[0] *= f
		world[1] *= f
		world[2] *= f
	}
	warped := im.Residual.Forward(transform.Point(world))
	idxQ := im.InputWorldToIndex.MultiplyPoint([3]float64(warped))
	return [3]float64{idxQ[0], idxQ[1], idxQ[2]}, idxQ[3]
}

// eligibleForPermute reports whether this pass may use the optimized
// axis-aligned execution path: a permutation index matrix, a separable
// interpolator, unit slab spacing fraction, and optimization enabled
// (spec.md §4.4/§4.6 preconditions).
func (im *indexMatrix) eligibleForPermute(separable bool, slabSpacingFraction float64, optimization bool) bool {
	return optimization && !im.HasResidual && im.IsPermutation && separable && slabSpacingFraction == 1
}
