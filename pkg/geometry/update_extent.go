package geometry

import (
	"math"

	"mrireslice/pkg/matrix"
	"mrireslice/pkg/voxel"
)

// BorderMode mirrors interpolate.BorderMode without importing it, to keep
// geometry free of a dependency on the interpolator package; callers pass
// the wrap/mirror flags directly.
type BorderMode int

const (
	BorderClamp BorderMode = iota
	BorderRepeat
	BorderMirror
)

// ComputeUpdateExtent implements spec.md §4.1's update-extent pre-pass: map
// the 8 corners of outputRequest through idx (output index -> input
// index), derive a per-axis interval from kernel support, union across
// corners, clip to inputWhole, and expand to the full whole extent on
// wrap/mirror axes. nonHomogeneousResidual requests the full input whole
// extent unconditionally, since a nonlinear residual transform makes the
// per-voxel mapping non-affine and corner analysis invalid.
func ComputeUpdateExtent(inputWhole, outputRequest voxel.Extent, idx matrix.Mat4, support [3]int, border BorderMode, nonHomogeneousResidual bool) (voxel.Extent, bool) {
	if nonHomogeneousResidual {
		return inputWhole, !inputWhole.Empty()
	}

	var lo, hi [3]float64
	for axis := 0; axis < 3; axis++ {
		lo[axis] = math.Inf(1)
		hi[axis] = math.Inf(-1)
	}

	for c := 0; c < 8; c++ {
		ijk := [3]float64{
			cornerValue(outputRequest, 0, c),
			cornerValue(outputRequest, 1, c),
			cornerValue(outputRequest, 2, c),
		}
		mapped := idx.MultiplyPoint(ijk)
		p := [3]float64{mapped[0], mapped[1], mapped[2]}
		if mapped[3] != 0 && mapped[3] != 1 {
			f := 1.0 / mapped[3]
			p[0] *= f
			p[1] *= f
			p[2] *= f
		}

		for axis := 0; axis < 3; axis++ {
			l, h := axisInterval(p[axis], support[axis])
			if l < lo[axis] {
				lo[axis] = l
			}
			if h > hi[axis] {
				hi[axis] = h
			}
		}
	}

	var out voxel.Extent
	hit := true
	for axis := 0; axis < 3; axis++ {
		loI := int(math.Floor(lo[axis]))
		hiI := int(math.Ceil(hi[axis]))

		wholeLo, wholeHi := inputWhole[2*axis], inputWhole[2*axis+1]
		if border == BorderRepeat || border == BorderMirror {
			out[2*axis] = wholeLo
			out[2*axis+1] = wholeHi
			continue
		}

		clipLo, clipHi := loI, hiI
		if clipLo < wholeLo {
			clipLo = wholeLo
		}
		if clipHi > wholeHi {
			clipHi = wholeHi
		}
		if clipLo > clipHi {
			// Empty post-clip interval: retain a degenerate
			// (lower==upper) extent rather than inverting it.
			hit = false
			if loI > wholeHi {
				clipLo, clipHi = wholeHi, wholeHi
			} else {
				clipLo, clipHi = wholeLo, wholeLo
			}
		}
		out[2*axis] = clipLo
		out[2*axis+1] = clipHi
	}
	return out, hit
}

// axisInterval implements the per-axis kernel-support interval around a
// mapped coordinate p, for even vs. odd support sizes k. Ported from
// vtkImageReslice.cxx's inExt-widening loop: the even branch only pulls in
// the extra upper-side tap when p has a nonzero fraction, since a
// mapped point landing exactly on an input index needs one fewer
// neighbor than one that falls between two indices.
func axisInterval(p float64, k int) (lo, hi float64) {
	if k%2 == 0 {
		fl := math.Floor(p)
		half := float64(k / 2)
		if p-fl == 0 {
			return fl - (half - 1), fl + half - 1
		}
		return fl - (half - 1), fl + half
	}
	r := math.RoundToEven(p)
	half := float64((k - 1) / 2)
	return r - half, r + half
}
