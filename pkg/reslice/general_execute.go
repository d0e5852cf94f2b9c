package reslice

import (
	"math"

	"mrireslice/pkg/interpolate"
	"mrireslice/pkg/stencil"
	"mrireslice/pkg/voxel"
)

// generalScratch bundles the per-thread scratch buffers of spec.md §5:
// owned by one tile execution, never shared.
type generalScratch struct {
	samples []float64 // ns * numComp
	final   []float64 // numComp
}

func newGeneralScratch(ns, numComp int) *generalScratch {
	return &generalScratch{
		samples: make([]float64, ns*numComp),
		final:   make([]float64, numComp),
	}
}

// executeTileGeneral implements spec.md §4.5: per-voxel 4x4 mapping
// (optionally projective), nonlinear residual if any, slab sampling,
// compositing, conversion, stencil gating, background fill.
func executeTileGeneral(tp tileParams, tile voxel.Extent) error {
	input := tp.input
	output := tp.output
	numComp := input.NumComponents
	ns := tp.slab.NumSamples

	scratch := newGeneralScratch(ns, numComp)
	nearestFast := isNearestFastEligible(tp)

	for k := tile[4]; k <= tile[5]; k++ {
		for j := tile[2]; j <= tile[3]; j++ {
			runs := rowRuns(tp, j, k, tile)
			if tp.inStencil != nil {
				fillRowComplement(output, tile[0], tile[1], j, k, runs, tp.background)
			}
			var inRuns []stencil.Run
			for _, run := range runs {
				for i := run.XLo; i <= run.XHi; i++ {
					voxOff := output.VoxelOffset(i, j, k)

					if nearestFast {
						srcIJK, ok := nearestSourceIndex(tp, i, j, k)
						if ok {
							copyVoxelBytes(input, output, srcIJK, voxOff)
							inRuns = appendRun(inRuns, i)
							continue
						}
						tp.background.WriteTo(output.Data, voxOff)
						continue
					}

					ok := sampleVoxel(tp, scratch, numComp, ns, i, j, k)
					if ok {
						tp.conv.Convert(output.Data, voxOff, 0, scratch.final)
						inRuns = appendRun(inRuns, i)
					} else {
						tp.background.WriteTo(output.Data, voxOff)
					}
				}
			}
			if tp.outStencil != nil {
				for _, r := range inRuns {
					if err := tp.outStencil.InsertNextRun(r.XLo, r.XHi, j, k); err != nil && tp.engine.Warnf != nil {
						tp.engine.Warnf("reslice: output stencil insert at row (y=%d,z=%d) failed: %v", j, k, err)
					}
				}
			}
		}
	}
	return nil
}

func appendRun(runs []stencil.Run, i int) []stencil.Run {
	if len(runs) > 0 && runs[len(runs)-1].XHi == i-1 {
		runs[len(runs)-1].XHi = i
		return runs
	}
	return append(runs, stencil.Run{XLo: i, XHi: i})
}

// sampleVoxel resolves the ns slab sample points for output voxel (i,j,k),
// interpolates each in-bounds sample, composites into scratch.final, and
// applies the scalar rescale. It returns whether at least one sample
// landed in-bounds.
func sampleVoxel(tp tileParams, scratch *generalScratch, numComp, ns, i, j, k int) bool {
	im := tp.im
	interp := tp.interp
	anyIn := false

	for s := 0; s < ns; s++ {
		offset := (float64(s) - float64(ns-1)/2) * tp.slab.SpacingFraction
		ijk := [3]float64{float64(i), float64(j), float64(k)}
		if ns > 1 {
			ijk[2] += offset
		}

		p, w := im.mapPoint(ijk)
		if w != 0 && w != 1 {
			f := 1.0 / w
			p[0] *= f
			p[1] *= f
			p[2] *= f
		}

		if !interp.CheckBoundsIJK(p, tp.input.Extent) {
			for c := 0; c < numComp; c++ {
				scratch.samples[s*numComp+c] = 0
			}
			continue
		}
		anyIn = true
		interp.InterpolateIJK(tp.input, p, scratch.samples[s*numComp:(s+1)*numComp])
	}

	if !anyIn {
		return false
	}

	tp.slab.CompositeSlab(scratch.samples, numComp, scratch.final)
	tp.rescale.Apply(scratch.final)
	return true
}

// nearestSourceIndex maps output voxel (i,j,k) through the index matrix
// and rounds to the nearest input voxel, for the nearest-neighbor byte
// copy fast sub-path (spec.md §4.5).
func nearestSourceIndex(tp tileParams, i, j, k int) ([3]int, bool) {
	p, w := tp.im.mapPoint([3]float64{float64(i), float64(j), float64(k)})
	if w != 0 && w != 1 {
		f := 1.0 / w
		p[0] *= f
		p[1] *= f
		p[2] *= f
	}
	if !tp.interp.CheckBoundsIJK(p, tp.input.Extent) {
		return [3]int{}, false
	}
	src := [3]int{
		int(math.Round(p[0])),
		int(math.Round(p[1])),
		int(math.Round(p[2])),
	}
	if !tp.input.Extent.Contains(src[0], src[1], src[2]) {
		src = clampToExtent(src, tp.input.Extent)
	}
	return src, true
}

func clampToExtent(p [3]int, e voxel.Extent) [3]int {
	clampAxis := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return [3]int{
		clampAxis(p[0], e[0], e[1]),
		clampAxis(p[1], e[2], e[3]),
		clampAxis(p[2], e[4], e[5]),
	}
}

// copyVoxelBytes implements the size-specialized memcpy dispatch of
// spec.md §4.5 and §9 ("preserve this specialization"); Go's copy builtin
// already compiles to an efficient memmove for every size, so the
// specialization collapses to one call.
func copyVoxelBytes(src, dst *voxel.Grid, srcIJK [3]int, dstOff int) {
	srcOff := src.VoxelOffset(srcIJK[0], srcIJK[1], srcIJK[2])
	bpv := src.BytesPerVoxel()
	copy(dst.Data[dstOff:dstOff+bpv], src.Data[srcOff:srcOff+bpv])
}

// rowRuns returns the stencil-gated X runs for output row (y,z) clipped to
// tile, or the whole tile row if no input stencil is configured. Callers
// that pass a non-nil tp.inStencil must separately background-fill the
// row's complement via fillRowComplement — the returned runs only cover
// what to sample, not what to leave as background (invariant 4).
func rowRuns(tp tileParams, y, z int, tile voxel.Extent) []stencil.Run {
	if tp.inStencil == nil {
		return []stencil.Run{{XLo: tile[0], XHi: tile[1]}}
	}
	var out []stencil.Run
	for _, r := range tp.inStencil.RowRuns(y, z) {
		lo, hi := r.XLo, r.XHi
		if lo < tile[0] {
			lo = tile[0]
		}
		if hi > tile[1] {
			hi = tile[1]
		}
		if lo <= hi {
			out = append(out, stencil.Run{XLo: lo, XHi: hi})
		}
	}
	return out
}

// isNearestFastEligible implements spec.md §4.5's nearest-neighbor byte
// copy fast sub-path preconditions: nearest mode, clamp border, standard
// tolerance, no residual transform, no perspective, no scalar
// convert/rescale beyond identity, matching input/output type, ns<=1.
// "Nearest mode" includes both an explicitly configured Nearest
// interpolator and the index-matrix nearest-safe downgrade applied in
// Engine.ExecutePass, which swaps tp.interp to a real *interpolate.Nearest
// before tile execution ever sees it — this function does not need to
// re-derive that condition itself. Under repeat/mirror, CheckBoundsIJK is
// always true (base.axisInBounds short-circuits), so without the border
// gate below the fast path would clamp out-of-extent samples to the
// nearest edge voxel instead of wrapping or mirroring them.
func isNearestFastEligible(tp tileParams) bool {
	n, ok := tp.interp.(*interpolate.Nearest)
	if !ok || n == nil {
		return false
	}
	if tp.interp.BorderMode() != interpolate.BorderClamp {
		return false
	}
	if tp.interp.Tolerance() != interpolate.StandardTolerance {
		return false
	}
	if tp.im.HasResidual {
		return false
	}
	if !tp.im.Full.IsAffine() {
		return false
	}
	if tp.rescale.Scale != 1 || tp.rescale.Shift != 0 {
		return false
	}
	if tp.input.Kind != tp.output.Kind {
		return false
	}
	if tp.slab.NumSamples > 1 {
		return false
	}
	return true
}
