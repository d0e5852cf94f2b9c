package reslice

import (
	"mrireslice/pkg/convert"
	"mrireslice/pkg/interpolate"
	"mrireslice/pkg/matrix"
	"mrireslice/pkg/stencil"
	"mrireslice/pkg/voxel"
)

// executeTilePermute implements spec.md §4.6: the optimized axis-aligned
// path for permutation index matrices and separable interpolators.
// Precomputes per-axis weight tables once for the whole tile, then
// evaluates rows by table lookup instead of per-voxel matrix math.
func executeTilePermute(tp tileParams, tile voxel.Extent) error {
	sw := tp.interp.(interpolate.SeparableWeights)
	numComp := tp.input.NumComponents
	ns := tp.slab.NumSamples

	effMatrix, effTile := adjustForSlab(tp.im.Full, tile, ns, tp.slab.SpacingFraction)

	clipExt, tables := sw.PrecomputeWeightsForExtent(flattenMat4(effMatrix), effTile, tp.input.Extent)

	fillBackgroundExceptClip(tp, tile, clipExt)
	if clipExt.Empty() {
		return nil
	}

	nearestFast := permuteNearestFastEligible(tp, ns)

	rowBuf := make([]float64, rowLenX(clipExt)*numComp)
	sampleBuf := make([]float64, rowLenX(clipExt)*numComp)

	for k := clipExt[4]; k <= clipExt[5]; k++ {
		for j := clipExt[2]; j <= clipExt[3]; j++ {
			runs := rowRuns(tp, j, k, clipExt)
			if tp.inStencil != nil {
				fillRowComplement(tp.output, clipExt[0], clipExt[1], j, k, runs, tp.background)
			}
			var inRuns []stencil.Run
			for _, run := range runs {
				x0 := run.XLo
				n := run.XHi - run.XLo + 1

				if nearestFast {
					copyRowNearest(tp, tables, x0, j, k, n)
					inRuns = append(inRuns, stencil.Run{XLo: run.XLo, XHi: run.XHi})
					continue
				}

				if ns == 1 {
					sw.InterpolateRow(tp.input, tables, x0, j, k, n, rowBuf[:n*numComp])
					tp.rescale.Apply(rowBuf[:n*numComp])
					writeConvertedRun(tp, rowBuf[:n*numComp], x0, j, k, n, numComp)
					inRuns = append(inRuns, stencil.Run{XLo: run.XLo, XHi: run.XHi})
					continue
				}

				rc := convert.NewRowCompositor(tp.slab, n, numComp)
				for s := 0; s < ns; s++ {
					sampleZ := k + s
					sw.InterpolateRow(tp.input, tables, x0, j, sampleZ, n, sampleBuf[:n*numComp])
					rc.AddSample(sampleBuf[:n*numComp])
				}
				result := rc.Finalize()
				tp.rescale.Apply(result)
				writeConvertedRun(tp, result, x0, j, k, n, numComp)
				inRuns = append(inRuns, stencil.Run{XLo: run.XLo, XHi: run.XHi})
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

func rowLenX(ext voxel.Extent) int {
	n := ext[1] - ext[0] + 1
	if n < 0 {
		return 0
	}
	return n
}

func flattenMat4(m matrix.Mat4) [4][4]float64 {
	return [4][4]float64(m)
}

// adjustForSlab implements spec.md §4.6 step 1: when ns>1, shift the
// effective matrix's Z translation by -ns/2*zscale and extend the tile's
// Z extent by ns-1 rows so slab samples map into contiguous tabulated
// rows. The -ns/2 (not -(ns-1)/2) bias is the spec's documented Open
// Question 2, preserved as-is.
func adjustForSlab(full matrix.Mat4, tile voxel.Extent, ns int, spacingFraction float64) (matrix.Mat4, voxel.Extent) {
	if ns <= 1 {
		return full, tile
	}
	adjusted := full
	// Column 2 (the output Z axis) has exactly one nonzero row in a
	// permutation matrix; that row's translation is the one the slab
	// offset must shift.
	for row := 0; row < 3; row++ {
		if full[row][2] != 0 {
			adjusted[row][3] -= (float64(ns) / 2) * full[row][2] * spacingFraction
			break
		}
	}
	extTile := tile
	extTile[5] += ns - 1
	return adjusted, extTile
}

func fillBackgroundExceptClip(tp tileParams, tile, clip voxel.Extent) {
	for k := tile[4]; k <= tile[5]; k++ {
		inZ := k >= clip[4] && k <= clip[5]
		for j := tile[2]; j <= tile[3]; j++ {
			inY := inZ && j >= clip[2] && j <= clip[3]
			for i := tile[0]; i <= tile[1]; i++ {
				if inY && i >= clip[0] && i <= clip[1] {
					continue
				}
				off := tp.output.VoxelOffset(i, j, k)
				tp.background.WriteTo(tp.output.Data, off)
			}
		}
	}
}

func writeConvertedRun(tp tileParams, values []float64, x0, y, z, n, numComp int) {
	for x := 0; x < n; x++ {
		off := tp.output.VoxelOffset(x0+x, y, z)
		tp.conv.Convert(tp.output.Data, off, 0, values[x*numComp:(x+1)*numComp])
	}
}

// permuteNearestFastEligible implements spec.md §4.6 step 5: nearest
// mode, same input/output type, no convert/rescale, ns=1. "Nearest mode"
// is satisfied either by an explicitly configured Nearest interpolator or
// by Engine.ExecutePass's index-matrix nearest-safe downgrade, which
// replaces tp.interp with a real *interpolate.Nearest before any tile
// runs — at that point tables.X/Y/Z were themselves precomputed by
// Nearest's own tap function, so copyRowNearest's direct Base-index read
// is exactly as valid as it is for an explicitly configured Nearest pass.
// Border mode needs no special gate here: copyRowNearest wraps every tap
// through tables.Border via interpolate.WrapIndex, the same way the
// precomputed weight tables do for the non-fast row path, so
// clamp/repeat/mirror are all handled correctly by the fast path too.
func permuteNearestFastEligible(tp tileParams, ns int) bool {
	if _, ok := tp.interp.(*interpolate.Nearest); !ok {
		return false
	}
	if ns > 1 {
		return false
	}
	if tp.rescale.Scale != 1 || tp.rescale.Shift != 0 {
		return false
	}
	return tp.input.Kind == tp.output.Kind
}

func copyRowNearest(tp tileParams, tables interpolate.WeightTables, x0, y, z, n int) {
	yBase := tables.Y.Base[y-tables.OffsetY]
	zBase := tables.Z.Base[z-tables.OffsetZ]
	yj := interpolate.WrapIndex(tables.Border, yBase, tables.Y.SrcLo, tables.Y.SrcHi)
	zk := interpolate.WrapIndex(tables.Border, zBase, tables.Z.SrcLo, tables.Z.SrcHi)
	bpv := tp.input.BytesPerVoxel()
	for x := 0; x < n; x++ {
		xBase := tables.X.Base[x0+x-tables.OffsetX]
		xi := interpolate.WrapIndex(tables.Border, xBase, tables.X.SrcLo, tables.X.SrcHi)
		srcOff := tp.input.VoxelOffset(xi, yj, zk)
		dstOff := tp.output.VoxelOffset(x0+x, y, z)
		copy(tp.output.Data[dstOff:dstOff+bpv], tp.input.Data[srcOff:srcOff+bpv])
	}
}
