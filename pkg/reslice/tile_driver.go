package reslice

import (
	"math"
	"runtime"
	"sync"

	"mrireslice/pkg/convert"
	"mrireslice/pkg/interpolate"
	"mrireslice/pkg/stencil"
	"mrireslice/pkg/voxel"
)

// tileParams bundles everything a tile execution needs: shared read-only
// state for the duration of one pass (spec.md §5). Each goroutine
// allocates its own scratch buffers at tile entry.
type tileParams struct {
	engine *Engine

	input  *voxel.Grid
	output *voxel.Grid
	im     *indexMatrix
	interp interpolate.Interpolator

	slab    convert.SlabState
	rescale convert.Rescale
	conv    *convert.Converter

	background convert.BackgroundPixel

	inStencil  stencil.Stencil
	outStencil *stencil.RunStencil

	hitWhole     bool
	optimization bool
}

// usePermuteExecute reports whether this pass is eligible for the
// optimized axis-aligned execution path (spec.md §4.4/§4.6).
func (tp tileParams) usePermuteExecute() bool {
	sw, separable := tp.interp.(interpolate.SeparableWeights)
	if !separable {
		return false
	}
	_ = sw
	return tp.im.eligibleForPermute(tp.interp.IsSeparable(), tp.slab.SpacingFraction, tp.optimization)
}

// driveTiles splits the output extent across goroutines (never splitting
// the X axis when an output stencil is being generated, spec.md §4.7),
// dispatches each tile to the general or permute path, and fills
// entirely-missed tiles with background. Grounded on the teacher's
// GetVolumeData (pkg/reconstruction/reconstructor.go): a fixed worker
// count splitting work by a WaitGroup, no channel fan-in needed since each
// tile owns disjoint output rows.
func driveTiles(tp tileParams) error {
	if !tp.hitWhole {
		fillBackground(tp.output, tp.output.Extent, tp.background)
		return nil
	}

	numWorkers := tp.engine.Params.NumWorkers
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}

	tiles := splitExtent(tp.engine, tp.output.Extent, numWorkers, tp.outStencil != nil)

	usePermute := tp.usePermuteExecute()

	var wg sync.WaitGroup
	errs := make([]error, len(tiles))
	completed := 0
	var mu sync.Mutex

	for idx, tile := range tiles {
		wg.Add(1)
		go func(idx int, tile voxel.Extent) {
			defer wg.Done()
			var err error
			if usePermute {
				err = executeTilePermute(tp, tile)
			} else {
				err = executeTileGeneral(tp, tile)
			}
			errs[idx] = err
			if tp.engine.Params.Progress != nil {
				mu.Lock()
				completed++
				tp.engine.Params.Progress(completed, len(tiles), "reslice tile")
				mu.Unlock()
			}
		}(idx, tile)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// splitExtent divides extent into sub-extents for tile dispatch (spec.md
// §5): a full 3D block decomposition across X/Y/Z when no output stencil
// is being generated, or a 2D Y/Z-only decomposition — with a runtime
// warning reporting the downgrade — when GenerateStencilOutput forces the
// X axis to stay unsplit, satisfying the ascending-X single-writer-per-row
// contract (spec.md §4.3).
func splitExtent(e *Engine, extent voxel.Extent, n int, avoidXSplit bool) []voxel.Extent {
	if n < 1 {
		n = 1
	}
	if avoidXSplit {
		if e != nil && e.Warnf != nil {
			e.Warnf("reslice: generate_stencil_output is set, downgrading tile split from 3D block to 2D (Y/Z only); the ascending-X single-writer-per-row stencil contract forbids splitting the X axis")
		}
		return split2D(extent, n)
	}
	return split3D(extent, n)
}

// split2D is the Y/Z-only decomposition, falling back further to Z alone
// or a single whole-extent tile as the Y/Z dimensions allow.
func split2D(extent voxel.Extent, n int) []voxel.Extent {
	dims := extent.Dims()
	zCount := dims[2]
	if zCount >= n || zCount > 1 {
		return splitAxis(extent, 4, 5, n)
	}
	yCount := dims[1]
	if yCount >= n || yCount > 1 {
		return splitAxis(extent, 2, 3, n)
	}
	return []voxel.Extent{extent}
}

// split3D partitions extent into a block grid across all three axes, each
// split into roughly the cube root of n workers (clamped to that axis's
// own voxel count). An axis with only one voxel along it contributes a
// single chunk, so this degenerates naturally to a 2D or 1D split when the
// extent itself is 2D or 1D — there is no separate code path for those
// cases.
func split3D(extent voxel.Extent, n int) []voxel.Extent {
	dims := extent.Dims()
	nAxis := int(math.Ceil(math.Cbrt(float64(n))))
	if nAxis < 1 {
		nAxis = 1
	}
	xRanges := axisRanges(extent[0], extent[1], clampAxisCount(nAxis, dims[0]))
	yRanges := axisRanges(extent[2], extent[3], clampAxisCount(nAxis, dims[1]))
	zRanges := axisRanges(extent[4], extent[5], clampAxisCount(nAxis, dims[2]))

	tiles := make([]voxel.Extent, 0, len(xRanges)*len(yRanges)*len(zRanges))
	for _, zr := range zRanges {
		for _, yr := range yRanges {
			for _, xr := range xRanges {
				t := extent
				t[0], t[1] = xr[0], xr[1]
				t[2], t[3] = yr[0], yr[1]
				t[4], t[5] = zr[0], zr[1]
				tiles = append(tiles, t)
			}
		}
	}
	return tiles
}

func clampAxisCount(want, avail int) int {
	if avail < 1 {
		avail = 1
	}
	if want > avail {
		return avail
	}
	if want < 1 {
		return 1
	}
	return want
}

// axisRanges splits [lo,hi] into up to count roughly-equal inclusive
// sub-ranges.
func axisRanges(lo, hi, count int) [][2]int {
	total := hi - lo + 1
	if total <= 0 {
		return [][2]int{{lo, hi}}
	}
	if count < 1 {
		count = 1
	}
	if count > total {
		count = total
	}
	chunk := (total + count - 1) / count
	var ranges [][2]int
	for start := lo; start <= hi; start += chunk {
		end := start + chunk - 1
		if end > hi {
			end = hi
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

func splitAxis(extent voxel.Extent, loIdx, hiIdx, n int) []voxel.Extent {
	ranges := axisRanges(extent[loIdx], extent[hiIdx], n)
	tiles := make([]voxel.Extent, len(ranges))
	for i, r := range ranges {
		t := extent
		t[loIdx], t[hiIdx] = r[0], r[1]
		tiles[i] = t
	}
	return tiles
}

// fillRowComplement writes background to every X in [lo,hi] on row (y,z)
// not covered by runs (spec.md §4.3/invariant 4: an input stencil masks
// out voxels, and the masked-out ones must read back as background, not
// as whatever the freshly allocated output grid happened to hold).
// runs must be sorted in ascending, non-overlapping X order, which both
// stencil.Stencil.RowRuns and rowRuns's tile-clipping preserve.
func fillRowComplement(output *voxel.Grid, lo, hi, y, z int, runs []stencil.Run, bg convert.BackgroundPixel) {
	x := lo
	for _, r := range runs {
		for ; x < r.XLo && x <= hi; x++ {
			bg.WriteTo(output.Data, output.VoxelOffset(x, y, z))
		}
		if r.XHi+1 > x {
			x = r.XHi + 1
		}
	}
	for ; x <= hi; x++ {
		bg.WriteTo(output.Data, output.VoxelOffset(x, y, z))
	}
}

func fillBackground(output *voxel.Grid, extent voxel.Extent, bg convert.BackgroundPixel) {
	for k := extent[4]; k <= extent[5]; k++ {
		for j := extent[2]; j <= extent[3]; j++ {
			for i := extent[0]; i <= extent[1]; i++ {
				off := output.VoxelOffset(i, j, k)
				bg.WriteTo(output.Data, off)
			}
		}
	}
}
