package interpolate

import "mrireslice/pkg/voxel"

// axisMapping extracts, for one output axis, which input axis the
// permutation+scale+translation matrix m maps it to, along with the scale
// and translation of that 1D affine map. m maps output index -> input
// index (result[row] = sum_col m[row][col]*outputIdx[col] + m[row][3]);
// for a permutation matrix, output axis `outputAxis` is a column, so the
// row with the nonzero entry in that column is the input axis it feeds,
// and that row's translation is the one that applies. Callers must have
// already verified m classifies as a permutation (matrix.Mat4.IsPermutation).
func axisMapping(m [4][4]float64, outputAxis int) (inputAxis int, scale, translate float64) {
	for row := 0; row < 3; row++ {
		if v := m[row][outputAxis]; v != 0 {
			return row, v, m[row][3]
		}
	}
	// a fully-zero column cannot happen in a valid permutation matrix.
	return outputAxis, 0, m[outputAxis][3]
}

// tapFunc returns, for a continuous source coordinate x, the base input
// index and the coefficient for each of the count taps starting at base.
type tapFunc func(x float64, count int) (base int, coeffs []float64)

// buildAxisWeights walks output indices lo..hi (inclusive), maps each
// through the 1D affine (scale,translate), and asks tapf for the base/
// coefficients. Under BorderClamp it returns the contiguous sub-range
// (relative to lo..hi) over which every tap index falls within
// [srcLo,srcHi]; output positions outside that sub-range are left for the
// caller to background-fill. Under BorderRepeat/BorderMirror every output
// position is usable (wrapIndex always produces a valid source tap), so
// the full lo..hi range is returned as the clip and no background-fill is
// needed — matching the general path, where axisInBounds also treats
// repeat/mirror as always in bounds.
func buildAxisWeights(border BorderMode, lo, hi int, scale, translate float64, count int, srcLo, srcHi int, tapf tapFunc) (AxisWeights, int, int) {
	n := hi - lo + 1
	if n <= 0 {
		return AxisWeights{SrcLo: srcLo, SrcHi: srcHi}, lo, lo - 1
	}
	aw := AxisWeights{Base: make([]int, n), Coeffs: make([][]float64, n), SrcLo: srcLo, SrcHi: srcHi}

	if border == BorderRepeat || border == BorderMirror {
		for idx := 0; idx < n; idx++ {
			outIdx := lo + idx
			x := float64(outIdx)*scale + translate
			base, coeffs := tapf(x, count)
			aw.Base[idx] = base
			aw.Coeffs[idx] = coeffs
		}
		return aw, lo, hi
	}

	clipLo, clipHi := lo, hi
	haveClipLo := false
	for idx := 0; idx < n; idx++ {
		outIdx := lo + idx
		x := float64(outIdx)*scale + translate
		base, coeffs := tapf(x, count)
		aw.Base[idx] = base
		aw.Coeffs[idx] = coeffs
		inBounds := base >= srcLo && base+count-1 <= srcHi
		if inBounds {
			if !haveClipLo {
				clipLo = outIdx
				haveClipLo = true
			}
			clipHi = outIdx
		} else if !haveClipLo {
			clipLo = outIdx + 1
		}
	}
	if !haveClipLo {
		clipHi = clipLo - 1
	}
	return aw, clipLo, clipHi
}

func precomputeNearestOrLinear(it Interpolator, m [4][4]float64, requested, srcExtent voxel.Extent, linear bool) (voxel.Extent, WeightTables) {
	count := 1
	tapf := nearestTap
	if linear {
		count = 2
		tapf = linearTap
	}
	return precomputeGeneric(it.BorderMode(), m, requested, srcExtent, count, tapf)
}

func precomputeGeneric(border BorderMode, m [4][4]float64, requested, srcExtent voxel.Extent, count int, tapf tapFunc) (voxel.Extent, WeightTables) {
	var tables WeightTables
	clipped := requested
	tables.Border = border

	inAxisX, scaleX, tX := axisMapping(m, 0)
	inAxisY, scaleY, tY := axisMapping(m, 1)
	inAxisZ, scaleZ, tZ := axisMapping(m, 2)

	srcLoOf := func(axis int) int { return srcExtent[axis*2] }
	srcHiOf := func(axis int) int { return srcExtent[axis*2+1] }

	xw, xlo, xhi := buildAxisWeights(border, requested[0], requested[1], scaleX, tX, count, srcLoOf(inAxisX), srcHiOf(inAxisX), tapf)
	yw, ylo, yhi := buildAxisWeights(border, requested[2], requested[3], scaleY, tY, count, srcLoOf(inAxisY), srcHiOf(inAxisY), tapf)
	zw, zlo, zhi := buildAxisWeights(border, requested[4], requested[5], scaleZ, tZ, count, srcLoOf(inAxisZ), srcHiOf(inAxisZ), tapf)

	tables.X, tables.OffsetX = xw, requested[0]
	tables.Y, tables.OffsetY = yw, requested[2]
	tables.Z, tables.OffsetZ = zw, requested[4]

	clipped[0], clipped[1] = xlo, xhi
	clipped[2], clipped[3] = ylo, yhi
	clipped[4], clipped[5] = zlo, zhi
	return clipped, tables
}

func nearestTap(x float64, _ int) (int, []float64) {
	return roundHalfToEven(x), []float64{1.0}
}

func linearTap(x float64, _ int) (int, []float64) {
	base, frac := floorWithFraction(x)
	return base, []float64{1 - frac, frac}
}

// cubicKernel evaluates the Keys (1981) cubic convolution kernel with
// A=-0.5 (the Catmull-Rom variant vtkImageReslice's cubic interpolator
// uses), returning the 4 tap coefficients for fractional offset frac in
// [0,1) at taps base-1, base, base+1, base+2.
func cubicKernel(frac float64) [4]float64 {
	const a = -0.5
	w := func(t float64) float64 {
		t = absF(t)
		if t <= 1 {
			return (a+2)*t*t*t - (a+3)*t*t + 1
		}
		if t < 2 {
			return a*t*t*t - 5*a*t*t + 8*a*t - 4*a
		}
		return 0
	}
	return [4]float64{w(1 + frac), w(frac), w(1 - frac), w(2 - frac)}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func cubicTap(x float64, _ int) (int, []float64) {
	base, frac := floorWithFraction(x)
	c := cubicKernel(frac)
	return base - 1, []float64{c[0], c[1], c[2], c[3]}
}

// interpolateRowGeneric evaluates count consecutive output voxels starting
// at output-X index x0 on row (y,z) from the precomputed tables, using the
// generic separable tap-and-sum shared by all three kernels.
func interpolateRowGeneric(numComp, compOffset int, src *voxel.Grid, tables WeightTables, x0, y, z, count int, out []float64) {
	yRow := y - tables.OffsetY
	zRow := z - tables.OffsetZ
	yBase, yCoeffs := tables.Y.Base[yRow], tables.Y.Coeffs[yRow]
	zBase, zCoeffs := tables.Z.Base[zRow], tables.Z.Coeffs[zRow]

	for n := 0; n < count; n++ {
		xRow := (x0 + n) - tables.OffsetX
		xBase, xCoeffs := tables.X.Base[xRow], tables.X.Coeffs[xRow]
		outOff := n * numComp
		for c := 0; c < numComp; c++ {
			out[outOff+c] = 0
		}
		for zk, zc := range zCoeffs {
			if zc == 0 {
				continue
			}
			zi := WrapIndex(tables.Border, zBase+zk, tables.Z.SrcLo, tables.Z.SrcHi)
			for yk, yc := range yCoeffs {
				wy := zc * yc
				if wy == 0 {
					continue
				}
				yj := WrapIndex(tables.Border, yBase+yk, tables.Y.SrcLo, tables.Y.SrcHi)
				for xk, xc := range xCoeffs {
					w := wy * xc
					if w == 0 {
						continue
					}
					xi := WrapIndex(tables.Border, xBase+xk, tables.X.SrcLo, tables.X.SrcHi)
					off := src.VoxelOffset(xi, yj, zi)
					for c := 0; c < numComp; c++ {
						out[outOff+c] += w * voxel.ReadComponent(src.Data, off, compOffset+c, src.Kind)
					}
				}
			}
		}
	}
}
