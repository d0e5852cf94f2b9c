// Package geometry derives output grid geometry from input geometry and
// user parameters (spec.md §4.1): output spacing/origin/direction/extent,
// the auto-crop bounding box, and the input update-extent pre-pass used
// for streaming.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"mrireslice/pkg/matrix"
	"mrireslice/pkg/voxel"
)

// Params is the subset of spec.md §6's parameter surface that geometry
// derivation consumes.
type Params struct {
	ResliceAxes             matrix.Mat4
	OutputSpacing           [3]float64
	ComputeOutputSpacing     bool
	OutputOrigin            [3]float64
	ComputeOutputOrigin     bool
	OutputDirection         [3][3]float64
	PassDirectionToOutput   bool
	OutputExtent            voxel.Extent
	ComputeOutputExtent     bool
	OutputDimensionality    int
	AutoCropOutput          bool
	TransformInputSampling  bool
}

// toMat converts a [3][3]float64 to a gonum Dense for the one-shot
// rotation composition in DeriveOutputInfo. Run once per pass, not per
// voxel — see DESIGN.md for why the hot per-voxel path uses the
// hand-written matrix.Mat3 instead.
func toMat(m [3][3]float64) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m[i][j])
		}
	}
	return d
}

func fromMat(d *mat.Dense) [3][3]float64 {
	var m [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// rotationR computes R = inv(input_direction) * output_direction *
// reslice_rotation (spec.md §4.1), honoring transform_input_sampling.
func rotationR(inputDirection, outputDirection [3][3]float64, resliceAxes matrix.Mat4, transformInputSampling bool) [3][3]float64 {
	invIn := mat.NewDense(3, 3, nil)
	if err := invIn.Inverse(toMat(inputDirection)); err != nil {
		// Direction matrices are validated orthonormal upstream; a
		// singular direction matrix here is a programmer error.
		panic("geometry: input direction matrix is singular")
	}
	var r mat.Dense
	r.Mul(invIn, toMat(outputDirection))
	if transformInputSampling {
		resliceRot := toMat(resliceAxes.Upper3())
		var r2 mat.Dense
		r2.Mul(&r, resliceRot)
		return fromMat(&r2)
	}
	return fromMat(&r)
}

// DeriveOutputInfo computes output spacing/origin/direction/extent from
// input geometry plus user overrides, per spec.md §4.1.
func DeriveOutputInfo(input voxel.GridInfo, p Params) voxel.GridInfo {
	out := voxel.GridInfo{}

	outputDirection := p.OutputDirection
	if p.PassDirectionToOutput {
		outputDirection = input.Direction
	}
	out.Direction = outputDirection

	inSpacing := input.AbsSpacing()
	r := rotationR(input.Direction, outputDirection, p.ResliceAxes, p.TransformInputSampling)

	// r_j = R[j,i]^2 per output axis i.
	rjFor := func(axisI int) [3]float64 {
		return [3]float64{r[0][axisI] * r[0][axisI], r[1][axisI] * r[1][axisI], r[2][axisI] * r[2][axisI]}
	}

	var spacing [3]float64
	var origin [3]float64
	var extent voxel.Extent

	ext0 := [3]float64{float64(input.Extent[0]), float64(input.Extent[2]), float64(input.Extent[4])}
	ext1 := [3]float64{float64(input.Extent[1]), float64(input.Extent[3]), float64(input.Extent[5])}

	for i := 0; i < 3; i++ {
		rj := rjFor(i)
		sumR := rj[0] + rj[1] + rj[2]
		if sumR == 0 {
			sumR = 1
		}
		spacing[i] = (rj[0]*inSpacing[0] + rj[1]*inSpacing[1] + rj[2]*inSpacing[2]) / sumR
		if p.OutputSpacing[i] != 0 && !p.ComputeOutputSpacing {
			spacing[i] = p.OutputSpacing[i]
		}

		d := (rj[0]*(ext1[0]-ext0[0])*inSpacing[0] + rj[1]*(ext1[1]-ext0[1])*inSpacing[1] + rj[2]*(ext1[2]-ext0[2])*inSpacing[2]) / math.Pow(sumR, 1.5)

		e0 := roundHalfToEven((rj[0]*ext0[0] + rj[1]*ext0[1] + rj[2]*ext0[2]) / sumR)
		span := 0
		if spacing[i] != 0 {
			span = roundHalfToEven(d / spacing[i])
		}
		extent[2*i] = e0
		extent[2*i+1] = e0 + span
		if !p.ComputeOutputExtent {
			extent[2*i] = p.OutputExtent[2*i]
			extent[2*i+1] = p.OutputExtent[2*i+1]
		}
	}

	out.Spacing = spacing
	out.Extent = extent

	if p.ComputeOutputOrigin {
		origin = computeCenteredOrigin(input, out, r)
		if p.AutoCropOutput {
			bounds := ComputeAutoCropBounds(input, outputDirection, p.ResliceAxes)
			for i := 0; i < 3; i++ {
				lo := bounds[2*i]
				origin[i] = lo - float64(extent[2*i])*spacing[i]
			}
		}
	} else {
		origin = p.OutputOrigin
	}
	out.Origin = origin

	out = voxel.CollapseToDimensionality(out, p.OutputDimensionality)
	return out
}

// computeCenteredOrigin chooses the output origin so the input's
// world-space bounding-box center maps to the output extent's center in
// world space (spec.md §4.1, "Output origin").
func computeCenteredOrigin(input, out voxel.GridInfo, r [3][3]float64) [3]float64 {
	_ = r
	inSpacing := input.AbsSpacing()
	var inputCenterWorld [3]float64
	for row := 0; row < 3; row++ {
		mid := 0.0
		for col := 0; col < 3; col++ {
			lo := float64(input.Extent[2*col])
			hi := float64(input.Extent[2*col+1])
			mid += input.Direction[col][row] * ((lo+hi)/2) * inSpacing[col]
		}
		inputCenterWorld[row] = mid + input.Origin[row]
	}

	var outMid [3]float64
	for col := 0; col < 3; col++ {
		outMid[col] = (float64(out.Extent[2*col]) + float64(out.Extent[2*col+1])) / 2
	}

	var origin [3]float64
	for row := 0; row < 3; row++ {
		var worldOffset float64
		for col := 0; col < 3; col++ {
			worldOffset += out.Direction[col][row] * outMid[col] * out.Spacing[col]
		}
		origin[row] = inputCenterWorld[row] - worldOffset
	}
	return origin
}

func roundHalfToEven(v float64) int {
	return int(math.RoundToEven(v))
}
