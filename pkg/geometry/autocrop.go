package geometry

import (
	"mrireslice/pkg/matrix"
	"mrireslice/pkg/voxel"
)

// ComputeAutoCropBounds computes the world-space bounding box (in the
// output-direction-rotated frame) of the input's whole extent, mapped
// through the inverse reslice axes and the inverse output direction.
// Grounded on vtkImageReslice::GetAutoCroppedOutputBounds: for each of
// the 8 corners of the input whole extent, map input-index -> world
// (input spacing/direction/origin), then world -> reslice-axes space
// via the inverted reslice axes (with perspective divide), then into
// the output direction's rotated frame via the inverted output
// direction, accumulating componentwise min/max.
func ComputeAutoCropBounds(input voxel.GridInfo, outputDirection [3][3]float64, resliceAxes matrix.Mat4) voxel.Bounds6 {
	inSpacing := input.AbsSpacing()
	invReslice := resliceAxes.Invert()
	invOutDir := invertDirection(outputDirection)

	var bounds voxel.Bounds6
	for i := 0; i < 6; i += 2 {
		bounds[i] = posInf
		bounds[i+1] = negInf
	}

	for c := 0; c < 8; c++ {
		ijk := [3]float64{
			cornerValue(input.Extent, 0, c),
			cornerValue(input.Extent, 1, c),
			cornerValue(input.Extent, 2, c),
		}
		var world [3]float64
		for row := 0; row < 3; row++ {
			world[row] = input.Direction[0][row]*ijk[0]*inSpacing[0] +
				input.Direction[1][row]*ijk[1]*inSpacing[1] +
				input.Direction[2][row]*ijk[2]*inSpacing[2] +
				input.Origin[row]
		}

		p := invReslice.MultiplyPoint(world)
		f := 1.0
		if p[3] != 0 {
			f = 1.0 / p[3]
		}
		resliced := [3]float64{p[0] * f, p[1] * f, p[2] * f}

		var rotated [3]float64
		for row := 0; row < 3; row++ {
			rotated[row] = invOutDir[row][0]*resliced[0] + invOutDir[row][1]*resliced[1] + invOutDir[row][2]*resliced[2]
		}

		for axis := 0; axis < 3; axis++ {
			if rotated[axis] > bounds[2*axis+1] {
				bounds[2*axis+1] = rotated[axis]
			}
			if rotated[axis] < bounds[2*axis] {
				bounds[2*axis] = rotated[axis]
			}
		}
	}
	return bounds
}

const posInf = +1e308
const negInf = -1e308

func cornerValue(ext voxel.Extent, axis, corner int) float64 {
	bit := (corner >> axis) & 1
	return float64(ext[2*axis+bit])
}

func invertDirection(d [3][3]float64) [3][3]float64 {
	// Direction matrices are orthonormal, so the inverse is the
	// transpose.
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = d[j][i]
		}
	}
	return out
}
