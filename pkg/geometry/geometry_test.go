package geometry

import (
	"math"
	"testing"

	"mrireslice/pkg/matrix"
	"mrireslice/pkg/voxel"
)

func identityInput() voxel.GridInfo {
	return voxel.GridInfo{
		Extent:    voxel.Extent{0, 3, 0, 3, 0, 3},
		Spacing:   [3]float64{1, 1, 1},
		Origin:    [3]float64{0, 0, 0},
		Direction: voxel.DefaultDirection(),
	}
}

func TestDeriveOutputInfoIdentityPreservesGeometry(t *testing.T) {
	in := identityInput()
	p := Params{
		ResliceAxes:            matrix.Identity4(),
		ComputeOutputSpacing:   true,
		ComputeOutputOrigin:    true,
		PassDirectionToOutput:  true,
		ComputeOutputExtent:    true,
		OutputDimensionality:   3,
		TransformInputSampling: true,
	}
	out := DeriveOutputInfo(in, p)
	if out.Extent != in.Extent {
		t.Errorf("expected identity extent %v, got %v", in.Extent, out.Extent)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(out.Spacing[i]-in.Spacing[i]) > 1e-9 {
			t.Errorf("spacing[%d] = %v, want %v", i, out.Spacing[i], in.Spacing[i])
		}
	}
}

func TestDeriveOutputInfoCollapsesDimensionality(t *testing.T) {
	in := identityInput()
	p := Params{
		ResliceAxes:           matrix.Identity4(),
		ComputeOutputSpacing:  true,
		ComputeOutputOrigin:   true,
		PassDirectionToOutput: true,
		ComputeOutputExtent:   true,
		OutputDimensionality:  2,
	}
	out := DeriveOutputInfo(in, p)
	if out.Extent[4] != 0 || out.Extent[5] != 0 {
		t.Errorf("expected Z extent collapsed to [0,0], got %v", out.Extent)
	}
	if out.Origin[2] != 0 {
		t.Errorf("expected Z origin collapsed to 0, got %v", out.Origin[2])
	}
}

func TestComputeUpdateExtentIdentityMatrixNoClip(t *testing.T) {
	whole := voxel.Extent{0, 9, 0, 9, 0, 9}
	request := voxel.Extent{2, 5, 2, 5, 2, 5}
	idx := matrix.Identity4()
	support := [3]int{2, 2, 2}
	out, hit := ComputeUpdateExtent(whole, request, idx, support, BorderClamp, false)
	if !hit {
		t.Fatalf("expected hit for in-bounds identity mapping")
	}
	for axis := 0; axis < 3; axis++ {
		if out[2*axis] > request[2*axis] || out[2*axis+1] < request[2*axis+1] {
			t.Errorf("expected update extent to cover request on axis %d, got %v from request %v", axis, out, request)
		}
	}
}

func TestComputeUpdateExtentClipsToWhole(t *testing.T) {
	whole := voxel.Extent{0, 3, 0, 3, 0, 3}
	request := voxel.Extent{0, 3, 0, 3, 0, 3}
	// translate +10 on X so every mapped corner falls outside whole extent.
	idx := matrix.Identity4()
	idx[0][3] = 10
	support := [3]int{1, 1, 1}
	out, hit := ComputeUpdateExtent(whole, request, idx, support, BorderClamp, false)
	if hit {
		t.Errorf("expected miss when translated request falls entirely outside whole extent")
	}
	if out[0] != out[1] {
		t.Errorf("expected degenerate (not inverted) X extent on miss, got [%d,%d]", out[0], out[1])
	}
}

func TestComputeUpdateExtentWrapExpandsToWhole(t *testing.T) {
	whole := voxel.Extent{0, 9, 0, 9, 0, 9}
	request := voxel.Extent{2, 5, 2, 5, 2, 5}
	idx := matrix.Identity4()
	support := [3]int{2, 2, 2}
	out, hit := ComputeUpdateExtent(whole, request, idx, support, BorderRepeat, false)
	if !hit {
		t.Errorf("expected hit under wrap border mode")
	}
	if out != whole {
		t.Errorf("expected wrap mode to expand to whole extent %v, got %v", whole, out)
	}
}

func TestComputeUpdateExtentNonHomogeneousRequestsWholeExtent(t *testing.T) {
	whole := voxel.Extent{0, 9, 0, 9, 0, 9}
	request := voxel.Extent{2, 5, 2, 5, 2, 5}
	idx := matrix.Identity4()
	support := [3]int{2, 2, 2}
	out, hit := ComputeUpdateExtent(whole, request, idx, support, BorderClamp, true)
	if !hit {
		t.Errorf("expected hit when whole extent is non-empty")
	}
	if out != whole {
		t.Errorf("expected non-homogeneous residual to request full whole extent, got %v", out)
	}
}

func TestAxisIntervalEvenKernelExactIndexIsNarrower(t *testing.T) {
	// Ported from vtkImageReslice.cxx's extent-widening loop: a mapped
	// coordinate landing exactly on an input index (zero fraction) gets a
	// one-voxel narrower interval than one that falls between indices,
	// since the extra upper-side tap is only needed when the sample
	// straddles two input voxels.
	lo, hi := axisInterval(5.0, 4)
	if lo != 4 || hi != 6 {
		t.Errorf("axisInterval(5.0, 4) = [%v,%v], want [4,6]", lo, hi)
	}
	lo, hi = axisInterval(5.3, 4)
	if lo != 4 || hi != 7 {
		t.Errorf("axisInterval(5.3, 4) = [%v,%v], want [4,7]", lo, hi)
	}
}

func TestComputeUpdateExtentEvenKernelGridAlignedCornerIsNarrower(t *testing.T) {
	// Cubic interpolation (support 4) with an identity index matrix: every
	// output corner maps to an exact input index, so the even-kernel
	// fractional-zero narrowing in axisInterval must apply at every
	// corner, not just interior samples.
	whole := voxel.Extent{0, 9, 0, 9, 0, 9}
	request := voxel.Extent{2, 5, 2, 5, 2, 5}
	idx := matrix.Identity4()
	support := [3]int{4, 4, 4}
	out, hit := ComputeUpdateExtent(whole, request, idx, support, BorderClamp, false)
	if !hit {
		t.Fatalf("expected hit for in-bounds identity mapping")
	}
	want := voxel.Extent{1, 6, 1, 6, 1, 6}
	if out != want {
		t.Errorf("ComputeUpdateExtent grid-aligned corner with cubic support = %v, want %v", out, want)
	}
}

func TestComputeAutoCropBoundsIdentityMatchesInputWorldBounds(t *testing.T) {
	in := identityInput()
	bounds := ComputeAutoCropBounds(in, voxel.DefaultDirection(), matrix.Identity4())
	want := voxel.Bounds6{0, 3, 0, 3, 0, 3}
	for i := range want {
		if math.Abs(bounds[i]-want[i]) > 1e-9 {
			t.Errorf("bounds[%d] = %v, want %v", i, bounds[i], want[i])
		}
	}
}

func TestComputeAutoCropBoundsRotatedDirectionContainsCorners(t *testing.T) {
	in := identityInput()
	theta := math.Pi / 6
	outDir := [3][3]float64{
		{math.Cos(theta), -math.Sin(theta), 0},
		{math.Sin(theta), math.Cos(theta), 0},
		{0, 0, 1},
	}
	bounds := ComputeAutoCropBounds(in, outDir, matrix.Identity4())
	for axis := 0; axis < 3; axis++ {
		if bounds[2*axis] > bounds[2*axis+1] {
			t.Errorf("axis %d bounds inverted: %v", axis, bounds)
		}
	}
}
