package interpolate

import (
	"math"
	"testing"

	"mrireslice/pkg/voxel"
)

func newTestGrid(t *testing.T, nx, ny, nz int, fill func(i, j, k int) float64) *voxel.Grid {
	t.Helper()
	info := voxel.GridInfo{
		Extent:    voxel.Extent{0, nx - 1, 0, ny - 1, 0, nz - 1},
		Spacing:   [3]float64{1, 1, 1},
		Direction: voxel.DefaultDirection(),
	}
	g, err := voxel.NewGrid(info, voxel.Float64, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				voxel.WriteComponent(g.Data, g.VoxelOffset(i, j, k), 0, voxel.Float64, fill(i, j, k))
			}
		}
	}
	return g
}

func TestNearestInterpolateIJKSnapsToClosest(t *testing.T) {
	g := newTestGrid(t, 4, 4, 4, func(i, j, k int) float64 { return float64(100*k + 10*j + i) })
	n := NewNearest()
	n.SetBorderMode(BorderClamp)
	out := make([]float64, 1)
	n.InterpolateIJK(g, [3]float64{1.4, 2.4, 0.6}, out)
	if out[0] != 121 {
		t.Errorf("expected nearest to round to (1,2,1)=121, got %v", out[0])
	}
}

func TestLinearInterpolateIJKAtIntegerMatchesSource(t *testing.T) {
	g := newTestGrid(t, 4, 4, 4, func(i, j, k int) float64 { return float64(100*k + 10*j + i) })
	l := NewLinear()
	l.SetBorderMode(BorderClamp)
	out := make([]float64, 1)
	l.InterpolateIJK(g, [3]float64{2, 1, 3}, out)
	if out[0] != 312 {
		t.Errorf("expected exact match at integer coordinate, got %v", out[0])
	}
}

func TestLinearInterpolateIJKMidpoint(t *testing.T) {
	g := newTestGrid(t, 4, 4, 4, func(i, j, k int) float64 { return float64(i) })
	l := NewLinear()
	l.SetBorderMode(BorderClamp)
	out := make([]float64, 1)
	l.InterpolateIJK(g, [3]float64{1.5, 0, 0}, out)
	if math.Abs(out[0]-1.5) > 1e-9 {
		t.Errorf("expected midpoint interpolation 1.5, got %v", out[0])
	}
}

func TestCubicInterpolateIJKAtIntegerMatchesSource(t *testing.T) {
	g := newTestGrid(t, 6, 6, 6, func(i, j, k int) float64 { return float64(100*k + 10*j + i) })
	c := NewCubic()
	c.SetBorderMode(BorderClamp)
	out := make([]float64, 1)
	c.InterpolateIJK(g, [3]float64{3, 2, 2}, out)
	if math.Abs(out[0]-223) > 1e-9 {
		t.Errorf("expected exact match at integer coordinate, got %v", out[0])
	}
}

func TestBorderModesWrapIndex(t *testing.T) {
	b := &base{border: BorderClamp}
	if got := b.wrapIndex(-1, 0, 3); got != 0 {
		t.Errorf("clamp: expected 0, got %d", got)
	}
	if got := b.wrapIndex(5, 0, 3); got != 3 {
		t.Errorf("clamp: expected 3, got %d", got)
	}

	b.border = BorderRepeat
	if got := b.wrapIndex(-1, 0, 3); got != 3 {
		t.Errorf("repeat: expected 3, got %d", got)
	}
	if got := b.wrapIndex(4, 0, 3); got != 0 {
		t.Errorf("repeat: expected 0, got %d", got)
	}

	b.border = BorderMirror
	if got := b.wrapIndex(-1, 0, 3); got != 0 {
		t.Errorf("mirror: expected 0, got %d", got)
	}
	if got := b.wrapIndex(4, 0, 3); got != 3 {
		t.Errorf("mirror: expected 3, got %d", got)
	}
}

func TestPrecomputeWeightsForExtentMatchesPerVoxel(t *testing.T) {
	g := newTestGrid(t, 8, 8, 8, func(i, j, k int) float64 { return float64(100*k + 10*j + i) })
	l := NewLinear()
	l.SetBorderMode(BorderClamp)

	// identity matrix (rows are axis index -> axis index, scale 1)
	m := [4][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	requested := voxel.Extent{1, 5, 1, 5, 1, 5}
	clipped, tables := l.PrecomputeWeightsForExtent(m, requested, g.Extent)
	if clipped != requested {
		t.Fatalf("expected full request to be fully in-bounds, got clip %v", clipped)
	}

	for y := requested[2]; y <= requested[3]; y++ {
		for z := requested[4]; z <= requested[5]; z++ {
			out := make([]float64, requested[1]-requested[0]+1)
			l.InterpolateRow(g, tables, requested[0], y, z, len(out), out)
			for idx, v := range out {
				x := requested[0] + idx
				want := make([]float64, 1)
				l.InterpolateIJK(g, [3]float64{float64(x), float64(y), float64(z)}, want)
				if math.Abs(v-want[0]) > 1e-9 {
					t.Errorf("row/per-voxel mismatch at (%d,%d,%d): row=%v perVoxel=%v", x, y, z, v, want[0])
				}
			}
		}
	}
}
