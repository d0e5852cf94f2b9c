package reslice

import (
	"testing"

	"mrireslice/pkg/voxel"
)

// tilesPartitionExtent checks that tiles are disjoint and together cover
// every voxel of extent exactly once.
func tilesPartitionExtent(t *testing.T, extent voxel.Extent, tiles []voxel.Extent) {
	t.Helper()
	dims := extent.Dims()
	counts := make(map[[3]int]int)
	for _, tile := range tiles {
		for k := tile[4]; k <= tile[5]; k++ {
			for j := tile[2]; j <= tile[3]; j++ {
				for i := tile[0]; i <= tile[1]; i++ {
					counts[[3]int{i, j, k}]++
				}
			}
		}
	}
	want := dims[0] * dims[1] * dims[2]
	if len(counts) != want {
		t.Fatalf("tiles cover %d distinct voxels, want %d", len(counts), want)
	}
	for v, c := range counts {
		if c != 1 {
			t.Fatalf("voxel %v covered %d times, want exactly once", v, c)
		}
	}
}

func TestSplit3DPartitionsAlongAllThreeAxes(t *testing.T) {
	extent := voxel.Extent{0, 7, 0, 7, 0, 7}
	tiles := split3D(extent, 8)
	tilesPartitionExtent(t, extent, tiles)

	sawXSplit := false
	for _, tile := range tiles {
		if tile[0] != extent[0] || tile[1] != extent[1] {
			sawXSplit = true
		}
	}
	if !sawXSplit {
		t.Errorf("expected split3D to split the X axis for a cubic extent and n=8, tiles=%v", tiles)
	}
}

func TestSplit3DDegeneratesOnThinExtent(t *testing.T) {
	// X and Z are each a single voxel wide: split3D must not invent a
	// split along them just because it targets 3D, since there is only
	// one voxel to give along each.
	extent := voxel.Extent{0, 0, 0, 7, 0, 0}
	tiles := split3D(extent, 8)
	tilesPartitionExtent(t, extent, tiles)
	for _, tile := range tiles {
		if tile[0] != extent[0] || tile[1] != extent[1] {
			t.Fatalf("expected no X split on a 1-wide axis, got tile %v", tile)
		}
		if tile[4] != extent[4] || tile[5] != extent[5] {
			t.Fatalf("expected no Z split on a 1-wide axis, got tile %v", tile)
		}
	}
}

func TestSplit2DNeverSplitsX(t *testing.T) {
	extent := voxel.Extent{0, 7, 0, 7, 0, 7}
	tiles := split2D(extent, 8)
	tilesPartitionExtent(t, extent, tiles)
	for _, tile := range tiles {
		if tile[0] != extent[0] || tile[1] != extent[1] {
			t.Fatalf("split2D must never split X, got tile %v", tile)
		}
	}
}

func TestSplitExtentWarnsOnStencilDowngrade(t *testing.T) {
	p := DefaultParams()
	e, err := NewEngine(p)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	var warned string
	e.Warnf = func(format string, args ...any) {
		warned = format
	}
	extent := voxel.Extent{0, 7, 0, 7, 0, 7}
	_ = splitExtent(e, extent, 8, true)
	if warned == "" {
		t.Errorf("expected splitExtent to report a downgrade warning when avoidXSplit is true")
	}
}

func TestSplitExtentNoWarningWithoutStencil(t *testing.T) {
	p := DefaultParams()
	e, err := NewEngine(p)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	warned := false
	e.Warnf = func(format string, args ...any) {
		warned = true
	}
	extent := voxel.Extent{0, 7, 0, 7, 0, 7}
	_ = splitExtent(e, extent, 8, false)
	if warned {
		t.Errorf("expected no warning when generate_stencil_output is not set")
	}
}
