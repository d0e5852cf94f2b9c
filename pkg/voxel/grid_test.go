package voxel

import "testing"

func TestExtentDims(t *testing.T) {
	e := Extent{0, 3, 0, 1, 0, 0}
	dims := e.Dims()
	if dims != [3]int{4, 2, 1} {
		t.Errorf("expected dims [4 2 1], got %v", dims)
	}
}

func TestExtentClipAndUnion(t *testing.T) {
	a := Extent{0, 10, 0, 10, 0, 10}
	b := Extent{5, 15, -5, 5, 2, 20}

	clipped := a.Clip(b)
	if clipped != (Extent{5, 10, 0, 5, 2, 10}) {
		t.Errorf("unexpected clip result: %v", clipped)
	}

	union := a.Union(b)
	if union != (Extent{0, 15, -5, 10, 0, 20}) {
		t.Errorf("unexpected union result: %v", union)
	}
}

func TestExtentEmptyAfterClip(t *testing.T) {
	a := Extent{0, 3, 0, 3, 0, 3}
	b := Extent{10, 12, 0, 3, 0, 3}
	if !a.Clip(b).Empty() {
		t.Errorf("expected disjoint extents to clip to empty")
	}
}

func TestNewGridRejectsBadKind(t *testing.T) {
	_, err := NewGrid(GridInfo{Extent: Extent{0, 1, 0, 1, 0, 1}, Direction: DefaultDirection()}, Kind(99), 1)
	if err == nil {
		t.Errorf("expected error for invalid kind")
	}
}

func TestGridVoxelOffsetXFastest(t *testing.T) {
	info := GridInfo{Extent: Extent{0, 3, 0, 3, 0, 1}, Spacing: [3]float64{1, 1, 1}, Direction: DefaultDirection()}
	g, err := NewGrid(info, Uint8, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if off := g.VoxelOffset(1, 0, 0); off != 1 {
		t.Errorf("expected X-fastest offset 1, got %d", off)
	}
	if off := g.VoxelOffset(0, 1, 0); off != 4 {
		t.Errorf("expected row stride 4, got %d", off)
	}
	if off := g.VoxelOffset(0, 0, 1); off != 16 {
		t.Errorf("expected slice stride 16, got %d", off)
	}
}

func TestCollapseToDimensionality(t *testing.T) {
	info := GridInfo{Extent: Extent{0, 3, 0, 3, 0, 3}, Origin: [3]float64{1, 2, 3}, Direction: DefaultDirection()}
	out := CollapseToDimensionality(info, 2)
	if out.Extent[4] != 0 || out.Extent[5] != 0 {
		t.Errorf("expected Z extent collapsed to [0,0], got %v", out.Extent)
	}
	if out.Origin[2] != 0 {
		t.Errorf("expected Z origin collapsed to 0, got %v", out.Origin[2])
	}
	if out.Origin[0] != 1 || out.Origin[1] != 2 {
		t.Errorf("expected X/Y origin unchanged, got %v", out.Origin)
	}
}
