package rawvolume

import (
	"os"
	"path/filepath"
	"testing"

	"mrireslice/pkg/voxel"
)

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("not a volume file"), 0644)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	info := voxel.GridInfo{
		Extent:    voxel.Extent{0, 2, 0, 1, 0, 0},
		Spacing:   [3]float64{1.5, 1.5, 2},
		Origin:    [3]float64{10, 20, 30},
		Direction: voxel.DefaultDirection(),
	}
	g, err := voxel.NewGrid(info, voxel.Uint16, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for k := 0; k < 1; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 3; i++ {
				off := g.VoxelOffset(i, j, k)
				voxel.WriteComponent(g.Data, off, 0, voxel.Uint16, float64(10*j+i))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "vol.mrl")
	if err := Save(g, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Extent != g.Extent {
		t.Fatalf("extent = %v, want %v", loaded.Extent, g.Extent)
	}
	if loaded.Spacing != g.Spacing || loaded.Origin != g.Origin {
		t.Fatalf("geometry mismatch: got spacing=%v origin=%v", loaded.Spacing, loaded.Origin)
	}
	for i := range g.Data {
		if loaded.Data[i] != g.Data[i] {
			t.Fatalf("byte %d differs: got=%d want=%d", i, loaded.Data[i], g.Data[i])
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mrl")
	if err := writeGarbage(path); err != nil {
		t.Fatalf("writeGarbage: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error loading a non-volume file")
	}
}
