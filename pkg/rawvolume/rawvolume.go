// Package rawvolume implements a minimal flat-binary codec for
// voxel.Grid, just enough to round-trip test fixtures and give the CLI
// something to read and write. It is deliberately not a real medical
// image format (NIfTI/NRRD/DICOM parsing is out of scope, see
// SPEC_FULL.md); the layout is a small fixed header followed by the raw
// scalar buffer, little-endian throughout.
package rawvolume

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"mrireslice/pkg/voxel"
)

const magic uint32 = 0x6d726c31 // "mrl1"

// Load reads a grid previously written by Save.
func Load(path string) (*voxel.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rawvolume: open %s: %w", path, err)
	}
	defer f.Close()

	var hdr header
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("rawvolume: reading header: %w", err)
	}
	if hdr.Magic != magic {
		return nil, fmt.Errorf("rawvolume: %s is not a mrireslice raw volume", path)
	}
	kind := voxel.Kind(hdr.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("rawvolume: invalid scalar kind %d in header", hdr.Kind)
	}

	info := voxel.GridInfo{
		Extent: voxel.Extent{
			int(hdr.ExtentLo[0]), int(hdr.ExtentHi[0]),
			int(hdr.ExtentLo[1]), int(hdr.ExtentHi[1]),
			int(hdr.ExtentLo[2]), int(hdr.ExtentHi[2]),
		},
		Spacing: hdr.Spacing,
		Origin:  hdr.Origin,
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			info.Direction[r][c] = hdr.Direction[r*3+c]
		}
	}

	g, err := voxel.NewGrid(info, kind, int(hdr.NumComponents))
	if err != nil {
		return nil, fmt.Errorf("rawvolume: %w", err)
	}
	if _, err := io.ReadFull(f, g.Data); err != nil {
		return nil, fmt.Errorf("rawvolume: reading payload: %w", err)
	}
	return g, nil
}

// Save writes g's geometry and scalar buffer to path in the raw volume
// format Load understands.
func Save(g *voxel.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rawvolume: create %s: %w", path, err)
	}
	defer f.Close()

	var hdr header
	hdr.Magic = magic
	hdr.Kind = int32(g.Kind)
	hdr.NumComponents = int32(g.NumComponents)
	hdr.ExtentLo = [3]int32{int32(g.Extent[0]), int32(g.Extent[2]), int32(g.Extent[4])}
	hdr.ExtentHi = [3]int32{int32(g.Extent[1]), int32(g.Extent[3]), int32(g.Extent[5])}
	hdr.Spacing = g.Spacing
	hdr.Origin = g.Origin
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			hdr.Direction[r*3+c] = g.Direction[r][c]
		}
	}

	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("rawvolume: writing header: %w", err)
	}
	if _, err := f.Write(g.Data); err != nil {
		return fmt.Errorf("rawvolume: writing payload: %w", err)
	}
	return nil
}

type header struct {
	Magic         uint32
	Kind          int32
	NumComponents int32
	ExtentLo      [3]int32
	ExtentHi      [3]int32
	Spacing       [3]float64
	Origin        [3]float64
	Direction     [9]float64
}
