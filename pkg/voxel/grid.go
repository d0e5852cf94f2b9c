package voxel

import (
	"fmt"
	"math"
)

// Extent is a closed integer interval per axis specifying which voxels an
// image contains: [X0,X1,Y0,Y1,Z0,Z1].
type Extent [6]int

// Dims returns the number of voxels along each axis (inclusive extent).
func (e Extent) Dims() [3]int {
	return [3]int{e[1] - e[0] + 1, e[3] - e[2] + 1, e[5] - e[4] + 1}
}

// Empty reports whether the extent is degenerate or inverted along any axis.
func (e Extent) Empty() bool {
	return e[1] < e[0] || e[3] < e[2] || e[5] < e[4]
}

// Contains reports whether the integer index (i,j,k) lies within e.
func (e Extent) Contains(i, j, k int) bool {
	return i >= e[0] && i <= e[1] && j >= e[2] && j <= e[3] && k >= e[4] && k <= e[5]
}

// Clip returns the intersection of e and o. The result may be empty.
func (e Extent) Clip(o Extent) Extent {
	return Extent{
		maxInt(e[0], o[0]), minInt(e[1], o[1]),
		maxInt(e[2], o[2]), minInt(e[3], o[3]),
		maxInt(e[4], o[4]), minInt(e[5], o[5]),
	}
}

// Union returns the smallest extent containing both e and o.
func (e Extent) Union(o Extent) Extent {
	return Extent{
		minInt(e[0], o[0]), maxInt(e[1], o[1]),
		minInt(e[2], o[2]), maxInt(e[3], o[3]),
		minInt(e[4], o[4]), maxInt(e[5], o[5]),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Bounds6 is a world-space axis-aligned bounding box:
// [Xmin,Xmax,Ymin,Ymax,Zmin,Zmax].
type Bounds6 [6]float64

// GridInfo is the geometric description of a grid, independent of its
// scalar payload: used for both input and output geometry derivation.
type GridInfo struct {
	Extent    Extent
	Spacing   [3]float64
	Origin    [3]float64
	Direction [3][3]float64 // rows are the direction cosines for X,Y,Z
}

// DefaultDirection returns the identity direction matrix.
func DefaultDirection() [3][3]float64 {
	return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// AbsSpacing returns the spacing with each component's absolute value, per
// spec.md's invariant that non-positive user spacing is treated as its
// magnitude for dimension computations.
func (g GridInfo) AbsSpacing() [3]float64 {
	return [3]float64{math.Abs(g.Spacing[0]), math.Abs(g.Spacing[1]), math.Abs(g.Spacing[2])}
}

// Grid is a regularly spaced voxel image: geometry plus a contiguous typed
// scalar buffer; a voxel's components are stored together, and voxels are
// ordered X-fastest, then Y, then Z.
type Grid struct {
	GridInfo
	Kind          Kind
	NumComponents int
	Data          []byte
}

// NewGrid allocates a zeroed grid with the given geometry, kind and
// component count.
func NewGrid(info GridInfo, kind Kind, numComponents int) (*Grid, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("voxel: invalid scalar kind %d", int(kind))
	}
	if numComponents < 1 {
		return nil, fmt.Errorf("voxel: numComponents must be >= 1, got %d", numComponents)
	}
	if info.Extent.Empty() {
		return &Grid{GridInfo: info, Kind: kind, NumComponents: numComponents}, nil
	}
	dims := info.Extent.Dims()
	n := int64(dims[0]) * int64(dims[1]) * int64(dims[2]) * int64(numComponents) * int64(kind.Size())
	if n < 0 || n > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("voxel: requested grid size overflows addressable memory (%d bytes)", n)
	}
	return &Grid{GridInfo: info, Kind: kind, NumComponents: numComponents, Data: make([]byte, n)}, nil
}

// BytesPerVoxel returns the number of bytes occupied by one voxel (all
// components).
func (g *Grid) BytesPerVoxel() int {
	return g.NumComponents * g.Kind.Size()
}

// VoxelOffset returns the byte offset of voxel (i,j,k) within g.Data.
func (g *Grid) VoxelOffset(i, j, k int) int {
	dims := g.Extent.Dims()
	bpv := g.BytesPerVoxel()
	return (((k-g.Extent[4])*dims[1]+(j-g.Extent[2]))*dims[0] + (i - g.Extent[0])) * bpv
}

// Validate rejects a zero direction row and an extent inverted by more
// than one voxel along any axis. It does not check that the direction is
// orthonormal or right-handed, nor the spacing or dimensionality.
func (g GridInfo) Validate() error {
	for axis := 0; axis < 3; axis++ {
		row := g.Direction[axis]
		norm := math.Sqrt(row[0]*row[0] + row[1]*row[1] + row[2]*row[2])
		if norm == 0 {
			return fmt.Errorf("voxel: direction row %d is zero", axis)
		}
	}
	if g.Extent[1] < g.Extent[0]-1 || g.Extent[3] < g.Extent[2]-1 || g.Extent[5] < g.Extent[4]-1 {
		return fmt.Errorf("voxel: inverted extent %v", g.Extent)
	}
	return nil
}

// CollapseToDimensionality zeroes extent/origin on axes k>=d, per spec.md
// §3's OutputDimensionality invariant.
func CollapseToDimensionality(info GridInfo, d int) GridInfo {
	if d >= 3 {
		return info
	}
	out := info
	for axis := d; axis < 3; axis++ {
		out.Extent[axis*2] = 0
		out.Extent[axis*2+1] = 0
		out.Origin[axis] = 0
	}
	return out
}
