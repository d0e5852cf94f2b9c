package interpolate

import (
	"math"

	"mrireslice/pkg/voxel"
)

// Nearest is the nearest-neighbor kernel: support 1 along every axis,
// separable (trivially), and the cheapest of the three.
type Nearest struct{ base }

// NewNearest builds a Nearest interpolator that samples one component, at
// offset 0, until SetComponentOffset selects others.
func NewNearest() *Nearest {
	n := &Nearest{}
	n.SetComponentOffset(0, 1)
	return n
}

func (n *Nearest) ComputeSupportSize([9]float64) (int, int, int) { return 1, 1, 1 }

func (n *Nearest) IsSeparable() bool { return true }

func roundHalfToEven(v float64) int {
	return int(math.RoundToEven(v))
}

func floorWithFraction(v float64) (base int, frac float64) {
	f := math.Floor(v)
	return int(f), v - f
}

func (n *Nearest) InterpolateIJK(src *voxel.Grid, p [3]float64, out []float64) {
	i := n.wrapIndex(roundHalfToEven(p[0]), src.Extent[0], src.Extent[1])
	j := n.wrapIndex(roundHalfToEven(p[1]), src.Extent[2], src.Extent[3])
	k := n.wrapIndex(roundHalfToEven(p[2]), src.Extent[4], src.Extent[5])
	off := src.VoxelOffset(i, j, k)
	for c := 0; c < n.numComp; c++ {
		out[c] = voxel.ReadComponent(src.Data, off, n.compOffset+c, src.Kind)
	}
}

func (n *Nearest) PrecomputeWeightsForExtent(m [4][4]float64, requested, srcExtent voxel.Extent) (voxel.Extent, WeightTables) {
	return precomputeNearestOrLinear(n, m, requested, srcExtent, false)
}

func (n *Nearest) InterpolateRow(src *voxel.Grid, tables WeightTables, x0, y, z, count int, out []float64) {
	interpolateRowGeneric(n.numComp, n.compOffset, src, tables, x0, y, z, count, out)
}
