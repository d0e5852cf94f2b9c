package interpolate

import "mrireslice/pkg/voxel"

// Linear is the trilinear interpolation kernel: support 2 along every
// axis, separable.
type Linear struct{ base }

// NewLinear builds a Linear interpolator that samples one component, at
// offset 0, until SetComponentOffset selects others.
func NewLinear() *Linear {
	l := &Linear{}
	l.SetComponentOffset(0, 1)
	return l
}

func (l *Linear) ComputeSupportSize([9]float64) (int, int, int) { return 2, 2, 2 }

func (l *Linear) IsSeparable() bool { return true }

func (l *Linear) InterpolateIJK(src *voxel.Grid, p [3]float64, out []float64) {
	ix, fx := floorWithFraction(p[0])
	iy, fy := floorWithFraction(p[1])
	iz, fz := floorWithFraction(p[2])

	for c := 0; c < l.numComp; c++ {
		out[c] = 0
	}
	wx := [2]float64{1 - fx, fx}
	wy := [2]float64{1 - fy, fy}
	wz := [2]float64{1 - fz, fz}
	for dz := 0; dz < 2; dz++ {
		if wz[dz] == 0 {
			continue
		}
		k := l.wrapIndex(iz+dz, src.Extent[4], src.Extent[5])
		for dy := 0; dy < 2; dy++ {
			wzy := wz[dz] * wy[dy]
			if wzy == 0 {
				continue
			}
			j := l.wrapIndex(iy+dy, src.Extent[2], src.Extent[3])
			for dx := 0; dx < 2; dx++ {
				w := wzy * wx[dx]
				if w == 0 {
					continue
				}
				i := l.wrapIndex(ix+dx, src.Extent[0], src.Extent[1])
				off := src.VoxelOffset(i, j, k)
				for c := 0; c < l.numComp; c++ {
					out[c] += w * voxel.ReadComponent(src.Data, off, l.compOffset+c, src.Kind)
				}
			}
		}
	}
}

func (l *Linear) PrecomputeWeightsForExtent(m [4][4]float64, requested, srcExtent voxel.Extent) (voxel.Extent, WeightTables) {
	return precomputeNearestOrLinear(l, m, requested, srcExtent, true)
}

func (l *Linear) InterpolateRow(src *voxel.Grid, tables WeightTables, x0, y, z, count int, out []float64) {
	interpolateRowGeneric(l.numComp, l.compOffset, src, tables, x0, y, z, count, out)
}
