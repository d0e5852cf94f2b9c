package interpolate

import "mrireslice/pkg/voxel"

// Cubic is a 4-tap cubic convolution kernel (Keys 1981, A=-0.5), support 4
// along every axis, separable.
type Cubic struct{ base }

// NewCubic builds a Cubic interpolator that samples one component, at
// offset 0, until SetComponentOffset selects others.
func NewCubic() *Cubic {
	c := &Cubic{}
	c.SetComponentOffset(0, 1)
	return c
}

func (c *Cubic) ComputeSupportSize([9]float64) (int, int, int) { return 4, 4, 4 }

func (c *Cubic) IsSeparable() bool { return true }

func (c *Cubic) InterpolateIJK(src *voxel.Grid, p [3]float64, out []float64) {
	ix, fx := floorWithFraction(p[0])
	iy, fy := floorWithFraction(p[1])
	iz, fz := floorWithFraction(p[2])

	wx := cubicKernel(fx)
	wy := cubicKernel(fy)
	wz := cubicKernel(fz)

	for comp := 0; comp < c.numComp; comp++ {
		out[comp] = 0
	}
	for dz := 0; dz < 4; dz++ {
		if wz[dz] == 0 {
			continue
		}
		k := c.wrapIndex(iz+dz-1, src.Extent[4], src.Extent[5])
		for dy := 0; dy < 4; dy++ {
			wzy := wz[dz] * wy[dy]
			if wzy == 0 {
				continue
			}
			j := c.wrapIndex(iy+dy-1, src.Extent[2], src.Extent[3])
			for dx := 0; dx < 4; dx++ {
				w := wzy * wx[dx]
				if w == 0 {
					continue
				}
				i := c.wrapIndex(ix+dx-1, src.Extent[0], src.Extent[1])
				off := src.VoxelOffset(i, j, k)
				for comp := 0; comp < c.numComp; comp++ {
					out[comp] += w * voxel.ReadComponent(src.Data, off, c.compOffset+comp, src.Kind)
				}
			}
		}
	}
}

func (c *Cubic) PrecomputeWeightsForExtent(m [4][4]float64, requested, srcExtent voxel.Extent) (voxel.Extent, WeightTables) {
	return precomputeGeneric(c.BorderMode(), m, requested, srcExtent, 4, cubicTap)
}

func (c *Cubic) InterpolateRow(src *voxel.Grid, tables WeightTables, x0, y, z, count int, out []float64) {
	interpolateRowGeneric(c.numComp, c.compOffset, src, tables, x0, y, z, count, out)
}
