// Package convert implements per-output-type scalar conversion with
// optional saturating clamp, the slab compositing operators, and the
// scalar shift/scale rescaler of spec.md §4.1/§4.5/§4.6.
package convert

import (
	"math"

	"mrireslice/pkg/voxel"
)

// Rescale holds the optional post-interpolation affine rescale of spec.md
// §6 ("scalar_shift / scalar_scale"): out = (in + shift) * scale.
type Rescale struct {
	Shift float64
	Scale float64
}

// Identity returns the no-op rescale (shift 0, scale 1).
func Identity() Rescale { return Rescale{Shift: 0, Scale: 1} }

// Apply applies the rescale in place.
func (r Rescale) Apply(values []float64) {
	if r.Shift == 0 && r.Scale == 1 {
		return
	}
	for i, v := range values {
		values[i] = (v + r.Shift) * r.Scale
	}
}

// IsIdentity reports whether r has no effect.
func (r Rescale) IsIdentity() bool { return r.Shift == 0 && r.Scale == 1 }

// Converter converts interpolated float64 components into an output
// grid's scalar kind, with an optional saturating clamp.
//
// PreConvert, when set, is applied to the float values before the
// kind-specific conversion — carried forward from vtkImageReslice's
// ConvertScalarInfo/ConvertScalars virtual hook (see SPEC_FULL.md DOMAIN
// STACK), which this module's distillation otherwise drops.
type Converter struct {
	Kind       voxel.Kind
	Clamp      bool
	PreConvert func(values []float64)
}

// NewConverter builds a Converter for outKind. clamp should be the result
// of ShouldClamp (spec.md §4.5 step 5): skipped when the output type is
// floating point, or when the interpolation mode is <=linear, the slab is
// not sum, and the input kind's range fits inside outKind's — callers
// compute that decision once per pass and pass it in here.
func NewConverter(outKind voxel.Kind, clamp bool) *Converter {
	return &Converter{Kind: outKind, Clamp: clamp}
}

// Convert writes len(values) converted scalars into the voxel at byte
// offset voxelOff of dst, starting at component compOffset.
func (c *Converter) Convert(dst []byte, voxelOff, compOffset int, values []float64) {
	if c.PreConvert != nil {
		c.PreConvert(values)
	}
	if c.Clamp && !c.Kind.IsFloat() {
		lo, hi := c.Kind.Range()
		for i, v := range values {
			if v < lo {
				v = lo
			} else if v > hi {
				v = hi
			}
			voxel.WriteComponent(dst, voxelOff, compOffset+i, c.Kind, math.RoundToEven(v))
		}
		return
	}
	if !c.Kind.IsFloat() {
		for i, v := range values {
			voxel.WriteComponent(dst, voxelOff, compOffset+i, c.Kind, math.RoundToEven(v))
		}
		return
	}
	for i, v := range values {
		voxel.WriteComponent(dst, voxelOff, compOffset+i, c.Kind, v)
	}
}

// ShouldClamp implements spec.md §4.5 step 5's clamp-skip optimization:
// clamp is skipped when the destination kind is floating point, or when
// the interpolation mode is nearest/linear and the slab is not sum (the
// value is a convex combination of source values, so it cannot leave the
// source's representable range) AND inKind's range fits inside outKind's
// range. That range-fit check is the precondition the optimization
// actually depends on: a convex combination of in-range source values
// still overflows an outKind narrower than inKind (e.g. Int32 resliced
// down to Int8), so clamp must still run in that case to saturate instead
// of letting voxel.WriteComponent silently truncate.
func ShouldClamp(interpModeAtMostLinear bool, slabIsSum bool, inKind, outKind voxel.Kind) bool {
	if outKind.IsFloat() {
		return false
	}
	if interpModeAtMostLinear && !slabIsSum && rangeFits(inKind, outKind) {
		return false
	}
	return true
}

// rangeFits reports whether every value representable by inKind is also
// representable by outKind. A floating-point inKind is never considered to
// fit a narrower integer outKind.
func rangeFits(inKind, outKind voxel.Kind) bool {
	if inKind.IsFloat() || outKind.IsFloat() {
		return inKind == outKind
	}
	inLo, inHi := inKind.Range()
	outLo, outHi := outKind.Range()
	return inLo >= outLo && inHi <= outHi
}

// BackgroundPixel is a small owned buffer sized numComponents*scalarSize,
// converted once per pass — spec.md §9 REDESIGN FLAGS ("Background pixel
// as raw allocation... replace with a small owned buffer").
type BackgroundPixel struct {
	Kind voxel.Kind
	N    int
	Data []byte
}

// NewBackgroundPixel converts color (up to 4 components, spec.md §6's
// background_color) into a BackgroundPixel of the given kind/component
// count, clamping to the kind's representable range.
func NewBackgroundPixel(kind voxel.Kind, n int, color [4]float64) BackgroundPixel {
	bp := BackgroundPixel{Kind: kind, N: n, Data: make([]byte, n*kind.Size())}
	for i := 0; i < n; i++ {
		v := 0.0
		if i < 4 {
			v = color[i]
		}
		if !kind.IsFloat() {
			lo, hi := kind.Range()
			if v < lo {
				v = lo
			} else if v > hi {
				v = hi
			}
			v = math.RoundToEven(v)
		}
		voxel.WriteComponent(bp.Data, 0, i, kind, v)
	}
	return bp
}

// WriteTo copies the background pixel into dst at voxelOff.
func (bp BackgroundPixel) WriteTo(dst []byte, voxelOff int) {
	copy(dst[voxelOff:voxelOff+len(bp.Data)], bp.Data)
}
