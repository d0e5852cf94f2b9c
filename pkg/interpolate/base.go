package interpolate

import "mrireslice/pkg/voxel"

// base holds the state shared by all three kernels: border mode,
// tolerance, and component slicing. Grounded on the teacher's
// Kriging struct (pkg/interpolation/kriging.go), which also holds its
// configuration as plain fields set through dedicated setters rather than
// functional options.
type base struct {
	border      BorderMode
	tolerance   float64
	compOffset  int
	numComp     int
	totalNumComp int
}

func (b *base) SetBorderMode(mode BorderMode) { b.border = mode }

func (b *base) BorderMode() BorderMode { return b.border }

func (b *base) SetTolerance(t float64) { b.tolerance = t }

func (b *base) Tolerance() float64 { return b.tolerance }

func (b *base) ComponentOffset() int { return b.compOffset }

func (b *base) NumberOfComponents() int { return b.numComp }

func (b *base) SetComponentOffset(offset, n int) {
	b.compOffset = offset
	b.numComp = n
}

// inBounds checks a single axis value against [lo,hi] with the configured
// tolerance, honoring repeat/mirror's effectively-infinite tolerance.
func (b *base) axisInBounds(v float64, lo, hi int) bool {
	if b.border == BorderRepeat || b.border == BorderMirror {
		return true
	}
	return v >= float64(lo)-b.tolerance && v <= float64(hi)+b.tolerance
}

func (b *base) CheckBoundsIJK(p [3]float64, extent voxel.Extent) bool {
	return b.axisInBounds(p[0], extent[0], extent[1]) &&
		b.axisInBounds(p[1], extent[2], extent[3]) &&
		b.axisInBounds(p[2], extent[4], extent[5])
}

// wrapIndex maps an arbitrary integer index onto [lo,hi] per the
// configured border mode (clamp/repeat/mirror). Used by all three
// kernels when they read an out-of-range tap.
func (b *base) wrapIndex(i, lo, hi int) int {
	return WrapIndex(b.border, i, lo, hi)
}

// WrapIndex maps an arbitrary integer index onto [lo,hi] per border. It is
// the free-function form of (*base).wrapIndex, exported so the permute
// execute path's precomputed weight tables (pkg/interpolate/weights.go) and
// their row readers can wrap tap indices the same way the general path's
// per-voxel kernels do.
func WrapIndex(border BorderMode, i, lo, hi int) int {
	if lo > hi {
		return lo
	}
	span := hi - lo + 1
	switch border {
	case BorderRepeat:
		m := (i - lo) % span
		if m < 0 {
			m += span
		}
		return lo + m
	case BorderMirror:
		if span == 1 {
			return lo
		}
		period := 2 * span
		m := (i - lo) % period
		if m < 0 {
			m += period
		}
		if m >= span {
			m = period - 1 - m
		}
		return lo + m
	default: // BorderClamp
		if i < lo {
			return lo
		}
		if i > hi {
			return hi
		}
		return i
	}
}
