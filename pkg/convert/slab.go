package convert

import "fmt"

// SlabMode is the slab compositing operator of spec.md §6
// ("slab_mode").
type SlabMode int

const (
	SlabMin SlabMode = iota
	SlabMax
	SlabMean
	SlabSum
)

// SlabState bundles the slab sampler configuration of spec.md §3.
type SlabState struct {
	NumSamples      int
	SpacingFraction float64
	Mode            SlabMode
	Trapezoid       bool
}

// Validate checks the parameter-error conditions of spec.md §7 ("slab
// count <1").
func (s SlabState) Validate() error {
	if s.NumSamples < 1 {
		return fmt.Errorf("convert: slab_number_of_slices must be >= 1, got %d", s.NumSamples)
	}
	if s.SpacingFraction <= 0 || s.SpacingFraction > 1 {
		return fmt.Errorf("convert: slab_slice_spacing_fraction must be in (0,1], got %v", s.SpacingFraction)
	}
	return nil
}

// CompositeSlab combines ns samples (each numComp components, laid out
// sample-major in samples) into out, per the configured Mode/Trapezoid,
// matching spec.md §4.5 step 4 (general path — one call per output
// voxel).
func (s SlabState) CompositeSlab(samples []float64, numComp int, out []float64) {
	ns := s.NumSamples
	if ns == 1 {
		copy(out, samples[:numComp])
		return
	}
	switch s.Mode {
	case SlabMin:
		copy(out, samples[:numComp])
		for si := 1; si < ns; si++ {
			for c := 0; c < numComp; c++ {
				if v := samples[si*numComp+c]; v < out[c] {
					out[c] = v
				}
			}
		}
	case SlabMax:
		copy(out, samples[:numComp])
		for si := 1; si < ns; si++ {
			for c := 0; c < numComp; c++ {
				if v := samples[si*numComp+c]; v > out[c] {
					out[c] = v
				}
			}
		}
	case SlabSum, SlabMean:
		for c := 0; c < numComp; c++ {
			out[c] = 0
		}
		for si := 0; si < ns; si++ {
			w := 1.0
			if s.Trapezoid && (si == 0 || si == ns-1) {
				w = 0.5
			}
			for c := 0; c < numComp; c++ {
				out[c] += w * samples[si*numComp+c]
			}
		}
		if s.Mode == SlabMean {
			denom := float64(ns - 1)
			if !s.Trapezoid {
				denom = float64(ns)
			}
			if denom <= 0 {
				denom = 1
			}
			for c := 0; c < numComp; c++ {
				out[c] /= denom
			}
		}
	}
}

// RowCompositor is the permute-path analogue of CompositeSlab, fused into
// the row loop (spec.md §4.6 step 4): init on the first sample, accumulate
// on the middle ones, finalize on the last.
type RowCompositor struct {
	state SlabState
	n     int
	acc   []float64
	sIdx  int
}

// NewRowCompositor prepares a compositor for a row of width rowLen with
// numComp components per voxel.
func NewRowCompositor(state SlabState, rowLen, numComp int) *RowCompositor {
	return &RowCompositor{state: state, n: rowLen * numComp, acc: make([]float64, rowLen*numComp)}
}

// AddSample folds in one slab sample's row (rowLen*numComp values).
func (c *RowCompositor) AddSample(sample []float64) {
	ns := c.state.NumSamples
	switch c.state.Mode {
	case SlabMin:
		if c.sIdx == 0 {
			copy(c.acc, sample)
		} else {
			for i, v := range sample {
				if v < c.acc[i] {
					c.acc[i] = v
				}
			}
		}
	case SlabMax:
		if c.sIdx == 0 {
			copy(c.acc, sample)
		} else {
			for i, v := range sample {
				if v > c.acc[i] {
					c.acc[i] = v
				}
			}
		}
	case SlabSum, SlabMean:
		w := 1.0
		if c.state.Trapezoid && (c.sIdx == 0 || c.sIdx == ns-1) {
			w = 0.5
		}
		if c.sIdx == 0 {
			for i, v := range sample {
				c.acc[i] = w * v
			}
		} else {
			for i, v := range sample {
				c.acc[i] += w * v
			}
		}
	}
	c.sIdx++
}

// Finalize applies the mean/trapezoid normalization (if any) and returns
// the composited row.
func (c *RowCompositor) Finalize() []float64 {
	if c.state.Mode == SlabMean {
		denom := float64(c.state.NumSamples - 1)
		if !c.state.Trapezoid {
			denom = float64(c.state.NumSamples)
		}
		if denom <= 0 {
			denom = 1
		}
		for i := range c.acc {
			c.acc[i] /= denom
		}
	}
	return c.acc
}
