// Package stencil implements the run-length voxel mask contract of
// spec.md §4.3: row queries for a read-only input stencil, and an
// ascending-X single-writer-per-row insertion API for a generated output
// stencil. The storage layout itself is explicitly out of scope for this
// module (spec.md §1); RunStencil is a minimal reference implementation
// behind the interface.
package stencil

import (
	"fmt"
	"sync"
)

// Run is an inclusive [XLo,XHi] span of in-mask voxels on one row.
type Run struct {
	XLo, XHi int
}

// Stencil answers row queries: which X-runs of row (y,z) are in-mask.
type Stencil interface {
	RowRuns(y, z int) []Run
}

// Writer accepts run insertions for a generated output stencil. Per
// spec.md §4.3/§5, insertion for a given (y,z) row happens in strictly
// ascending X order from a single writer; concurrent tile execution must
// never interleave writes to the same row from two threads.
type Writer interface {
	InsertNextRun(xLo, xHi, y, z int) error
}

// RunStencil is an in-memory row-indexed run-length mask. Tile execution
// drives one goroutine per tile (pkg/reslice/tile_driver.go), and tiles
// split along Y/Z each own disjoint rows, but every tile's writer shares
// this one RunStencil's map — mu guards it against Go's "concurrent map
// writes" fatal error, which a bare map does not tolerate even when the
// writers touch different keys.
type RunStencil struct {
	mu   sync.Mutex
	runs map[[2]int][]Run
}

// NewRunStencil returns an empty RunStencil.
func NewRunStencil() *RunStencil {
	return &RunStencil{runs: make(map[[2]int][]Run)}
}

func (s *RunStencil) RowRuns(y, z int) []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[[2]int{y, z}]
}

// InsertNextRun appends a run to row (y,z). It returns an error if xLo
// would violate the ascending-X, non-overlapping contract — callers treat
// this as a per-tile soft error (spec.md §4.8), not a fatal one.
func (s *RunStencil) InsertNextRun(xLo, xHi, y, z int) error {
	if xHi < xLo {
		return fmt.Errorf("stencil: run [%d,%d] is inverted", xLo, xHi)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int{y, z}
	existing := s.runs[key]
	if len(existing) > 0 && xLo <= existing[len(existing)-1].XHi {
		return fmt.Errorf("stencil: run [%d,%d] at row (y=%d,z=%d) is not in ascending X order after [%d,%d]",
			xLo, xHi, y, z, existing[len(existing)-1].XLo, existing[len(existing)-1].XHi)
	}
	s.runs[key] = append(existing, Run{XLo: xLo, XHi: xHi})
	return nil
}

// ContainsX reports whether x falls within any run of row (y,z).
func ContainsX(s Stencil, x, y, z int) bool {
	for _, r := range s.RowRuns(y, z) {
		if x >= r.XLo && x <= r.XHi {
			return true
		}
		if x < r.XLo {
			break
		}
	}
	return false
}
