package transform

import (
	"math"
	"testing"

	"mrireslice/pkg/matrix"
)

func TestAffineRoundTrip(t *testing.T) {
	m := matrix.FromRotationTranslation(matrix.Identity3(), [3]float64{1, 2, 3})
	a := NewAffine(m)
	p := Point{5, 6, 7}
	fwd := a.Forward(p)
	back := a.Inverse(fwd)
	for i := 0; i < 3; i++ {
		if math.Abs(back[i]-p[i]) > 1e-9 {
			t.Errorf("round trip mismatch at axis %d: got %v want %v", i, back[i], p[i])
		}
	}
}

func TestAffineIsHomogeneous(t *testing.T) {
	if !Identity().IsHomogeneous() {
		t.Errorf("expected Affine to be homogeneous")
	}
}

func TestWarpIsNotHomogeneous(t *testing.T) {
	w := NewWarp([3]float64{0.2, 0.2, 0.2}, [3]float64{0.1, 0.1, 0.1})
	if w.IsHomogeneous() {
		t.Errorf("expected Warp to be non-homogeneous")
	}
}

func TestWarpInverseConverges(t *testing.T) {
	w := NewWarp([3]float64{0.3, 0.3, 0.3}, [3]float64{0.05, 0.05, 0.05})
	p := Point{10, 12, -4}
	fwd := w.Forward(p)
	back := w.Inverse(fwd)
	for i := 0; i < 3; i++ {
		if math.Abs(back[i]-p[i]) > 1e-6 {
			t.Errorf("warp inverse mismatch at axis %d: got %v want %v", i, back[i], p[i])
		}
	}
}
