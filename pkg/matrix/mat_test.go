package matrix

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestIdentityClassification(t *testing.T) {
	m := Identity4()
	if !m.IsIdentity() {
		t.Errorf("expected identity matrix to classify as identity")
	}
	if !m.IsPermutation() {
		t.Errorf("expected identity matrix to classify as permutation")
	}
	if !m.IsNearestSafe() {
		t.Errorf("expected identity matrix to classify as nearest-safe")
	}
}

func TestPermutationClassification(t *testing.T) {
	// swap X and Y axes
	m := Mat4{
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	if m.IsIdentity() {
		t.Errorf("swap matrix should not classify as identity")
	}
	if !m.IsPermutation() {
		t.Errorf("expected swap matrix to classify as permutation")
	}
	if !m.IsNearestSafe() {
		t.Errorf("expected swap matrix (integer) to classify as nearest-safe")
	}
}

func TestNonIntegerPermutationIsNotNearestSafe(t *testing.T) {
	m := Mat4{
		{2.5, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	if !m.IsPermutation() {
		t.Errorf("expected scaled diagonal matrix to classify as permutation")
	}
	if m.IsNearestSafe() {
		t.Errorf("non-integer scale should not be nearest-safe")
	}
}

func TestNonAffineIsNotPermutation(t *testing.T) {
	m := Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0.1, 1},
	}
	if m.IsAffine() {
		t.Errorf("expected exact bottom-row check to reject near-affine matrix")
	}
	if m.IsPermutation() {
		t.Errorf("non-affine matrix must not classify as permutation")
	}
}

func TestInvertRoundTrip(t *testing.T) {
	rot := Mat3{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}} // 90 degree rotation about Z
	m := FromRotationTranslation(rot, [3]float64{3, -2, 5})
	inv := m.Invert()
	product := m.Mul(inv)
	id := Identity4()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !almostEqual(product[i][j], id[i][j]) {
				t.Errorf("M*inv(M)[%d][%d] = %v, want %v", i, j, product[i][j], id[i][j])
			}
		}
	}
}

func TestMultiplyPointTranslation(t *testing.T) {
	m := FromRotationTranslation(Identity3(), [3]float64{10, 20, 30})
	p := m.MultiplyPoint([3]float64{1, 2, 3})
	want := [4]float64{11, 22, 33, 1}
	if p != want {
		t.Errorf("MultiplyPoint = %v, want %v", p, want)
	}
}

func TestFromDiagonalOriginMapsIndexToWorld(t *testing.T) {
	m := FromDiagonalOrigin([3]float64{2, 3, 4}, Identity3(), [3]float64{100, 200, 300})
	p := m.MultiplyPoint([3]float64{1, 1, 1})
	want := [4]float64{102, 203, 304, 1}
	if p != want {
		t.Errorf("FromDiagonalOrigin mapping = %v, want %v", p, want)
	}
}
