// Package matrix implements the small fixed-size 3x3 and 4x4 matrix algebra
// the resampling engine needs in its per-voxel hot path: multiply, invert,
// identity, multiply-point, and the classification predicates used to
// detect identity/permutation/nearest-safe index matrices.
package matrix

import "math"

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul multiplies a*b.
func (a Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MulVec multiplies a*v.
func (a Mat3) MulVec(v [3]float64) [3]float64 {
	return [3]float64{
		a[0][0]*v[0] + a[0][1]*v[1] + a[0][2]*v[2],
		a[1][0]*v[0] + a[1][1]*v[1] + a[1][2]*v[2],
		a[2][0]*v[0] + a[2][1]*v[1] + a[2][2]*v[2],
	}
}

// Transpose returns the transpose of a.
func (a Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[j][i]
		}
	}
	return out
}

// Det returns the determinant of a.
func (a Mat3) Det() float64 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}

// Invert returns the inverse of a. It panics if a is singular. Besides
// direction matrices, Mat4.Invert calls it on the upper 3x3 of affine
// matrices, which may carry spacing scale factors.
func (a Mat3) Invert() Mat3 {
	det := a.Det()
	if det == 0 {
		panic("matrix: Mat3.Invert called on a singular matrix")
	}
	inv := 1.0 / det
	var out Mat3
	out[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) * inv
	out[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) * inv
	out[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) * inv
	out[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) * inv
	out[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) * inv
	out[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) * inv
	out[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) * inv
	out[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) * inv
	out[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) * inv
	return out
}

// Mat4 is a row-major 4x4 matrix.
type Mat4 [4][4]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// FromRotationTranslation builds a 4x4 matrix from a 3x3 rotation (applied
// as rows) and a translation column.
func FromRotationTranslation(rot Mat3, translate [3]float64) Mat4 {
	var m Mat4
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = rot[i][j]
		}
		m[i][3] = translate[i]
	}
	m[3] = [4]float64{0, 0, 0, 1}
	return m
}

// FromDiagonalOrigin builds the index->world matrix diag(spacing)*direction
// shifted by origin, i.e. world = direction^T * (spacing .* index) + origin
// when direction rows are the axis direction cosines. Concretely this
// returns M such that M*[i,j,k,1] = origin + i*spacing.X*dirX +
// j*spacing.Y*dirY + k*spacing.Z*dirZ, matching spec.md §4.4 step 1.
func FromDiagonalOrigin(spacing [3]float64, direction Mat3, origin [3]float64) Mat4 {
	var m Mat4
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			// column col of the output is spacing[col] * direction row `col`
			// transposed into world axis `row`.
			m[row][col] = direction[col][row] * spacing[col]
		}
		m[row][3] = origin[row]
	}
	m[3] = [4]float64{0, 0, 0, 1}
	return m
}

// Mul multiplies a*b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MultiplyPoint applies a to the homogeneous point p=(x,y,z,1) and returns
// the full 4-vector (no perspective divide — callers check IsAffine and
// divide explicitly per spec.md §4.5).
func (a Mat4) MultiplyPoint(p [3]float64) [4]float64 {
	x, y, z := p[0], p[1], p[2]
	return [4]float64{
		a[0][0]*x + a[0][1]*y + a[0][2]*z + a[0][3],
		a[1][0]*x + a[1][1]*y + a[1][2]*z + a[1][3],
		a[2][0]*x + a[2][1]*y + a[2][2]*z + a[2][3],
		a[3][0]*x + a[3][1]*y + a[3][2]*z + a[3][3],
	}
}

// Upper3 returns the upper-left 3x3 submatrix.
func (a Mat4) Upper3() Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = a[i][j]
		}
	}
	return m
}

// Translation returns the translation column (rows 0-2, column 3).
func (a Mat4) Translation() [3]float64 {
	return [3]float64{a[0][3], a[1][3], a[2][3]}
}

// Invert returns the inverse of a 4x4 affine (bottom row (0,0,0,1)) matrix,
// computed via the 3x3 block inverse: given M = [R t; 0 1],
// inv(M) = [inv(R) -inv(R)*t; 0 1].
func (a Mat4) Invert() Mat4 {
	r := a.Upper3().Invert()
	t := a.Translation()
	negRt := r.MulVec([3]float64{-t[0], -t[1], -t[2]})
	return FromRotationTranslation(r, negRt)
}

const epsilon = 1e-12

// IsIdentity reports whether a is (within floating tolerance) the identity
// matrix — spec.md §4.4's "identity" classification.
func (a Mat4) IsIdentity() bool {
	id := Identity4()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(a[i][j]-id[i][j]) > epsilon {
				return false
			}
		}
	}
	return true
}

// IsAffine reports whether the bottom row is exactly (0,0,0,1), with no
// tolerance — per spec.md §9 Open Question 3, this is an intentional exact
// comparison matching the original implementation's literal check.
func (a Mat4) IsAffine() bool {
	return a[3][0] == 0 && a[3][1] == 0 && a[3][2] == 0 && a[3][3] == 1
}

// IsPermutation reports whether the upper-left 3x3 of a has exactly one
// nonzero entry per row and per column and the bottom row is (0,0,0,1) —
// spec.md §4.4's "permutation+scale+translation" classification.
func (a Mat4) IsPermutation() bool {
	if !a.IsAffine() {
		return false
	}
	u := a.Upper3()
	var rowNonzero, colNonzero [3]int
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if u[i][j] != 0 {
				rowNonzero[i]++
				colNonzero[j]++
			}
		}
	}
	for i := 0; i < 3; i++ {
		if rowNonzero[i] != 1 || colNonzero[i] != 1 {
			return false
		}
	}
	return true
}

// IsNearestSafe reports whether a is a permutation matrix (see
// IsPermutation) whose diagonal scales and translations are exactly
// integer-valued when projected onto their axis — spec.md §4.4's
// "nearest-safe" classification, allowing a silent downgrade to nearest
// neighbor without changing results.
func (a Mat4) IsNearestSafe() bool {
	if !a.IsPermutation() {
		return false
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if a[i][j] != 0 && a[i][j] != math.Trunc(a[i][j]) {
				return false
			}
		}
		if a[i][3] != math.Trunc(a[i][3]) {
			return false
		}
	}
	return true
}
