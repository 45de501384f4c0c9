package mat

import (
	"math"
)

// Mat4 is a 4x4 homogeneous matrix stored in column-major order.
// Element of row i, column j is m[4*j+i].
type Mat4 [16]float64

func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rigid builds a transform from row-major rotation r and translation t.
func Rigid(r [3][3]float64, t Vec3) Mat4 {
	return Mat4{
		r[0][0], r[1][0], r[2][0], 0,
		r[0][1], r[1][1], r[2][1], 0,
		r[0][2], r[1][2], r[2][2], 0,
		t[0], t[1], t[2], 1,
	}
}

func (m Mat4) At(row, col int) float64 {
	return m[4*col+row]
}

func (m Mat4) Mul(a Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[4*k+i] * a[4*j+k]
			}
			out[4*j+i] = sum
		}
	}
	return out
}

// MulAffine multiplies two affine matrices assuming the last rows are (0, 0, 0, 1).
func (m Mat4) MulAffine(a Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			sum := m[4*0+i]*a[4*j+0] + m[4*1+i]*a[4*j+1] + m[4*2+i]*a[4*j+2]
			if j == 3 {
				sum += m[4*3+i]
			}
			out[4*j+i] = sum
		}
	}
	out[15] = 1
	return out
}

// Rotation returns the upper-left 3x3 block in row-major order.
func (m Mat4) Rotation() [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[4*j+i]
		}
	}
	return r
}

func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Det3 returns determinant of the upper-left 3x3 block.
func (m Mat4) Det3() float64 {
	r := m.Rotation()
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// InvAffine returns inverse of the affine matrix.
// The upper-left 3x3 block must be non-singular.
func (m Mat4) InvAffine() Mat4 {
	r := m.Rotation()
	det := m.Det3()
	var inv [3][3]float64
	inv[0][0] = (r[1][1]*r[2][2] - r[1][2]*r[2][1]) / det
	inv[0][1] = (r[0][2]*r[2][1] - r[0][1]*r[2][2]) / det
	inv[0][2] = (r[0][1]*r[1][2] - r[0][2]*r[1][1]) / det
	inv[1][0] = (r[1][2]*r[2][0] - r[1][0]*r[2][2]) / det
	inv[1][1] = (r[0][0]*r[2][2] - r[0][2]*r[2][0]) / det
	inv[1][2] = (r[0][2]*r[1][0] - r[0][0]*r[1][2]) / det
	inv[2][0] = (r[1][0]*r[2][1] - r[1][1]*r[2][0]) / det
	inv[2][1] = (r[0][1]*r[2][0] - r[0][0]*r[2][1]) / det
	inv[2][2] = (r[0][0]*r[1][1] - r[0][1]*r[1][0]) / det

	t := m.Translation()
	var it Vec3
	for i := 0; i < 3; i++ {
		it[i] = -(inv[i][0]*t[0] + inv[i][1]*t[1] + inv[i][2]*t[2])
	}
	return Rigid(inv, it)
}

// InvRigid returns inverse of the rigid transform using transposed rotation.
func (m Mat4) InvRigid() Mat4 {
	r := m.Rotation()
	var rt [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rt[i][j] = r[j][i]
		}
	}
	t := m.Translation()
	var it Vec3
	for i := 0; i < 3; i++ {
		it[i] = -(rt[i][0]*t[0] + rt[i][1]*t[1] + rt[i][2]*t[2])
	}
	return Rigid(rt, it)
}

// IsRigid returns true if the rotation block is orthonormal with determinant +1
// and the last row is (0, 0, 0, 1), within tol.
func (m Mat4) IsRigid(tol float64) bool {
	if math.Abs(m[3]) > tol || math.Abs(m[7]) > tol || math.Abs(m[11]) > tol || math.Abs(m[15]-1) > tol {
		return false
	}
	r := m.Rotation()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var d float64
			for k := 0; k < 3; k++ {
				d += r[k][i] * r[k][j]
			}
			if i == j {
				d--
			}
			if math.Abs(d) > tol {
				return false
			}
		}
	}
	return math.Abs(m.Det3()-1) <= tol
}

// NearEqual returns true if every element differs less than tol.
func (m Mat4) NearEqual(a Mat4, tol float64) bool {
	for i := range m {
		if math.Abs(m[i]-a[i]) > tol {
			return false
		}
	}
	return true
}

func (m Mat4) IsFinite() bool {
	for _, e := range m {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}

func (m Mat4) TransformAffine(a Vec3) Vec3 {
	var out Vec3
	out[0] = m[4*0+0]*a[0] + m[4*1+0]*a[1] + m[4*2+0]*a[2] + m[4*3+0]
	out[1] = m[4*0+1]*a[0] + m[4*1+1]*a[1] + m[4*2+1]*a[2] + m[4*3+1]
	out[2] = m[4*0+2]*a[0] + m[4*1+2]*a[1] + m[4*2+2]*a[2] + m[4*3+2]
	return out
}
