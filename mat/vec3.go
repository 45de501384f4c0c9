package mat

import (
	"math"
)

type Vec3 [3]float64

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

func (v Vec3) NormSq() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.NormSq())
}

func (v Vec3) Normalized() Vec3 {
	return v.Mul(1.0 / v.Norm())
}

func (v Vec3) Mul(a float64) Vec3 {
	return Vec3{v[0] * a, v[1] * a, v[2] * a}
}

func (v Vec3) Sub(a Vec3) Vec3 {
	return Vec3{v[0] - a[0], v[1] - a[1], v[2] - a[2]}
}

func (v Vec3) Add(a Vec3) Vec3 {
	return Vec3{v[0] + a[0], v[1] + a[1], v[2] + a[2]}
}

func (v Vec3) Dot(a Vec3) float64 {
	return v[0]*a[0] + v[1]*a[1] + v[2]*a[2]
}

func (v Vec3) Cross(a Vec3) Vec3 {
	return Vec3{
		v[1]*a[2] - v[2]*a[1],
		v[2]*a[0] - v[0]*a[2],
		v[0]*a[1] - v[1]*a[0],
	}
}

func (v Vec3) CrossNormSq(a Vec3) float64 {
	d := v.Dot(a)
	return v.NormSq()*a.NormSq() - d*d
}

// Dist returns Euclidean distance between two points.
func (v Vec3) Dist(a Vec3) float64 {
	return v.Sub(a).Norm()
}

func (v Vec3) Equal(a Vec3) bool {
	return v[0] == a[0] && v[1] == a[1] && v[2] == a[2]
}

// NearEqual returns true if every element differs less than tol.
func (v Vec3) NearEqual(a Vec3, tol float64) bool {
	for i := range v {
		if math.Abs(v[i]-a[i]) > tol {
			return false
		}
	}
	return true
}

func (v Vec3) IsFinite() bool {
	for _, e := range v {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}
