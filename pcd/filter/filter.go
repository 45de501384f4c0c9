// Package filter selects points of a cloud by predicate.
package filter

import (
	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// Filter returns indices of the points to keep in ascending order.
type Filter interface {
	Filter(pcd.Vec3RandomAccessor) []int
}

// Func is a Filter keeping points for which it returns true.
type Func func(mat.Vec3) bool

func (f Func) Filter(ra pcd.Vec3RandomAccessor) []int {
	out := make([]int, 0, ra.Len())
	for i := 0; i < ra.Len(); i++ {
		if f(ra.Vec3At(i)) {
			out = append(out, i)
		}
	}
	return out
}

// HeightAbove keeps points whose Z is strictly greater than z.
func HeightAbove(z float64) Func {
	return func(p mat.Vec3) bool {
		return p[2] > z
	}
}

// PassThrough keeps points inside the axis aligned box [min, max].
func PassThrough(min, max mat.Vec3) Func {
	return func(p mat.Vec3) bool {
		for i := range p {
			if p[i] < min[i] || max[i] < p[i] {
				return false
			}
		}
		return true
	}
}

// And keeps points passing all of fs.
func And(fs ...Func) Func {
	return func(p mat.Vec3) bool {
		for _, f := range fs {
			if !f(p) {
				return false
			}
		}
		return true
	}
}
