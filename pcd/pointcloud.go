package pcd

import (
	"github.com/seqsense/pcreg/mat"
)

type transformedVec3RandomAccessor struct {
	Vec3RandomAccessor
	trans mat.Mat4
}

func (a *transformedVec3RandomAccessor) Vec3At(i int) mat.Vec3 {
	return a.trans.TransformAffine(a.Vec3RandomAccessor.Vec3At(i))
}

// NewTransformedVec3RandomAccessor returns a view of ra with trans applied on access.
func NewTransformedVec3RandomAccessor(ra Vec3RandomAccessor, trans mat.Mat4) Vec3RandomAccessor {
	return &transformedVec3RandomAccessor{
		Vec3RandomAccessor: ra,
		trans:              trans,
	}
}

// Transform returns a new cloud with trans applied to every point.
// The input is not modified.
func Transform(ra Vec3RandomAccessor, trans mat.Mat4) Vec3Slice {
	return Copy(NewTransformedVec3RandomAccessor(ra, trans))
}

// Centroid returns arithmetic mean of the points.
func Centroid(ra Vec3RandomAccessor) (mat.Vec3, error) {
	n := ra.Len()
	if n == 0 {
		return mat.Vec3{}, ErrEmptyInput
	}
	var sum mat.Vec3
	for i := 0; i < n; i++ {
		sum = sum.Add(ra.Vec3At(i))
	}
	return sum.Mul(1 / float64(n)), nil
}
