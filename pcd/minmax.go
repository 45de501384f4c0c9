package pcd

import (
	"math"

	"github.com/seqsense/pcreg/mat"
)

func MinMaxVec3(ra Vec3RandomAccessor) (mat.Vec3, mat.Vec3, error) {
	n := ra.Len()
	if n == 0 {
		return mat.Vec3{}, mat.Vec3{}, ErrEmptyInput
	}
	min := mat.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	max := mat.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
	for j := 0; j < n; j++ {
		v := ra.Vec3At(j)
		for i := range v {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max, nil
}
