package registration

import (
	"fmt"
	"math"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// Normalize moves the centroid of the cloud to the origin and scales it
// isotropically so that the mean distance from the origin is sqrt(3).
// It returns the conditioned cloud and the conditioning transform.
func Normalize(ra pcd.Vec3RandomAccessor) (pcd.Vec3Slice, mat.Mat4, error) {
	c, err := pcd.Centroid(ra)
	if err != nil {
		return nil, mat.Mat4{}, err
	}
	n := ra.Len()
	var sum float64
	for i := 0; i < n; i++ {
		sum += ra.Vec3At(i).Sub(c).Norm()
	}
	mean := sum / float64(n)
	if !(mean > 0) {
		return nil, mat.Mat4{}, fmt.Errorf("%w: all points are coincident", ErrDegenerateSample)
	}
	s := math.Sqrt(3) / mean

	cond := mat.Scale(s, s, s).MulAffine(mat.Translate(-c[0], -c[1], -c[2]))
	return pcd.Transform(ra, cond), cond, nil
}

// Unnormalize converts trans estimated between conditioned clouds into
// the original coordinates.
func Unnormalize(trans, refCond, movingCond mat.Mat4) mat.Mat4 {
	return refCond.InvAffine().MulAffine(trans).MulAffine(movingCond)
}
