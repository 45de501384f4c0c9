package registration

import (
	"fmt"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// CorrespondenceSet pairs points by index: Reference.Vec3At(i) and
// Moving.Vec3At(i) are the same physical feature.
type CorrespondenceSet struct {
	Reference pcd.Vec3RandomAccessor
	Moving    pcd.Vec3RandomAccessor
}

func (s CorrespondenceSet) Len() int {
	if s.Reference == nil {
		return 0
	}
	return s.Reference.Len()
}

func (s CorrespondenceSet) Validate() error {
	if s.Reference == nil || s.Moving == nil || s.Reference.Len() == 0 || s.Moving.Len() == 0 {
		return fmt.Errorf("correspondence set: %w", pcd.ErrEmptyInput)
	}
	if s.Reference.Len() != s.Moving.Len() {
		return fmt.Errorf("correspondence set: %w: %d reference, %d moving",
			ErrSizeMismatch, s.Reference.Len(), s.Moving.Len())
	}
	return nil
}

// Residual returns distance between the i-th reference point and
// the i-th moving point transformed by trans.
func (s CorrespondenceSet) Residual(i int, trans mat.Mat4) float64 {
	return trans.TransformAffine(s.Moving.Vec3At(i)).Dist(s.Reference.Vec3At(i))
}

// Subset returns pairs of the given indices.
func (s CorrespondenceSet) Subset(ids []int) CorrespondenceSet {
	return CorrespondenceSet{
		Reference: pcd.NewIndiceVec3RandomAccessor(s.Reference, ids),
		Moving:    pcd.NewIndiceVec3RandomAccessor(s.Moving, ids),
	}
}

// Estimator computes the rigid transform moving from onto to.
type Estimator interface {
	Estimate(from, to pcd.Vec3RandomAccessor) (mat.Mat4, error)
}

func checkPairs(from, to pcd.Vec3RandomAccessor) (int, error) {
	n := from.Len()
	if n == 0 || to.Len() == 0 {
		return 0, pcd.ErrEmptyInput
	}
	if to.Len() != n {
		return 0, fmt.Errorf("%w: %d from, %d to", ErrSizeMismatch, n, to.Len())
	}
	return n, nil
}
