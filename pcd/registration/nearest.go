package registration

import (
	"fmt"

	"github.com/seqsense/pcreg/pcd"
	"github.com/seqsense/pcreg/pcd/search"
)

// NearestCorrespondences pairs each moving point with the nearest reference
// point within maxDist. Moving points without a reference point in range
// are dropped.
func NearestCorrespondences(ref, moving pcd.Vec3RandomAccessor, maxDist float64) (CorrespondenceSet, error) {
	if ref == nil || moving == nil || ref.Len() == 0 || moving.Len() == 0 {
		return CorrespondenceSet{}, fmt.Errorf("nearest correspondences: %w", pcd.ErrEmptyInput)
	}
	if !(maxDist > 0) {
		return CorrespondenceSet{}, fmt.Errorf("nearest correspondences: %w: distance %g", ErrInvalidParameter, maxDist)
	}
	kdt, err := search.NewKDTree(ref)
	if err != nil {
		return CorrespondenceSet{}, err
	}

	var refIDs, movIDs []int
	for i := 0; i < moving.Len(); i++ {
		nb, ok := kdt.Nearest(moving.Vec3At(i), maxDist)
		if !ok {
			continue
		}
		refIDs = append(refIDs, nb.ID)
		movIDs = append(movIDs, i)
	}
	return CorrespondenceSet{
		Reference: pcd.Copy(pcd.NewIndiceVec3RandomAccessor(ref, refIDs)),
		Moving:    pcd.Copy(pcd.NewIndiceVec3RandomAccessor(moving, movIDs)),
	}, nil
}
