package search

import (
	"fmt"
	"math"

	pcmat "github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/storage/kdtree"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// rangeMargin enlarges float32 queries so that points on the boundary
// are not lost by rounding. Results are filtered again in float64.
const rangeMargin = 1e-4

// KDTree indexes a cloud in a k-d tree of single precision points.
type KDTree struct {
	ra  pcd.Vec3RandomAccessor
	kdt *kdtree.KDTree
}

// NewKDTree builds a k-d tree over ra.
func NewKDTree(ra pcd.Vec3RandomAccessor) (*KDTree, error) {
	n := ra.Len()
	if n == 0 {
		return nil, fmt.Errorf("kdtree: %w", pcd.ErrEmptyInput)
	}
	base := make(pc.Vec3Slice, n)
	for i := range base {
		p := ra.Vec3At(i)
		if !p.IsFinite() {
			return nil, fmt.Errorf("kdtree: %w: point %d", ErrNonFinitePoint, i)
		}
		base[i] = toFloat32(p)
	}
	return &KDTree{ra: ra, kdt: kdtree.New(base)}, nil
}

// NewKDTreeSearcher is NewKDTree returning the Searcher interface.
func NewKDTreeSearcher(ra pcd.Vec3RandomAccessor) (Searcher, error) {
	return NewKDTree(ra)
}

func (k *KDTree) Radius(p mat.Vec3, r float64) []Neighbor {
	ns := k.kdt.Range(toFloat32(p), float32(r*(1+rangeMargin)+rangeMargin))
	out := make([]Neighbor, 0, len(ns))
	rSq := r * r
	for _, n := range ns {
		if dSq := k.ra.Vec3At(n.ID).Sub(p).NormSq(); dSq <= rSq {
			out = append(out, Neighbor{ID: n.ID, Dist: math.Sqrt(dSq)})
		}
	}
	return out
}

// Nearest returns the nearest point within maxDist.
// ok is false if there is no point in the range.
func (k *KDTree) Nearest(p mat.Vec3, maxDist float64) (Neighbor, bool) {
	n := k.kdt.Nearest(toFloat32(p), float32(maxDist))
	if n.ID < 0 {
		return Neighbor{}, false
	}
	return Neighbor{ID: n.ID, Dist: k.ra.Vec3At(n.ID).Dist(p)}, true
}

func toFloat32(v mat.Vec3) pcmat.Vec3 {
	return pcmat.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
