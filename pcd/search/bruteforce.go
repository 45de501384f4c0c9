package search

import (
	"math"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

type bruteForce struct {
	ra pcd.Vec3RandomAccessor
}

// NewBruteForce returns a Searcher scanning every point on each query.
func NewBruteForce(ra pcd.Vec3RandomAccessor) Searcher {
	return &bruteForce{ra: ra}
}

func (b *bruteForce) Radius(p mat.Vec3, r float64) []Neighbor {
	var out []Neighbor
	rSq := r * r
	for i := 0; i < b.ra.Len(); i++ {
		if dSq := b.ra.Vec3At(i).Sub(p).NormSq(); dSq <= rSq {
			out = append(out, Neighbor{ID: i, Dist: math.Sqrt(dSq)})
		}
	}
	return out
}
