// Package regiongrow extracts a connected region of a point cloud by
// growing it from seed points.
package regiongrow

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/seqsense/pcreg/pcd"
	"github.com/seqsense/pcreg/pcd/filter"
	"github.com/seqsense/pcreg/pcd/search"
)

var (
	// ErrInvalidParameter is returned on a configuration which can not grow a region.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrRoundLimit is returned when the region is still growing after MaxRounds.
	ErrRoundLimit = errors.New("round limit exceeded")
)

// Result is a grown region.
type Result struct {
	// Segment is the points of SegmentIndices.
	Segment pcd.Vec3Slice
	// Cluster is the sorted indices of all scene points reached by the growth.
	Cluster []int
	// SegmentIndices is the subset of Cluster above the height threshold.
	SegmentIndices []int
	Rounds         int
}

type Grower struct {
	Config Config
	// NewSearcher builds the neighbour index of the scene.
	// If nil, the index selected by Config.Searcher is used.
	NewSearcher func(pcd.Vec3RandomAccessor) (search.Searcher, error)
	Logger      *zap.SugaredLogger
}

func New(c Config, logger *zap.SugaredLogger) *Grower {
	return &Grower{Config: c, Logger: logger}
}

func (g *Grower) logger() *zap.SugaredLogger {
	if g.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return g.Logger
}

func (g *Grower) searcher(scene pcd.Vec3RandomAccessor) (search.Searcher, error) {
	switch {
	case g.NewSearcher != nil:
		return g.NewSearcher(scene)
	case g.Config.Searcher == SearcherKDTree:
		return search.NewKDTreeSearcher(scene)
	default:
		return search.NewVoxelGrid(scene, g.Config.SearchRadius)
	}
}

// Grow collects scene points within SearchRadius of the seeds. Neighbours
// farther than GrowSpeed*SearchRadius and above HeightThreshold are the
// seeds of the next round. Growth stops when a round adds no point.
// Points below the threshold are kept in the cluster but not in the segment.
func (g *Grower) Grow(ctx context.Context, scene, seeds pcd.Vec3RandomAccessor) (*Result, error) {
	if scene == nil || scene.Len() == 0 {
		return nil, fmt.Errorf("scene: %w", pcd.ErrEmptyInput)
	}
	if seeds == nil || seeds.Len() == 0 {
		return nil, fmt.Errorf("seeds: %w", pcd.ErrEmptyInput)
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}
	s, err := g.searcher(scene)
	if err != nil {
		return nil, err
	}
	log := g.logger()

	radius := g.Config.SearchRadius
	growDist := g.Config.GrowSpeed * radius
	above := filter.HeightAbove(g.Config.HeightThreshold)

	n := scene.Len()
	inCluster := make([]bool, n)
	seedRound := make([]int, n)
	cluster := make([]int, 0, initialSliceCap(n))

	current := seeds
	var rounds int
	for {
		if g.Config.MaxRounds > 0 && rounds >= g.Config.MaxRounds {
			return nil, fmt.Errorf("%w: %d rounds, %d points", ErrRoundLimit, rounds, len(cluster))
		}
		rounds++

		neighbors, err := search.RadiusSearch(ctx, s, current, radius, g.Config.Workers)
		if err != nil {
			return nil, err
		}
		var added int
		var next []int
		for _, ns := range neighbors {
			for _, nb := range ns {
				if !inCluster[nb.ID] {
					inCluster[nb.ID] = true
					cluster = append(cluster, nb.ID)
					added++
				}
				if nb.Dist > growDist && seedRound[nb.ID] != rounds {
					seedRound[nb.ID] = rounds
					next = append(next, nb.ID)
				}
			}
		}
		sort.Ints(next)
		next = selectIndices(scene, next, above)

		log.Debugw("Region grow round",
			"round", rounds,
			"seeds", current.Len(),
			"added", added,
			"cluster", len(cluster),
			"nextSeeds", len(next),
		)
		if added == 0 || len(next) == 0 {
			break
		}
		current = pcd.NewIndiceVec3RandomAccessor(scene, next)
	}

	sort.Ints(cluster)
	segIDs := selectIndices(scene, cluster, above)
	seg := pcd.Copy(pcd.NewIndiceVec3RandomAccessor(scene, segIDs))

	log.Infow("Region grow finished",
		"rounds", rounds,
		"cluster", len(cluster),
		"segment", len(segIDs),
	)
	return &Result{
		Segment:        seg,
		Cluster:        cluster,
		SegmentIndices: segIDs,
		Rounds:         rounds,
	}, nil
}

// selectIndices returns the elements of ids whose point passes f.
func selectIndices(scene pcd.Vec3RandomAccessor, ids []int, f filter.Filter) []int {
	local := f.Filter(pcd.NewIndiceVec3RandomAccessor(scene, ids))
	out := make([]int, len(local))
	for i, l := range local {
		out[i] = ids[l]
	}
	return out
}

func initialSliceCap(n int) int {
	const c = 8192
	if n < c {
		return n
	}
	return c
}
