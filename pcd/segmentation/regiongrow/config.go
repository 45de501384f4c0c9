package regiongrow

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

const (
	defaultSearchRadius = 0.08
	defaultGrowSpeed    = 0.5
)

// SearcherKind selects the neighbour index of the scene.
type SearcherKind string

const (
	// SearcherVoxelGrid indexes the scene in voxels of SearchRadius.
	SearcherVoxelGrid SearcherKind = "voxel_grid"
	// SearcherKDTree indexes the scene in a k-d tree.
	SearcherKDTree SearcherKind = "kdtree"
)

type Config struct {
	// SearchRadius is the radius of the neighbour query around each seed.
	SearchRadius float64 `yaml:"search_radius"`
	// GrowSpeed is the ratio of SearchRadius beyond which a neighbour
	// becomes a seed of the next round.
	GrowSpeed float64 `yaml:"grow_speed"`
	// HeightThreshold is the Z coordinate which seeds and segment points must exceed.
	HeightThreshold float64 `yaml:"height_threshold"`
	// MaxRounds limits the number of rounds. Zero means unlimited.
	MaxRounds int `yaml:"max_rounds"`
	// Workers is the number of goroutines for the neighbour queries.
	// Zero uses the number of CPUs.
	Workers int `yaml:"workers"`
	// Searcher is the neighbour index. Empty means SearcherVoxelGrid.
	Searcher SearcherKind `yaml:"searcher"`
}

func DefaultConfig() Config {
	return Config{
		SearchRadius: defaultSearchRadius,
		GrowSpeed:    defaultGrowSpeed,
	}
}

func (c Config) Validate() error {
	var err error
	if !(c.SearchRadius > 0) || math.IsInf(c.SearchRadius, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: search_radius must be positive: %g", ErrInvalidParameter, c.SearchRadius))
	}
	if !(c.GrowSpeed >= 0) {
		err = multierr.Append(err, fmt.Errorf("%w: grow_speed must not be negative: %g", ErrInvalidParameter, c.GrowSpeed))
	}
	if math.IsNaN(c.HeightThreshold) {
		err = multierr.Append(err, fmt.Errorf("%w: height_threshold is NaN", ErrInvalidParameter))
	}
	switch c.Searcher {
	case "", SearcherVoxelGrid, SearcherKDTree:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown searcher %q", ErrInvalidParameter, c.Searcher))
	}
	if c.MaxRounds < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: max_rounds must not be negative: %d", ErrInvalidParameter, c.MaxRounds))
	}
	return err
}
