// Package search provides radius neighbour queries over point clouds.
package search

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// ErrNonFinitePoint is returned when a cloud to be indexed contains NaN or Inf.
var ErrNonFinitePoint = errors.New("non-finite point")

// Neighbor is a point found by a query.
type Neighbor struct {
	ID   int
	Dist float64
}

// Searcher finds points of the indexed cloud within a radius.
// Order of the returned neighbors is implementation defined.
type Searcher interface {
	Radius(p mat.Vec3, r float64) []Neighbor
}

// RadiusSearch runs Radius for every query point and returns the results
// in the query order. Queries are distributed over workers goroutines;
// workers <= 0 uses the number of CPUs.
func RadiusSearch(ctx context.Context, s Searcher, queries pcd.Vec3RandomAccessor, r float64, workers int) ([][]Neighbor, error) {
	n := queries.Len()
	out := make([][]Neighbor, n)
	if n == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for begin := 0; begin < n; begin += chunk {
		begin, end := begin, begin+chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := begin; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = s.Radius(queries.Vec3At(i), r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
