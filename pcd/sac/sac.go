// Package sac implements random sample consensus over index-addressed models.
package sac

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seqsense/pcreg/pcd"
)

var (
	// ErrConsensusFailure is returned when no hypothesis was accepted
	// within the iteration budget.
	ErrConsensusFailure = errors.New("consensus not reached")
	// ErrInvalidParameter is returned on a parameter which makes the search impossible.
	ErrInvalidParameter = errors.New("invalid parameter")
)

type Sampler interface {
	Sample(n, k int) []int
}

type Model interface {
	// NumRange returns the allowed sample size. Negative max means no upper bound.
	NumRange() (min, max int)
	// Len returns the population size.
	Len() int
	Fit([]int) (ModelCoefficients, error)
}

type ModelCoefficients interface {
	// Inliers returns indices of the population whose residual is below the threshold.
	Inliers(float64) []int
}

// Hypothesis is a model fitted at one iteration.
type Hypothesis struct {
	Coefficients ModelCoefficients
	Inliers      []int
	Iteration    int
}

func (h *Hypothesis) InlierCount() int {
	return len(h.Inliers)
}

// better returns true if h wins against o.
// Ties are resolved to the lowest iteration.
func (h *Hypothesis) better(o *Hypothesis) bool {
	if o == nil {
		return true
	}
	if h.InlierCount() != o.InlierCount() {
		return h.InlierCount() > o.InlierCount()
	}
	return h.Iteration < o.Iteration
}

type Stats struct {
	Iterations int
	Accepted   int
	Rejected   int
	Failed     int
}

func (s *Stats) add(a Stats) {
	s.Iterations += a.Iterations
	s.Accepted += a.Accepted
	s.Rejected += a.Rejected
	s.Failed += a.Failed
}

type SAC struct {
	Sampler Sampler
	Model   Model

	// Threshold is the residual below which a sample is an inlier.
	Threshold float64
	// SampleSize is the number of indices drawn per iteration.
	// Zero uses the minimum of Model.NumRange.
	SampleSize int
	// Gate enables rejection of hypotheses with less than
	// SampleSize*MinInlierRate inliers.
	Gate          bool
	MinInlierRate float64
	// Refit refits accepted hypotheses on their own inliers.
	Refit bool
	// Workers is the number of goroutines evaluating hypotheses.
	// Zero or negative uses the number of CPUs.
	Workers int

	Logger *zap.SugaredLogger

	best  *Hypothesis
	stats Stats
}

func New(s Sampler, m Model) *SAC {
	return &SAC{Sampler: s, Model: m}
}

func (s *SAC) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}

func (s *SAC) sampleSize() int {
	if s.SampleSize > 0 {
		return s.SampleSize
	}
	min, _ := s.Model.NumRange()
	return min
}

func (s *SAC) validate(n int) error {
	pop := s.Model.Len()
	if pop == 0 {
		return fmt.Errorf("sac: population: %w", pcd.ErrEmptyInput)
	}
	if n <= 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidParameter, n)
	}
	if !(s.Threshold > 0) {
		return fmt.Errorf("%w: threshold %g", ErrInvalidParameter, s.Threshold)
	}
	k := s.sampleSize()
	min, max := s.Model.NumRange()
	if k < min || (max >= 0 && k > max) || k > pop {
		return fmt.Errorf("%w: sample size %d out of range [%d, %d] for %d samples",
			ErrInvalidParameter, k, min, max, pop)
	}
	if s.Gate && s.MinInlierRate < 0 {
		return fmt.Errorf("%w: min inlier rate %g", ErrInvalidParameter, s.MinInlierRate)
	}
	return nil
}

type job struct {
	iteration int
	ids       []int
}

type partial struct {
	best  *Hypothesis
	stats Stats
}

// Compute runs n iterations and keeps the hypothesis with the most inliers.
// Samples are drawn in iteration order from the Sampler, so the result
// does not depend on the number of workers.
func (s *SAC) Compute(ctx context.Context, n int) error {
	s.best, s.stats = nil, Stats{}
	if err := s.validate(n); err != nil {
		return err
	}
	pop, k := s.Model.Len(), s.sampleSize()

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan job)
	results := make([]partial, workers)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			j := job{iteration: i, ids: s.Sampler.Sample(pop, k)}
			select {
			case jobs <- j:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := range results {
		r := &results[w]
		g.Go(func() error {
			for j := range jobs {
				h := s.iterate(j, k, &r.stats)
				if h != nil && h.better(r.best) {
					r.best = h
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		s.stats.add(r.stats)
		if r.best != nil && r.best.better(s.best) {
			s.best = r.best
		}
	}

	log := s.logger()
	if s.best == nil {
		log.Warnw("No hypothesis accepted",
			"iterations", s.stats.Iterations,
			"rejected", s.stats.Rejected,
			"failed", s.stats.Failed,
		)
		return fmt.Errorf("%w: %d iterations, %d rejected, %d failed",
			ErrConsensusFailure, s.stats.Iterations, s.stats.Rejected, s.stats.Failed)
	}
	log.Debugw("Best hypothesis selected",
		"iteration", s.best.Iteration,
		"inliers", s.best.InlierCount(),
		"accepted", s.stats.Accepted,
		"rejected", s.stats.Rejected,
		"failed", s.stats.Failed,
	)
	return nil
}

func (s *SAC) iterate(j job, k int, stats *Stats) *Hypothesis {
	stats.Iterations++

	coeff, err := s.Model.Fit(j.ids)
	if err != nil {
		stats.Failed++
		s.logger().Debugw("Fit failed", "iteration", j.iteration, "error", err)
		return nil
	}
	inliers := coeff.Inliers(s.Threshold)
	if s.Gate && float64(len(inliers)) < float64(k)*s.MinInlierRate {
		stats.Rejected++
		return nil
	}
	if s.Refit {
		refined, err := s.Model.Fit(inliers)
		if err != nil {
			stats.Failed++
			s.logger().Debugw("Refit failed", "iteration", j.iteration, "inliers", len(inliers), "error", err)
			return nil
		}
		coeff = refined
	}
	stats.Accepted++
	return &Hypothesis{
		Coefficients: coeff,
		Inliers:      inliers,
		Iteration:    j.iteration,
	}
}

// Best returns the selected hypothesis of the last Compute.
func (s *SAC) Best() *Hypothesis {
	return s.best
}

func (s *SAC) Coefficients() ModelCoefficients {
	if s.best == nil {
		return nil
	}
	return s.best.Coefficients
}

func (s *SAC) Stats() Stats {
	return s.stats
}
