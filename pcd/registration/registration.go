// Package registration estimates rigid transforms between point clouds
// from noisy correspondences.
package registration

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
	"github.com/seqsense/pcreg/pcd/sac"
)

// Alignment is the result of the robust estimation.
type Alignment struct {
	// Transform maps moving points onto the reference frame.
	Transform mat.Mat4
	// Inliers are indices of the correspondences supporting Transform.
	Inliers   []int
	Iteration int
	Stats     sac.Stats
}

// Result is the alignment applied to the full clouds.
type Result struct {
	Alignment
	Aligned  pcd.Vec3Slice
	Combined pcd.Vec3Slice
}

type Registration struct {
	Config Config
	Logger *zap.SugaredLogger
}

func New(c Config, logger *zap.SugaredLogger) *Registration {
	return &Registration{Config: c, Logger: logger}
}

func (r *Registration) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}

// Align estimates the transform moving set.Moving onto set.Reference.
func (r *Registration) Align(ctx context.Context, set CorrespondenceSet) (*Alignment, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}
	estimator, _ := r.Config.estimator()
	log := r.logger()

	threshold := r.Config.InlierThreshold
	work := set
	cond := mat.Identity()
	if r.Config.Normalize {
		ref, c, err := Normalize(set.Reference)
		if err != nil {
			return nil, err
		}
		cond = c
		work = CorrespondenceSet{
			Reference: ref,
			Moving:    pcd.Transform(set.Moving, cond),
		}
		threshold *= cond[0]
	}

	model := &transformModel{set: work, estimator: estimator}
	s := sac.New(
		sac.NewRandomSampler(rand.New(rand.NewSource(r.Config.Seed))),
		model,
	)
	s.Threshold = threshold
	s.SampleSize = r.Config.sampleSize(work.Len())
	s.Gate = r.Config.SupportGate
	s.MinInlierRate = r.Config.MinInlierRate
	s.Refit = r.Config.Refit
	s.Workers = r.Config.Workers
	s.Logger = log

	if err := s.Compute(ctx, r.Config.MaxIterations); err != nil {
		return nil, err
	}
	best := s.Best()
	trans := best.Coefficients.(*transformCoefficients).Transform()
	inliers := best.Inliers

	if r.Config.FinalRefit {
		refined, err := model.Fit(inliers)
		if err != nil {
			log.Debugw("Final refit failed", "inliers", len(inliers), "error", err)
		} else {
			trans = refined.(*transformCoefficients).Transform()
			inliers = refined.Inliers(threshold)
		}
	}
	if r.Config.Normalize {
		trans = Unnormalize(trans, cond, cond)
	}

	log.Infow("Registration finished",
		"estimator", r.Config.Estimator,
		"pairs", set.Len(),
		"inliers", len(inliers),
		"iteration", best.Iteration,
	)
	return &Alignment{
		Transform: trans,
		Inliers:   inliers,
		Iteration: best.Iteration,
		Stats:     s.Stats(),
	}, nil
}

// Register aligns sceneNew onto sceneRef using the correspondences and
// returns the transformed cloud and the concatenation of both clouds.
func (r *Registration) Register(ctx context.Context, sceneRef, sceneNew pcd.Vec3RandomAccessor, set CorrespondenceSet) (*Result, error) {
	if sceneRef == nil || sceneNew == nil || sceneRef.Len() == 0 || sceneNew.Len() == 0 {
		return nil, pcd.ErrEmptyInput
	}
	a, err := r.Align(ctx, set)
	if err != nil {
		return nil, err
	}
	aligned := pcd.Transform(sceneNew, a.Transform)
	return &Result{
		Alignment: *a,
		Aligned:   aligned,
		Combined:  pcd.Concat(sceneRef, aligned),
	}, nil
}
