package registration

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// noisyPairs generates nInlier pairs with moving = trans^-1(reference) + noise
// followed by nOutlier unrelated pairs.
func noisyPairs(rng *rand.Rand, trans mat.Mat4, nInlier, nOutlier int, sigma float64) CorrespondenceSet {
	inv := trans.InvRigid()
	uniform := func(a float64) mat.Vec3 {
		return mat.Vec3{
			(rng.Float64()*2 - 1) * a,
			(rng.Float64()*2 - 1) * a,
			(rng.Float64()*2 - 1) * a,
		}
	}
	var ref, moving pcd.Vec3Slice
	for i := 0; i < nInlier; i++ {
		p := uniform(1)
		noise := mat.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Mul(sigma)
		ref = append(ref, p)
		moving = append(moving, inv.TransformAffine(p).Add(noise))
	}
	for i := 0; i < nOutlier; i++ {
		ref = append(ref, uniform(10))
		moving = append(moving, uniform(10))
	}
	return CorrespondenceSet{Reference: ref, Moving: moving}
}

func TestRegistration_Cube(t *testing.T) {
	ref := cubeCorners()
	gen := mat.Translate(1, 0, 0).MulAffine(mat.Rotate(0, 0, 1, math.Pi/2))
	moving := pcd.Transform(ref, gen)

	for name, c := range map[string]Config{
		"Default":    DefaultConfig(),
		"Normalized": func() Config { c := DefaultConfig(); c.Normalize = true; return c }(),
	} {
		c := c
		t.Run(name, func(t *testing.T) {
			r := New(c, zaptest.NewLogger(t).Sugar())
			res, err := r.Register(context.Background(), ref, moving,
				CorrespondenceSet{Reference: ref, Moving: moving})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			expected := gen.InvRigid()
			if !res.Transform.NearEqual(expected, 1e-9) {
				t.Errorf("Expected transform:\n%v\ngot:\n%v", expected, res.Transform)
			}
			if len(res.Inliers) != len(ref) {
				t.Errorf("Expected %d inliers, got %d", len(ref), len(res.Inliers))
			}
			for i := range ref {
				if !res.Aligned[i].NearEqual(ref[i], 1e-9) {
					t.Errorf("Aligned point %d: expected %v, got %v", i, ref[i], res.Aligned[i])
				}
			}
			if n := res.Combined.Len(); n != 2*len(ref) {
				t.Errorf("Expected %d combined points, got %d", 2*len(ref), n)
			}
		})
	}
}

func TestRegistration_Outliers(t *testing.T) {
	gen := mat.Translate(0.3, -0.2, 0.5).MulAffine(mat.Rotate(1, 2, 3, 0.4))
	set := noisyPairs(rand.New(rand.NewSource(42)), gen, 70, 30, 0.01)

	presets := map[string]Config{
		"Default":    DefaultConfig(),
		"Normalized": func() Config { c := DefaultConfig(); c.Normalize = true; return c }(),
		"Geometric":  func() Config { c := GeometricConfig(); c.FinalRefit = true; return c }(),
	}
	for name, c := range presets {
		c := c
		t.Run(name, func(t *testing.T) {
			r := New(c, zaptest.NewLogger(t).Sugar())
			a, err := r.Align(context.Background(), set)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			var good int
			for _, id := range a.Inliers {
				if id < 70 {
					good++
				} else {
					t.Errorf("Outlier %d is classified as inlier", id)
				}
			}
			if good < 65 {
				t.Errorf("Expected at least 65 known-good inliers, got %d", good)
			}
			if !a.Transform.NearEqual(gen, 0.02) {
				t.Errorf("Expected transform:\n%v\ngot:\n%v", gen, a.Transform)
			}
			if !a.Transform.IsRigid(1e-6) {
				t.Errorf("Transform is not rigid: %v", a.Transform)
			}
			if a.Stats.Iterations != c.MaxIterations {
				t.Errorf("Expected %d iterations, got %d", c.MaxIterations, a.Stats.Iterations)
			}
		})
	}
}

func TestRegistration_AllOutliers(t *testing.T) {
	set := noisyPairs(rand.New(rand.NewSource(3)), mat.Identity(), 0, 100, 0)

	c := DefaultConfig()
	c.MinInlierRate = 1
	r := New(c, zaptest.NewLogger(t).Sugar())
	a, err := r.Align(context.Background(), set)
	if !errors.Is(err, ErrConsensusFailure) {
		t.Fatalf("Expected error %v, got %v", ErrConsensusFailure, err)
	}
	if a != nil {
		t.Errorf("Expected no alignment on failure, got %v", a)
	}
}

func TestRegistration_ThresholdMonotone(t *testing.T) {
	gen := mat.Translate(0.1, 0, 0).MulAffine(mat.Rotate(0, 0, 1, 0.1))
	set := noisyPairs(rand.New(rand.NewSource(7)), gen, 60, 40, 0.02)

	prev := -1
	for _, th := range []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.5, 1, 5} {
		c := GeometricConfig()
		c.InlierThreshold = th
		a, err := New(c, nil).Align(context.Background(), set)
		if err != nil {
			t.Fatalf("Unexpected error at threshold %g: %v", th, err)
		}
		if n := len(a.Inliers); n < prev {
			t.Errorf("Inlier count decreased from %d to %d at threshold %g", prev, n, th)
		} else {
			prev = n
		}
	}
}

func TestRegistration_Deterministic(t *testing.T) {
	gen := mat.Translate(0, 0.4, 0).MulAffine(mat.Rotate(1, 0, 0, 0.2))
	set := noisyPairs(rand.New(rand.NewSource(11)), gen, 50, 50, 0.01)

	var first *Alignment
	for _, w := range []int{1, 2, 5, 16} {
		c := DefaultConfig()
		c.Workers = w
		a, err := New(c, nil).Align(context.Background(), set)
		if err != nil {
			t.Fatalf("Unexpected error with %d workers: %v", w, err)
		}
		if first == nil {
			first = a
			continue
		}
		if a.Iteration != first.Iteration || a.Transform != first.Transform {
			t.Errorf("Result with %d workers differs: iteration %d, expected %d",
				w, a.Iteration, first.Iteration)
		}
	}
}

func TestRegistration_Errors(t *testing.T) {
	valid := CorrespondenceSet{Reference: cubeCorners(), Moving: cubeCorners()}
	testCases := map[string]struct {
		config Config
		set    CorrespondenceSet
		err    error
	}{
		"EmptySet": {
			config: DefaultConfig(),
			set:    CorrespondenceSet{Reference: pcd.Vec3Slice{}, Moving: pcd.Vec3Slice{}},
			err:    pcd.ErrEmptyInput,
		},
		"SizeMismatch": {
			config: DefaultConfig(),
			set:    CorrespondenceSet{Reference: cubeCorners(), Moving: cubeCorners()[:4]},
			err:    ErrSizeMismatch,
		},
		"SampleLargerThanSet": {
			config: func() Config { c := DefaultConfig(); c.SampleSize = 20; return c }(),
			set:    valid,
			err:    ErrInvalidParameter,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			_, err := New(tt.config, nil).Align(context.Background(), tt.set)
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected error %v, got %v", tt.err, err)
			}
		})
	}
}
