package registration

import (
	"fmt"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

type EstimatorKind string

const (
	// EstimatorCorrespondence selects the closed form SVD estimator.
	EstimatorCorrespondence EstimatorKind = "correspondence"
	// EstimatorGeometric selects the linearized Cayley estimator.
	EstimatorGeometric EstimatorKind = "geometric"
)

// Config holds parameters of the robust registration.
type Config struct {
	Estimator EstimatorKind `yaml:"estimator"`
	// InlierThreshold is the residual distance below which a pair is an inlier.
	InlierThreshold float64 `yaml:"inlier_threshold"`
	// SampleSize is the number of pairs drawn per iteration.
	// If zero, SampleRate times the number of pairs is used.
	// Only one of them can be set.
	SampleSize int     `yaml:"sample_size"`
	SampleRate float64 `yaml:"sample_rate"`
	// SupportGate rejects hypotheses with less than
	// sample size * MinInlierRate inliers.
	SupportGate   bool    `yaml:"support_gate"`
	MinInlierRate float64 `yaml:"min_inlier_rate"`
	// Refit refits every accepted hypothesis on its inliers.
	Refit bool `yaml:"refit"`
	// FinalRefit refits the selected hypothesis on its inliers and rescoring.
	FinalRefit    bool `yaml:"final_refit"`
	MaxIterations int  `yaml:"max_iterations"`
	// Normalize conditions the correspondences before estimation.
	Normalize bool  `yaml:"normalize"`
	Seed      int64 `yaml:"seed"`
	// Workers is the number of goroutines. Zero uses the number of CPUs.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the configuration using the closed form estimator
// with the minimum support gate and refinement.
func DefaultConfig() Config {
	return Config{
		Estimator:       EstimatorCorrespondence,
		InlierThreshold: 0.05,
		SampleSize:      3,
		SupportGate:     true,
		MinInlierRate:   0.5,
		Refit:           true,
		FinalRefit:      true,
		MaxIterations:   200,
		Seed:            1,
	}
}

// GeometricConfig returns the configuration using the linearized estimator
// keeping every hypothesis.
func GeometricConfig() Config {
	return Config{
		Estimator:       EstimatorGeometric,
		InlierThreshold: 0.05,
		SampleSize:      3,
		MaxIterations:   200,
		Seed:            1,
	}
}

func (c Config) Validate() error {
	var err error
	if _, e := c.estimator(); e != nil {
		err = multierr.Append(err, e)
	}
	if !(c.InlierThreshold > 0) {
		err = multierr.Append(err, fmt.Errorf("%w: inlier_threshold must be positive: %g", ErrInvalidParameter, c.InlierThreshold))
	}
	if c.SampleSize < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: sample_size must not be negative: %d", ErrInvalidParameter, c.SampleSize))
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		err = multierr.Append(err, fmt.Errorf("%w: sample_rate must be in [0, 1]: %g", ErrInvalidParameter, c.SampleRate))
	}
	if c.SampleSize > 0 && c.SampleRate > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: sample_size and sample_rate are exclusive", ErrInvalidParameter))
	}
	if c.SampleSize == 0 && c.SampleRate == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: either sample_size or sample_rate must be set", ErrInvalidParameter))
	}
	if c.MinInlierRate < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: min_inlier_rate must not be negative: %g", ErrInvalidParameter, c.MinInlierRate))
	}
	if c.MaxIterations <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: max_iterations must be positive: %d", ErrInvalidParameter, c.MaxIterations))
	}
	return err
}

// UnmarshalYAML decodes over the current values. A document setting
// sample_rate without sample_size clears the current sample size.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	p := plain(*c)
	if err := value.Decode(&p); err != nil {
		return err
	}
	var keys struct {
		SampleSize *int     `yaml:"sample_size"`
		SampleRate *float64 `yaml:"sample_rate"`
	}
	if err := value.Decode(&keys); err != nil {
		return err
	}
	if keys.SampleRate != nil && keys.SampleSize == nil {
		p.SampleSize = 0
	}
	*c = Config(p)
	return nil
}

func (c Config) estimator() (Estimator, error) {
	switch c.Estimator {
	case EstimatorCorrespondence:
		return SVD{}, nil
	case EstimatorGeometric:
		return Geometric{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q", ErrInvalidParameter, c.Estimator)
	}
}

func (c Config) sampleSize(n int) int {
	if c.SampleSize > 0 {
		return c.SampleSize
	}
	return int(c.SampleRate * float64(n))
}
