package registration

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

func TestConfig_Validate(t *testing.T) {
	testCases := map[string]struct {
		mod     func(*Config)
		nErrors int
	}{
		"Default": {
			mod: func(*Config) {},
		},
		"SampleRate": {
			mod: func(c *Config) { c.SampleSize, c.SampleRate = 0, 0.1 },
		},
		"UnknownEstimator": {
			mod:     func(c *Config) { c.Estimator = "icp" },
			nErrors: 1,
		},
		"Multiple": {
			mod: func(c *Config) {
				c.InlierThreshold = 0
				c.MaxIterations = -1
				c.SampleSize = 0
			},
			nErrors: 3,
		},
		"SampleRateRange": {
			mod:     func(c *Config) { c.SampleSize, c.SampleRate = 0, 1.5 },
			nErrors: 1,
		},
		"SampleSizeAndRate": {
			mod:     func(c *Config) { c.SampleRate = 0.2 },
			nErrors: 1,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mod(&c)
			err := c.Validate()
			if n := len(multierr.Errors(err)); n != tt.nErrors {
				t.Fatalf("Expected %d errors, got %d: %v", tt.nErrors, n, err)
			}
			if tt.nErrors > 0 && !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Expected error %v, got %v", ErrInvalidParameter, err)
			}
		})
	}
}

func TestConfig_SampleSize(t *testing.T) {
	c := DefaultConfig()
	if n := c.sampleSize(100); n != 3 {
		t.Errorf("Expected 3, got %d", n)
	}
	c.SampleSize, c.SampleRate = 0, 0.25
	if n := c.sampleSize(100); n != 25 {
		t.Errorf("Expected 25, got %d", n)
	}
}

func TestConfig_UnmarshalYAML(t *testing.T) {
	testCases := map[string]struct {
		input      string
		sampleSize int
		sampleRate float64
		effective  int
	}{
		"Default": {
			input:      "seed: 3",
			sampleSize: 3,
			effective:  3,
		},
		"SampleRateOnly": {
			input:      "sample_rate: 0.3",
			sampleRate: 0.3,
			effective:  30,
		},
		"SampleSizeOnly": {
			input:      "sample_size: 5",
			sampleSize: 5,
			effective:  5,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			if err := yaml.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c.SampleSize != tt.sampleSize || c.SampleRate != tt.sampleRate {
				t.Errorf("Expected sample_size=%d sample_rate=%g, got %d %g",
					tt.sampleSize, tt.sampleRate, c.SampleSize, c.SampleRate)
			}
			if n := c.sampleSize(100); n != tt.effective {
				t.Errorf("Expected effective sample size %d, got %d", tt.effective, n)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
			if c.InlierThreshold != DefaultConfig().InlierThreshold {
				t.Errorf("Defaults must be kept, got threshold %g", c.InlierThreshold)
			}
		})
	}
}
