// Package config loads parameters of registration and region growing from YAML.
package config

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/seqsense/pcreg/pcd/registration"
	"github.com/seqsense/pcreg/pcd/segmentation/regiongrow"
)

type Config struct {
	Registration registration.Config `yaml:"registration"`
	RegionGrow   regiongrow.Config   `yaml:"region_grow"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		Registration: registration.DefaultConfig(),
		RegionGrow:   regiongrow.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	var err error
	if e := c.Registration.Validate(); e != nil {
		for _, e := range multierr.Errors(e) {
			err = multierr.Append(err, errors.Wrap(e, "registration"))
		}
	}
	if e := c.RegionGrow.Validate(); e != nil {
		for _, e := range multierr.Errors(e) {
			err = multierr.Append(err, errors.Wrap(e, "region_grow"))
		}
	}
	return err
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parsing config YAML")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return Parse(data)
}
