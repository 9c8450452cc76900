// Package config reads and writes the netprune.yaml settings file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/stringchem/netprune/pkg/api/netprune"
	"github.com/stringchem/netprune/pkg/prune"
	"github.com/stringchem/netprune/pkg/trial"
	"sigs.k8s.io/yaml"
)

const DefaultFile = "netprune.yaml"

const (
	OracleLP  = "lp"
	OracleSAT = "sat"
)

// Defaults are used for every setting neither the file nor a flag sets.
func Defaults() *netprune.Config {
	return &netprune.Config{
		Epsilon:    prune.DefaultEpsilon,
		Oracle:     OracleLP,
		Inputs:     2,
		Outputs:    2,
		Reps:       100,
		MaxRetries: trial.DefaultMaxRetries,
		Seed:       1,
		OutputDir:  "data",
	}
}

type Init struct {
	File    string
	Network string
	Force   bool
}

func (i *Init) Init() error {
	_, err := os.Stat(i.File)
	if !os.IsNotExist(err) && !i.Force {
		return fmt.Errorf("settings file %s already exists.", i.File)
	}
	c := Defaults()
	c.Network = i.Network
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(i.File, data, 0660)
}

// Load reads a settings file on top of the defaults.
func Load(file string) (*netprune.Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	c := Defaults()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", file, err)
	}
	return c, Validate(c)
}

// LoadOrDefaults is Load for an optional file.
func LoadOrDefaults(file string) (*netprune.Config, error) {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return Defaults(), nil
	}
	return Load(file)
}

func Validate(c *netprune.Config) error {
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.Oracle != OracleLP && c.Oracle != OracleSAT {
		return fmt.Errorf("unknown oracle %q, expected %s or %s", c.Oracle, OracleLP, OracleSAT)
	}
	if _, err := OracleTimeout(c); err != nil {
		return err
	}
	for name, v := range map[string]int{"inputs": c.Inputs, "outputs": c.Outputs, "reps": c.Reps, "workers": c.Workers, "maxRetries": c.MaxRetries} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// OracleTimeout parses the per call oracle timeout, zero means none.
func OracleTimeout(c *netprune.Config) (time.Duration, error) {
	if c.OracleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.OracleTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid oracle timeout %q: %w", c.OracleTimeout, err)
	}
	return d, nil
}
