package main

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stringchem/netprune/pkg/api"
	"github.com/stringchem/netprune/pkg/api/netprune"
	"github.com/stringchem/netprune/pkg/bitstring"
	"github.com/stringchem/netprune/pkg/config"
	"github.com/stringchem/netprune/pkg/fba"
	"github.com/stringchem/netprune/pkg/network"
	"github.com/stringchem/netprune/pkg/prune"
	"github.com/stringchem/netprune/pkg/sat"
	"github.com/stringchem/netprune/pkg/store"
	"github.com/stringchem/netprune/pkg/trial"
	"golang.org/x/exp/maps"
)

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// runOpts are the flags shared by the commands which prune.
type runOpts struct {
	epsilon       float64
	oracle        string
	oracleTimeout string
	inputs        int
	outputs       int
	reps          int
	workers       int
	maxRetries    int
	seed          uint64
	reduce        bool
	keep          []string
	output        string
	outputDir     string
	store         bool
	storePath     string
}

func addRunFlags(flags *pflag.FlagSet, opts *runOpts) {
	d := config.Defaults()
	flags.Float64Var(&opts.epsilon, "epsilon", d.Epsilon, "smallest objective flux which counts as feasible")
	flags.StringVar(&opts.oracle, "oracle", d.Oracle, "flux oracle, lp for flux balance analysis or sat for the structural check")
	flags.StringVar(&opts.oracleTimeout, "oracle-timeout", d.OracleTimeout, "time limit per oracle call, running into it counts as infeasible")
	flags.IntVarP(&opts.inputs, "inputs", "i", d.Inputs, "number of food sources")
	flags.IntVarP(&opts.outputs, "outputs", "b", d.Outputs, "number of biomass precursors")
	flags.IntVarP(&opts.reps, "reps", "r", d.Reps, "number of repetitions")
	flags.IntVarP(&opts.workers, "workers", "w", d.Workers, "parallel random prunes, 0 uses all CPUs")
	flags.IntVar(&opts.maxRetries, "max-retries", d.MaxRetries, "attempts to find feasible food sources before giving up")
	flags.Uint64Var(&opts.seed, "seed", d.Seed, "random seed")
	flags.BoolVar(&opts.reduce, "reduce", d.Reduce, "remove reactions outside of the food scope before pruning")
	flags.StringArrayVar(&opts.keep, "keep", d.Keep, "reaction which must never be pruned, can be given multiple times")
	flags.StringVarP(&opts.output, "output", "o", "", "CSV file to write, defaults to a name derived from the settings inside the output directory")
	flags.StringVar(&opts.outputDir, "output-dir", d.OutputDir, "directory for CSV files with derived names")
	flags.BoolVar(&opts.store, "store", false, "also record the run in the sqlite database")
	flags.StringVar(&opts.storePath, "store-path", "", "sqlite database, defaults to the XDG data home")
}

// settings merges the settings file with the flags which were set explicitly.
func settings(flags *pflag.FlagSet, configFile string, opts *runOpts) (*netprune.Config, error) {
	c, err := config.LoadOrDefaults(configFile)
	if err != nil {
		return nil, err
	}
	if c.Store == nil {
		c.Store = &netprune.Store{}
	}
	overrides := map[string]func(){
		"epsilon":        func() { c.Epsilon = opts.epsilon },
		"oracle":         func() { c.Oracle = opts.oracle },
		"oracle-timeout": func() { c.OracleTimeout = opts.oracleTimeout },
		"inputs":         func() { c.Inputs = opts.inputs },
		"outputs":        func() { c.Outputs = opts.outputs },
		"reps":           func() { c.Reps = opts.reps },
		"workers":        func() { c.Workers = opts.workers },
		"max-retries":    func() { c.MaxRetries = opts.maxRetries },
		"seed":           func() { c.Seed = opts.seed },
		"reduce":         func() { c.Reduce = opts.reduce },
		"keep":           func() { c.Keep = opts.keep },
		"output-dir":     func() { c.OutputDir = opts.outputDir },
		"store":          func() { c.Store.Enabled = opts.store },
		"store-path":     func() { c.Store.Path = opts.storePath },
	}
	for _, name := range sortedKeys(overrides) {
		if flags.Changed(name) {
			overrides[name]()
		}
	}
	return c, config.Validate(c)
}

func newOracle(c *netprune.Config) (prune.Oracle, error) {
	switch c.Oracle {
	case config.OracleLP:
		return fba.NewOptimizer(), nil
	case config.OracleSAT:
		return sat.NewOracle(), nil
	}
	return nil, fmt.Errorf("unknown oracle %q", c.Oracle)
}

func newPruner(c *netprune.Config) (*prune.Pruner, error) {
	oracle, err := newOracle(c)
	if err != nil {
		return nil, err
	}
	timeout, err := config.OracleTimeout(c)
	if err != nil {
		return nil, err
	}
	return prune.NewPruner(oracle,
		prune.WithEpsilon(c.Epsilon),
		prune.WithOracleTimeout(timeout),
		prune.WithKeep(c.Keep...),
	), nil
}

func newRunner(c *netprune.Config) (*trial.Runner, error) {
	pruner, err := newPruner(c)
	if err != nil {
		return nil, err
	}
	return trial.NewRunner(pruner, trial.Config{
		Inputs:     c.Inputs,
		Outputs:    c.Outputs,
		Reps:       c.Reps,
		Workers:    c.Workers,
		MaxRetries: c.MaxRetries,
		Seed:       c.Seed,
		Reduce:     c.Reduce,
	}), nil
}

// loadNetwork loads the network named on the command line or in the settings.
func loadNetwork(args []string, c *netprune.Config) (*api.Network, error) {
	location := c.Network
	if len(args) > 0 {
		location = args[0]
	}
	if location == "" {
		return nil, fmt.Errorf("no network given on the command line or in the settings file")
	}
	return network.Load(location)
}

// outputPath picks the explicit output file or derives one.
func outputPath(explicit string, c *netprune.Config, derived string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(c.OutputDir, derived)
}

func minFluxOutcomes(rep *trial.MinFluxReport) []store.Outcome {
	outcomes := make([]store.Outcome, 0, len(rep.Records))
	for _, r := range rep.Records {
		outcomes = append(outcomes, store.Outcome{
			Bitstring:   r.Bitstring,
			Occurrences: 1,
			Reactions:   r.Bitstring.Count(),
			Method:      bitstring.MethodMinFlux,
			Inputs:      r.Inputs,
			Biomass:     r.Biomass,
		})
	}
	return outcomes
}

func sampleOutcomes(rep *trial.SampleReport) []store.Outcome {
	outcomes := make([]store.Outcome, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		outcomes = append(outcomes, store.Outcome{
			Bitstring:   e.Bitstring,
			Occurrences: e.Occurrences,
			Reactions:   e.Reactions,
			Method:      e.Method,
			Inputs:      rep.Selection.Inputs,
			Biomass:     rep.Selection.Precursors,
		})
	}
	return outcomes
}

// sizeHistogram counts the pruned networks per reaction count.
func sizeHistogram(sizes []int) map[int]int {
	histogram := map[int]int{}
	for _, s := range sizes {
		histogram[s]++
	}
	return histogram
}

func logSizes(sizes []int) {
	histogram := sizeHistogram(sizes)
	for _, size := range sortedKeys(histogram) {
		logrus.Infof("%d networks with %d reactions", histogram[size], size)
	}
}

func saveRun(c *netprune.Config, run *store.Run, outcomes []store.Outcome) error {
	if !c.Store.Enabled {
		return nil
	}
	path := c.Store.Path
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return err
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.SaveRun(run, outcomes)
	return err
}
