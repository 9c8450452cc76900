/*
Package trial drives repeated pruning runs on a base network: it selects food
sources and a biomass reaction until the network is feasible, prunes, and
collects the bitstrings of the outcomes.
*/
package trial

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
	"github.com/stringchem/netprune/pkg/bitstring"
	"github.com/stringchem/netprune/pkg/prune"
	"github.com/stringchem/netprune/pkg/reducer"
	"github.com/stringchem/netprune/pkg/report"
	"github.com/stringchem/netprune/pkg/selector"
	"golang.org/x/sync/errgroup"
)

const DefaultMaxRetries = 100

// random streams of a seed; random trial i uses stream trialStream+i
const (
	setupStream uint64 = iota
	minFluxStream
	trialStream
)

var ErrRetriesExhausted = errors.New("retries exhausted")

type Config struct {
	// Inputs is the number of food sources.
	Inputs int
	// Outputs is the number of biomass precursors.
	Outputs    int
	Reps       int
	Workers    int
	MaxRetries int
	Seed       uint64
	// Reduce removes reactions outside of the food scope before pruning.
	Reduce bool
}

type Runner struct {
	config Config
	pruner *prune.Pruner
}

func NewRunner(pruner *prune.Pruner, config Config) *Runner {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	return &Runner{config: config, pruner: pruner}
}

func (r *Runner) Config() Config {
	return r.config
}

// Selection is a feasible configuration of food sources and biomass.
// Network is what gets pruned, Full the same selection before reduction.
type Selection struct {
	Network    *api.Network
	Full       *api.Network
	Inputs     []string
	Precursors []string
	Result     *prune.Result
	Attempts   int
}

// Setup chooses food sources and biomass precursors on a clone of base
// until the biomass reaction carries flux.
func (r *Runner) Setup(ctx context.Context, base *api.Network) (*Selection, error) {
	rng := rand.New(rand.NewPCG(r.config.Seed, setupStream))
	n := base.Clone()
	selector.ClearInputs(n)

	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		inputs, err := selector.ChooseInputs(n, r.config.Inputs, rng, nil)
		if err != nil {
			return nil, err
		}
		precursors, err := selector.ChooseBiomass(n, r.config.Outputs, rng)
		if err != nil {
			return nil, err
		}
		candidate, res, err := r.check(ctx, n)
		if err != nil {
			return nil, err
		}
		if res.Feasible {
			logrus.Infof("Selected food sources %v and biomass precursors %v after %d attempts.", inputs, precursors, attempt)
			return &Selection{Network: candidate, Full: n.Clone(), Inputs: inputs, Precursors: precursors, Result: res, Attempts: attempt}, nil
		}
		logrus.Debugf("Attempt %d: %v, reselecting food sources and biomass.", attempt, res.Reason)
	}
	return nil, fmt.Errorf("%w: no feasible food sources and biomass for %s after %d attempts", ErrRetriesExhausted, base.Name, r.config.MaxRetries)
}

// check reduces a clone of n if configured and checks it. Reactions the
// pruner keeps survive the reduction.
func (r *Runner) check(ctx context.Context, n *api.Network) (*api.Network, *prune.Result, error) {
	candidate := n.Clone()
	if r.config.Reduce {
		if _, err := reducer.Reduce(candidate, r.pruner.Keep()...); err != nil {
			return nil, nil, err
		}
	}
	res, err := r.pruner.Check(ctx, candidate)
	if err != nil {
		return nil, nil, err
	}
	return candidate, res, nil
}

// Universe returns the reference covering every network a trial on base can
// produce: the reactions of base, an exchange reaction for every metabolite
// and the biomass reaction.
func Universe(base *api.Network) *bitstring.Reference {
	ids := []string{selector.BiomassID}
	for _, id := range base.ReactionIDs() {
		if r, _ := base.Reaction(id); !r.Boundary && id != selector.BiomassID {
			ids = append(ids, id)
		}
	}
	for _, met := range base.MetaboliteIDs() {
		ids = append(ids, selector.ExchangeID(met))
	}
	return bitstring.NewReferenceFromIDs(ids...)
}

type MinFluxReport struct {
	Reference  *bitstring.Reference
	Precursors []string
	Records    []report.InputRecord
}

// MinFluxTrials keeps one biomass reaction and reselects the food sources
// for every repetition before pruning by minimum flux.
func (r *Runner) MinFluxTrials(ctx context.Context, base *api.Network) (*MinFluxReport, error) {
	rng := rand.New(rand.NewPCG(r.config.Seed, minFluxStream))
	n := base.Clone()
	selector.ClearInputs(n)
	precursors, err := selector.ChooseBiomass(n, r.config.Outputs, rng)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Biomass precursors: %v", precursors)

	ref := Universe(base)
	rep := &MinFluxReport{Reference: ref, Precursors: precursors, Records: []report.InputRecord{}}
	for i := 0; i < r.config.Reps; i++ {
		failures := 0
		for {
			inputs, err := selector.ChooseInputs(n, r.config.Inputs, rng, precursors)
			if err != nil {
				return nil, err
			}
			candidate, res, err := r.check(ctx, n)
			if err != nil {
				return nil, err
			}
			if !res.Feasible {
				failures++
				logrus.Debugf("Food sources %v: %v, reselecting.", inputs, res.Reason)
				if failures >= r.config.MaxRetries {
					return nil, fmt.Errorf("%w: no feasible food sources in repetition %d after %d attempts", ErrRetriesExhausted, i+1, failures)
				}
				continue
			}

			pruned, err := r.pruner.MinFlux(ctx, candidate)
			if err != nil {
				return nil, err
			}
			b, err := ref.Encode(pruned)
			if err != nil {
				return nil, err
			}
			logrus.Infof("Food source group %d: %v pruned to %d reactions.", i+1, inputs, pruned.ReactionCount())
			rep.Records = append(rep.Records, report.InputRecord{Inputs: inputs, Biomass: precursors, Bitstring: b})
			break
		}
	}
	return rep, nil
}

type SampleReport struct {
	Selection *Selection
	Reference *bitstring.Reference
	// Entries holds the distinct random outcomes in first seen order
	// followed by the minimum flux outcome.
	Entries []bitstring.Entry
	MinFlux bitstring.Bitstring
	// Sizes holds the reaction count of every random outcome in trial order.
	Sizes []int
}

// Sample prunes one feasible selection by minimum flux once and randomly
// Reps times. Random trial i always uses the same random stream, so the
// report does not depend on the number of workers.
func (r *Runner) Sample(ctx context.Context, base *api.Network) (*SampleReport, error) {
	selection, err := r.Setup(ctx, base)
	if err != nil {
		return nil, err
	}
	ref := bitstring.NewReference(selection.Full)

	logrus.Info("Pruning network by minimum flux.")
	minPruned, err := r.pruner.MinFlux(ctx, selection.Network)
	if err != nil {
		return nil, err
	}
	minFlux, err := ref.Encode(minPruned)
	if err != nil {
		return nil, err
	}

	outcomes := make([]bitstring.Bitstring, r.config.Reps)
	sizes := make([]int, r.config.Reps)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	for i := 0; i < r.config.Reps; i++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(r.config.Seed, trialStream+uint64(i)))
			pruned, err := r.pruner.Random(gctx, selection.Network, rng)
			if err != nil {
				return fmt.Errorf("random prune %d: %w", i+1, err)
			}
			b, err := ref.Encode(pruned)
			if err != nil {
				return err
			}
			logrus.Debugf("Random prune %d kept %d reactions.", i+1, pruned.ReactionCount())
			outcomes[i] = b
			sizes[i] = pruned.ReactionCount()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tally := bitstring.NewTally(bitstring.MethodRandom)
	for _, b := range outcomes {
		tally.Add(b)
	}
	logrus.Infof("%d random prunes yielded %d distinct networks.", tally.Total(), tally.Len())

	entries := append(tally.Entries(), bitstring.Entry{
		Bitstring:   minFlux,
		Occurrences: 1,
		Reactions:   minFlux.Count(),
		Method:      bitstring.MethodMinFlux,
	})
	return &SampleReport{
		Selection: selection,
		Reference: ref,
		Entries:   entries,
		MinFlux:   minFlux,
		Sizes:     sizes,
	}, nil
}
