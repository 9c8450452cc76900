// Package selector picks the food sources and the biomass precursors of a
// network at random.
package selector

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
)

const (
	BiomassID      = "biomass"
	ExchangePrefix = "EX_"
)

var ErrNotEnoughMetabolites = errors.New("not enough metabolites")

// ExchangeID is the ID of the exchange reaction supplying met.
func ExchangeID(met string) string {
	return ExchangePrefix + met
}

// Exchange returns the reaction supplying met from outside the network.
func Exchange(met string) *api.Reaction {
	return &api.Reaction{
		ID:          ExchangeID(met),
		Metabolites: map[string]float64{met: 1},
		LowerBound:  0,
		UpperBound:  api.DefaultBound,
		Boundary:    true,
	}
}

// Biomass returns the reaction consuming one unit of every precursor.
func Biomass(precursors []string) *api.Reaction {
	r := &api.Reaction{
		ID:          BiomassID,
		Metabolites: map[string]float64{},
		LowerBound:  0,
		UpperBound:  api.DefaultBound,
	}
	for _, met := range precursors {
		r.Metabolites[met] = -1
	}
	return r
}

// ChooseBiomass replaces the biomass reaction of n with one consuming count
// random metabolites and makes it the objective. The precursors are returned
// in ascending order.
func ChooseBiomass(n *api.Network, count int, rng *rand.Rand) ([]string, error) {
	ClearBiomass(n)
	precursors, err := sample(n.MetaboliteIDs(), count, rng)
	if err != nil {
		return nil, fmt.Errorf("can't choose %d biomass precursors in %s: %w", count, n.Name, err)
	}
	if err := n.AddReaction(Biomass(precursors)); err != nil {
		return nil, err
	}
	if err := n.SetObjective(BiomassID); err != nil {
		return nil, err
	}
	logrus.Debugf("Biomass of %s consumes %s.", n.Name, strings.Join(precursors, ", "))
	return precursors, nil
}

// ChooseInputs replaces the food sources of n with exchange reactions for
// count random metabolites outside of exclude. The chosen metabolites are
// returned in ascending order.
func ChooseInputs(n *api.Network, count int, rng *rand.Rand, exclude []string) ([]string, error) {
	ClearInputs(n)
	excluded := map[string]struct{}{}
	for _, met := range exclude {
		excluded[met] = struct{}{}
	}
	candidates := []string{}
	for _, met := range n.MetaboliteIDs() {
		if _, exists := excluded[met]; !exists {
			candidates = append(candidates, met)
		}
	}

	inputs, err := sample(candidates, count, rng)
	if err != nil {
		return nil, fmt.Errorf("can't choose %d food sources in %s: %w", count, n.Name, err)
	}
	for _, met := range inputs {
		if err := n.AddReaction(Exchange(met)); err != nil {
			return nil, err
		}
	}
	logrus.Debugf("Food sources of %s: %s.", n.Name, strings.Join(inputs, ", "))
	return inputs, nil
}

// ClearInputs removes all boundary reactions and returns their IDs.
func ClearInputs(n *api.Network) []string {
	removed := n.BoundaryReactions()
	for _, id := range removed {
		_, _ = n.RemoveReaction(id)
	}
	return removed
}

// ClearBiomass removes the biomass reaction if present.
func ClearBiomass(n *api.Network) {
	if n.HasReaction(BiomassID) {
		_, _ = n.RemoveReaction(BiomassID)
	}
}

// Inputs returns the metabolites supplied by boundary reactions in ascending order.
func Inputs(n *api.Network) []string {
	inputs := []string{}
	for _, id := range n.BoundaryReactions() {
		r, _ := n.Reaction(id)
		inputs = append(inputs, r.Products()...)
	}
	sort.Strings(inputs)
	return inputs
}

// Precursors returns the metabolites consumed by the biomass reaction.
func Precursors(n *api.Network) []string {
	r, ok := n.Reaction(BiomassID)
	if !ok {
		return nil
	}
	return r.Substrates()
}

// sample draws count distinct elements. Candidates must be sorted so that the
// same rng state always yields the same choice.
func sample(candidates []string, count int, rng *rand.Rand) ([]string, error) {
	if count < 0 || count > len(candidates) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughMetabolites, count, len(candidates))
	}
	chosen := []string{}
	for _, i := range rng.Perm(len(candidates))[:count] {
		chosen = append(chosen, candidates[i])
	}
	sort.Strings(chosen)
	return chosen, nil
}
