package prune

import (
	"context"
	"sync/atomic"

	"github.com/stringchem/netprune/pkg/api"
)

// scriptedOracle is feasible whenever the network contains every reaction of
// at least one requirement set. Present reactions report the flux from the
// fluxes table, or 1 if they are not listed.
type scriptedOracle struct {
	requirements [][]string
	fluxes       map[string]float64
	calls        atomic.Int64
}

func (o *scriptedOracle) Optimize(_ context.Context, n *api.Network) (*api.Solution, error) {
	o.calls.Add(1)
	feasible := false
	for _, req := range o.requirements {
		all := true
		for _, id := range req {
			if !n.HasReaction(id) {
				all = false
				break
			}
		}
		if all {
			feasible = true
			break
		}
	}
	if !feasible {
		return api.InfeasibleSolution(), nil
	}
	solution := &api.Solution{Status: api.StatusFeasible, Fluxes: map[string]float64{}}
	for _, id := range n.ReactionIDs() {
		flux, ok := o.fluxes[id]
		if !ok {
			flux = 1
		}
		solution.Fluxes[id] = flux
	}
	solution.ObjectiveValue = solution.Fluxes[n.Objective()]
	return solution, nil
}

func newNetwork(objective string, ids ...string) *api.Network {
	n := api.NewNetwork("test")
	for _, id := range append([]string{objective}, ids...) {
		if err := n.AddReaction(&api.Reaction{ID: id, UpperBound: api.DefaultBound}); err != nil {
			panic(err)
		}
	}
	if err := n.SetObjective(objective); err != nil {
		panic(err)
	}
	return n
}
