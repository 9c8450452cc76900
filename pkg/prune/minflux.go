package prune

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
)

// MinFlux prunes a copy of the network by repeatedly removing the reaction
// with the smallest absolute flux, and stops at the first removal which
// renders the network infeasible. The given network is left untouched.
//
// Reactions whose flux is below epsilon are dropped without asking the
// oracle for each of them. This sweep runs on the first solution and again
// after every accepted removal, so reactions which lose their flux later on
// are dropped as well. Ties on flux are broken by ascending reaction ID.
func (p *Pruner) MinFlux(ctx context.Context, network *api.Network) (*api.Network, error) {
	n := network.Clone()
	res, err := p.precondition(ctx, n)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"network": n.Name, "method": "minflux"})
	start := n.ReactionCount()

	res, err = p.sweep(ctx, n, res)
	if err != nil {
		return nil, err
	}

	for {
		id, ok := p.smallestFlux(n, res.Solution)
		if !ok {
			log.Debug("No removal candidates left.")
			break
		}
		r, err := n.RemoveReaction(id)
		if err != nil {
			return nil, err
		}
		next, err := p.Check(ctx, n)
		if err != nil {
			return nil, err
		}
		if !next.Feasible {
			restore(n, r)
			log.Debugf("Removing %s failed (%v), stopping.", id, next.Reason)
			break
		}
		log.Debugf("Removed %s, objective flux is %g.", id, next.ObjectiveFlux(n))
		if res, err = p.sweep(ctx, n, next); err != nil {
			return nil, err
		}
	}

	log.Infof("Pruned from %d to %d reactions.", start, n.ReactionCount())
	return n, nil
}

// smallestFlux picks the next removal candidate from the current solution.
func (p *Pruner) smallestFlux(n *api.Network, solution *api.Solution) (string, bool) {
	best := ""
	bestFlux := math.Inf(1)
	for _, id := range p.candidates(n) {
		// candidates are sorted, so strict comparison keeps the lowest ID on ties
		if flux := math.Abs(solution.Flux(id)); flux < bestFlux {
			best, bestFlux = id, flux
		}
	}
	return best, best != ""
}

// sweep drops every candidate whose flux in the current solution is below
// epsilon. Dropping reactions with exactly zero flux leaves the solution
// valid. If reactions with a tiny non-zero flux were dropped too the network
// is checked again, and those get restored if the network broke.
func (p *Pruner) sweep(ctx context.Context, n *api.Network, res *Result) (*Result, error) {
	var tiny []*api.Reaction
	dropped := 0
	for _, id := range p.candidates(n) {
		flux := math.Abs(res.Solution.Flux(id))
		if flux >= p.epsilon {
			continue
		}
		r, err := n.RemoveReaction(id)
		if err != nil {
			return nil, err
		}
		dropped++
		if flux != 0 {
			tiny = append(tiny, r)
		}
	}
	if dropped > 0 {
		logrus.Debugf("Dropped %d reactions without flux from %s.", dropped, n.Name)
	}
	if len(tiny) == 0 {
		return res, nil
	}

	next, err := p.Check(ctx, n)
	if err != nil {
		return nil, err
	}
	if next.Feasible {
		return next, nil
	}
	logrus.Debugf("Dropping %d reactions with flux below %g broke %s, restoring them.", len(tiny), p.epsilon, n.Name)
	for _, r := range tiny {
		restore(n, r)
	}
	next, err = p.Check(ctx, n)
	if err != nil {
		return nil, err
	}
	if !next.Feasible {
		return nil, fmt.Errorf("network %s became infeasible after dropping reactions without flux: %w", n.Name, next.Reason)
	}
	return next, nil
}
