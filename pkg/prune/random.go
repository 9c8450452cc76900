package prune

import (
	"context"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
)

// Random prunes a copy of the network by trying to remove every candidate
// reaction once, in an order drawn from rng. A removal which renders the
// network infeasible is undone and the walk continues with the next
// reaction. The result is minimal with respect to the drawn order only.
func (p *Pruner) Random(ctx context.Context, network *api.Network, rng *rand.Rand) (*api.Network, error) {
	n := network.Clone()
	if _, err := p.precondition(ctx, n); err != nil {
		return nil, err
	}

	order := p.candidates(n)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	kept := 0
	for _, id := range order {
		r, err := n.RemoveReaction(id)
		if err != nil {
			return nil, err
		}
		res, err := p.Check(ctx, n)
		if err != nil {
			return nil, err
		}
		if !res.Feasible {
			restore(n, r)
			kept++
		}
	}

	logrus.WithFields(logrus.Fields{"network": n.Name, "method": "random"}).
		Debugf("Tried %d removals, kept %d reactions.", len(order), kept)
	return n, nil
}
