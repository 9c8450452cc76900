package reducer

import (
	"github.com/stringchem/netprune/pkg/api"
)

func newReaction(id string, lb float64, mets map[string]float64) *api.Reaction {
	return &api.Reaction{ID: id, LowerBound: lb, UpperBound: api.DefaultBound, Metabolites: mets}
}

func newExchange(met string) *api.Reaction {
	return &api.Reaction{
		ID:          "EX_" + met,
		UpperBound:  api.DefaultBound,
		Boundary:    true,
		Metabolites: map[string]float64{met: 1},
	}
}

func newNetwork(objective string, reactions ...*api.Reaction) *api.Network {
	n := api.NewNetwork("reducer")
	for _, r := range reactions {
		if err := n.AddReaction(r); err != nil {
			panic(err)
		}
	}
	if err := n.SetObjective(objective); err != nil {
		panic(err)
	}
	return n
}
