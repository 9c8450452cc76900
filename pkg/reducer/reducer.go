package reducer

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type NetworkReducer struct {
	network *api.Network
	// available is the scope discovered so far
	available map[string]struct{}
	// fired holds every reaction which fired in at least one direction
	fired map[string]struct{}
}

func NewNetworkReducer(n *api.Network) *NetworkReducer {
	return &NetworkReducer{
		network:   n,
		available: map[string]struct{}{},
		fired:     map[string]struct{}{},
	}
}

// Discover fires reactions until the scope does not grow anymore. Boundary
// reactions and every other reaction without substrates are the seeds.
func (r *NetworkReducer) Discover() {
	for {
		current := len(r.available) + len(r.fired)
		for _, id := range r.network.ReactionIDs() {
			rxn, _ := r.network.Reaction(id)
			if rxn.UpperBound > 0 && r.allAvailable(rxn.Substrates()) {
				r.fire(id, rxn.Products())
			}
			if rxn.LowerBound < 0 && r.allAvailable(rxn.Products()) {
				r.fire(id, rxn.Substrates())
			}
		}
		if current == len(r.available)+len(r.fired) {
			break
		}
	}
}

func (r *NetworkReducer) allAvailable(metabolites []string) bool {
	for _, m := range metabolites {
		if _, exists := r.available[m]; !exists {
			return false
		}
	}
	return true
}

func (r *NetworkReducer) fire(id string, produced []string) {
	if _, exists := r.fired[id]; !exists {
		logrus.Debugf("%s fires", id)
		r.fired[id] = struct{}{}
	}
	for _, m := range produced {
		r.available[m] = struct{}{}
	}
}

// Scope returns the discovered metabolites in ascending order.
func (r *NetworkReducer) Scope() []string {
	scope := maps.Keys(r.available)
	slices.Sort(scope)
	return scope
}

// Unreachable returns the reactions which never fired in ascending order.
func (r *NetworkReducer) Unreachable() []string {
	unreachable := []string{}
	for _, id := range r.network.ReactionIDs() {
		if _, exists := r.fired[id]; !exists {
			unreachable = append(unreachable, id)
		}
	}
	return unreachable
}

// Scope computes the metabolites producible from the food sources of n.
func Scope(n *api.Network) []string {
	r := NewNetworkReducer(n)
	r.Discover()
	return r.Scope()
}

// Reduce removes every reaction which can't fire from the food scope of n.
// The objective and the reactions in keep are never removed. The removed
// reaction IDs are returned in ascending order.
func Reduce(n *api.Network, keep ...string) (removed []string, err error) {
	protected := map[string]struct{}{n.Objective(): {}}
	for _, id := range keep {
		protected[id] = struct{}{}
	}

	r := NewNetworkReducer(n)
	r.Discover()
	for _, id := range r.Unreachable() {
		if _, exists := protected[id]; exists {
			continue
		}
		if _, err := n.RemoveReaction(id); err != nil {
			return nil, fmt.Errorf("failed to reduce network %s: %w", n.Name, err)
		}
		removed = append(removed, id)
	}
	logrus.Infof("Reduced %s by %d reactions to %d reactions with a scope of %d metabolites.", n.Name, len(removed), n.ReactionCount(), len(r.available))
	return removed, nil
}
