package sat

import (
	"fmt"
	"strconv"

	"github.com/crillab/gophersat/bf"
	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
)

type Loader struct {
	m         *Model
	producers map[string][]*Var
	consumers map[string][]*Var
	varsCount int
}

func NewLoader() *Loader {
	return &Loader{
		m: &Model{
			vars:      map[string]*Var{},
			reactions: map[string][]*Var{},
		},
		producers: map[string][]*Var{},
		consumers: map[string][]*Var{},
		varsCount: 0,
	}
}

// Load encodes the network. Variables are numbered in reaction ID order,
// forward before backward, so the same network always yields the same model.
func (loader *Loader) Load(n *api.Network) (*Model, error) {
	objective := n.Objective()
	if objective == "" {
		return nil, fmt.Errorf("network %s has no objective", n.Name)
	}

	// Generate variables
	ids := n.ReactionIDs()
	for _, id := range ids {
		r, _ := n.Reaction(id)
		for _, v := range loader.explodeReactionToVars(r) {
			loader.m.vars[v.satVarName] = v
			loader.m.reactions[id] = append(loader.m.reactions[id], v)
			for met, c := range r.Metabolites {
				switch c = c * v.Direction.sign(); {
				case c > 0:
					loader.producers[met] = append(loader.producers[met], v)
				case c < 0:
					loader.consumers[met] = append(loader.consumers[met], v)
				}
			}
		}
		if _, exists := loader.m.reactions[id]; !exists {
			loader.m.reactions[id] = nil
		}
	}

	// Generate imply rules
	for _, id := range ids {
		r, _ := n.Reaction(id)
		vars := loader.m.reactions[id]
		for _, v := range vars {
			loader.m.ands = append(loader.m.ands, bf.Implies(bf.Var(v.satVarName), loader.explodeBalance(r, v)))
		}
		if len(vars) == 2 {
			loader.m.ands = append(loader.m.ands, bf.Not(bf.And(bf.Var(vars[0].satVarName), bf.Var(vars[1].satVarName))))
		}
	}
	logrus.Debugf("Generated %v variables for %d reactions.", len(loader.m.vars), len(ids))

	return loader.constructRequirements(n)
}

// explodeReactionToVars creates a variable for every direction the bounds allow.
func (loader *Loader) explodeReactionToVars(r *api.Reaction) (vars []*Var) {
	if r.UpperBound > 0 {
		vars = append(vars, &Var{satVarName: loader.ticket(), Reaction: r.ID, Direction: Forward})
	}
	if r.LowerBound < 0 {
		vars = append(vars, &Var{satVarName: loader.ticket(), Reaction: r.ID, Direction: Backward})
	}
	return vars
}

// explodeBalance builds the condition for an active direction: every metabolite
// it consumes is produced by another active reaction, and every metabolite it
// produces is consumed by another active reaction.
func (loader *Loader) explodeBalance(r *api.Reaction, v *Var) bf.Formula {
	var balance []bf.Formula
	for _, met := range sortedMetabolites(r) {
		c := r.Metabolites[met] * v.Direction.sign()
		var partners []*Var
		if c < 0 {
			partners = loader.producers[met]
		} else if c > 0 {
			partners = loader.consumers[met]
		} else {
			continue
		}
		var or []bf.Formula
		for _, p := range partners {
			if p.Reaction != r.ID {
				or = append(or, bf.Var(p.satVarName))
			}
		}
		if len(or) == 0 {
			return bf.Not(bf.Var(v.satVarName))
		}
		balance = append(balance, bf.Or(or...))
	}
	if len(balance) == 0 {
		return bf.Var(v.satVarName)
	}
	return bf.And(balance...)
}

func (loader *Loader) constructRequirements(n *api.Network) (*Model, error) {
	forward, ok := loader.direction(n.Objective(), Forward)
	if !ok {
		logrus.Debugf("Objective %s of %s can't run forward.", n.Objective(), n.Name)
		loader.m.unsat = true
		return loader.m, nil
	}
	loader.m.ands = append(loader.m.ands, bf.Var(forward.satVarName))

	// bounds which exclude zero force a direction
	for _, id := range n.ReactionIDs() {
		r, _ := n.Reaction(id)
		var forced Direction
		if r.LowerBound > 0 {
			forced = Forward
		} else if r.UpperBound < 0 {
			forced = Backward
		} else {
			continue
		}
		v, ok := loader.direction(id, forced)
		if !ok {
			loader.m.unsat = true
			return loader.m, nil
		}
		loader.m.ands = append(loader.m.ands, bf.Var(v.satVarName))
	}
	return loader.m, nil
}

func (loader *Loader) direction(id string, d Direction) (*Var, bool) {
	for _, v := range loader.m.reactions[id] {
		if v.Direction == d {
			return v, true
		}
	}
	return nil, false
}

func (loader *Loader) ticket() string {
	loader.varsCount++
	return "x" + strconv.Itoa(loader.varsCount)
}

func sortedMetabolites(r *api.Reaction) []string {
	return append(r.Substrates(), r.Products()...)
}
