/*
Package sat implements a structural flux oracle. Every reaction direction
becomes a boolean variable and the network is encoded as a formula which is
satisfiable exactly when the objective can run forward inside a support in
which every consumed metabolite has an active producer and every produced
metabolite has an active consumer. This is a necessary condition for a
positive steady state flux, but it ignores stoichiometric ratios, so it is
cheaper and weaker than flux balance analysis.
*/
package sat

import (
	"context"
	"errors"
	"fmt"

	"github.com/crillab/gophersat/bf"
	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrUnsatisfiable = errors.New("no active support for the objective")

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

func (d Direction) sign() float64 {
	if d == Backward {
		return -1
	}
	return 1
}

// Var is one direction of one reaction.
type Var struct {
	satVarName string
	Reaction   string
	Direction  Direction
}

func (v *Var) String() string {
	return fmt.Sprintf("%s(%s)", v.Reaction, v.Direction)
}

type Model struct {
	// vars maps the sat variable name to its reaction direction
	vars map[string]*Var
	// reactions maps a reaction id to its direction variables
	reactions map[string][]*Var
	ands      []bf.Formula
	// unsat is set when the objective can't run forward at all
	unsat bool
}

func (m *Model) Vars() []*Var {
	keys := maps.Keys(m.vars)
	slices.Sort(keys)
	vars := []*Var{}
	for _, k := range keys {
		vars = append(vars, m.vars[k])
	}
	return vars
}

// Resolve returns a unit flux per reaction: 1 if the reaction is active
// forward, -1 if active backward and 0 otherwise.
func Resolve(model *Model) (map[string]float64, error) {
	if model.unsat {
		return nil, ErrUnsatisfiable
	}
	logrus.Debugf("Solving %d clauses over %d variables.", len(model.ands), len(model.vars))
	solution := bf.Solve(bf.And(model.ands...))
	if solution == nil {
		return nil, ErrUnsatisfiable
	}

	fluxes := map[string]float64{}
	for id, vars := range model.reactions {
		fluxes[id] = 0
		for _, v := range vars {
			if solution[v.satVarName] {
				fluxes[id] = v.Direction.sign()
			}
		}
	}
	return fluxes, nil
}

// Oracle adapts the loader and the solver to the flux oracle interface. It
// keeps no state between calls and is safe for concurrent use.
type Oracle struct{}

func NewOracle() *Oracle {
	return &Oracle{}
}

func (o *Oracle) Optimize(ctx context.Context, n *api.Network) (*api.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n.Objective() == "" {
		return api.InfeasibleSolution(), nil
	}
	model, err := NewLoader().Load(n)
	if err != nil {
		return nil, err
	}
	fluxes, err := Resolve(model)
	if errors.Is(err, ErrUnsatisfiable) {
		return api.InfeasibleSolution(), nil
	} else if err != nil {
		return nil, err
	}
	return &api.Solution{
		Status:         api.StatusFeasible,
		ObjectiveValue: fluxes[n.Objective()],
		Fluxes:         fluxes,
	}, nil
}
