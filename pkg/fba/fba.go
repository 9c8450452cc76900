/*
Package fba implements flux balance analysis on top of the gonum simplex
solver: maximize the objective flux subject to steady state (S·v = 0) and the
flux bounds of every reaction.
*/
package fba

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// DefaultTolerance is handed to the simplex solver.
	DefaultTolerance = 1e-10
	// rankTolerance decides when a stoichiometric row counts as linearly dependent.
	rankTolerance = 1e-9
)

type Optimizer struct {
	Tolerance float64
	// Bound replaces infinite flux bounds.
	Bound float64
}

func NewOptimizer() *Optimizer {
	return &Optimizer{Tolerance: DefaultTolerance, Bound: api.DefaultBound}
}

// problem is the standard form LP
//
//	minimize cᵀx  s.t.  A·x = b, x >= 0
//
// with x = [v - lb, s]: every flux is shifted by its lower bound and every
// upper bound becomes an equality with its own slack variable.
type problem struct {
	ids   []string
	lower []float64
	c     []float64
	a     *mat.Dense
	b     []float64
	rows  int
}

// Optimize solves the network. The context is only checked before the solve,
// the simplex itself can't be interrupted.
func (o *Optimizer) Optimize(ctx context.Context, n *api.Network) (*api.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n.Objective() == "" || n.ReactionCount() == 0 {
		return api.InfeasibleSolution(), nil
	}

	p, err := o.build(n)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return api.InfeasibleSolution(), nil
	}

	optF, x, err := lp.Simplex(p.c, p.a, p.b, o.Tolerance, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return api.InfeasibleSolution(), nil
		}
		return nil, fmt.Errorf("simplex failed on %d reactions: %w", len(p.ids), err)
	}

	solution := &api.Solution{
		Status:         api.StatusFeasible,
		ObjectiveValue: -optF + p.objectiveShift(n),
		Fluxes:         make(map[string]float64, len(p.ids)),
	}
	for i, id := range p.ids {
		solution.Fluxes[id] = p.lower[i] + x[i]
	}
	logrus.Debugf("Solved %s with objective value %g.", n.Name, solution.ObjectiveValue)
	return solution, nil
}

func (p *problem) objectiveShift(n *api.Network) float64 {
	for i, id := range p.ids {
		if id == n.Objective() {
			return p.lower[i]
		}
	}
	return 0
}

func (o *Optimizer) bound(v float64) float64 {
	limit := o.Bound
	if limit <= 0 {
		limit = api.DefaultBound
	}
	return math.Max(-limit, math.Min(limit, v))
}

// build assembles the LP. It returns nil if the bounds alone are contradictory.
func (o *Optimizer) build(n *api.Network) (*problem, error) {
	ids := n.ReactionIDs()
	nv := len(ids)
	p := &problem{ids: ids, lower: make([]float64, nv)}

	upper := make([]float64, nv)
	for i, id := range ids {
		r, _ := n.Reaction(id)
		p.lower[i] = o.bound(r.LowerBound)
		upper[i] = o.bound(r.UpperBound)
		if p.lower[i] > upper[i] {
			return nil, nil
		}
	}

	// steady state rows, shifted: S·x = -S·lb
	var stoichRows [][]float64
	var rhs []float64
	for _, met := range n.MetaboliteIDs() {
		row := make([]float64, nv)
		for i, id := range ids {
			r, _ := n.Reaction(id)
			row[i] = r.Metabolites[met]
		}
		if floats.Norm(row, 2) == 0 {
			continue
		}
		stoichRows = append(stoichRows, row)
		rhs = append(rhs, -floats.Dot(row, p.lower))
	}
	stoichRows, rhs = independentRows(stoichRows, rhs)

	p.rows = len(stoichRows) + nv
	cols := 2 * nv
	p.a = mat.NewDense(p.rows, cols, nil)
	p.b = make([]float64, p.rows)
	for i, row := range stoichRows {
		for j, v := range row {
			p.a.Set(i, j, v)
		}
		p.b[i] = rhs[i]
	}
	for j := 0; j < nv; j++ {
		i := len(stoichRows) + j
		p.a.Set(i, j, 1)
		p.a.Set(i, nv+j, 1)
		p.b[i] = upper[j] - p.lower[j]
	}

	// maximize the objective flux; shifting by lb only adds a constant
	p.c = make([]float64, cols)
	for j, id := range ids {
		if id == n.Objective() {
			p.c[j] = -1
		}
	}
	return p, nil
}

// independentRows drops rows which are linear combinations of earlier rows,
// since the simplex needs a constraint matrix of full row rank. The right
// hand side of a dropped row is the same combination of the kept ones, so
// the feasible set does not change.
func independentRows(rows [][]float64, rhs []float64) ([][]float64, []float64) {
	var basis [][]float64
	var kept [][]float64
	var keptRHS []float64
	for i, row := range rows {
		residual := append([]float64{}, row...)
		for _, q := range basis {
			floats.AddScaled(residual, -floats.Dot(residual, q), q)
		}
		norm := floats.Norm(residual, 2)
		if norm <= rankTolerance*math.Max(1, floats.Norm(row, 2)) {
			continue
		}
		floats.Scale(1/norm, residual)
		basis = append(basis, residual)
		kept = append(kept, row)
		keptRHS = append(keptRHS, rhs[i])
	}
	return kept, keptRHS
}
