package prune

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
)

// DefaultEpsilon is the smallest objective flux that counts as production.
const DefaultEpsilon = 1e-10

var (
	ErrInfeasibleModel   = errors.New("model is infeasible")
	ErrZeroObjectiveFlux = errors.New("objective flux below epsilon")
	ErrOracleTimeout     = errors.New("oracle call timed out")
	ErrNoObjective       = errors.New("network has no objective reaction")
)

// Oracle solves the flux problem of a network. Implementations must not
// modify the network and must be safe for concurrent use on distinct
// networks.
type Oracle interface {
	Optimize(ctx context.Context, n *api.Network) (*api.Solution, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, n *api.Network) (*api.Solution, error)

func (f OracleFunc) Optimize(ctx context.Context, n *api.Network) (*api.Solution, error) {
	return f(ctx, n)
}

// Result is the outcome of a feasibility check. Reason is set when the
// network is not feasible.
type Result struct {
	Feasible bool
	Solution *api.Solution
	Reason   error
}

// ObjectiveFlux returns the objective flux of a feasible result and 0 otherwise.
func (r *Result) ObjectiveFlux(n *api.Network) float64 {
	if r == nil || !r.Feasible {
		return 0
	}
	return r.Solution.Flux(n.Objective())
}

type Option func(*Pruner)

func WithEpsilon(epsilon float64) Option {
	return func(p *Pruner) {
		p.epsilon = epsilon
	}
}

// WithOracleTimeout bounds every single oracle call. A call running into the
// timeout counts as infeasible.
func WithOracleTimeout(timeout time.Duration) Option {
	return func(p *Pruner) {
		p.timeout = timeout
	}
}

// WithKeep protects reactions from removal in addition to the objective.
func WithKeep(ids ...string) Option {
	return func(p *Pruner) {
		for _, id := range ids {
			p.keep[id] = true
		}
	}
}

type Pruner struct {
	oracle  Oracle
	epsilon float64
	timeout time.Duration
	keep    map[string]bool
}

func NewPruner(oracle Oracle, opts ...Option) *Pruner {
	p := &Pruner{
		oracle:  oracle,
		epsilon: DefaultEpsilon,
		keep:    map[string]bool{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pruner) Epsilon() float64 {
	return p.epsilon
}

// Check runs the oracle on the current state of the network.
func (p *Pruner) Check(ctx context.Context, n *api.Network) (*Result, error) {
	objective := n.Objective()
	if objective == "" {
		return nil, ErrNoObjective
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	solution, err := p.optimize(callCtx, n)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logrus.Warnf("Oracle call exceeded %v on %d reactions, treating as infeasible.", p.timeout, n.ReactionCount())
			return &Result{Solution: api.InfeasibleSolution(), Reason: ErrOracleTimeout}, nil
		}
		return nil, fmt.Errorf("oracle failed: %w", err)
	}

	if !solution.Feasible() {
		return &Result{Solution: solution, Reason: ErrInfeasibleModel}, nil
	}
	if flux := solution.Flux(objective); math.Abs(flux) < p.epsilon {
		return &Result{Solution: solution, Reason: fmt.Errorf("%w: %g", ErrZeroObjectiveFlux, flux)}, nil
	}
	return &Result{Feasible: true, Solution: solution}, nil
}

type answer struct {
	solution *api.Solution
	err      error
}

// optimize returns as soon as ctx is done, even when the oracle itself never
// looks at ctx. The oracle works on a clone, so an abandoned call can finish
// in the background while the caller keeps changing n.
func (p *Pruner) optimize(ctx context.Context, n *api.Network) (*api.Solution, error) {
	if ctx.Done() == nil {
		return p.oracle.Optimize(ctx, n)
	}
	c := n.Clone()
	done := make(chan answer, 1)
	go func() {
		solution, err := p.oracle.Optimize(ctx, c)
		done <- answer{solution: solution, err: err}
	}()
	select {
	case a := <-done:
		return a.solution, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Keep returns the reactions protected in addition to the objective.
func (p *Pruner) Keep() []string {
	ids := make([]string, 0, len(p.keep))
	for id := range p.keep {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Pruner) protected(n *api.Network, id string) bool {
	return id == n.Objective() || p.keep[id]
}

// candidates returns the present reactions which may be removed, in ascending ID order.
func (p *Pruner) candidates(n *api.Network) []string {
	ids := []string{}
	for _, id := range n.ReactionIDs() {
		if !p.protected(n, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// precondition checks the starting state of a pruning run.
func (p *Pruner) precondition(ctx context.Context, n *api.Network) (*Result, error) {
	res, err := p.Check(ctx, n)
	if err != nil {
		return nil, err
	}
	if !res.Feasible {
		return nil, fmt.Errorf("can't prune network %s: %w", n.Name, res.Reason)
	}
	return res, nil
}

// restore puts a removed reaction back. The reaction came out of the same
// network, so a failure means the network was modified concurrently.
func restore(n *api.Network, r *api.Reaction) {
	if err := n.AddReaction(r); err != nil {
		panic(fmt.Sprintf("restoring reaction %s: %v", r.ID, err))
	}
}
