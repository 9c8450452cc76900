package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultBound is the flux bound used for reactions without explicit bounds
// and for exchange and biomass reactions created at runtime.
const DefaultBound = 1000.0

var (
	ErrUnknownReaction   = errors.New("unknown reaction")
	ErrDuplicateReaction = errors.New("duplicate reaction")
)

type Status string

const (
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
)

type Metabolite struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Reaction struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name,omitempty"`
	Metabolites          map[string]float64 `json:"metabolites"`
	LowerBound           float64            `json:"lowerBound"`
	UpperBound           float64            `json:"upperBound"`
	Boundary             bool               `json:"boundary,omitempty"`
	ObjectiveCoefficient float64            `json:"objectiveCoefficient,omitempty"`
}

func (r *Reaction) Reversible() bool {
	return r.LowerBound < 0 && r.UpperBound > 0
}

// Substrates returns the metabolites consumed when the reaction runs forward.
func (r *Reaction) Substrates() []string {
	return r.participants(func(c float64) bool { return c < 0 })
}

// Products returns the metabolites produced when the reaction runs forward.
func (r *Reaction) Products() []string {
	return r.participants(func(c float64) bool { return c > 0 })
}

func (r *Reaction) participants(match func(float64) bool) []string {
	ids := []string{}
	for id, c := range r.Metabolites {
		if match(c) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (r *Reaction) Copy() *Reaction {
	c := *r
	c.Metabolites = make(map[string]float64, len(r.Metabolites))
	for k, v := range r.Metabolites {
		c.Metabolites[k] = v
	}
	return &c
}

// String renders the reaction equation, e.g. "a + b <=> ab".
func (r *Reaction) String() string {
	side := func(ids []string, sign float64) string {
		terms := []string{}
		for _, id := range ids {
			c := r.Metabolites[id] * sign
			if c == 1 {
				terms = append(terms, id)
			} else {
				terms = append(terms, fmt.Sprintf("%g %s", c, id))
			}
		}
		return strings.Join(terms, " + ")
	}
	arrow := "-->"
	if r.Reversible() {
		arrow = "<=>"
	} else if r.UpperBound <= 0 && r.LowerBound < 0 {
		arrow = "<--"
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", side(r.Substrates(), -1), arrow, side(r.Products(), 1)))
}

// NetworkFile is the serialized form of a network.
type NetworkFile struct {
	Name        string       `json:"name,omitempty"`
	Monomers    string       `json:"monomers,omitempty"`
	MaxLength   int          `json:"maxLength,omitempty"`
	Objective   string       `json:"objective,omitempty"`
	Metabolites []Metabolite `json:"metabolites"`
	Reactions   []*Reaction  `json:"reactions"`
}

// Network is the mutable reaction network the pruners operate on. It is not
// safe for concurrent use; concurrent work needs a Clone per goroutine.
type Network struct {
	Name      string
	Monomers  string
	MaxLength int

	metabolites map[string]*Metabolite
	reactions   map[string]*Reaction
	objective   string
}

func NewNetwork(name string) *Network {
	return &Network{
		Name:        name,
		metabolites: map[string]*Metabolite{},
		reactions:   map[string]*Reaction{},
	}
}

// FromFile builds a network from its serialized form. Reactions referring
// to undeclared metabolites declare them implicitly.
func FromFile(f *NetworkFile) (*Network, error) {
	n := NewNetwork(f.Name)
	n.Monomers = f.Monomers
	n.MaxLength = f.MaxLength
	for _, m := range f.Metabolites {
		n.AddMetabolite(m)
	}
	for _, r := range f.Reactions {
		if r.ID == "" {
			return nil, fmt.Errorf("reaction without id in network %s", f.Name)
		}
		if r.LowerBound > r.UpperBound {
			return nil, fmt.Errorf("reaction %s has lower bound %g above upper bound %g", r.ID, r.LowerBound, r.UpperBound)
		}
		if err := n.AddReaction(r.Copy()); err != nil {
			return nil, err
		}
	}
	if f.Objective != "" {
		if err := n.SetObjective(f.Objective); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// File returns the serialized form, with metabolites and reactions sorted by ID.
func (n *Network) File() *NetworkFile {
	f := &NetworkFile{
		Name:        n.Name,
		Monomers:    n.Monomers,
		MaxLength:   n.MaxLength,
		Objective:   n.objective,
		Metabolites: []Metabolite{},
		Reactions:   []*Reaction{},
	}
	for _, id := range n.MetaboliteIDs() {
		f.Metabolites = append(f.Metabolites, *n.metabolites[id])
	}
	for _, id := range n.ReactionIDs() {
		f.Reactions = append(f.Reactions, n.reactions[id].Copy())
	}
	return f
}

func (n *Network) AddMetabolite(m Metabolite) {
	if _, exists := n.metabolites[m.ID]; exists {
		return
	}
	n.metabolites[m.ID] = &m
}

func (n *Network) Metabolite(id string) (*Metabolite, bool) {
	m, ok := n.metabolites[id]
	return m, ok
}

func (n *Network) MetaboliteIDs() []string {
	ids := make([]string, 0, len(n.metabolites))
	for id := range n.metabolites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddReaction inserts a reaction. It is also how a removed reaction gets
// restored, since removal hands the untouched reaction back to the caller.
func (n *Network) AddReaction(r *Reaction) error {
	if _, exists := n.reactions[r.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateReaction, r.ID)
	}
	for id := range r.Metabolites {
		n.AddMetabolite(Metabolite{ID: id})
	}
	n.reactions[r.ID] = r
	return nil
}

// RemoveReaction takes a reaction out of the network and returns it. Removing
// the objective reaction clears the objective.
func (n *Network) RemoveReaction(id string) (*Reaction, error) {
	r, exists := n.reactions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReaction, id)
	}
	delete(n.reactions, id)
	if n.objective == id {
		n.objective = ""
	}
	return r, nil
}

func (n *Network) Reaction(id string) (*Reaction, bool) {
	r, ok := n.reactions[id]
	return r, ok
}

func (n *Network) HasReaction(id string) bool {
	_, ok := n.reactions[id]
	return ok
}

// ReactionIDs returns the IDs of all present reactions in ascending order.
func (n *Network) ReactionIDs() []string {
	ids := make([]string, 0, len(n.reactions))
	for id := range n.reactions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (n *Network) ReactionCount() int {
	return len(n.reactions)
}

// BoundaryReactions returns the IDs of present exchange reactions in ascending order.
func (n *Network) BoundaryReactions() []string {
	ids := []string{}
	for _, id := range n.ReactionIDs() {
		if n.reactions[id].Boundary {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetObjective designates the reaction to maximize. An empty id clears the objective.
func (n *Network) SetObjective(id string) error {
	if id != "" && !n.HasReaction(id) {
		return fmt.Errorf("%w: objective %s", ErrUnknownReaction, id)
	}
	if prev, ok := n.reactions[n.objective]; ok {
		prev.ObjectiveCoefficient = 0
	}
	n.objective = id
	if r, ok := n.reactions[id]; ok {
		r.ObjectiveCoefficient = 1
	}
	return nil
}

func (n *Network) Objective() string {
	return n.objective
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	c := NewNetwork(n.Name)
	c.Monomers = n.Monomers
	c.MaxLength = n.MaxLength
	c.objective = n.objective
	for id, m := range n.metabolites {
		mc := *m
		c.metabolites[id] = &mc
	}
	for id, r := range n.reactions {
		c.reactions[id] = r.Copy()
	}
	return c
}

// Solution is the result of a single oracle call.
type Solution struct {
	Status         Status
	ObjectiveValue float64
	Fluxes         map[string]float64
}

func (s *Solution) Feasible() bool {
	return s != nil && s.Status == StatusFeasible
}

func (s *Solution) Flux(id string) float64 {
	if s == nil {
		return 0
	}
	return s.Fluxes[id]
}

func InfeasibleSolution() *Solution {
	return &Solution{Status: StatusInfeasible, Fluxes: map[string]float64{}}
}
