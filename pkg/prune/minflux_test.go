package prune

import (
	"context"
	"sync/atomic"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stringchem/netprune/pkg/api"
	"github.com/stringchem/netprune/pkg/bitstring"
)

func TestMinFluxDropsZeroFluxAndSmallestFirst(t *testing.T) {
	g := NewGomegaWithT(t)
	full := newNetwork("R4", "R1", "R2", "R3")
	oracle := &scriptedOracle{
		requirements: [][]string{{"R4"}},
		fluxes:       map[string]float64{"R1": 5.0, "R2": 0.0, "R3": 1e-12, "R4": 2.0},
	}

	pruned, err := NewPruner(oracle).MinFlux(context.Background(), full)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(pruned.ReactionIDs()).To(Equal([]string{"R4"}))

	b, err := bitstring.Encode(full, pruned)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(b).To(Equal(bitstring.Bitstring("0001")))
	// the input network stays untouched
	g.Expect(full.ReactionIDs()).To(Equal([]string{"R1", "R2", "R3", "R4"}))
}

func TestMinFluxStopsAtFirstFailure(t *testing.T) {
	g := NewGomegaWithT(t)
	// A carries the smallest flux and is required, so B and C survive even
	// though each of them could be removed.
	oracle := &scriptedOracle{
		requirements: [][]string{{"OBJ", "A"}},
		fluxes:       map[string]float64{"A": 1, "B": 2, "C": 3, "OBJ": 10},
	}

	pruned, err := NewPruner(oracle).MinFlux(context.Background(), newNetwork("OBJ", "A", "B", "C"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(pruned.ReactionIDs()).To(Equal([]string{"A", "B", "C", "OBJ"}))
	// initial check plus one rejected removal
	g.Expect(oracle.calls.Load()).To(Equal(int64(2)))
}

func TestMinFluxRemovesInFluxOrder(t *testing.T) {
	g := NewGomegaWithT(t)
	oracle := &scriptedOracle{
		requirements: [][]string{{"OBJ", "C"}},
		fluxes:       map[string]float64{"A": 1, "B": 2, "C": 3, "D": 4, "OBJ": 10},
	}

	pruned, err := NewPruner(oracle).MinFlux(context.Background(), newNetwork("OBJ", "D", "C", "B", "A"))
	g.Expect(err).ToNot(HaveOccurred())
	// A and B go, C is rejected and D is never attempted
	g.Expect(pruned.ReactionIDs()).To(Equal([]string{"C", "D", "OBJ"}))
}

func TestMinFluxBreaksTiesByID(t *testing.T) {
	g := NewGomegaWithT(t)
	oracle := &scriptedOracle{
		requirements: [][]string{{"OBJ", "EX", "R1"}, {"OBJ", "EX", "R2"}},
		fluxes:       map[string]float64{"EX": 2, "R1": 1, "R2": 1, "OBJ": 2},
	}
	full := newNetwork("OBJ", "EX", "R2", "R1")

	var first bitstring.Bitstring
	for i := 0; i < 5; i++ {
		pruned, err := NewPruner(oracle).MinFlux(context.Background(), full)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(pruned.ReactionIDs()).To(Equal([]string{"EX", "OBJ", "R2"}))
		b, err := bitstring.Encode(full, pruned)
		g.Expect(err).ToNot(HaveOccurred())
		if i == 0 {
			first = b
		}
		g.Expect(b).To(Equal(first))
	}
}

func TestMinFluxIsIdempotent(t *testing.T) {
	g := NewGomegaWithT(t)
	oracle := &scriptedOracle{
		requirements: [][]string{{"OBJ", "B", "D"}, {"OBJ", "A", "C"}},
		fluxes:       map[string]float64{"A": 3, "B": 1, "C": 0, "D": 2, "E": 0.5, "OBJ": 4},
	}
	p := NewPruner(oracle)

	once, err := p.MinFlux(context.Background(), newNetwork("OBJ", "A", "B", "C", "D", "E"))
	g.Expect(err).ToNot(HaveOccurred())
	twice, err := p.MinFlux(context.Background(), once)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(twice.ReactionIDs()).To(Equal(once.ReactionIDs()))

	res, err := p.Check(context.Background(), once)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res.Feasible).To(BeTrue())
}

func TestMinFluxRestoresTinyFluxReactionsWhenNeeded(t *testing.T) {
	g := NewGomegaWithT(t)
	// T carries almost no flux but is required.
	oracle := &scriptedOracle{
		requirements: [][]string{{"OBJ", "T"}},
		fluxes:       map[string]float64{"T": 1e-12, "Z": 0, "A": 5, "OBJ": 1},
	}

	pruned, err := NewPruner(oracle).MinFlux(context.Background(), newNetwork("OBJ", "A", "T", "Z"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(pruned.HasReaction("T")).To(BeTrue())
	g.Expect(pruned.HasReaction("Z")).To(BeFalse())
	g.Expect(pruned.HasReaction("OBJ")).To(BeTrue())
}

func TestMinFluxKeepsProtectedReactions(t *testing.T) {
	g := NewGomegaWithT(t)
	oracle := &scriptedOracle{
		requirements: [][]string{{"OBJ"}},
		fluxes:       map[string]float64{"EX": 0, "R1": 1, "OBJ": 1},
	}

	pruned, err := NewPruner(oracle, WithKeep("EX")).MinFlux(context.Background(), newNetwork("OBJ", "EX", "R1"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(pruned.ReactionIDs()).To(Equal([]string{"EX", "OBJ"}))
}

func TestMinFluxInfeasibleInput(t *testing.T) {
	g := NewGomegaWithT(t)
	oracle := &scriptedOracle{requirements: [][]string{{"missing"}}}

	_, err := NewPruner(oracle).MinFlux(context.Background(), newNetwork("OBJ", "A"))
	g.Expect(err).To(MatchError(ErrInfeasibleModel))
}

func TestMinFluxSweepsAfterEveryRemoval(t *testing.T) {
	g := NewGomegaWithT(t)
	var calls atomic.Int64
	// R3 only carries flux while R1 is present, R2 is essential
	oracle := OracleFunc(func(_ context.Context, n *api.Network) (*api.Solution, error) {
		calls.Add(1)
		if !n.HasReaction("R2") {
			return api.InfeasibleSolution(), nil
		}
		fluxes := map[string]float64{"BM": 1, "R2": 5}
		if n.HasReaction("R1") {
			fluxes["R1"] = 0.5
		}
		if n.HasReaction("R3") {
			fluxes["R3"] = 0
			if n.HasReaction("R1") {
				fluxes["R3"] = 2
			}
		}
		return &api.Solution{Status: api.StatusFeasible, ObjectiveValue: 1, Fluxes: fluxes}, nil
	})

	pruned, err := NewPruner(oracle).MinFlux(context.Background(), newNetwork("BM", "R1", "R2", "R3"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(pruned.ReactionIDs()).To(Equal([]string{"BM", "R2"}))
	// precondition, removing R1, failed removal of R2; R3 went without a check
	g.Expect(calls.Load()).To(Equal(int64(3)))
}
