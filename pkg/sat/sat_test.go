package sat

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stringchem/netprune/pkg/api"
)

func TestOracle_Optimize(t *testing.T) {
	tests := []struct {
		name     string
		network  *api.Network
		feasible bool
		fluxes   map[string]float64
	}{
		{
			name: "should feed the objective from food",
			network: newNetwork("BM",
				rxn("EX_a", 0, 1000, map[string]float64{"a": 1}),
				rxn("R1", 0, 1000, map[string]float64{"a": -1, "b": 1}),
				rxn("BM", 0, 1000, map[string]float64{"b": -1}),
			),
			feasible: true,
			fluxes:   map[string]float64{"EX_a": 1, "R1": 1, "BM": 1},
		},
		{
			name: "should run a reversible reaction backwards",
			network: newNetwork("BM",
				rxn("EX_b", 0, 1000, map[string]float64{"b": 1}),
				rxn("R1", -1000, 1000, map[string]float64{"a": -1, "b": 1}),
				rxn("BM", 0, 1000, map[string]float64{"a": -1}),
			),
			feasible: true,
			fluxes:   map[string]float64{"EX_b": 1, "R1": -1, "BM": 1},
		},
		{
			name: "should fail without food",
			network: newNetwork("BM",
				rxn("R1", 0, 1000, map[string]float64{"a": -1, "b": 1}),
				rxn("BM", 0, 1000, map[string]float64{"b": -1}),
			),
			feasible: false,
		},
		{
			name: "should fail when a forced reaction has no sink",
			network: newNetwork("BM",
				rxn("EX_a", 0, 1000, map[string]float64{"a": 1}),
				rxn("EX_x", 1, 1000, map[string]float64{"x": 1}),
				rxn("BM", 0, 1000, map[string]float64{"a": -1}),
			),
			feasible: false,
		},
		{
			name: "should accept a closed cycle feeding the objective",
			network: newNetwork("BM",
				rxn("R1", 0, 1000, map[string]float64{"a": -1, "b": 1}),
				rxn("R2", 0, 1000, map[string]float64{"b": -1, "a": 1}),
				rxn("BM", 0, 1000, map[string]float64{"a": -1}),
			),
			feasible: true,
			fluxes:   map[string]float64{"R1": 1, "R2": 1, "BM": 1},
		},
		{
			name:     "should fail without objective",
			network:  newNetwork("", rxn("BM", 0, 1000, nil)),
			feasible: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			solution, err := NewOracle().Optimize(context.Background(), tt.network)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(solution.Feasible()).To(Equal(tt.feasible))
			if tt.feasible {
				g.Expect(solution.ObjectiveValue).To(Equal(1.0))
			}
			for id, flux := range tt.fluxes {
				g.Expect(solution.Flux(id)).To(Equal(flux), id)
			}
		})
	}
}

func TestOracle_OptimizeCancelled(t *testing.T) {
	g := NewGomegaWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOracle().Optimize(ctx, newNetwork("BM", rxn("BM", 0, 1, nil)))
	g.Expect(err).To(MatchError(context.Canceled))
}
