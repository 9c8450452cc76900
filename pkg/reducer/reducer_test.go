package reducer

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stringchem/netprune/pkg/api"
)

func polymerNetwork() *api.Network {
	return newNetwork("biomass",
		newExchange("a"),
		newExchange("b"),
		newReaction("a+b=ab", -api.DefaultBound, map[string]float64{"a": -1, "b": -1, "ab": 1}),
		newReaction("ab+a=aab", -api.DefaultBound, map[string]float64{"ab": -1, "a": -1, "aab": 1}),
		newReaction("c+c=cc", -api.DefaultBound, map[string]float64{"c": -2, "cc": 1}),
		newReaction("cc+a=cca", 0, map[string]float64{"cc": -1, "a": -1, "cca": 1}),
		newReaction("biomass", 0, map[string]float64{"aab": -1}),
	)
}

func TestScope(t *testing.T) {
	tests := []struct {
		name    string
		network *api.Network
		scope   []string
	}{
		{
			name:    "should discover nothing without food",
			network: newNetwork("", newReaction("a+b=ab", 0, map[string]float64{"a": -1, "b": -1, "ab": 1})),
			scope:   []string{},
		},
		{
			name:    "should discover polymers of the food",
			network: polymerNetwork(),
			scope:   []string{"a", "aab", "ab", "b"},
		},
		{
			name: "should fire reversible reactions backwards",
			network: newNetwork("",
				newExchange("ab"),
				newReaction("a+b=ab", -api.DefaultBound, map[string]float64{"a": -1, "b": -1, "ab": 1}),
			),
			scope: []string{"a", "ab", "b"},
		},
		{
			name: "should not fire irreversible reactions backwards",
			network: newNetwork("",
				newExchange("ab"),
				newReaction("a+b=ab", 0, map[string]float64{"a": -1, "b": -1, "ab": 1}),
			),
			scope: []string{"ab"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			g.Expect(Scope(tt.network)).To(Equal(tt.scope))
		})
	}
}

func TestReduce(t *testing.T) {
	g := NewGomegaWithT(t)
	n := polymerNetwork()

	removed, err := Reduce(n)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(removed).To(Equal([]string{"c+c=cc", "cc+a=cca"}))
	g.Expect(n.ReactionIDs()).To(Equal([]string{"EX_a", "EX_b", "a+b=ab", "ab+a=aab", "biomass"}))
	g.Expect(n.Objective()).To(Equal("biomass"))
}

func TestReduceKeepsProtectedReactions(t *testing.T) {
	g := NewGomegaWithT(t)
	n := newNetwork("biomass",
		newExchange("a"),
		newReaction("b+b=bb", 0, map[string]float64{"b": -2, "bb": 1}),
		newReaction("c+c=cc", 0, map[string]float64{"c": -2, "cc": 1}),
		newReaction("biomass", 0, map[string]float64{"bb": -1}),
	)

	removed, err := Reduce(n, "c+c=cc")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(removed).To(Equal([]string{"b+b=bb"}))
	g.Expect(n.HasReaction("biomass")).To(BeTrue())
	g.Expect(n.HasReaction("c+c=cc")).To(BeTrue())
}

func TestReduceIsIdempotent(t *testing.T) {
	g := NewGomegaWithT(t)
	n := polymerNetwork()

	_, err := Reduce(n)
	g.Expect(err).ToNot(HaveOccurred())
	removed, err := Reduce(n)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(removed).To(BeEmpty())
}
