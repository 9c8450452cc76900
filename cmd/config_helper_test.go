package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
	"github.com/stringchem/netprune/pkg/api/netprune"
	"github.com/stringchem/netprune/pkg/bitstring"
	"github.com/stringchem/netprune/pkg/config"
	"github.com/stringchem/netprune/pkg/fba"
	"github.com/stringchem/netprune/pkg/report"
	"github.com/stringchem/netprune/pkg/sat"
	"github.com/stringchem/netprune/pkg/trial"
)

func TestSortedKeys(t *testing.T) {
	g := NewGomegaWithT(t)
	g.Expect(sortedKeys(map[string]int{"c": 1, "a": 2, "b": 3})).To(Equal([]string{"a", "b", "c"}))
	g.Expect(sortedKeys(map[int]bool{})).To(BeEmpty())
}

func TestSizeHistogram(t *testing.T) {
	g := NewGomegaWithT(t)
	g.Expect(sizeHistogram([]int{3, 5, 3, 4, 3})).To(Equal(map[int]int{3: 3, 4: 1, 5: 1}))
	g.Expect(sizeHistogram(nil)).To(BeEmpty())
}

func TestSettings(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		args     []string
		wantErr  bool
		validate func(g *WithT, c *netprune.Config)
	}{
		{
			name: "should use the defaults without file and flags",
			validate: func(g *WithT, c *netprune.Config) {
				d := config.Defaults()
				d.Store = &netprune.Store{}
				g.Expect(c).To(Equal(d))
			},
		},
		{
			name: "should take the settings file over the defaults",
			file: "reps: 7\nseed: 3\noracle: sat\n",
			validate: func(g *WithT, c *netprune.Config) {
				g.Expect(c.Reps).To(Equal(7))
				g.Expect(c.Seed).To(Equal(uint64(3)))
				g.Expect(c.Oracle).To(Equal(config.OracleSAT))
				g.Expect(c.Inputs).To(Equal(2))
			},
		},
		{
			name: "should take explicit flags over the settings file",
			file: "reps: 7\nseed: 3\n",
			args: []string{"--reps", "9", "--keep", "R1", "--keep", "R2", "--store"},
			validate: func(g *WithT, c *netprune.Config) {
				g.Expect(c.Reps).To(Equal(9))
				g.Expect(c.Seed).To(Equal(uint64(3)))
				g.Expect(c.Keep).To(Equal([]string{"R1", "R2"}))
				g.Expect(c.Store.Enabled).To(BeTrue())
			},
		},
		{
			name: "should not reset file settings with flag defaults",
			file: "inputs: 5\n",
			args: []string{"--outputs", "1"},
			validate: func(g *WithT, c *netprune.Config) {
				g.Expect(c.Inputs).To(Equal(5))
				g.Expect(c.Outputs).To(Equal(1))
			},
		},
		{
			name:    "should reject an unknown oracle flag",
			args:    []string{"--oracle", "milp"},
			wantErr: true,
		},
		{
			name:    "should reject unknown settings",
			file:    "repetitions: 7\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			file := filepath.Join(t.TempDir(), config.DefaultFile)
			if tt.file != "" {
				g.Expect(os.WriteFile(file, []byte(tt.file), 0644)).To(Succeed())
			}
			opts := runOpts{}
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			addRunFlags(flags, &opts)
			g.Expect(flags.Parse(tt.args)).To(Succeed())

			c, err := settings(flags, file, &opts)
			if tt.wantErr {
				g.Expect(err).To(HaveOccurred())
				return
			}
			g.Expect(err).ToNot(HaveOccurred())
			tt.validate(g, c)
		})
	}
}

func TestOutputPath(t *testing.T) {
	g := NewGomegaWithT(t)
	c := &netprune.Config{OutputDir: "data"}
	g.Expect(outputPath("", c, "sample.csv")).To(Equal(filepath.Join("data", "sample.csv")))
	g.Expect(outputPath("out.csv.gz", c, "sample.csv")).To(Equal("out.csv.gz"))
}

func TestNewOracle(t *testing.T) {
	g := NewGomegaWithT(t)

	oracle, err := newOracle(&netprune.Config{Oracle: config.OracleLP})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(oracle).To(BeAssignableToTypeOf(&fba.Optimizer{}))

	oracle, err = newOracle(&netprune.Config{Oracle: config.OracleSAT})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(oracle).To(BeAssignableToTypeOf(&sat.Oracle{}))

	_, err = newOracle(&netprune.Config{Oracle: "milp"})
	g.Expect(err).To(MatchError(ContainSubstring("unknown oracle")))
}

func TestOutcomes(t *testing.T) {
	g := NewGomegaWithT(t)

	minflux := minFluxOutcomes(&trial.MinFluxReport{
		Records: []report.InputRecord{
			{Inputs: []string{"a", "b"}, Biomass: []string{"aa"}, Bitstring: "0110"},
		},
	})
	g.Expect(minflux).To(HaveLen(1))
	g.Expect(minflux[0].Occurrences).To(Equal(1))
	g.Expect(minflux[0].Reactions).To(Equal(2))
	g.Expect(minflux[0].Method).To(Equal(bitstring.MethodMinFlux))
	g.Expect(minflux[0].Inputs).To(Equal([]string{"a", "b"}))

	sample := sampleOutcomes(&trial.SampleReport{
		Selection: &trial.Selection{Inputs: []string{"a"}, Precursors: []string{"ab"}},
		Entries: []bitstring.Entry{
			{Bitstring: "111", Occurrences: 4, Reactions: 3, Method: bitstring.MethodRandom},
			{Bitstring: "011", Occurrences: 1, Reactions: 2, Method: bitstring.MethodMinFlux},
		},
	})
	g.Expect(sample).To(HaveLen(2))
	g.Expect(sample[0].Occurrences).To(Equal(4))
	g.Expect(sample[1].Method).To(Equal(bitstring.MethodMinFlux))
	g.Expect(sample[1].Biomass).To(Equal([]string{"ab"}))
}
