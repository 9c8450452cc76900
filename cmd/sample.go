package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stringchem/netprune/pkg/report"
	"github.com/stringchem/netprune/pkg/store"
)

var sampleopts = runOpts{}

func NewSampleCmd() *cobra.Command {

	sampleCmd := &cobra.Command{
		Use:   "sample [network]",
		Short: "Prune one network by minimum flux once and randomly many times",
		Long: `Chooses food sources and biomass precursors until the network produces biomass, prunes it once by
minimum flux and then repeatedly in random order. The CSV output holds every distinct pruned network as a
bitstring with the number of times it was found, its reaction count and the method which found it`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := settings(cmd.Flags(), rootopts.configFile, &sampleopts)
			if err != nil {
				return err
			}
			n, err := loadNetwork(args, c)
			if err != nil {
				return err
			}
			runner, err := newRunner(c)
			if err != nil {
				return err
			}

			rep, err := runner.Sample(cmd.Context(), n)
			if err != nil {
				return err
			}
			logrus.Infof("Minimum flux pruning kept %d reactions.", rep.MinFlux.Count())
			logSizes(rep.Sizes)

			path := outputPath(sampleopts.output, c, report.SampleFileName(n.Monomers, n.MaxLength, c.Inputs, c.Outputs, c.Reps))
			err = report.WriteFile(path, func(w io.Writer) error {
				return report.WriteEntries(w, rep.Entries)
			})
			if err != nil {
				return err
			}

			return saveRun(c, &store.Run{
				Kind:      store.KindSample,
				Network:   n.Name,
				Digest:    rep.Reference.Digest(),
				Reference: rep.Reference.IDs(),
				Oracle:    c.Oracle,
				Epsilon:   c.Epsilon,
				Seed:      c.Seed,
				Reps:      c.Reps,
			}, sampleOutcomes(rep))
		},
	}

	addRunFlags(sampleCmd.Flags(), &sampleopts)
	return sampleCmd
}
