package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stringchem/netprune/pkg/report"
	"github.com/stringchem/netprune/pkg/store"
)

var minfluxopts = runOpts{}

func NewMinFluxCmd() *cobra.Command {

	minfluxCmd := &cobra.Command{
		Use:   "minflux [network]",
		Short: "Prune by minimum flux for many random food source selections",
		Long: `Chooses the biomass precursors once and then, for every repetition, a new set of food sources which
lets the network produce biomass. Every such network gets pruned by minimum flux. The CSV output holds the
food sources, the biomass precursors and the bitstring of the surviving reactions per repetition`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := settings(cmd.Flags(), rootopts.configFile, &minfluxopts)
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

			rep, err := runner.MinFluxTrials(cmd.Context(), n)
			if err != nil {
				return err
			}
			logrus.Infof("Pruned %d food source groups.", len(rep.Records))

			path := outputPath(minfluxopts.output, c, report.MinFluxFileName(n.Monomers, n.MaxLength, c.Reps, c.Inputs, c.Outputs))
			err = report.WriteFile(path, func(w io.Writer) error {
				return report.WriteInputRecords(w, rep.Records)
			})
			if err != nil {
				return err
			}

			return saveRun(c, &store.Run{
				Kind:      store.KindMinFlux,
				Network:   n.Name,
				Digest:    rep.Reference.Digest(),
				Reference: rep.Reference.IDs(),
				Oracle:    c.Oracle,
				Epsilon:   c.Epsilon,
				Seed:      c.Seed,
				Reps:      c.Reps,
			}, minFluxOutcomes(rep))
		},
	}

	addRunFlags(minfluxCmd.Flags(), &minfluxopts)
	return minfluxCmd
}
