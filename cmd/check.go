package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stringchem/netprune/pkg/selector"
)

var checkopts = runOpts{}

func NewCheckCmd() *cobra.Command {

	checkCmd := &cobra.Command{
		Use:   "check [network]",
		Short: "Check whether a network produces biomass",
		Long: `Checks the objective flux of a network. A network without objective first gets random food sources
and biomass precursors until it is feasible, which shows whether the selection settings can work at all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := settings(cmd.Flags(), rootopts.configFile, &checkopts)
			if err != nil {
				return err
			}
			n, err := loadNetwork(args, c)
			if err != nil {
				return err
			}

			if n.Objective() == "" {
				runner, err := newRunner(c)
				if err != nil {
					return err
				}
				selection, err := runner.Setup(cmd.Context(), n)
				if err != nil {
					return err
				}
				fmt.Printf("feasible after %d attempts\n", selection.Attempts)
				fmt.Printf("inputs: %v\nbiomass: %v\n", selection.Inputs, selection.Precursors)
				fmt.Printf("objective flux: %g\n", selection.Result.ObjectiveFlux(selection.Network))
				return nil
			}

			pruner, err := newPruner(c)
			if err != nil {
				return err
			}
			res, err := pruner.Check(cmd.Context(), n)
			if err != nil {
				return err
			}
			logrus.Debugf("Inputs of %s: %v", n.Name, selector.Inputs(n))
			if !res.Feasible {
				return fmt.Errorf("network %s is infeasible: %w", n.Name, res.Reason)
			}
			fmt.Printf("objective flux: %g\n", res.ObjectiveFlux(n))
			return nil
		},
	}

	addRunFlags(checkCmd.Flags(), &checkopts)
	return checkCmd
}
