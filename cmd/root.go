package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stringchem/netprune/pkg/config"
)

type rootOpts struct {
	logLevel   string
	configFile string
}

var rootopts = rootOpts{}

var rootCmd = &cobra.Command{
	Use:   "netprune",
	Short: "netprune explores minimal reaction subsets of chemical reaction networks",
	Long: `The tool strips reactions from a reaction network as long as a flux balance oracle still finds
a positive biomass flux, either by minimum flux or in random order, and records which reactions survive as bitstrings`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(rootopts.logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootopts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&rootopts.configFile, "config", "c", config.DefaultFile, "settings file, flags which are set explicitly take precedence")
}

func Execute() {
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewMinFluxCmd())
	rootCmd.AddCommand(NewSampleCmd())
	rootCmd.AddCommand(NewEncodeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
