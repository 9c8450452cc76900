package main

import (
	"github.com/spf13/cobra"
	"github.com/stringchem/netprune/pkg/config"
)

type initOpts struct {
	network string
	force   bool
}

var initopts = initOpts{}

func NewInitCmd() *cobra.Command {

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a netprune.yaml settings file with the default settings",
		Long:  `Create a settings file which all other commands pick up. Flags which are set explicitly on the command line still win over the file`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return (&config.Init{File: rootopts.configFile, Network: initopts.network, Force: initopts.force}).Init()
		},
	}

	initCmd.Flags().StringVarP(&initopts.network, "network", "n", "", "default network file or URL")
	initCmd.Flags().BoolVarP(&initopts.force, "force", "f", false, "overwrite an existing settings file")
	return initCmd
}
