package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stringchem/netprune/pkg/bitstring"
	"github.com/stringchem/netprune/pkg/network"
)

type encodeOpts struct {
	decode []string
}

var encodeopts = encodeOpts{}

func NewEncodeCmd() *cobra.Command {

	encodeCmd := &cobra.Command{
		Use:   "encode full [pruned...]",
		Short: "Translate between pruned networks and bitstrings",
		Long: `Prints the bitstring of every pruned network relative to the full network. With --decode the
reactions set in the given bitstrings are printed instead`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			full, err := network.Load(args[0])
			if err != nil {
				return err
			}
			ref := bitstring.NewReference(full)
			fmt.Printf("# %d reactions, reference %s\n", ref.Len(), ref.Digest())

			for _, location := range args[1:] {
				pruned, err := network.Load(location)
				if err != nil {
					return err
				}
				b, err := ref.Encode(pruned)
				if err != nil {
					return fmt.Errorf("failed to encode %s: %w", location, err)
				}
				fmt.Printf("%s %s\n", b, location)
			}
			for _, b := range encodeopts.decode {
				ids, err := ref.Decode(bitstring.Bitstring(b))
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", b, strings.Join(ids, " "))
			}
			return nil
		},
	}

	encodeCmd.Flags().StringArrayVarP(&encodeopts.decode, "decode", "d", nil, "bitstring to decode, can be given multiple times")
	return encodeCmd
}
