package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/shopstate"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shopstate version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "shopstate", shopstate.Version)
			return err
		},
	}
}
