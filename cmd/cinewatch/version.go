package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinewatch/internal/api"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cinewatch %s\n", api.Version)
	},
}
