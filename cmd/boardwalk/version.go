package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of boardwalk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "boardwalk version %s\n", strings.TrimSpace(boardwalk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
