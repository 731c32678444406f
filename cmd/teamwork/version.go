package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/teamwork"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of teamwork",
	Run: func(cmd *cobra.Command, args []string) {
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(teamwork.Version))
			return
		}
		printer(cmd).Banner(strings.TrimSpace(teamwork.Version))
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version")
	rootCmd.AddCommand(versionCmd)
}
