package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the role contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reg.Definitions())
		}
		return printer(cmd).Roles(reg.Definitions())
	},
}

func init() {
	rolesCmd.Flags().Bool("json", false, "Print definitions as JSON")
	rootCmd.AddCommand(rolesCmd)
}
