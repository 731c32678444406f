package main

import (
	"fmt"

	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/lint"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [packages...]",
	Short: "Check annotated components against their role contracts",
	Long: `Loads the packages (default ./...) and reports every component whose
//team:<kind> directive it does not honor. Exits non-zero on violations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		reg, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		mutation, err := domain.ParseMutationStrategy(flagOr(cmd, "mutation", cfg.Runtime.MutationCheck))
		if err != nil {
			return err
		}
		branching, err := domain.ParseBranchingStrategy(flagOr(cmd, "branching", cfg.Runtime.BranchingCheck))
		if err != nil {
			return err
		}

		logger.Debug("checking", "dir", dir, "packages", args, "mutation", mutation, "branching", branching)
		vs, err := lint.CheckDir(cmd.Context(), dir, args,
			lint.WithRegistry(reg),
			lint.WithMutationStrategy(mutation),
			lint.WithBranchingStrategy(branching),
		)
		if err != nil {
			return err
		}

		if n := printer(cmd).Violations(vs); n > 0 {
			return fmt.Errorf("%d role contract violation(s)", n)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("dir", ".", "Module directory to load packages from")
	checkCmd.Flags().String("mutation", "", "Mutation check strategy: type-based|structural-scan")
	checkCmd.Flags().String("branching", "", "Branching check strategy: structural-scan|none")
	rootCmd.AddCommand(checkCmd)
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
