package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/teamwork/internal/logging"
	"github.com/aretw0/teamwork/internal/presentation/tui"
	"github.com/aretw0/teamwork/pkg/config"
	"github.com/aretw0/teamwork/pkg/registry"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger = logging.New(slog.LevelInfo)
)

var rootCmd = &cobra.Command{
	Use:   "teamwork",
	Short: "Teamwork checks and inspects Team Pattern components",
	Long: `Teamwork enforces role contracts (fetcher, worker, investigator, error,
delegator) on Go components annotated with //team:<kind> directives.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		cfg = loaded
		logger = logging.NewWithFormat(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("roles", "", "YAML file of custom role definitions (overrides roles_file)")
}

func printer(cmd *cobra.Command) *tui.Printer {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return tui.NewPrinter(cmd.OutOrStdout(), termenv.WithProfile(termenv.Ascii))
	}
	return tui.NewPrinter(cmd.OutOrStdout())
}

// loadRegistry returns the built-in roles plus the configured custom roles.
func loadRegistry(cmd *cobra.Command) (*registry.Registry, error) {
	reg := registry.New()
	path := cfg.RolesFile
	if flag, _ := cmd.Flags().GetString("roles"); flag != "" {
		path = flag
	}
	if path == "" {
		return reg, nil
	}
	handles, err := reg.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("custom roles loaded", "file", path, "count", len(handles))
	return reg, nil
}
