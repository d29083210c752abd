package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/pkg/migrate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the embedded migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadRuntime("validate")
		if err != nil {
			return err
		}
		if cfg.Store.Target == config.TargetAPI {
			if err := cfg.RequireAPI(); err != nil {
				return err
			}
		}
		if err := migrate.Validate(); err != nil {
			return fmt.Errorf("embedded migrations are invalid: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration is valid")
		fmt.Fprintf(out, "Store target:    %s\n", cfg.Store.Target)
		if cfg.Store.Target == config.TargetDB {
			fmt.Fprintf(out, "Database driver: %s\n", cfg.DB.Driver)
		}
		fmt.Fprintf(out, "Reports dir:     %s\n", cfg.Reports.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
