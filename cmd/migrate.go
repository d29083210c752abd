package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/oc-consolidator/pkg/db"
	"github.com/ginjaninja78/oc-consolidator/pkg/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|version|redo|reset|up-to VERSION|to VERSION]",
	Short: "Manage the schema of the local order store",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadRuntime("migrate")
		if err != nil {
			return err
		}

		command := "up"
		if len(args) > 0 {
			command, args = args[0], args[1:]
		}

		client, err := db.New(cmd.Context(), cfg.DB, logg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer client.Close()

		sqlDB, err := client.SQL()
		if err != nil {
			return err
		}

		ctx := logg.WithFields(cmd.Context(), map[string]any{"driver": cfg.DB.Driver, "command": command})
		if command == "to" {
			if len(args) != 1 {
				return fmt.Errorf("migrate to requires exactly one VERSION argument")
			}
			err = migrate.MigrateToVersion(ctx, sqlDB, cfg.DB.Driver, args[0])
		} else {
			err = migrate.Run(ctx, sqlDB, cfg.DB.Driver, command, args...)
		}
		if err != nil {
			logg.Error(ctx, "migration failed", err)
			return err
		}
		logg.Info(ctx, "migration finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
