// =============================================================================
// OC Consolidator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the bootstrap
// shared by every subcommand: configuration loading, logging, and opening
// the order store.
//
// COBRA CLI STRUCTURE:
//   rootCmd (consolidator)
//   ├── importCmd   (consolidator import)
//   ├── previewCmd  (consolidator preview)
//   ├── serveCmd    (consolidator serve)
//   ├── migrateCmd  (consolidator migrate)
//   ├── validateCmd (consolidator validate)
//   └── versionCmd  (consolidator version)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/internal/orderapi"
	"github.com/ginjaninja78/oc-consolidator/internal/orderstore"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	"github.com/ginjaninja78/oc-consolidator/pkg/db"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
	"github.com/ginjaninja78/oc-consolidator/pkg/migrate"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the YAML configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "consolidator",
	Short: "OC Consolidator - Merge purchase-order spreadsheets and upsert them",
	Long: `OC Consolidator reads two purchase-order spreadsheets exported by the
accounting system, a main file with one row per order and a detail file with
one row per cost line, and merges them into one record per order number.
The consolidated orders are then upserted into the order store, either a
remote order-management API or a local database.

Key Features:
  - Header row detection with synonym dictionaries (Spanish and English)
  - Chilean date and amount normalization
  - Batch upsert with an automatic per-order fallback
  - Text reports, rejected-row logs and input archiving
  - HTTP API with a preview-then-commit flow

Example Usage:
  consolidator import --main oc_1.xlsx --detail oc_2.xlsx
  consolidator preview --main oc_1.xlsx --detail oc_2.xlsx
  consolidator serve
  consolidator migrate up`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (a missing file is not an error)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// BOOTSTRAP HELPERS
// =============================================================================

// loadRuntime loads the configuration and builds the logger from it.
func loadRuntime(service string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if verbose {
		level = zerolog.DebugLevel
	}
	logg := logger.New(logger.Options{
		ServiceName: service,
		Level:       level,
		Format:      cfg.Log.Format,
		Output:      os.Stderr,
	})
	return cfg, logg, nil
}

// openDBStore connects to the configured database, applies migrations when
// auto_migrate is on, and returns the order store with a close function.
func openDBStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*orderstore.Store, *db.Client, error) {
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate.MaybeRun(ctx, cfg.DB, logg, client); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	store, err := orderstore.New(client, logg)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, client, nil
}

// storeHandle is the order store selected by store.target.
type storeHandle struct {
	Submitter upsert.Submitter

	// Local and DB are set only when the target is "db".
	Local *orderstore.Store
	DB    *db.Client
}

// Close releases the database connection, if any.
func (h *storeHandle) Close(ctx context.Context, logg *logger.Logger) {
	if h == nil || h.DB == nil {
		return
	}
	if err := h.DB.Close(); err != nil {
		logg.Error(ctx, "error closing database", err)
	}
}

// openSubmitter opens the order store selected by store.target.
func openSubmitter(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*storeHandle, error) {
	switch cfg.Store.Target {
	case config.TargetDB:
		store, client, err := openDBStore(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
		return &storeHandle{Submitter: store, Local: store, DB: client}, nil

	default:
		if err := cfg.RequireAPI(); err != nil {
			return nil, err
		}
		client, err := orderapi.NewClient(cfg.Store.BaseURL,
			orderapi.WithToken(cfg.Store.APIToken),
			orderapi.WithTimeout(cfg.Store.Timeout),
		)
		if err != nil {
			return nil, err
		}
		return &storeHandle{Submitter: client}, nil
	}
}
