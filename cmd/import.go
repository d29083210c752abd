// =============================================================================
// OC Consolidator - Import Command
// =============================================================================
//
// This file defines the 'import' command, the main command of the tool. It
// runs the whole pipeline on one pair of spreadsheets.
//
// COMMAND USAGE:
//   consolidator import --main oc_1.xlsx --detail oc_2.xlsx [flags]
//
// FLAGS:
//   --main     : The main spreadsheet (one row per order)
//   --detail   : The detail spreadsheet (one row per cost line)
//   --dry-run  : Consolidate and report without submitting
//   --target   : Override store.target ("api" or "db")
//
// PROCESSING PIPELINE:
//   1. Load configuration and open the order store
//   2. Read both spreadsheets
//   3. Consolidate and submit (or only consolidate with --dry-run)
//   4. Print the report and write it to the reports directory
//   5. Write the rejected-row log
//   6. Archive the inputs when the run had no failures
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/internal/importer"
	"github.com/ginjaninja78/oc-consolidator/internal/report"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
	"github.com/ginjaninja78/oc-consolidator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	mainPath   string
	detailPath string
	dryRun     bool
	target     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Consolidate two spreadsheets and upsert the orders",
	Long: `The import command reads the main and detail spreadsheets, consolidates
them into one record per order number, and upserts every record into the
order store.

The whole batch is sent in one call first. If that call fails, each order is
sent on its own so that one bad order never blocks the others.

After the run:
  - The report is printed and written to the reports directory
  - Rejected rows are logged next to the report
  - With reports.archive_inputs, the inputs are archived when nothing failed`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&mainPath, "main", "", "Path to the main spreadsheet (required)")
	importCmd.Flags().StringVar(&detailPath, "detail", "", "Path to the detail spreadsheet (required)")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Consolidate and report without submitting")
	importCmd.Flags().StringVar(&target, "target", "", `Override store.target ("api" or "db")`)

	_ = importCmd.MarkFlagRequired("main")
	_ = importCmd.MarkFlagRequired("detail")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runImport(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// STEP 1: CONFIGURATION AND ORDER STORE
	// =========================================================================

	cfg, logg, err := loadRuntime("import")
	if err != nil {
		return err
	}
	if target != "" {
		cfg.Store.Target = target
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --target: %w", err)
		}
	}

	opts := []importer.Option{importer.WithLogger(logg)}
	if !dryRun {
		handle, err := openSubmitter(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer handle.Close(ctx, logg)
		opts = append(opts, importer.WithSubmitter(handle.Submitter))
	}
	imp := importer.New(cfg, opts...)

	// =========================================================================
	// STEP 2: READ INPUTS
	// =========================================================================

	mainIn, err := importer.InputFromFile(mainPath)
	if err != nil {
		return err
	}
	detailIn, err := importer.InputFromFile(detailPath)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: CONSOLIDATE AND SUBMIT
	// =========================================================================

	var (
		preview *importer.Preview
		text    string
		failed  int
	)
	if dryRun {
		preview, err = imp.Preview(ctx, mainIn, detailIn)
		if err != nil {
			return describeImportError(err)
		}
		text = report.BuildImport(preview.Summary(), nil)
	} else {
		result, runErr := imp.Run(ctx, mainIn, detailIn)
		if result == nil {
			return describeImportError(runErr)
		}
		preview, text, failed = result.Preview, result.Report, result.Outcome.Failed
		if runErr != nil {
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if _, err := writeArtifacts(ctx, cfg, logg, preview, text); err != nil {
				logg.Error(ctx, "failed to write partial report", err)
			}
			return describeImportError(runErr)
		}
	}

	// =========================================================================
	// STEP 4-5: REPORT AND REJECTED ROWS
	// =========================================================================

	fmt.Fprintln(cmd.OutOrStdout(), text)

	fm, err := writeArtifacts(ctx, cfg, logg, preview, text)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 6: ARCHIVE INPUTS
	// =========================================================================

	if cfg.Reports.ArchiveInputs && !dryRun && failed == 0 {
		for _, path := range []string{mainPath, detailPath} {
			archived, err := fm.ArchiveInput(path)
			if err != nil {
				logg.Error(logg.WithField(ctx, "file", path), "failed to archive input", err)
				continue
			}
			logg.Info(logg.WithField(ctx, "archive", archived), "input archived")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d order(s) failed to upsert", failed)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeArtifacts writes the report and the rejected-row log of a run.
func writeArtifacts(ctx context.Context, cfg *config.Config, logg *logger.Logger, preview *importer.Preview, text string) (*utils.FileManager, error) {
	fm := utils.NewFileManager(cfg.Reports.OutputDir, cfg.Reports.ArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}

	base := fm.GenerateFileName(cfg.Reports.FileNameFormat, "", nil)

	reportPath, err := fm.WriteReport(base+"_report.txt", text)
	if err != nil {
		return nil, err
	}
	logg.Info(logg.WithField(ctx, "path", reportPath), "report written")

	entries := rejectedEntries(preview.MainFile, importer.RoleMain, preview.RejectedMain)
	entries = append(entries, rejectedEntries(preview.DetailFile, importer.RoleDetail, preview.RejectedDetail)...)
	logPath, err := fm.WriteRejectedLog(entries, base+"_rejected.log")
	if err != nil {
		return nil, err
	}
	if logPath != "" {
		logg.Warn(logg.WithFields(ctx, map[string]any{"path": logPath, "rows": len(entries)}), "rejected rows logged")
	}

	return fm, nil
}

func rejectedEntries(file, role string, rows []types.RejectedRow) []utils.RejectedRowEntry {
	entries := make([]utils.RejectedRowEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, utils.RejectedRowEntry{File: file, Role: role, Row: r.Row, Reason: r.Reason})
	}
	return entries
}

// describeImportError renders fatal import errors with their code.
func describeImportError(err error) error {
	if err == nil {
		return nil
	}
	coded := importer.CodedError(err)
	return fmt.Errorf("%s: %w", coded.Code(), err)
}
