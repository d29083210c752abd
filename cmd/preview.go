// =============================================================================
// OC Consolidator - Preview Command
// =============================================================================
//
// COMMAND USAGE:
//   consolidator preview --main oc_1.xlsx --detail oc_2.xlsx [--json]
//
// Runs the pipeline up to consolidation and prints the summary and a sample
// of each stage. Nothing is submitted and nothing is written to disk.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/oc-consolidator/internal/importer"
	"github.com/ginjaninja78/oc-consolidator/internal/report"
)

var previewJSON bool

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Consolidate two spreadsheets without submitting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadRuntime("preview")
		if err != nil {
			return err
		}

		mainIn, err := importer.InputFromFile(mainPath)
		if err != nil {
			return err
		}
		detailIn, err := importer.InputFromFile(detailPath)
		if err != nil {
			return err
		}

		preview, err := importer.New(cfg, importer.WithLogger(logg)).Preview(cmd.Context(), mainIn, detailIn)
		if err != nil {
			return describeImportError(err)
		}

		out := cmd.OutOrStdout()
		if previewJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(preview)
		}
		printPreview(out, preview)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&mainPath, "main", "", "Path to the main spreadsheet (required)")
	previewCmd.Flags().StringVar(&detailPath, "detail", "", "Path to the detail spreadsheet (required)")
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "Print the preview as JSON")

	_ = previewCmd.MarkFlagRequired("main")
	_ = previewCmd.MarkFlagRequired("detail")
}

func printPreview(out io.Writer, p *importer.Preview) {
	fmt.Fprintf(out, "Header rows: main %d, detail %d\n\n", p.MainHeaderRow, p.DetailHeaderRow)
	fmt.Fprintln(out, report.BuildImport(p.Summary(), nil))

	fmt.Fprintln(out, "Sample consolidated records")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, r := range p.SampleConsolidated {
		flag := ""
		if r.NeedsReview() {
			flag = "  [review]"
		}
		fmt.Fprintf(out, "%-12s %-10s %-24.24s %14s  %-8s %d line(s)%s\n",
			r.OrderNumber, r.Date, r.SupplierName, r.Amount.StringFixed(2), r.CostCenterCode, len(r.Details), flag)
	}
}
