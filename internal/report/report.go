// =============================================================================
// OC Consolidator - Report Builder
// =============================================================================
//
// This module renders the human-readable summary of an import. Output is
// deterministic: the same outcome always produces the same text.
//
// REPORT LAYOUT:
//   Total records:   N
//   Created:         N
//   Updated:         N
//   Errors:          N
//   Success rate:    NN.N%
//
//   Errors:
//   - OC-1: supplier_name is required
//
// =============================================================================

package report

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
)

// SuccessRate returns (created+updated)/total*100, or 0 when total is 0.
func SuccessRate(created, updated, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(created+updated) / float64(total) * 100
}

// Build renders the upsert summary.
//
// PARAMETERS:
//   - outcome: The result of one Submit call.
//
// RETURNS:
//   - The report text, one failure line per failed record.
func Build(outcome upsert.BatchOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total records:   %d\n", outcome.Total)
	fmt.Fprintf(&b, "Created:         %d\n", outcome.Created)
	fmt.Fprintf(&b, "Updated:         %d\n", outcome.Updated)
	fmt.Fprintf(&b, "Errors:          %d\n", outcome.Failed)
	fmt.Fprintf(&b, "Success rate:    %.1f%%\n", SuccessRate(outcome.Created, outcome.Updated, outcome.Total))

	if outcome.UsedFallback {
		fmt.Fprintf(&b, "\nBatch call failed (%s); records were submitted individually.\n", outcome.BatchError)
	}

	failures := outcome.Failures()
	if len(failures) > 0 {
		b.WriteString("\nErrors:\n")
		for _, f := range failures {
			order := f.OrderNumber
			if order == "" {
				order = fmt.Sprintf("record #%d", f.RecordRef+1)
			}
			fmt.Fprintf(&b, "- %s: %s\n", order, f.ErrorMessage)
		}
	}

	return b.String()
}

// =============================================================================
// IMPORT SUMMARY
// =============================================================================

// ImportSummary describes the stages before submission.
type ImportSummary struct {
	MainFile       string
	DetailFile     string
	MainRecords    int
	DetailRecords  int
	Consolidated   int
	WithDetails    int
	Placeholders   int
	Conflicts      []string
	DefaultedDates int
	RejectedMain   []types.RejectedRow
	RejectedDetail []types.RejectedRow
}

// BuildImport renders the consolidation summary, followed by the upsert
// report when outcome is non-nil.
func BuildImport(summary ImportSummary, outcome *upsert.BatchOutcome) string {
	var b strings.Builder

	b.WriteString("Consolidation\n")
	b.WriteString("=============\n")
	if summary.MainFile != "" || summary.DetailFile != "" {
		fmt.Fprintf(&b, "Main file:       %s\n", summary.MainFile)
		fmt.Fprintf(&b, "Detail file:     %s\n", summary.DetailFile)
	}
	fmt.Fprintf(&b, "Main records:    %d\n", summary.MainRecords)
	fmt.Fprintf(&b, "Detail records:  %d\n", summary.DetailRecords)
	fmt.Fprintf(&b, "Consolidated:    %d\n", summary.Consolidated)
	fmt.Fprintf(&b, "With details:    %d\n", summary.WithDetails)
	fmt.Fprintf(&b, "Placeholders:    %d\n", summary.Placeholders)
	if summary.DefaultedDates > 0 {
		fmt.Fprintf(&b, "Dates defaulted: %d\n", summary.DefaultedDates)
	}

	if len(summary.Conflicts) > 0 {
		b.WriteString("\nInconsistent cost centers (first code used):\n")
		for _, c := range summary.Conflicts {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	writeRejected(&b, "main", summary.RejectedMain)
	writeRejected(&b, "detail", summary.RejectedDetail)

	if outcome != nil {
		b.WriteString("\nUpsert\n")
		b.WriteString("======\n")
		b.WriteString(Build(*outcome))
	}

	return b.String()
}

func writeRejected(b *strings.Builder, schema string, rows []types.RejectedRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\nRejected %s rows: %d\n", schema, len(rows))
	for _, r := range rows {
		fmt.Fprintf(b, "- row %d: %s\n", r.Row, r.Reason)
	}
}
