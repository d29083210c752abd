package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
)

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(0, 0, 0))
	assert.Equal(t, 75.0, SuccessRate(2, 1, 4))
	assert.Equal(t, 100.0, SuccessRate(3, 0, 3))
}

func TestBuild(t *testing.T) {
	id := int64(5)
	outcome := upsert.BatchOutcome{
		Outcomes: []upsert.Outcome{
			{RecordRef: 0, OrderNumber: "OC-1", Kind: upsert.OutcomeCreated, EntityID: &id},
			{RecordRef: 1, OrderNumber: "OC-2", Kind: upsert.OutcomeFailed, ErrorMessage: "supplier_name is required"},
			{RecordRef: 2, OrderNumber: "", Kind: upsert.OutcomeFailed, ErrorMessage: "order_number is required"},
		},
		Total:   3,
		Created: 1,
		Failed:  2,
	}

	want := "Total records:   3\n" +
		"Created:         1\n" +
		"Updated:         0\n" +
		"Errors:          2\n" +
		"Success rate:    33.3%\n" +
		"\nErrors:\n" +
		"- OC-2: supplier_name is required\n" +
		"- record #3: order_number is required\n"
	assert.Equal(t, want, Build(outcome))
}

func TestBuildEmpty(t *testing.T) {
	got := Build(upsert.BatchOutcome{})
	assert.Contains(t, got, "Success rate:    0.0%")
	assert.NotContains(t, got, "\nErrors:\n")
}

func TestBuildMentionsFallback(t *testing.T) {
	got := Build(upsert.BatchOutcome{Total: 1, Updated: 1, UsedFallback: true, BatchError: "timeout"})
	assert.Contains(t, got, "Batch call failed (timeout)")
	assert.Contains(t, got, "Success rate:    100.0%")
}

func TestBuildImport(t *testing.T) {
	summary := ImportSummary{
		MainFile:       "oc_1.xlsx",
		DetailFile:     "oc_2.xlsx",
		MainRecords:    2,
		DetailRecords:  3,
		Consolidated:   3,
		WithDetails:    2,
		Placeholders:   1,
		Conflicts:      []string{"OC-1: CC-01, CC-02"},
		RejectedDetail: []types.RejectedRow{{Row: 7, Reason: "missing cost center code"}},
	}

	got := BuildImport(summary, nil)
	assert.Contains(t, got, "Main file:       oc_1.xlsx\n")
	assert.Contains(t, got, "Placeholders:    1\n")
	assert.Contains(t, got, "- OC-1: CC-01, CC-02\n")
	assert.Contains(t, got, "Rejected detail rows: 1\n- row 7: missing cost center code\n")
	assert.NotContains(t, got, "Rejected main rows")
	assert.NotContains(t, got, "Upsert")

	withOutcome := BuildImport(summary, &upsert.BatchOutcome{Total: 3, Created: 3})
	assert.Contains(t, withOutcome, "Upsert\n======\nTotal records:   3\n")
}
