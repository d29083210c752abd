// =============================================================================
// OC Consolidator - Import Pipeline
// =============================================================================
//
// This module orchestrates one import: two spreadsheets in, consolidated
// purchase orders out.
//
// IMPORT PIPELINE:
//   1. Decode the main and detail spreadsheets (first sheet only)
//   2. Locate each header row and map its columns to canonical fields
//   3. Extract typed records; rows failing the retention rules are rejected
//   4. Consolidate records into one record per order number
//   5. (Run only) Submit the consolidated records to the order store
//   6. (Run only) Build the text report
//
// FAILURE MODES:
//   Decoding, header and required-column failures abort the whole import.
//   Everything else is captured in the preview, outcome and report.
//
// =============================================================================

package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/internal/consolidate"
	"github.com/ginjaninja78/oc-consolidator/internal/extract"
	"github.com/ginjaninja78/oc-consolidator/internal/headers"
	"github.com/ginjaninja78/oc-consolidator/internal/report"
	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
	"github.com/ginjaninja78/oc-consolidator/pkg/metrics"
)

// File roles.
const (
	RoleMain   = "main"
	RoleDetail = "detail"
)

// ErrNoSubmitter is returned by Run and Commit on a preview-only importer.
var ErrNoSubmitter = errors.New("no order store configured")

// =============================================================================
// INPUT AND RESULT STRUCTURES
// =============================================================================

// Input is one uploaded spreadsheet.
type Input struct {
	// Name is the original file name; its extension selects the decoder.
	Name string

	// Data is the raw file content.
	Data []byte
}

// InputFromFile reads a spreadsheet from disk.
func InputFromFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Input{Name: filepath.Base(path), Data: data}, nil
}

// FileError is a fatal failure tied to one of the two input files.
type FileError struct {
	Role string
	Name string
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s file: %v", e.Role, e.Err)
	}
	return fmt.Sprintf("%s file %s: %v", e.Role, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Conflict is a detail group whose cost-center codes disagree.
type Conflict struct {
	OrderNumber string   `json:"order_number"`
	Codes       []string `json:"codes"`
}

// Preview is everything known about an import before submission.
type Preview struct {
	ImportID   string `json:"import_id"`
	MainFile   string `json:"main_file"`
	DetailFile string `json:"detail_file"`

	// MainHeaderRow and DetailHeaderRow are 1-based sheet rows.
	MainHeaderRow   int `json:"main_header_row"`
	DetailHeaderRow int `json:"detail_header_row"`

	MainCount         int `json:"main_count"`
	DetailCount       int `json:"detail_count"`
	ConsolidatedCount int `json:"consolidated_count"`
	WithDetailsCount  int `json:"with_details_count"`
	PlaceholderCount  int `json:"placeholder_count"`
	DefaultedDates    int `json:"defaulted_dates"`

	SampleMain         []types.MainRecord         `json:"sample_main"`
	SampleDetail       []types.DetailRecord       `json:"sample_detail"`
	SampleConsolidated []types.ConsolidatedRecord `json:"sample_consolidated"`

	Conflicts      []Conflict          `json:"conflicts,omitempty"`
	RejectedMain   []types.RejectedRow `json:"rejected_main,omitempty"`
	RejectedDetail []types.RejectedRow `json:"rejected_detail,omitempty"`

	// Records holds every consolidated record, in output order.
	Records []types.ConsolidatedRecord `json:"-"`
}

// Summary converts the preview for the report builder.
func (p *Preview) Summary() report.ImportSummary {
	conflicts := make([]string, 0, len(p.Conflicts))
	for _, c := range p.Conflicts {
		conflicts = append(conflicts, fmt.Sprintf("%s: %s", c.OrderNumber, strings.Join(c.Codes, ", ")))
	}
	return report.ImportSummary{
		MainFile:       p.MainFile,
		DetailFile:     p.DetailFile,
		MainRecords:    p.MainCount,
		DetailRecords:  p.DetailCount,
		Consolidated:   p.ConsolidatedCount,
		WithDetails:    p.WithDetailsCount,
		Placeholders:   p.PlaceholderCount,
		Conflicts:      conflicts,
		DefaultedDates: p.DefaultedDates,
		RejectedMain:   p.RejectedMain,
		RejectedDetail: p.RejectedDetail,
	}
}

// Result is the outcome of Run.
type Result struct {
	Preview  *Preview            `json:"preview"`
	Outcome  upsert.BatchOutcome `json:"outcome"`
	Report   string              `json:"report"`
	Duration time.Duration       `json:"duration"`
}

// =============================================================================
// IMPORTER STRUCTURE
// =============================================================================

// Importer runs imports. It is safe for concurrent use; runs share no state.
type Importer struct {
	settings     config.ImportConfig
	csv          config.CSVSettings
	extractor    *extract.Extractor
	engine       *consolidate.Engine
	orchestrator *upsert.Orchestrator
	submitter    upsert.Submitter
	logger       *logger.Logger
	metrics      *metrics.ImportMetrics
	now          func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithSubmitter enables Run and Commit against s.
func WithSubmitter(s upsert.Submitter) Option {
	return func(i *Importer) { i.submitter = s }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.ImportMetrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// WithClock overrides "today" for date fallbacks and placeholders.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// New creates an Importer.
//
// PARAMETERS:
//   - cfg: The application configuration; Import and CSV sections are used.
//   - opts: Optional submitter, logger, metrics and clock.
//
// RETURNS:
//   - A new Importer. Without WithSubmitter it can only preview.
func New(cfg *config.Config, opts ...Option) *Importer {
	i := &Importer{
		logger: logger.Nop(),
		now:    time.Now,
	}
	if cfg != nil {
		i.settings = cfg.Import
		i.csv = cfg.CSV
	}
	for _, opt := range opts {
		opt(i)
	}

	i.extractor = extract.New(extract.WithClock(i.now))
	i.engine = consolidate.New(consolidate.WithClock(i.now))
	if i.submitter != nil {
		i.orchestrator = upsert.NewOrchestrator(i.submitter,
			upsert.WithLogger(i.logger),
			upsert.WithMetrics(i.metrics),
		)
	}
	return i
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Preview runs the pipeline up to consolidation.
//
// PARAMETERS:
//   - ctx: Cancels the import between rows and stages.
//   - mainIn: The main spreadsheet (one row per order).
//   - detailIn: The detail spreadsheet (one row per cost line).
//
// RETURNS:
//   - The preview, including every consolidated record.
//   - A *FileError for fatal input problems, or the context error.
func (i *Importer) Preview(ctx context.Context, mainIn, detailIn Input) (*Preview, error) {
	importID := uuid.NewString()
	ctx = i.logger.WithImportID(ctx, importID)

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	return i.preview(ctx, importID, mainIn, detailIn)
}

// Run previews and then submits every consolidated record.
//
// RETURNS:
//   - The preview, the upsert outcome and the rendered report.
//   - A fatal input error, ErrNoSubmitter, or the context error. When the
//     context ends during submission the partial Result is returned with it.
func (i *Importer) Run(ctx context.Context, mainIn, detailIn Input) (*Result, error) {
	if i.orchestrator == nil {
		return nil, ErrNoSubmitter
	}

	start := time.Now()
	importID := uuid.NewString()
	ctx = i.logger.WithImportID(ctx, importID)

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	preview, err := i.preview(ctx, importID, mainIn, detailIn)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 5: SUBMIT
	// =========================================================================

	submitStart := time.Now()
	outcome, err := i.orchestrator.Submit(ctx, preview.Records)
	i.metrics.ObserveStage("submit", time.Since(submitStart))

	// =========================================================================
	// STEP 6: REPORT
	// =========================================================================

	result := &Result{
		Preview:  preview,
		Outcome:  outcome,
		Report:   report.BuildImport(preview.Summary(), &outcome),
		Duration: time.Since(start),
	}
	i.metrics.ObserveStage("total", result.Duration)

	if err != nil {
		i.logger.Error(ctx, "import interrupted during submission", err)
		return result, err
	}
	i.logger.Info(i.logger.WithField(ctx, "duration_ms", result.Duration.Milliseconds()), "import completed")
	return result, nil
}

// Commit submits records consolidated by an earlier Preview.
func (i *Importer) Commit(ctx context.Context, records []types.ConsolidatedRecord) (upsert.BatchOutcome, string, error) {
	if i.orchestrator == nil {
		return upsert.BatchOutcome{}, "", ErrNoSubmitter
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	outcome, err := i.orchestrator.Submit(ctx, records)
	return outcome, report.Build(outcome), err
}

func (i *Importer) preview(ctx context.Context, importID string, mainIn, detailIn Input) (*Preview, error) {
	// =========================================================================
	// STEPS 1-3: READ, MAP AND EXTRACT BOTH FILES
	// =========================================================================

	readStart := time.Now()

	mainGrid, mainMapping, mainHeader, err := i.load(RoleMain, mainIn, headers.MainDictionary, headers.MainRequired)
	if err != nil {
		return nil, err
	}
	detailGrid, detailMapping, detailHeader, err := i.load(RoleDetail, detailIn, headers.DetailDictionary, headers.DetailRequired)
	if err != nil {
		return nil, err
	}
	i.metrics.ObserveStage("read", time.Since(readStart))

	extractStart := time.Now()
	mains, err := i.extractor.Main(ctx, mainGrid, mainMapping, mainHeader+1)
	if err != nil {
		return nil, err
	}
	details, err := i.extractor.Detail(ctx, detailGrid, detailMapping, detailHeader+1)
	if err != nil {
		return nil, err
	}
	i.metrics.ObserveStage("extract", time.Since(extractStart))
	i.metrics.AddExtracted(RoleMain, len(mains.Records), len(mains.Rejected))
	i.metrics.AddExtracted(RoleDetail, len(details.Records), len(details.Rejected))

	if n := len(mains.Rejected) + len(details.Rejected); n > 0 {
		i.logger.Warn(i.logger.WithFields(ctx, map[string]any{
			"rejected_main":   len(mains.Rejected),
			"rejected_detail": len(details.Rejected),
		}), "rows rejected during extraction")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 4: CONSOLIDATE
	// =========================================================================

	consolidateStart := time.Now()
	records := i.engine.Consolidate(mains.Records, details.Records)
	i.metrics.ObserveStage("consolidate", time.Since(consolidateStart))

	preview := &Preview{
		ImportID:          importID,
		MainFile:          mainIn.Name,
		DetailFile:        detailIn.Name,
		MainHeaderRow:     mainHeader + 1,
		DetailHeaderRow:   detailHeader + 1,
		MainCount:         len(mains.Records),
		DetailCount:       len(details.Records),
		ConsolidatedCount: len(records),
		DefaultedDates:    mains.DefaultedDates,
		RejectedMain:      mains.Rejected,
		RejectedDetail:    details.Rejected,
		Records:           records,
	}

	for _, r := range records {
		if r.HasDetails() {
			preview.WithDetailsCount++
		}
		if r.Placeholder {
			preview.PlaceholderCount++
		}
		if len(r.ConflictingCostCenters) > 0 {
			preview.Conflicts = append(preview.Conflicts, Conflict{OrderNumber: r.OrderNumber, Codes: r.ConflictingCostCenters})
			i.logger.Warn(i.logger.WithFields(ctx, map[string]any{
				"order_number": r.OrderNumber,
				"codes":        r.ConflictingCostCenters,
				"used":         r.CostCenterCode,
			}), "detail rows disagree on cost center code")
		}
	}

	if preview.PlaceholderCount > 0 {
		i.logger.Warn(i.logger.WithField(ctx, "placeholders", preview.PlaceholderCount), "orders without a main row were synthesized for review")
	}
	i.metrics.AddConsolidated("main", len(records)-preview.PlaceholderCount)
	i.metrics.AddConsolidated("placeholder", preview.PlaceholderCount)

	n := i.sampleSize()
	preview.SampleMain = sample(mains.Records, n)
	preview.SampleDetail = sample(details.Records, n)
	preview.SampleConsolidated = sample(records, n)

	i.logger.Info(i.logger.WithFields(ctx, map[string]any{
		"main":         preview.MainCount,
		"detail":       preview.DetailCount,
		"consolidated": preview.ConsolidatedCount,
		"placeholders": preview.PlaceholderCount,
	}), "consolidation finished")

	return preview, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// load decodes one file and maps its header.
//
// RETURNS:
//   - The grid, the column mapping and the 0-based header row index.
//   - A *FileError when the file is unreadable, has no recognizable header
//     row, or lacks a required column.
func (i *Importer) load(role string, in Input, dict headers.Dictionary, required []headers.Field) (sheet.Grid, headers.Mapping, int, error) {
	fail := func(err error) (sheet.Grid, headers.Mapping, int, error) {
		return sheet.Grid{}, nil, -1, &FileError{Role: role, Name: in.Name, Err: err}
	}

	grid, err := sheet.Decode(in.Name, in.Data, i.csv)
	if err != nil {
		return fail(err)
	}

	headerRow, err := headers.Locate(grid, dict, i.settings.HeaderScanRows)
	if err != nil {
		return fail(err)
	}

	mapping := headers.MapColumns(grid.Row(headerRow), dict)
	if err := mapping.Require(required...); err != nil {
		return fail(err)
	}

	return grid, mapping, headerRow, nil
}

func (i *Importer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.settings.Timeout > 0 {
		return context.WithTimeout(ctx, i.settings.Timeout)
	}
	return context.WithCancel(ctx)
}

func (i *Importer) sampleSize() int {
	if i.settings.SampleSize > 0 {
		return i.settings.SampleSize
	}
	return config.DefaultSampleSize
}

func sample[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
