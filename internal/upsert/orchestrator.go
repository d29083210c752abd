// =============================================================================
// OC Consolidator - Upsert Orchestrator
// =============================================================================
//
// This module submits consolidated records to the order store and classifies
// each outcome as created, updated or failed.
//
// SUBMISSION STRATEGY:
//   1. Validate every payload; invalid payloads fail without being sent
//   2. Submit the valid payloads as one batch call
//   3. If the batch call itself fails (transport error, not partial content),
//      submit each valid payload individually, in order, one at a time
//
// The store decides created-vs-updated by order number. This module only
// maps its answers back to the caller's record indices.
//
// CANCELLATION:
//   The context is checked before the batch call and before every fallback
//   call. Records not submitted when the context ends are marked Failed and
//   Submit returns the context error together with the partial outcome.
//
// =============================================================================

package upsert

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
	"github.com/ginjaninja78/oc-consolidator/pkg/metrics"
)

// =============================================================================
// SUBMITTER
// =============================================================================

// ItemResult is the store's answer for one payload.
type ItemResult struct {
	// Index is the payload's position in the batch request.
	Index    int    `json:"index"`
	Success  bool   `json:"success"`
	Created  bool   `json:"created"`
	EntityID int64  `json:"entity_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BatchResponse is the store's answer for a batch call. Partial failure is
// reported per item, never as an error.
type BatchResponse struct {
	Results []ItemResult `json:"results"`
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Failed  int          `json:"failed"`
}

// Submitter is an order store with upsert-by-order-number semantics.
// SubmitBatch returns an error only when the call as a whole failed.
type Submitter interface {
	SubmitBatch(ctx context.Context, payloads []OrderPayload) (BatchResponse, error)
	SubmitOne(ctx context.Context, payload OrderPayload) (ItemResult, error)
}

// =============================================================================
// OUTCOMES
// =============================================================================

// OutcomeKind classifies one submitted record.
type OutcomeKind string

const (
	OutcomeCreated OutcomeKind = "created"
	OutcomeUpdated OutcomeKind = "updated"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the result for one consolidated record.
type Outcome struct {
	// RecordRef is the record's index in the submitted slice.
	RecordRef   int         `json:"record_ref"`
	OrderNumber string      `json:"order_number"`
	Kind        OutcomeKind `json:"kind"`
	// EntityID is nil iff Kind is OutcomeFailed.
	EntityID *int64 `json:"entity_id,omitempty"`
	// ErrorMessage is set iff Kind is OutcomeFailed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// BatchOutcome aggregates the outcomes of one Submit call.
type BatchOutcome struct {
	Outcomes     []Outcome `json:"outcomes"`
	Total        int       `json:"total"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	Failed       int       `json:"failed"`
	UsedFallback bool      `json:"used_fallback"`
	// BatchError is the transport error that triggered the fallback.
	BatchError string `json:"batch_error,omitempty"`
}

// Failures returns the failed outcomes in record order.
func (b BatchOutcome) Failures() []Outcome {
	var failed []Outcome
	for _, o := range b.Outcomes {
		if o.Kind == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

const messageNoResult = "no result returned for record"

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator drives submissions against a Submitter.
type Orchestrator struct {
	submitter Submitter
	validator *Validator
	logger    *logger.Logger
	metrics   *metrics.ImportMetrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.ImportMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator returns an Orchestrator submitting to s.
func NewOrchestrator(s Submitter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		submitter: s,
		validator: NewValidator(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit upserts records.
//
// PARAMETERS:
//   - ctx: Cancels the submission between calls.
//   - records: The consolidated records, in submission order.
//
// RETURNS:
//   - One Outcome per record, in record order.
//   - ctx.Err() if the context ended before every record was submitted.
func (o *Orchestrator) Submit(ctx context.Context, records []types.ConsolidatedRecord) (BatchOutcome, error) {
	return o.SubmitPayloads(ctx, BuildPayloads(records))
}

// SubmitPayloads is Submit for payloads that are already built.
func (o *Orchestrator) SubmitPayloads(ctx context.Context, payloads []OrderPayload) (BatchOutcome, error) {
	outcomes := make([]Outcome, len(payloads))
	decided := make([]bool, len(payloads))

	// =========================================================================
	// STEP 1: VALIDATE
	// =========================================================================

	valid := make([]OrderPayload, 0, len(payloads))
	refs := make([]int, 0, len(payloads))

	for i, p := range payloads {
		if errs := o.validator.Validate(p); len(errs) > 0 {
			outcomes[i] = failed(i, p.OrderNumber, Summarize(errs))
			decided[i] = true
			continue
		}
		valid = append(valid, p)
		refs = append(refs, i)
	}

	if skipped := len(payloads) - len(valid); skipped > 0 {
		o.logger.Warn(o.logger.WithField(ctx, "invalid", skipped), "payloads failed validation")
	}

	result := BatchOutcome{}
	var runErr error

	if len(valid) > 0 {
		if err := ctx.Err(); err != nil {
			runErr = err
		} else {
			// =================================================================
			// STEP 2: BATCH
			// =================================================================

			resp, err := o.submitter.SubmitBatch(ctx, valid)
			if err == nil {
				applyBatch(outcomes, decided, refs, valid, resp)
				if ctxErr := ctx.Err(); ctxErr != nil && resp.Failed > 0 {
					runErr = ctxErr
				}
			} else {
				// =============================================================
				// STEP 3: SEQUENTIAL FALLBACK
				// =============================================================

				o.logger.Error(o.logger.WithField(ctx, "payloads", len(valid)), "batch upsert failed, falling back to individual calls", err)
				o.metrics.IncFallback()
				result.UsedFallback = true
				result.BatchError = err.Error()
				runErr = o.fallback(ctx, outcomes, decided, refs, valid)
			}
		}
	}

	for i := range outcomes {
		if decided[i] {
			continue
		}
		msg := messageNoResult
		if runErr != nil {
			msg = fmt.Sprintf("not submitted: %v", runErr)
		}
		outcomes[i] = failed(i, payloads[i].OrderNumber, msg)
	}

	result.Outcomes = outcomes
	result.Total = len(outcomes)
	for _, out := range outcomes {
		switch out.Kind {
		case OutcomeCreated:
			result.Created++
		case OutcomeUpdated:
			result.Updated++
		default:
			result.Failed++
		}
	}

	o.metrics.AddOutcomes(string(OutcomeCreated), result.Created)
	o.metrics.AddOutcomes(string(OutcomeUpdated), result.Updated)
	o.metrics.AddOutcomes(string(OutcomeFailed), result.Failed)

	o.logger.Info(o.logger.WithFields(ctx, map[string]any{
		"total":    result.Total,
		"created":  result.Created,
		"updated":  result.Updated,
		"failed":   result.Failed,
		"fallback": result.UsedFallback,
	}), "upsert finished")

	return result, runErr
}

// fallback submits payloads one at a time. A failed item never stops the
// loop; only the context does.
func (o *Orchestrator) fallback(ctx context.Context, outcomes []Outcome, decided []bool, refs []int, valid []OrderPayload) error {
	for j, p := range valid {
		if err := ctx.Err(); err != nil {
			return err
		}

		ref := refs[j]
		item, err := o.submitter.SubmitOne(ctx, p)
		if err != nil {
			outcomes[ref] = failed(ref, p.OrderNumber, err.Error())
		} else {
			outcomes[ref] = fromItem(ref, p.OrderNumber, item)
		}
		decided[ref] = true
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// applyBatch maps batch results back to record indices. Results with an
// index outside the request, or repeating an index, are ignored.
func applyBatch(outcomes []Outcome, decided []bool, refs []int, valid []OrderPayload, resp BatchResponse) {
	for _, item := range resp.Results {
		if item.Index < 0 || item.Index >= len(valid) {
			continue
		}
		ref := refs[item.Index]
		if decided[ref] {
			continue
		}
		outcomes[ref] = fromItem(ref, valid[item.Index].OrderNumber, item)
		decided[ref] = true
	}
}

func fromItem(ref int, orderNumber string, item ItemResult) Outcome {
	if !item.Success {
		msg := item.Error
		if msg == "" {
			msg = "rejected by order store"
		}
		return failed(ref, orderNumber, msg)
	}

	id := item.EntityID
	kind := OutcomeUpdated
	if item.Created {
		kind = OutcomeCreated
	}
	return Outcome{RecordRef: ref, OrderNumber: orderNumber, Kind: kind, EntityID: &id}
}

func failed(ref int, orderNumber, msg string) Outcome {
	return Outcome{RecordRef: ref, OrderNumber: orderNumber, Kind: OutcomeFailed, ErrorMessage: msg}
}
