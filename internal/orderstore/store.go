package orderstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	"github.com/ginjaninja78/oc-consolidator/pkg/db"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

// txRunner is satisfied by *db.Client.
type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Store upserts purchase orders by order number. It implements
// upsert.Submitter, so the orchestrator can write to it directly.
type Store struct {
	db        txRunner
	repo      *Repository
	validator *upsert.Validator
	logger    *logger.Logger
}

// New builds a Store on the provided database client.
func New(client txRunner, logg *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		db:        client,
		repo:      NewRepository(client.DB()),
		validator: upsert.NewValidator(),
		logger:    logg,
	}, nil
}

// Upsert creates the order when its number is new and overwrites it
// otherwise, replacing all lines. It returns the entity id and whether the
// order was created.
func (s *Store) Upsert(ctx context.Context, payload upsert.OrderPayload) (int64, bool, error) {
	payload.OrderNumber = strings.TrimSpace(payload.OrderNumber)
	if errs := s.validator.Validate(payload); len(errs) > 0 {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, upsert.Summarize(errs)).
			WithDetails(validationDetails(errs))
	}

	incoming, err := toModel(payload)
	if err != nil {
		return 0, false, err
	}

	var (
		id      int64
		created bool
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.FindByOrderNumberWithTx(tx, incoming.OrderNumber)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.repo.CreateWithTx(tx, incoming); err != nil {
				return err
			}
			id, created = incoming.ID, true
			return nil
		case err != nil:
			return err
		}

		incoming.ID = existing.ID
		incoming.CreatedAt = existing.CreatedAt
		if err := s.repo.UpdateWithTx(tx, incoming); err != nil {
			return err
		}
		id = existing.ID
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "order_number") {
			return 0, false, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number written concurrently")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, false, ctxErr
		}
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert purchase order")
	}
	return id, created, nil
}

// SubmitOne implements upsert.Submitter. Validation and storage failures
// are reported in the result; only context errors are returned.
func (s *Store) SubmitOne(ctx context.Context, payload upsert.OrderPayload) (upsert.ItemResult, error) {
	id, created, err := s.Upsert(ctx, payload)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return upsert.ItemResult{}, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return upsert.ItemResult{}, err
		}
		return upsert.ItemResult{Success: false, Error: errorText(err)}, nil
	}
	return upsert.ItemResult{Success: true, Created: created, EntityID: id}, nil
}

// SubmitBatch implements upsert.Submitter. Each payload is written in its
// own transaction, so one bad order never rolls back the others.
//
// A context that ends before the first order is written fails the call.
// Once an order has been attempted, the orders already stored keep their
// results and the rest are reported as failed items.
func (s *Store) SubmitBatch(ctx context.Context, payloads []upsert.OrderPayload) (upsert.BatchResponse, error) {
	resp := upsert.BatchResponse{Results: make([]upsert.ItemResult, 0, len(payloads))}
	for i, p := range payloads {
		item, err := s.SubmitOne(ctx, p)
		if err != nil {
			if i == 0 {
				return upsert.BatchResponse{}, err
			}
			for j := i; j < len(payloads); j++ {
				resp.Results = append(resp.Results, upsert.ItemResult{Index: j, Error: err.Error()})
				resp.Failed++
			}
			s.logger.Warn(s.logger.WithFields(ctx, map[string]any{
				"stored":  i,
				"skipped": len(payloads) - i,
			}), "batch upsert interrupted")
			return resp, nil
		}
		item.Index = i
		switch {
		case !item.Success:
			resp.Failed++
		case item.Created:
			resp.Created++
		default:
			resp.Updated++
		}
		resp.Results = append(resp.Results, item)
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"orders":  len(payloads),
		"created": resp.Created,
		"updated": resp.Updated,
		"failed":  resp.Failed,
	}), "batch upsert stored")
	return resp, nil
}

// Get loads an order and its lines by order number.
func (s *Store) Get(ctx context.Context, orderNumber string) (*PurchaseOrder, error) {
	trimmed := strings.TrimSpace(orderNumber)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, trimmed)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found").
			WithDetails(map[string]string{"order_number": trimmed})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load purchase order")
	}
	return order, nil
}

// PendingReview counts stored orders flagged for manual correction.
func (s *Store) PendingReview(ctx context.Context) (int64, error) {
	n, err := s.repo.CountNeedingReview(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders needing review")
	}
	return n, nil
}

func toModel(p upsert.OrderPayload) (*PurchaseOrder, error) {
	date, err := time.Parse(types.DateLayout, p.Date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order date")
	}

	lines := make([]PurchaseOrderLine, 0, len(p.Lines))
	for i, l := range p.Lines {
		lines = append(lines, PurchaseOrderLine{
			Position:        i + 1,
			CostCenterCode:  l.CostCenterCode,
			CostAccountName: l.CostAccountName,
			Description:     l.Description,
		})
	}

	kind := string(p.PaymentTermsKind)
	if kind == "" {
		kind = string(types.PaymentTermsUnknown)
	}

	return &PurchaseOrder{
		OrderNumber:      p.OrderNumber,
		OrderName:        p.OrderName,
		OrderDate:        date,
		CostCenterLabel:  p.CostCenterLabel,
		SupplierName:     p.SupplierName,
		PaymentTerms:     p.PaymentTerms,
		PaymentTermsKind: kind,
		PaymentDays:      p.PaymentDays,
		Amount:           p.Amount,
		CostCenterCode:   p.CostCenterCode,
		CostAccountName:  p.CostAccountName,
		NeedsReview:      p.NeedsReview,
		Lines:            lines,
	}, nil
}

func validationDetails(errs []*upsert.ValidationError) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}

// errorText prefers the coded message over the wrapped driver error.
func errorText(err error) string {
	if coded := pkgerrors.As(err); coded != nil {
		return coded.Message()
	}
	return err.Error()
}
