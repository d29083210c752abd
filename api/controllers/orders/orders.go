package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ginjaninja78/oc-consolidator/api/responses"
	"github.com/ginjaninja78/oc-consolidator/api/validators"
	"github.com/ginjaninja78/oc-consolidator/internal/orderstore"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

// Store is the order store behind the purchase-order endpoints.
type Store interface {
	SubmitBatch(ctx context.Context, payloads []upsert.OrderPayload) (upsert.BatchResponse, error)
	Upsert(ctx context.Context, payload upsert.OrderPayload) (int64, bool, error)
	Get(ctx context.Context, orderNumber string) (*orderstore.PurchaseOrder, error)
	PendingReview(ctx context.Context) (int64, error)
}

// batchUpsertRequest does not dive into orders: invalid orders are reported
// per item instead of failing the whole batch.
type batchUpsertRequest struct {
	Orders []upsert.OrderPayload `json:"orders" validate:"required,min=1,max=1000"`
}

// BatchUpsert writes every order and reports a result per index.
func BatchUpsert(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "order store unavailable"))
			return
		}

		var req batchUpsertRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := store.SubmitBatch(r.Context(), req.Orders)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "batch upsert interrupted"))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// Upsert writes one order. It answers 201 when the order number was new.
func Upsert(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "order store unavailable"))
			return
		}

		var payload upsert.OrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, created, err := store.Upsert(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, upsert.ItemResult{Success: true, Created: created, EntityID: id})
	}
}

// Get returns one stored order with its lines.
func Get(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "order store unavailable"))
			return
		}

		orderNumber := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		order, err := store.Get(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderstore.ToView(order))
	}
}

// PendingReview counts stored orders that still need manual correction.
func PendingReview(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "order store unavailable"))
			return
		}

		n, err := store.PendingReview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": n})
	}
}
