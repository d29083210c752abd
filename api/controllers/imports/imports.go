package imports

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ginjaninja78/oc-consolidator/api/responses"
	"github.com/ginjaninja78/oc-consolidator/api/validators"
	"github.com/ginjaninja78/oc-consolidator/internal/importer"
	"github.com/ginjaninja78/oc-consolidator/internal/previewcache"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

// Importer runs the consolidation pipeline.
type Importer interface {
	Preview(ctx context.Context, mainIn, detailIn importer.Input) (*importer.Preview, error)
	Run(ctx context.Context, mainIn, detailIn importer.Input) (*importer.Result, error)
	Commit(ctx context.Context, records []types.ConsolidatedRecord) (upsert.BatchOutcome, string, error)
}

// PreviewStore keeps previews between preview and commit.
type PreviewStore interface {
	Save(ctx context.Context, entry previewcache.Entry) (string, error)
	Take(ctx context.Context, token string) (*previewcache.Entry, error)
	TTL() time.Duration
}

type previewResponse struct {
	*importer.Preview
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type commitResponse struct {
	Token   string              `json:"token"`
	Outcome upsert.BatchOutcome `json:"outcome"`
	Report  string              `json:"report"`
}

// Preview consolidates the uploaded spreadsheets without submitting them.
// With a preview store the result is kept and a commit token returned.
func Preview(imp Importer, cache PreviewStore, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mainIn, detailIn, err := validators.ReadImportUpload(w, r, maxUpload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		preview, err := imp.Preview(ctx, mainIn, detailIn)
		if err != nil {
			responses.WriteError(ctx, logg, w, importer.CodedError(err))
			return
		}

		resp := previewResponse{Preview: preview}
		if cache != nil {
			token, err := cache.Save(ctx, previewcache.Entry{
				MainFile:   preview.MainFile,
				DetailFile: preview.DetailFile,
				Records:    preview.Records,
			})
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			expires := time.Now().UTC().Add(cache.TTL())
			resp.Token = token
			resp.ExpiresAt = &expires
		}

		responses.WriteSuccess(w, resp)
	}
}

// Run consolidates and submits the uploaded spreadsheets in one call.
func Run(imp Importer, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mainIn, detailIn, err := validators.ReadImportUpload(w, r, maxUpload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := imp.Run(ctx, mainIn, detailIn)
		if err != nil {
			responses.WriteError(ctx, logg, w, importer.CodedError(err))
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Commit submits a stored preview. A token commits at most once.
func Commit(imp Importer, cache PreviewStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cache == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "preview cache not configured"))
			return
		}

		token := chi.URLParam(r, "token")
		entry, err := cache.Take(ctx, token)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		outcome, report, err := imp.Commit(ctx, entry.Records)
		if err != nil {
			responses.WriteError(ctx, logg, w, importer.CodedError(err))
			return
		}
		responses.WriteSuccess(w, commitResponse{Token: token, Outcome: outcome, Report: report})
	}
}
