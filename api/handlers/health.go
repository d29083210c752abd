package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ginjaninja78/oc-consolidator/api/responses"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency the readiness check verifies.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness only.
func Health(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logg.Debug(r.Context(), "health.check")
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready pings every named dependency. Nil pingers are skipped.
func Ready(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		status := map[string]string{}
		failed := false
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				logg.Error(logg.WithField(ctx, "dependency", name), "readiness.failed", err)
				status[name] = "unavailable"
				failed = true
				continue
			}
			status[name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
