package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Caller-supplied IDs end up in log fields; anything else is replaced.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID tags each request with an ID, echoed in the response header and
// attached to the request's log context. A missing or malformed incoming ID
// is replaced by a fresh UUID.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !validRequestID.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), id)))
		})
	}
}
