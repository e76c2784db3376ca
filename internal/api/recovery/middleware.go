// Package recovery turns handler panics into JSON 500 replies.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/metrics"
)

// Middleware recovers panics from next, counts them per method and answers
// with the shared error envelope. http.ErrAbortHandler is re-raised so the
// server can drop the connection.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			metrics.HTTPPanics.WithLabelValues(r.Method).Inc()
			log.Error().
				Err(errors.Errorf("panic: %v", rec)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Str("stack", string(debug.Stack())).
				Msg("handler panicked")
			respond.WriteInternalError(w, fmt.Sprintf("%s %s failed", r.Method, r.URL.Path))
		}()
		next.ServeHTTP(w, r)
	})
}
