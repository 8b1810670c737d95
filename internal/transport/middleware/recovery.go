package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/transport"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
)

// Recovery turns a handler panic into a 500 in the standard error envelope.
// The panic value is logged but never echoed to the client.
func Recovery(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.From(r.Context()).Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))

				base.WriteAppError(w, internal.NewInternalError("Internal server error", fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
