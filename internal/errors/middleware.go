package errors

import (
	"net/http"
)

// RecoveryMiddleware turns a panic in next into a 500 problem response.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
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
				handler.HandlePanic(w, r, rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
