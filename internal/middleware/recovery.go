package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the client-facing response after a panic is caught
type PanicHandler func(w http.ResponseWriter, r *http.Request, cause any)

// Recovery converts handler panics into logged error responses instead
// of letting them tear down the connection's serve goroutine.
func Recovery(logger *slog.Logger, onPanic PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				cause := recover()
				if cause == nil {
					return
				}
				logger.Error("handler panicked",
					slog.Any("cause", cause),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				onPanic(w, r, cause)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPanicHandler replies with a bare 500
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
