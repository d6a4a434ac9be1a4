package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go-media-backend/internal/logger"
	"go-media-backend/pkg/apierror"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				logger.FromContext(r.Context()).Error("panic recovered",
					slog.String("error", fmt.Sprintf("%v", recovered)),
					slog.String("stack", string(debug.Stack())),
				)
				writeFailure(w, http.StatusInternalServerError, apierror.CodeInternal, "unexpected server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
