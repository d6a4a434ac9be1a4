package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"go-media-backend/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// errorBody is the part of the failure envelope worth logging.
type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Code    string `json:"code"`
		Field   string `json:"field"`
		Details string `json:"details"`
	} `json:"errors"`
}

// Logging assigns the request id, puts a request-scoped logger into the
// context, and logs one line per request.
func Logging(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			log := base.With(slog.String("request_id", requestID))
			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = logger.WithContext(ctx, log)

			started := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration_ms", time.Since(started).Milliseconds(),
				"client_ip", clientIP(r),
			}

			if wrapped.status >= 400 && r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}

			if wrapped.status >= 400 && wrapped.body.Len() > 0 {
				var parsed errorBody
				if err := json.Unmarshal(wrapped.body.Bytes(), &parsed); err == nil {
					attrs = append(attrs, "error_message", parsed.Message)
					if len(parsed.Errors) > 0 {
						attrs = append(attrs, "error_code", parsed.Errors[0].Code)
						if parsed.Errors[0].Field != "" {
							attrs = append(attrs, "error_field", parsed.Errors[0].Field)
						}
						if parsed.Errors[0].Details != "" {
							attrs = append(attrs, "error_details", parsed.Errors[0].Details)
						}
					}
				}
			}

			switch {
			case wrapped.status >= 500:
				log.Error("request", attrs...)
			case wrapped.status >= 400:
				log.Warn("request", attrs...)
			default:
				log.Info("request", attrs...)
			}
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	// Only failure bodies are kept, and only their head.
	if rw.status >= 400 && rw.body.Len() < 4096 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
