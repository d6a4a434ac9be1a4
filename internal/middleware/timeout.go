package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds a regular request. The response is buffered, so upload
// routes use UploadLimits instead.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"status":503,"success":false,"message":"request timed out","errors":[{"code":"REQUEST_TIMEOUT"}]}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
