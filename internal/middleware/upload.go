package middleware

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// UploadLimits prepares a multipart upload route. It caps the body at
// maxBytes and replaces the server-wide read deadline with maxDuration so a
// large upload is not cut off by SERVER_READ_TIMEOUT. If the client stops
// sending for idleTimeout the request context is cancelled and the pending
// read fails.
//
// The response is not buffered, unlike Timeout.
func UploadLimits(maxBytes int64, maxDuration time.Duration, idleTimeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), maxDuration)
			defer cancel()

			rc := http.NewResponseController(w)
			deadline := time.Now().Add(maxDuration)
			_ = rc.SetReadDeadline(deadline)
			_ = rc.SetWriteDeadline(deadline)

			body := &idleBody{
				ReadCloser:  http.MaxBytesReader(w, r.Body, maxBytes),
				rc:          rc,
				idleTimeout: idleTimeout,
				cancel:      cancel,
			}
			body.resetIdle()
			defer body.stop()

			r = r.WithContext(ctx)
			r.Body = body
			next.ServeHTTP(w, r)
		})
	}
}

// idleBody wraps the request body with an inactivity timer. Every read
// resets it.
type idleBody struct {
	io.ReadCloser
	rc          *http.ResponseController
	idleTimeout time.Duration
	cancel      context.CancelFunc
	mu          sync.Mutex
	idleTimer   *time.Timer
}

func (b *idleBody) resetIdle() {
	if b.idleTimeout <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.idleTimer != nil {
		b.idleTimer.Stop()
	}

	b.idleTimer = time.AfterFunc(b.idleTimeout, func() {
		// Fail the blocked read right away.
		_ = b.rc.SetReadDeadline(time.Now())
		b.cancel()
	})
}

func (b *idleBody) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.idleTimer != nil {
		b.idleTimer.Stop()
	}
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.resetIdle()
	}
	return n, err
}
