package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_WritesAttributesAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With(slog.String("request_id", "r-1")).
		WithGroup("http").
		Info("request completed", slog.Int("status", 201), slog.Group("user", slog.String("id", "u-9")))

	line := buf.String()
	assert.Contains(t, line, "request completed")
	assert.Contains(t, line, "request_id"+reset+"=r-1")
	assert.Contains(t, line, "http.status"+reset+"=201")
	assert.Contains(t, line, "http.user.id"+reset+"=u-9")
}

func TestPrettyHandler_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, "JSON", "warn").Info("dropped")
	assert.Empty(t, buf.String())

	New(&buf, "json", "debug").Debug("kept", slog.String("k", "v"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "v", record["k"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Same(t, slog.Default(), FromContext(ctx))

	scoped := slog.New(NewPrettyHandler(&bytes.Buffer{}, nil))
	ctx = WithContext(ctx, scoped)
	assert.Same(t, scoped, FromContext(ctx))

	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Equal(t, "req-42", RequestIDFromContext(WithRequestID(ctx, "req-42")))
}
