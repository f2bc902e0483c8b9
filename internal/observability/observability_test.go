package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "memeLikes", KeyFamily("memeLikes"))
	assert.Equal(t, "comments", KeyFamily("comments-181913649"))
	assert.Equal(t, "userProfile", KeyFamily("userProfile"))
}

func TestNewLogger_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production", slog.LevelInfo)

	ctx := WithTraceID(WithRequestID(context.Background(), "req-1"), "trace-1")
	logger.InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
	assert.Contains(t, out, `"msg":"hello"`)
}

func TestNewLogger_TextOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "development", slog.LevelInfo)
	logger.With("component", "store").Info("ready")

	assert.Contains(t, buf.String(), "msg=ready")
	assert.Contains(t, buf.String(), "component=store")
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "memeverse-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "test.span")
	assert.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
}
