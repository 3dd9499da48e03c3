package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_InfoShape(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithOutput("api", &buf)

	lg.Info("order_placed", map[string]any{"order_id": 7})

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "order_placed", entry["action"])
	assert.Equal(t, "order_placed", entry["message"])
	assert.Equal(t, float64(7), entry["order_id"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "hostname")
}

func TestLogger_ErrorCarriesMessage(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithOutput("api", &buf)

	lg.Error("db_failed", errors.New("connection refused"), nil)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "error", entry["level"])
	errField, ok := entry["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "connection refused", errField["msg"])
}

func TestLogger_WithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithOutput("api", &buf)
	ctx := WithRequestID(context.Background(), "req-1")

	lg.WithContext(ctx).Debug("handled", nil)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
}
