package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogCall(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Component: ComponentExpense})

	logger.LogCall(context.Background(), "FetchExpensesForDate", FieldDate, "2024-08-01")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "call", lines[0]["msg"])
	assert.Equal(t, ComponentExpense, lines[0][FieldComponent])
	assert.Equal(t, "FetchExpensesForDate", lines[0][FieldOperation])
	assert.Equal(t, "2024-08-01", lines[0][FieldDate])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Level: slog.LevelWarn})

	logger.Info("hidden")
	logger.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestFromContextFallsBack(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	logger := Discard()
	assert.Same(t, logger, FromContext(NewContext(context.Background(), logger)))
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Component: ComponentHTTP})

	var inner *Logger
	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = FromContext(r.Context())
		w.WriteHeader(http.StatusBadRequest)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses/2024-08-01", nil))

	require.NotNil(t, inner)
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, float64(http.StatusBadRequest), lines[0][FieldStatusCode])
	assert.Equal(t, "/expenses/2024-08-01", lines[0][FieldPath])
	assert.NotEmpty(t, lines[0][FieldRequestID])
	assert.Equal(t, false, lines[0][FieldSuccess])
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Component: ComponentHTTP})

	assert.Same(t, logger, logger.WithRequest(context.Background()))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-7")
	logger.WithRequest(ctx).WithComponent(ComponentExpense).Info("scoped")

	require.Equal(t, 1, strings.Count(buf.String(), `"`+FieldComponent+`"`))
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-7", lines[0][FieldRequestID])
	assert.Equal(t, ComponentExpense, lines[0][FieldComponent])
}
