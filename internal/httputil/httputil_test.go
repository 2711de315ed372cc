package httputil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-summarizer/internal/app"
	"doc-summarizer/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterRecoversPanics(t *testing.T) {
	r := NewRouter(testLogger(), 0)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, map[string]string{"status": "processing"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"processing"}`, rec.Body.String())
}

func TestFailDefaultsToInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(testLogger(), rec, "storage unavailable", nil, 0)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "storage unavailable")
}

func TestValidationError(t *testing.T) {
	type body struct {
		Text string `json:"text" validate:"required,max=5"`
	}

	tests := []struct {
		name    string
		in      body
		wantMsg string
	}{
		{"missing", body{}, "is required"},
		{"too long", body{Text: "abcdefgh"}, "must be at most 5 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator.Struct(&tt.in)
			require.Error(t, err)

			rec := httptest.NewRecorder()
			ValidationError(testLogger(), rec, err)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"Text": "`+tt.wantMsg+`"`)
		})
	}
}

func TestHealthAndMetricsHandlers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewPrometheusRecorder(reg).ChunkProcessed("summarized")
	deps := app.Deps{Log: testLogger(), Registry: reg}

	rec := httptest.NewRecorder()
	HealthHandler(deps)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	MetricsHandler(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `summarizer_chunks_total{outcome="summarized"} 1`))
}
