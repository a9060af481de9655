package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "finvis/internal/errors"
	"finvis/internal/infrastructure"
	"finvis/internal/shared/testutil"
	api "finvis/pkg/contracts/api/v1"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	var seen, traceID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimw.GetReqID(r.Context())
		traceID = infrastructure.GetTraceID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		header := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(header)
		require.NoError(t, err)
		assert.Equal(t, header, seen)
		assert.Equal(t, header, traceID)
	})

	t.Run("from client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "client-id", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "client-id", seen)
	})
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))

	ctx = infrastructure.WithTraceID(context.Background(), "trace")
	assert.Equal(t, "trace", GetRequestID(ctx))
}

func TestStructuredLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	mw := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "request completed")
	testutil.AssertLogAttr(t, handler, "path", "/api/health")
	testutil.AssertLogAttr(t, handler, "status", int64(http.StatusTeapot))
}

func TestStructuredLoggerServerError(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	mw := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
}

func TestRecoverer(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	mw := RequestID(Recoverer(errorHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeInternal, body["type"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body["trace_id"])
	testutil.AssertLogContains(t, handler, slog.LevelError, "panic recovered")
}

func TestRateLimiter(t *testing.T) {
	logger := discardLogger()
	rl := NewRateLimiter(0, 1, logger, apierrors.NewErrorHandler(logger, false))
	handler := rl.Handler(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestSecureHeaders(t *testing.T) {
	handler := DefaultSecureHeaders().Handler(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	// Empty fields are left unset
	sh := &SecureHeaders{XFrameOptions: "SAMEORIGIN"}
	rec = httptest.NewRecorder()
	sh.Handler(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestOTelMiddleware(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	mw, err := NewOTelMiddleware(providers, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(mw.Handler)
	r.Get("/api/charts/{id}.svg", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/key-eps.svg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	scrape := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), "http_requests")
	assert.Contains(t, scrape.Body.String(), `/api/charts/{id}.svg`)
}

func TestValidator(t *testing.T) {
	v := NewValidator(discardLogger())

	assert.NoError(t, v.ValidateStruct(api.DashboardRequest{}))
	assert.NoError(t, v.ValidateStruct(api.DashboardRequest{Tab: "heatmap"}))

	err := v.ValidateStruct(api.DashboardRequest{Tab: "summary"})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "tab must be one of: overview, key-metrics, heatmap", apiErr.Message)

	details, ok := apiErr.Details.([]FieldError)
	require.True(t, ok)
	assert.Equal(t, "tab", details[0].Field)
}

func TestValidateRequest(t *testing.T) {
	logger := discardLogger()
	v := NewValidator(logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	ok := v.ValidateRequest(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?tab=x", nil),
		errorHandler, api.DashboardRequest{Tab: "x"})

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apierrors.TypeValidation)
}
