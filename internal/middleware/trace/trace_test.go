package trace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/log"
	"finbot/internal/metrics"
)

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	var seen string
	mw := NewMiddleware(nil, log.Discard())
	h := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestMiddlewareHonorsIncomingRequestID(t *testing.T) {
	cases := []struct {
		name   string
		header string
		reused bool
	}{
		{"well formed", "abc-123", true},
		{"with spaces", "abc 123", false},
		{"too long", strings.Repeat("a", maxRequestIDLength+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMiddleware(nil, log.Discard()).Middleware(http.NotFoundHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tc.header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tc.reused {
				assert.Equal(t, tc.header, rec.Header().Get(RequestIDHeader))
			} else {
				assert.NotEqual(t, tc.header, rec.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestMiddlewareRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := NewMiddleware(func(*http.Request) string { return "127.0.0.1" }, log.Discard(),
		WithMetrics(metrics.NewHTTP(reg)),
		WithRouteResolver(func(*http.Request) string { return "GET /users/{id}" }))

	h := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "finbot_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == "GET /users/{id}" && labels["code"] == "404" {
				found = true
				assert.Equal(t, 1.0, m.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found, "request recorded with route label and first status code")
}

func TestGetRequestIDMissing(t *testing.T) {
	assert.Empty(t, GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestMiddlewareAddsRequestIDToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	mw := NewMiddleware(nil, log.Discard())
	h := log.Middleware(logger)(mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "handled", rec["msg"])
	assert.Equal(t, "req-abc", rec[log.FieldRequestID])
}
