package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue returns the value of the sample of family name whose labels
// include every pair in labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			if h := m.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
		}
	}
	return 0
}

func TestHTTPObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)

	done := m.Start()
	m.Observe(http.MethodGet, "GET /users/{id}", 200, 5*time.Millisecond)
	m.Observe(http.MethodGet, "GET /users/{id}", 404, time.Millisecond)
	m.Observe(http.MethodGet, "GET /users/{id}", 404, time.Millisecond)
	done()

	assert.Equal(t, 1.0, counterValue(t, reg, "finbot_http_requests_total", map[string]string{"code": "200"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "finbot_http_requests_total", map[string]string{"code": "404"}))
	assert.Equal(t, 3.0, counterValue(t, reg, "finbot_http_request_duration_seconds", map[string]string{"route": "GET /users/{id}"}))
}

func TestBotCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBot(reg)

	m.CommandProcessed("start")
	m.CommandProcessed("start")
	m.Error()

	assert.Equal(t, 2.0, counterValue(t, reg, "finbot_telegram_commands_processed_total", map[string]string{"command": "start"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "finbot_telegram_errors_total", nil))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var h *HTTP
	var b *Bot
	assert.NotPanics(t, func() {
		h.Start()()
		h.Observe("GET", "/", 200, time.Second)
		b.CommandProcessed("start")
		b.Error()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	NewHTTP(reg).Observe("GET", "GET /healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "finbot_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
