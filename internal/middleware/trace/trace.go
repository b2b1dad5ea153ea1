package trace

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"finbot/internal/log"
	"finbot/internal/metrics"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// Middleware assigns request IDs, logs request start and completion and
// records HTTP metrics.
type Middleware struct {
	extractIP func(*http.Request) string
	routeOf   func(*http.Request) string
	logger    *log.Logger
	metrics   *metrics.HTTP
}

// Option customizes the trace middleware
type Option func(*Middleware)

// WithMetrics records every request in m
func WithMetrics(m *metrics.HTTP) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// WithRouteResolver sets the func that maps a request to its low-cardinality
// route label, e.g. "GET /users/{id}"
func WithRouteResolver(routeOf func(*http.Request) string) Option {
	return func(mw *Middleware) {
		mw.routeOf = routeOf
	}
}

// NewMiddleware creates a new trace middleware
func NewMiddleware(extractIP func(*http.Request) string, logger *log.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	m := &Middleware{
		extractIP: extractIP,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Middleware returns HTTP middleware for request tracing
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	structured := log.NewStructuredLogger(m.logger)
	withRequestID := log.RequestIDMiddleware(func(r *http.Request) string {
		return GetRequestID(r.Context())
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := m.metrics.Start()
		defer done()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := requestIDFrom(r)
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)

		route := m.route(r)
		structured.LogHTTPStart(ctx, r, requestID, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		withRequestID.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		m.metrics.Observe(r.Method, route, rw.statusCode, elapsed)
		structured.LogHTTPEnd(ctx, r, route, rw.statusCode, elapsed.Milliseconds(), requestID, clientIP)
	})
}

func (m *Middleware) route(r *http.Request) string {
	if m.routeOf != nil {
		if route := m.routeOf(r); route != "" {
			return route
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestIDFrom reuses a well-formed incoming X-Request-ID or generates one.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" && len(id) <= maxRequestIDLength && printable(id) {
		return id
	}
	return GenerateRequestID()
}

func printable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
