package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"finbot/internal/core"
	"finbot/internal/log"
	"finbot/internal/metrics"
	"finbot/internal/middleware/security"
	"finbot/internal/middleware/trace"
)

// UserService is the user surface the API needs
type UserService interface {
	Create(ctx context.Context, in core.UserCreate) (core.User, error)
	List(ctx context.Context) ([]core.User, error)
	Get(ctx context.Context, id int64) (core.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (core.User, error)
	Update(ctx context.Context, id int64, in core.UserUpdate) (core.User, error)
	Delete(ctx context.Context, id int64) error
}

// ExpenseService is the expense surface the API needs
type ExpenseService interface {
	Create(ctx context.Context, in core.ExpenseCreate) (core.Expense, error)
	List(ctx context.Context, page core.Page) ([]core.Expense, error)
	Get(ctx context.Context, id int64) (core.ExpenseWithUser, error)
	ListByUser(ctx context.Context, userID int64) ([]core.Expense, error)
	Update(ctx context.Context, id int64, in core.ExpenseUpdate) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryReader is the read-only category surface
type CategoryReader interface {
	List(ctx context.Context) ([]core.Category, error)
	Get(ctx context.Context, id int64) (core.Category, error)
}

type Server struct {
	http.Server
	mux        *http.ServeMux
	logger     *log.Logger
	users      UserService
	expenses   ExpenseService
	categories CategoryReader
	ready      func(context.Context) error
	registry   *prometheus.Registry
	headers    security.HeadersConfig
}

// Option customizes the server
type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadinessCheck makes /readyz answer 503 while check fails
func WithReadinessCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.ready = check
	}
}

// WithMetrics records HTTP metrics on reg and serves it on /metrics
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		s.ReadTimeout = read
		s.WriteTimeout = write
		s.IdleTimeout = idle
	}
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, users UserService, expenses ExpenseService, categories CategoryReader, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		mux:        http.NewServeMux(),
		logger:     log.Discard(),
		users:      users,
		expenses:   expenses,
		categories: categories,
		headers:    security.DefaultHeadersConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()

	traceOpts := []trace.Option{trace.WithRouteResolver(s.routeOf)}
	if s.registry != nil {
		traceOpts = append(traceOpts, trace.WithMetrics(metrics.NewHTTP(s.registry)))
	}
	tracer := trace.NewMiddleware(ClientIP, s.logger.WithComponent(log.ComponentHTTP), traceOpts...)
	headers := security.NewHeadersMiddleware(s.headers)

	httpLogger := s.logger.WithComponent(log.ComponentHTTP)
	s.Handler = log.Middleware(httpLogger)(tracer.Middleware(headers.Middleware(s.mux)))
	s.ErrorLog = httpLogger.StdLogger()

	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /users", s.handleCreateUser)
	s.mux.HandleFunc("POST /users/{$}", s.handleCreateUser)
	s.mux.HandleFunc("GET /users", s.handleListUsers)
	s.mux.HandleFunc("GET /users/{$}", s.handleListUsers)
	s.mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	s.mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	s.mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)
	s.mux.HandleFunc("GET /users/{id}/expenses", s.handleListUserExpenses)
	s.mux.HandleFunc("GET /users/{id}/expenses/{$}", s.handleListUserExpenses)
	s.mux.HandleFunc("GET /telegram-users/{telegram_id}", s.handleGetUserByTelegramID)

	s.mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	s.mux.HandleFunc("POST /expenses/{$}", s.handleCreateExpense)
	s.mux.HandleFunc("GET /expenses", s.handleListExpenses)
	s.mux.HandleFunc("GET /expenses/{$}", s.handleListExpenses)
	s.mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	s.mux.HandleFunc("PATCH /expenses/{id}", s.handleUpdateExpense)
	s.mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	s.mux.HandleFunc("GET /categories", s.handleListCategories)
	s.mux.HandleFunc("GET /categories/{$}", s.handleListCategories)
	s.mux.HandleFunc("GET /categories/{id}", s.handleGetCategory)

	s.mux.HandleFunc("GET /healthz", handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	if s.registry != nil {
		s.mux.Handle("GET /metrics", metrics.Handler(s.registry))
	}
}

// routeOf returns the registered pattern serving r, used as the metrics label
func (s *Server) routeOf(r *http.Request) string {
	_, pattern := s.mux.Handler(r)
	return pattern
}
