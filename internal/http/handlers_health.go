package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finbot/internal/log"
)

const readinessTimeout = 2 * time.Second

func handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(w, r, map[string]string{"status": "ok"})
}

// handleReady reports 503 while the readiness check (the database ping) fails
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := s.ready(ctx); err != nil {
			errorType := log.ErrorTypeDatabase
			if errors.Is(err, context.DeadlineExceeded) {
				errorType = log.ErrorTypeTimeout
			}
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				log.NewFields().WithError(err).WithErrorType(errorType).ToSlice()...)
			NewJSONResponse().
				Status(http.StatusServiceUnavailable).
				Body(map[string]string{"status": "unavailable"}).
				Write(w, r)
			return
		}
	}
	OK(w, r, map[string]string{"status": "ready"})
}
