package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"finbot/internal/log"
)

// Service is a long-running part of a process. Start blocks until the
// service stops; Stop asks it to stop within the deadline of ctx.
type Service struct {
	Name  string
	Start func() error
	Stop  func(ctx context.Context) error
}

// Run starts every service and blocks until ctx is cancelled, SIGINT or
// SIGTERM arrives, or any service returns. All services are then stopped
// with the given timeout. The first start error or every stop error is
// returned.
func Run(ctx context.Context, logger *log.Logger, timeout time.Duration, services ...Service) error {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		g.Go(func() error {
			defer cancel()
			logger.Info("Service starting", "service", svc.Name, log.FieldOperation, log.OpStartup)
			if err := svc.Start(); err != nil {
				return fmt.Errorf("%s: %w", svc.Name, err)
			}
			logger.Info("Service stopped", "service", svc.Name)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "timeout", timeout)

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
		defer cancelShutdown()

		var errs []error
		for i := len(services) - 1; i >= 0; i-- {
			svc := services[i]
			if err := svc.Stop(shutdownCtx); err != nil {
				logger.Error("Service stop failed", "service", svc.Name, log.FieldOperation, log.OpShutdown, log.FieldError, err)
				errs = append(errs, fmt.Errorf("stop %s: %w", svc.Name, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
