package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"finbot/internal/amqp"
	"finbot/internal/cli"
	"finbot/internal/config"
	apphttp "finbot/internal/http"
	"finbot/internal/log"
	"finbot/internal/metrics"
	"finbot/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp, (*config.Config).Validate)

	ctx := context.Background()
	store := cli.OpenStore(ctx, logger.WithComponent(log.ComponentStorage), cfg.SQLiteDBPath)
	defer store.Close()

	// Change events are optional; a nil publisher disables them.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", log.FieldError, err, "exchange", cfg.AMQPExchange)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("Publishing change events", "exchange", cfg.AMQPExchange)
	}

	srv := apphttp.NewServer(cfg.Addr(),
		services.NewUserService(store, events, logger),
		services.NewExpenseService(store, events, logger),
		services.NewCategoryService(store, events, logger),
		apphttp.WithLogger(logger),
		apphttp.WithReadinessCheck(store.Ping),
		apphttp.WithMetrics(metrics.NewRegistry()),
		apphttp.WithTimeouts(cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout, cfg.HTTPIdleTimeout),
	)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting finbot API", "addr", srv.Addr, "db", cfg.SQLiteDBPath)
	err := cli.Run(ctx, logger, cfg.ShutdownTimeout, cli.Service{
		Name: "http",
		Start: func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		Stop: srv.Shutdown,
	})
	if err != nil {
		logger.Error("Server error", log.FieldError, err)
		store.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
