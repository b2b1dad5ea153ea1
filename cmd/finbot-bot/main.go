package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finbot/internal/bot"
	"finbot/internal/cli"
	"finbot/internal/config"
	"finbot/internal/log"
	"finbot/internal/metrics"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentBot, (*config.Config).ValidateBot)

	reg := metrics.NewRegistry()
	b, err := bot.New(bot.Config{
		Token:       cfg.Telegram.BotKey,
		PollTimeout: cfg.Telegram.PollTimeout,
	}, logger, metrics.NewBot(reg))
	if err != nil {
		logger.Error("Failed to create Telegram bot", log.FieldError, err)
		os.Exit(1)
	}

	svcs := []cli.Service{{
		Name: "telegram",
		Start: func() error {
			b.Start()
			return nil
		},
		Stop: b.Shutdown,
	}}

	if cfg.Telegram.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metrics.Handler(reg))
		metricsSrv := &http.Server{
			Addr:              cfg.Telegram.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		svcs = append(svcs, cli.Service{
			Name: "metrics",
			Start: func() error {
				if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			Stop: metricsSrv.Shutdown,
		})
		logger.Info("Serving bot metrics", "addr", cfg.Telegram.MetricsAddr)
	}

	if err := cli.Run(context.Background(), logger, cfg.ShutdownTimeout, svcs...); err != nil {
		logger.Error("Bot error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Bot stopped gracefully")
}
