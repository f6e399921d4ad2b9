package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/app"
	"github.com/KotFed0t/gold_tracker/internal/scheduler"
	"github.com/KotFed0t/gold_tracker/internal/tgbot"
	"github.com/KotFed0t/gold_tracker/internal/transport/rest"
	"github.com/KotFed0t/gold_tracker/internal/transport/telegram"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	app.SetupLogger(cfg, os.Stdout)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to init app", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	sched := scheduler.New()
	sched.NewIntervalJob("refresh spot price", a.Market.RefreshSpotPrice, cfg.Jobs.RefreshSpotPriceInterval, true)
	if a.Drive != nil {
		sched.NewIntervalJob("cleanup reports", a.Drive.DeleteOldFiles, cfg.Jobs.CleanupReportsInterval, false)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := rest.New(cfg, a.Ledger, a.Market)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	if cfg.Telegram.Token != "" {
		tgController := telegram.NewController(a.Ledger, a.Market)
		tgBot := tgbot.New(cfg, tgController)
		tgBot.Start()
		defer tgBot.Stop()
	} else {
		slog.Info("TELEGRAM_TOKEN is not set, tgbot disabled")
	}

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-interrupt:
		slog.Info("got signal, shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			slog.Error("HTTP server stopped", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", slog.String("err", err.Error()))
	}
}
